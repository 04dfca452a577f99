package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultConfig returns a Config with sensible default values. The defaults
// run fully offline: file feeds, tfidf embedder, embedded vector store,
// in-memory cache and the template response generator.
func DefaultConfig() *Config {
	homeDir := getDefaultHomeDir()
	dataDir := filepath.Join(homeDir, "data")

	return &Config{
		Core: CoreConfig{
			HomeDir:       homeDir,
			DataDir:       dataDir,
			ParallelLimit: 10,
			Timeout:       2 * time.Minute,
			Debug:         false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled: false,
			Pretty:  false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Market: MarketConfig{
			Source:          "file",
			DataDir:         dataDir,
			StocksFile:      "stocks.json",
			TechnicalsFile:  "technicals.json",
			NewsFile:        "news.csv",
			BreadthFile:     "breadth.json",
			RefreshInterval: 15 * time.Minute,
			QuoteRateLimit:  5,
			QuoteBurst:      10,
			WatchDebounce:   2 * time.Second,
		},
		Graph: GraphConfig{
			MaxNews: 500,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
			VectorStore: VectorStoreConfig{
				Type:       "embedded",
				Path:       filepath.Join(homeDir, "vectors.db"),
				Dimensions: 0,
			},
			Embedder: EmbedderConfig{
				Type:       "tfidf",
				Model:      "tfidf",
				Dimensions: 0,
			},
			Keyword: KeywordConfig{
				Enabled:   true,
				IndexPath: "",
			},
		},
		Cache: CacheConfig{
			Type:       "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
			Badger: BadgerConfig{
				Path: filepath.Join(homeDir, "cache"),
			},
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.2,
		},
		NER: NERConfig{
			Enabled: false,
			Model:   "gpt-4o-mini",
		},
		Advisor: AdvisorConfig{
			DefaultStrategy: "balanced",
			DriftThreshold:  0.05,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// getDefaultHomeDir returns the default GenAdvisor home directory.
// It uses ~/.genadvisor or falls back to a temporary directory if user home
// cannot be determined.
func getDefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".genadvisor")
	}
	return filepath.Join(userHome, ".genadvisor")
}
