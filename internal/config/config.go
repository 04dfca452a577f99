package config

import (
	"time"
)

// Config is the root configuration for GenAdvisor.
type Config struct {
	Core      CoreConfig      `mapstructure:"core" yaml:"core" validate:"required"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Market    MarketConfig    `mapstructure:"market" yaml:"market" validate:"required"`
	Graph     GraphConfig     `mapstructure:"graph" yaml:"graph"`
	Retrieval RetrievalConfig `mapstructure:"retrieval" yaml:"retrieval"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	NER       NERConfig       `mapstructure:"ner" yaml:"ner"`
	Advisor   AdvisorConfig   `mapstructure:"advisor" yaml:"advisor"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	HomeDir       string        `mapstructure:"home_dir" yaml:"home_dir"`
	DataDir       string        `mapstructure:"data_dir" yaml:"data_dir"`
	ParallelLimit int           `mapstructure:"parallel_limit" yaml:"parallel_limit" validate:"min=1,max=100"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
	Debug         bool          `mapstructure:"debug" yaml:"debug"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Pretty  bool `mapstructure:"pretty" yaml:"pretty"`
}

// MetricsConfig contains metrics export configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// MarketConfig configures the market data feeds backing the entity store.
type MarketConfig struct {
	// Source selects the feed composition: "file" reads JSON/CSV fixtures
	// from DataDir, "live" additionally refreshes quotes over the network.
	Source string `mapstructure:"source" yaml:"source" validate:"omitempty,oneof=file live"`

	// DataDir is the directory holding stocks.json, technicals.json,
	// news.csv and breadth.json. Watched for changes when watching is on.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	StocksFile     string `mapstructure:"stocks_file" yaml:"stocks_file"`
	TechnicalsFile string `mapstructure:"technicals_file" yaml:"technicals_file"`
	NewsFile       string `mapstructure:"news_file" yaml:"news_file"`
	BreadthFile    string `mapstructure:"breadth_file" yaml:"breadth_file"`

	// RefreshInterval drives the periodic snapshot refresh in serve mode.
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`

	// QuoteRateLimit caps live quote fetches in requests per second.
	QuoteRateLimit float64 `mapstructure:"quote_rate_limit" yaml:"quote_rate_limit" validate:"min=0"`
	QuoteBurst     int     `mapstructure:"quote_burst" yaml:"quote_burst" validate:"min=0"`

	// WatchDebounce collapses rapid file events into one refresh trigger.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`
}

// GraphConfig configures knowledge graph construction.
type GraphConfig struct {
	// MaxNews bounds how many news items are ingested per build, newest
	// first. Zero means no bound.
	MaxNews int `mapstructure:"max_news" yaml:"max_news" validate:"min=0"`
}

// VectorStoreConfig configures the document vector store backend.
type VectorStoreConfig struct {
	Type       string `mapstructure:"type" yaml:"type" validate:"omitempty,oneof=embedded sqlite mock"`
	Path       string `mapstructure:"path" yaml:"path"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions" validate:"min=0"`
}

// EmbedderConfig configures the document embedder provider.
type EmbedderConfig struct {
	Type       string `mapstructure:"type" yaml:"type" validate:"omitempty,oneof=tfidf openai mock"`
	Model      string `mapstructure:"model" yaml:"model"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions" validate:"min=0"`
}

// KeywordConfig configures the keyword leg of hybrid retrieval.
type KeywordConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// IndexPath is the on-disk bleve index location. Empty keeps the
	// index in memory.
	IndexPath string `mapstructure:"index_path" yaml:"index_path"`
}

// RetrievalConfig configures document retrieval.
type RetrievalConfig struct {
	TopK        int               `mapstructure:"top_k" yaml:"top_k" validate:"min=1,max=50"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store" yaml:"vector_store"`
	Embedder    EmbedderConfig    `mapstructure:"embedder" yaml:"embedder"`
	Keyword     KeywordConfig     `mapstructure:"keyword" yaml:"keyword"`
}

// RedisConfig contains redis connection settings for the result cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"min=0"`
}

// BadgerConfig contains badger storage settings for the result cache.
type BadgerConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// CacheConfig configures the retrieval result cache.
type CacheConfig struct {
	// Type selects the backend. "none" disables caching entirely.
	Type       string        `mapstructure:"type" yaml:"type" validate:"omitempty,oneof=memory redis badger none"`
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries" validate:"min=0"`
	Redis      RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Badger     BadgerConfig  `mapstructure:"badger" yaml:"badger"`
}

// LLMConfig configures the response generator. An empty provider selects
// the deterministic template generator, keeping the pipeline fully offline.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider" validate:"omitempty,oneof=openai ollama template"`
	Model       string  `mapstructure:"model" yaml:"model"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"min=0"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
}

// NERConfig configures the optional LLM-backed entity recognizer used as
// the second extraction tier. Disabled by default; extraction works without it.
type NERConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Provider string `mapstructure:"provider" yaml:"provider" validate:"omitempty,oneof=openai ollama"`
	Model    string `mapstructure:"model" yaml:"model"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
}

// AdvisorConfig configures portfolio advisory defaults.
type AdvisorConfig struct {
	DefaultStrategy string  `mapstructure:"default_strategy" yaml:"default_strategy" validate:"omitempty,oneof=conservative balanced aggressive"`
	DriftThreshold  float64 `mapstructure:"drift_threshold" yaml:"drift_threshold" validate:"min=0,max=1"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	Mode            string        `mapstructure:"mode" yaml:"mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}
