package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/parthkaria14/GenAdvisor/internal/advisor"
	"github.com/parthkaria14/GenAdvisor/internal/config"
	"github.com/parthkaria14/GenAdvisor/internal/extract"
	"github.com/parthkaria14/GenAdvisor/internal/fuse"
	"github.com/parthkaria14/GenAdvisor/internal/graph"
	"github.com/parthkaria14/GenAdvisor/internal/llm"
	"github.com/parthkaria14/GenAdvisor/internal/market"
	"github.com/parthkaria14/GenAdvisor/internal/observability"
	"github.com/parthkaria14/GenAdvisor/internal/query"
	"github.com/parthkaria14/GenAdvisor/internal/retrieval"
)

// app bundles every wired component for the lifetime of one command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	tracer    *sdktrace.TracerProvider
	store     *market.Store
	registry  *market.Registry
	search    *market.SymbolSearch
	holder    *graph.Holder
	builder   *graph.Builder
	extractor *extract.Extractor
	engine    *query.Engine
	retriever *retrieval.Retriever
	pipeline  *fuse.Pipeline
	advisor   *advisor.Advisor
}

// loadAppConfig resolves the config file from flags and environment,
// falling back to built-in defaults when no file exists.
func loadAppConfig() (*config.Config, error) {
	homeDir := globalFlags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("GENADVISOR_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}

	configFile := globalFlags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	var cfg *config.Config
	if _, err := os.Stat(configFile); err == nil {
		loader := config.NewConfigLoader(config.NewValidator())
		cfg, err = loader.LoadWithDefaults(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", configFile, err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if globalFlags.HomeDir != "" {
		cfg.Core.HomeDir = globalFlags.HomeDir
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
	if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newApp wires the full component stack: market feeds, knowledge graph,
// hybrid retrieval, the query pipeline and the advisor.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, os.Stderr)
	observability.SetDefault(logger)

	metrics, err := observability.InitMetrics(observability.MetricsConfig{Enabled: cfg.Metrics.Enabled})
	if err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}
	tracer, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled: cfg.Tracing.Enabled,
		Pretty:  cfg.Tracing.Pretty,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	sources := []market.Source{
		market.NewFileSource(market.FileSourceConfig{
			DataDir:        cfg.Market.DataDir,
			StocksFile:     cfg.Market.StocksFile,
			TechnicalsFile: cfg.Market.TechnicalsFile,
			NewsFile:       cfg.Market.NewsFile,
			BreadthFile:    cfg.Market.BreadthFile,
		}, logger),
	}
	if cfg.Market.Source == "live" {
		sources = append(sources, market.NewQuoteSource(market.QuoteSourceConfig{
			RateLimit:   cfg.Market.QuoteRateLimit,
			Burst:       cfg.Market.QuoteBurst,
			Parallelism: cfg.Core.ParallelLimit,
		}, logger))
	}
	store := market.NewStore(logger, sources...)
	if err := store.Refresh(ctx); err != nil {
		logger.Warn("initial market refresh failed, starting with empty snapshot", "error", err)
	}

	registry, err := market.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading symbol registry: %w", err)
	}
	search, err := market.NewSymbolSearch(registry, "")
	if err != nil {
		return nil, fmt.Errorf("building symbol index: %w", err)
	}

	var recognizer extract.Recognizer
	if cfg.NER.Enabled {
		model, err := llm.NewModel(llm.Config{
			Provider: cfg.NER.Provider,
			Model:    cfg.NER.Model,
			BaseURL:  cfg.NER.BaseURL,
			APIKey:   cfg.NER.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing entity recognizer: %w", err)
		}
		recognizer = extract.NewLLMRecognizer(model)
	}

	holder := graph.NewHolder()
	extractor := extract.NewExtractor(holder.Current, registry, recognizer, logger)
	builder := graph.NewBuilder(graph.BuilderConfig{MaxNews: cfg.Graph.MaxNews}, extractor, logger)
	holder.Publish(builder.Build(ctx, store.Snapshot()))
	engine := query.NewEngine(holder.Current, logger)

	docStore, err := retrieval.NewDocumentStore(cfg.Retrieval.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}
	embedder, err := retrieval.NewEmbedder(cfg.Retrieval.Embedder)
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}
	var opts []retrieval.RetrieverOption
	if cfg.Retrieval.Keyword.Enabled {
		keyword, err := retrieval.NewKeywordIndex(cfg.Retrieval.Keyword.IndexPath)
		if err != nil {
			return nil, fmt.Errorf("opening keyword index: %w", err)
		}
		opts = append(opts, retrieval.WithKeywordIndex(keyword))
	}
	cache, err := retrieval.NewResultCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing result cache: %w", err)
	}
	opts = append(opts, retrieval.WithCache(cache))
	retriever := retrieval.NewRetriever(docStore, embedder, cfg.Retrieval.TopK, logger, opts...)
	if err := retriever.Ingest(ctx, newsDocuments(store.Snapshot())); err != nil {
		logger.Warn("document ingestion failed, retrieval runs on an empty index", "error", err)
	}

	var generator fuse.Generator
	switch cfg.LLM.Provider {
	case "openai", "ollama":
		model, err := llm.NewModel(llm.Config{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
			APIKey:   cfg.LLM.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing response generator: %w", err)
		}
		generator = fuse.NewLLMGenerator(model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	}
	pipeline := fuse.NewPipeline(extractor, engine, retriever, generator, metrics, logger)

	adv := advisor.NewAdvisor(store.Snapshot, holder.Current, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		store:     store,
		registry:  registry,
		search:    search,
		holder:    holder,
		builder:   builder,
		extractor: extractor,
		engine:    engine,
		retriever: retriever,
		pipeline:  pipeline,
		advisor:   adv,
	}, nil
}

// refresh reloads market data and republishes the graph and document index.
func (a *app) refresh(ctx context.Context) error {
	if err := a.store.Refresh(ctx); err != nil {
		return err
	}
	snap := a.store.Snapshot()
	a.holder.Publish(a.builder.Build(ctx, snap))
	if err := a.retriever.Ingest(ctx, newsDocuments(snap)); err != nil {
		a.logger.Warn("document re-ingestion failed", "error", err)
	}
	return nil
}

func (a *app) close(ctx context.Context) {
	if err := a.retriever.Close(); err != nil {
		a.logger.Warn("closing retriever", "error", err)
	}
	if err := a.search.Close(); err != nil {
		a.logger.Warn("closing symbol index", "error", err)
	}
	if err := a.metrics.Shutdown(ctx); err != nil {
		a.logger.Warn("shutting down metrics", "error", err)
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("shutting down tracing", "error", err)
	}
}

// newsDocuments converts the snapshot's news feed into retrievable
// documents. IDs are positional so re-ingestion overwrites prior entries
// instead of accumulating duplicates.
func newsDocuments(snap *market.Snapshot) []retrieval.Document {
	docs := make([]retrieval.Document, 0, len(snap.News))
	for i, item := range snap.News {
		content := item.Title
		if item.Description != "" {
			content += "\n" + item.Description
		}
		if item.Content != "" {
			content += "\n" + item.Content
		}
		if content == "" {
			continue
		}
		docs = append(docs, retrieval.Document{
			ID:      fmt.Sprintf("news-%d", i),
			Content: content,
			Metadata: retrieval.DocumentMetadata{
				Source:     item.Source,
				DocType:    "news",
				IngestedAt: item.PublishedAt,
				Extra:      map[string]string{"url": item.URL},
			},
		})
	}
	return docs
}
