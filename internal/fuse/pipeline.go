package fuse

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/parthkaria14/GenAdvisor/internal/extract"
	"github.com/parthkaria14/GenAdvisor/internal/observability"
	"github.com/parthkaria14/GenAdvisor/internal/query"
	"github.com/parthkaria14/GenAdvisor/internal/retrieval"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// DocumentRetriever is the retrieval dependency of the pipeline. It never
// returns an error: a failed retrieval degrades to an empty list.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, rawQuery string, queryType query.QueryType) []retrieval.ScoredDocument
}

// Answer is the pipeline's output for one question. The pipeline always
// returns an Answer for valid input, even when every upstream dependency
// failed; in that case the response explicitly says data is unavailable.
type Answer struct {
	RequestID     types.ID                   `json:"request_id"`
	Response      string                     `json:"response"`
	QueryType     query.QueryType            `json:"query_type"`
	Entities      extract.Entities           `json:"entities"`
	GraphResults  []query.Result             `json:"graph_results"`
	VectorResults []retrieval.ScoredDocument `json:"vector_results"`
	Sentiment     float64                    `json:"sentiment"`
	Confidence    float64                    `json:"confidence"`
	Timestamp     time.Time                  `json:"timestamp"`
}

// Pipeline wires classification, extraction, graph query, retrieval,
// fusion and generation into one ProcessQuery call.
type Pipeline struct {
	extractor *extract.Extractor
	engine    *query.Engine
	retriever DocumentRetriever
	generator Generator
	fallback  Generator
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewPipeline assembles the query pipeline. generator may be nil, in
// which case the deterministic template generator answers directly.
func NewPipeline(extractor *extract.Extractor, engine *query.Engine, retriever DocumentRetriever,
	generator Generator, metrics *observability.Metrics, logger *slog.Logger) *Pipeline {
	fallback := NewTemplateGenerator()
	if generator == nil {
		generator = fallback
	}
	return &Pipeline{
		extractor: extractor,
		engine:    engine,
		retriever: retriever,
		generator: generator,
		fallback:  fallback,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessQuery answers one free-text question. Empty input is the only
// rejected case; upstream failures degrade to empty contributions and the
// generated answer states what is missing.
func (p *Pipeline) ProcessQuery(ctx context.Context, text string) (*Answer, error) {
	fused, err := p.Fuse(ctx, text)
	if err != nil {
		return nil, err
	}

	response, err := p.generator.Generate(ctx, fused)
	if err != nil {
		p.logger.Warn("generator failed, falling back to template", "error", err)
		response, _ = p.fallback.Generate(ctx, fused)
	}

	return p.answer(fused, response), nil
}

// ProcessQueryStream is ProcessQuery with a streaming response. The
// returned Answer's Response field is empty; the text arrives on the
// channel. A failing streaming generator degrades to the template answer
// delivered as one chunk.
func (p *Pipeline) ProcessQueryStream(ctx context.Context, text string) (*Answer, <-chan string, error) {
	fused, err := p.Fuse(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	chunks, err := p.generator.GenerateStream(ctx, fused)
	if err != nil {
		p.logger.Warn("streaming generator failed, falling back to template", "error", err)
		chunks, err = p.fallback.GenerateStream(ctx, fused)
		if err != nil {
			return nil, nil, err
		}
	}

	return p.answer(fused, ""), chunks, nil
}

// Fuse runs the pipeline up to (but not including) response generation
// and returns the fused context. The advisory scorer reuses this to get
// connected news without generating text.
func (p *Pipeline) Fuse(ctx context.Context, text string) (Context, error) {
	if strings.TrimSpace(text) == "" {
		return Context{}, types.NewError(types.INVALID_INPUT, "query text cannot be empty")
	}

	start := p.now()
	tracer := otel.Tracer("genadvisor/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.process_query")
	defer span.End()

	queryType := query.Classify(text)
	span.SetAttributes(attribute.String("query.type", queryType.String()))

	entities := p.extractor.Extract(ctx, text)
	p.logger.Debug("entities extracted",
		"companies", entities.Companies,
		"sectors", entities.Sectors,
		"query_type", queryType.String())

	graphResults := p.engine.Query(queryType, entities, query.DefaultMaxDepth)

	var docs []retrieval.ScoredDocument
	if p.retriever != nil {
		docs = p.retriever.Retrieve(ctx, text, queryType)
	}

	fused := NewContext(text, queryType, entities, graphResults, docs, p.now())

	if p.metrics != nil {
		p.metrics.QueriesTotal.Add(ctx, 1)
		p.metrics.QueryDuration.Record(ctx, p.now().Sub(start).Seconds())
		p.metrics.DocsRetrieved.Record(ctx, int64(len(docs)))
	}
	span.SetAttributes(
		attribute.Int("graph.results", len(graphResults)),
		attribute.Int("retrieval.documents", len(docs)),
		attribute.Float64("fused.confidence", fused.Confidence),
	)

	p.logger.Info("query fused",
		"query_type", queryType.String(),
		"graph_results", len(graphResults),
		"documents", len(docs),
		"confidence", fused.Confidence,
		"duration", p.now().Sub(start))

	return fused, nil
}

func (p *Pipeline) answer(fused Context, response string) *Answer {
	return &Answer{
		RequestID:     types.NewID(),
		Response:      response,
		QueryType:     fused.QueryType,
		Entities:      fused.Entities,
		GraphResults:  fused.GraphResults,
		VectorResults: fused.Documents,
		Sentiment:     fused.Sentiment,
		Confidence:    fused.Confidence,
		Timestamp:     fused.Timestamp,
	}
}
