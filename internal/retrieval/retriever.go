package retrieval

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/query"
)

// Re-ranking weights. Policy constants: the final score is
// 0.4·base + 0.3·content overlap + 0.2·recency + 0.1·type relevance.
const (
	weightBase      = 0.4
	weightOverlap   = 0.3
	weightRecency   = 0.2
	weightDocType   = 0.1
	recencyHalfLife = 30.0 // days
)

// typeRelevance scores how useful a document type is for a query type.
// Unlisted combinations score neutral.
var typeRelevance = map[query.QueryType]map[string]float64{
	query.QueryTypeStockAnalysis:       {"news": 0.8, "report": 0.9, "analysis": 0.9, "filing": 0.7},
	query.QueryTypeNewsSentiment:       {"news": 1.0, "report": 0.4, "analysis": 0.5},
	query.QueryTypeFundamentalAnalysis: {"filing": 1.0, "report": 0.9, "news": 0.5},
	query.QueryTypeTechnicalAnalysis:   {"analysis": 0.9, "news": 0.6},
	query.QueryTypeMarketOverview:      {"news": 0.9, "report": 0.7},
	query.QueryTypeSectorAnalysis:      {"report": 0.9, "news": 0.7},
	query.QueryTypeRiskAssessment:      {"filing": 0.8, "report": 0.8, "news": 0.6},
	query.QueryTypePortfolioAdvice:     {"report": 0.8, "analysis": 0.8},
}

const neutralTypeRelevance = 0.5

// Retriever is the hybrid document retriever: vector similarity plus an
// optional keyword leg over the same corpus, fused and re-ranked. Either
// leg failing degrades to the other; both failing yields an empty result,
// never an error to the caller.
type Retriever struct {
	store    DocumentStore
	embedder Embedder
	keyword  *KeywordIndex
	cache    ResultCache
	logger   *slog.Logger
	topK     int
	now      func() time.Time
}

// RetrieverOption customizes a Retriever.
type RetrieverOption func(*Retriever)

// WithKeywordIndex enables the lexical leg.
func WithKeywordIndex(k *KeywordIndex) RetrieverOption {
	return func(r *Retriever) { r.keyword = k }
}

// WithCache enables result caching.
func WithCache(c ResultCache) RetrieverOption {
	return func(r *Retriever) { r.cache = c }
}

// NewRetriever creates a Retriever over a store and embedder.
func NewRetriever(store DocumentStore, embedder Embedder, topK int, logger *slog.Logger, opts ...RetrieverOption) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	r := &Retriever{
		store:    store,
		embedder: embedder,
		cache:    NopCache{},
		logger:   logger,
		topK:     topK,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ingest embeds and indexes documents into both legs. A tfidf embedder is
// refitted on the incoming corpus first so its vocabulary covers the new
// material; the refit changes the vector space, so the store is reset
// before the new batch goes in.
func (r *Retriever) Ingest(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	refit := false
	if fitter, ok := r.embedder.(*TFIDFEmbedder); ok {
		corpus := make([]string, len(docs))
		for i, doc := range docs {
			corpus[i] = doc.Content
		}
		fitter.Fit(corpus)
		refit = true
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	embeddings, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if refit {
		// Vectors from the previous fit are incomparable with the new
		// ones, so drop them rather than mixing dimensionalities.
		if err := r.store.Reset(ctx); err != nil {
			return err
		}
	}
	if err := r.store.StoreBatch(ctx, docs, embeddings); err != nil {
		return err
	}
	if r.keyword != nil {
		if err := r.keyword.Index(docs...); err != nil {
			return err
		}
	}
	r.logger.Info("documents ingested", "count", len(docs), "embedder", r.embedder.Model())
	return nil
}

// Retrieve returns the re-ranked top-k documents for the query. Results
// are cached under the exact raw query and query type.
func (r *Retriever) Retrieve(ctx context.Context, rawQuery string, queryType query.QueryType) []ScoredDocument {
	key := CacheKey(rawQuery, queryType.String())
	if docs, ok := r.cache.Get(ctx, key); ok {
		return docs
	}

	merged := r.gather(ctx, rawQuery)
	if len(merged) == 0 {
		return nil
	}

	ranked := r.rerank(rawQuery, queryType, merged)
	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}

	r.cache.Set(ctx, key, ranked)
	return ranked
}

// gather runs both legs and merges by document ID, keeping the higher
// base score and deduplicating near-identical content from one source.
func (r *Retriever) gather(ctx context.Context, rawQuery string) []ScoredDocument {
	fetch := r.topK * 2

	var merged []ScoredDocument
	index := make(map[string]int)
	contentSeen := make(map[string]struct{})

	add := func(hits []ScoredDocument) {
		for _, hit := range hits {
			if at, ok := index[hit.Document.ID]; ok {
				if hit.Score > merged[at].Score {
					merged[at].Score = hit.Score
				}
				continue
			}
			fingerprint := contentFingerprint(hit.Document)
			if _, dup := contentSeen[fingerprint]; dup {
				continue
			}
			contentSeen[fingerprint] = struct{}{}
			index[hit.Document.ID] = len(merged)
			merged = append(merged, hit)
		}
	}

	if embedding, err := r.embedder.Embed(ctx, rawQuery); err != nil {
		r.logger.Warn("query embedding failed, skipping vector leg", "error", err)
	} else if isZeroVector(embedding) {
		r.logger.Debug("query embeds to zero vector, skipping vector leg")
	} else {
		hits, err := r.store.Search(ctx, SearchQuery{Embedding: embedding, TopK: fetch})
		if err != nil {
			r.logger.Warn("vector search failed, continuing with keyword leg", "error", err)
		} else {
			add(hits)
		}
	}

	if r.keyword != nil {
		hits, err := r.keyword.Search(rawQuery, fetch)
		if err != nil {
			r.logger.Warn("keyword search failed, continuing with vector results", "error", err)
		} else {
			add(hits)
		}
	}

	return merged
}

// rerank rescores merged candidates with the fixed weighting and sorts
// them, highest first, with stable ties.
func (r *Retriever) rerank(rawQuery string, queryType query.QueryType, docs []ScoredDocument) []ScoredDocument {
	queryTokens := overlapTokens(rawQuery)
	now := r.now()

	out := make([]ScoredDocument, len(docs))
	for i, doc := range docs {
		score := weightBase*doc.Score +
			weightOverlap*contentOverlap(queryTokens, doc.Document.Content) +
			weightRecency*recencyScore(now, doc.Document.Metadata.IngestedAt) +
			weightDocType*docTypeRelevance(queryType, doc.Document.Metadata.DocType)
		out[i] = ScoredDocument{Document: doc.Document, Score: score}
	}

	// Insertion sort keeps equal scores in merge order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

var overlapPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

func overlapTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range overlapPattern.FindAllString(strings.ToLower(text), -1) {
		tokens[word] = struct{}{}
	}
	return tokens
}

// contentOverlap is the fraction of query tokens present in the document.
func contentOverlap(queryTokens map[string]struct{}, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	docTokens := overlapTokens(content)
	hits := 0
	for token := range queryTokens {
		if _, ok := docTokens[token]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// recencyScore decays exponentially with document age. Undated documents
// score neutral rather than stale.
func recencyScore(now, ingestedAt time.Time) float64 {
	if ingestedAt.IsZero() {
		return 0.5
	}
	ageDays := now.Sub(ingestedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / recencyHalfLife)
}

func docTypeRelevance(queryType query.QueryType, docType string) float64 {
	if byType, ok := typeRelevance[queryType]; ok {
		if score, ok := byType[docType]; ok {
			return score
		}
	}
	return neutralTypeRelevance
}

func isZeroVector(v []float64) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// contentFingerprint identifies near-duplicate documents: same source and
// same leading content.
func contentFingerprint(doc Document) string {
	content := doc.Content
	if len(content) > 100 {
		content = content[:100]
	}
	return doc.Metadata.Source + "\x00" + content
}

// Close releases the retriever's backends.
func (r *Retriever) Close() error {
	var firstErr error
	if err := r.store.Close(); err != nil {
		firstErr = err
	}
	if r.keyword != nil {
		if err := r.keyword.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := r.cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
