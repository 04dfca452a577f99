package retrieval

import (
	"context"
)

// ResultCache stores retrieval results keyed by the exact raw query and
// query type. Keys are deliberately not normalized: trivially different
// phrasings miss the cache by design. Implementations bound growth with a
// TTL; stale or duplicate writes are tolerable, so Get-then-Set without a
// transaction is fine.
type ResultCache interface {
	// Get returns the cached documents for key and whether they were found.
	Get(ctx context.Context, key string) ([]ScoredDocument, bool)

	// Set stores documents under key for the cache's TTL.
	Set(ctx context.Context, key string, docs []ScoredDocument)

	// Close releases backend resources.
	Close() error
}

// CacheKey derives the cache key for a query. Exact-match semantics: the
// raw query string joins the query type with a separator that cannot
// appear in either.
func CacheKey(rawQuery, queryType string) string {
	return "rag:" + rawQuery + "\x00" + queryType
}

// NopCache never hits. Used when caching is disabled so call sites stay
// unconditional.
type NopCache struct{}

// Get implements ResultCache.
func (NopCache) Get(context.Context, string) ([]ScoredDocument, bool) { return nil, false }

// Set implements ResultCache.
func (NopCache) Set(context.Context, string, []ScoredDocument) {}

// Close implements ResultCache.
func (NopCache) Close() error { return nil }
