package retrieval

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedDocs(id string) []ScoredDocument {
	return []ScoredDocument{{
		Document: Document{ID: id, Content: "cached content for " + id},
		Score:    0.9,
	}}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, 10)
	key := CacheKey("What about RELIANCE?", "stock_analysis")

	c.Set(t.Context(), key, cachedDocs("d1"))

	got, ok := c.Get(t.Context(), key)
	require.True(t, ok)
	assert.Equal(t, "d1", got[0].Document.ID)
}

func TestMemoryCacheKeysAreExact(t *testing.T) {
	c := NewMemoryCache(time.Minute, 10)
	c.Set(t.Context(), CacheKey("reliance outlook", "stock_analysis"), cachedDocs("d1"))

	// No normalization: whitespace, case and query type all distinguish keys.
	for _, key := range []string{
		CacheKey("reliance outlook ", "stock_analysis"),
		CacheKey("Reliance outlook", "stock_analysis"),
		CacheKey("reliance outlook", "news_sentiment"),
	} {
		_, ok := c.Get(t.Context(), key)
		assert.False(t, ok, "key %q should miss", key)
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 10)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	key := CacheKey("nifty today", "market_overview")
	c.Set(t.Context(), key, cachedDocs("d1"))

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	_, ok := c.Get(t.Context(), key)
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(61 * time.Second) }
	_, ok = c.Get(t.Context(), key)
	assert.False(t, ok, "entry past its TTL should miss")
}

func TestMemoryCacheBoundedSize(t *testing.T) {
	c := NewMemoryCache(time.Minute, 3)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Second)
		c.now = func() time.Time { return tick }
		c.Set(t.Context(), CacheKey(fmt.Sprintf("query %d", i), "stock_analysis"), cachedDocs(fmt.Sprintf("d%d", i)))
	}

	assert.LessOrEqual(t, c.Len(), 3)

	// The newest entry survives, the oldest was evicted.
	_, ok := c.Get(t.Context(), CacheKey("query 4", "stock_analysis"))
	assert.True(t, ok)
	_, ok = c.Get(t.Context(), CacheKey("query 0", "stock_analysis"))
	assert.False(t, ok)
}
