package retrieval

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthkaria14/GenAdvisor/internal/query"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newsDoc(id, content string, ingestedAt time.Time) Document {
	return Document{
		ID:      id,
		Content: content,
		Metadata: DocumentMetadata{
			Source:     "moneycontrol",
			DocType:    "news",
			IngestedAt: ingestedAt,
		},
	}
}

func TestRetrieverIngestAndRetrieve(t *testing.T) {
	kw, err := NewKeywordIndex("")
	require.NoError(t, err)

	r := NewRetriever(NewEmbeddedStore(0), NewTFIDFEmbedder(), 3, testLogger(), WithKeywordIndex(kw))
	t.Cleanup(func() { _ = r.Close() })

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	docs := []Document{
		newsDoc("n1", "Reliance Industries posts record refining margins this quarter", now.Add(-24*time.Hour)),
		newsDoc("n2", "ONGC announces higher crude output targets for the fiscal year", now.Add(-24*time.Hour)),
		newsDoc("n3", "Monsoon forecast revised upward by the weather department", now.Add(-24*time.Hour)),
	}
	require.NoError(t, r.Ingest(t.Context(), docs))

	got := r.Retrieve(t.Context(), "Reliance refining margins", query.QueryTypeStockAnalysis)
	require.NotEmpty(t, got)
	assert.Equal(t, "n1", got[0].Document.ID)
}

func TestRetrieverRecencyBreaksTies(t *testing.T) {
	r := NewRetriever(NewEmbeddedStore(0), NewTFIDFEmbedder(), 5, testLogger())
	t.Cleanup(func() { _ = r.Close() })

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	// Identical content, different sources so dedupe keeps both. Only
	// ingestion age differs.
	fresh := newsDoc("fresh", "Tata Motors launches a new electric vehicle platform", now.Add(-12*time.Hour))
	stale := newsDoc("stale", "Tata Motors launches a new electric vehicle platform", now.Add(-90*24*time.Hour))
	stale.Metadata.Source = "archive"

	require.NoError(t, r.Ingest(t.Context(), []Document{stale, fresh}))

	got := r.Retrieve(t.Context(), "Tata Motors electric vehicle", query.QueryTypeStockAnalysis)
	require.Len(t, got, 2)
	assert.Equal(t, "fresh", got[0].Document.ID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestRetrieverDocTypePreference(t *testing.T) {
	r := NewRetriever(NewEmbeddedStore(0), NewTFIDFEmbedder(), 5, testLogger())
	t.Cleanup(func() { _ = r.Close() })

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	news := newsDoc("news", "HDFC Bank quarterly results and dividend announcement", now)
	filing := newsDoc("filing", "HDFC Bank quarterly results and dividend announcement", now)
	filing.Metadata.Source = "nse-filings"
	filing.Metadata.DocType = "filing"

	require.NoError(t, r.Ingest(t.Context(), []Document{news, filing}))

	// For fundamental questions filings outrank news; for sentiment
	// questions the order flips.
	got := r.Retrieve(t.Context(), "HDFC Bank dividend results", query.QueryTypeFundamentalAnalysis)
	require.Len(t, got, 2)
	assert.Equal(t, "filing", got[0].Document.ID)

	got = r.Retrieve(t.Context(), "HDFC Bank dividend results", query.QueryTypeNewsSentiment)
	require.Len(t, got, 2)
	assert.Equal(t, "news", got[0].Document.ID)
}

func TestRetrieverKeywordLegCoversEmbedderFailure(t *testing.T) {
	kw, err := NewKeywordIndex("")
	require.NoError(t, err)

	embedder := NewMockEmbedder(16)
	r := NewRetriever(NewEmbeddedStore(16), embedder, 3, testLogger(), WithKeywordIndex(kw))
	t.Cleanup(func() { _ = r.Close() })

	docs := []Document{newsDoc("n1", "Infosys announces share buyback program", time.Now())}
	require.NoError(t, r.Ingest(t.Context(), docs))

	embedder.FailWith = errors.New("model offline")

	got := r.Retrieve(t.Context(), "Infosys buyback", query.QueryTypeStockAnalysis)
	require.NotEmpty(t, got, "keyword leg should carry the query when embedding fails")
	assert.Equal(t, "n1", got[0].Document.ID)
}

func TestRetrieverBothLegsFailingYieldsEmpty(t *testing.T) {
	embedder := NewMockEmbedder(16)
	embedder.FailWith = errors.New("model offline")

	r := NewRetriever(NewEmbeddedStore(16), embedder, 3, testLogger())
	t.Cleanup(func() { _ = r.Close() })

	got := r.Retrieve(t.Context(), "anything at all", query.QueryTypeStockAnalysis)
	assert.Empty(t, got)
}

func TestRetrieverDeduplicatesNearIdenticalContent(t *testing.T) {
	r := NewRetriever(NewEmbeddedStore(0), NewTFIDFEmbedder(), 5, testLogger())
	t.Cleanup(func() { _ = r.Close() })

	// Same source, same content, different IDs: the second is a
	// re-ingested duplicate and should collapse.
	a := newsDoc("a", "Adani Ports expands container capacity at Mundra", time.Now())
	b := newsDoc("b", "Adani Ports expands container capacity at Mundra", time.Now())

	require.NoError(t, r.Ingest(t.Context(), []Document{a, b}))

	got := r.Retrieve(t.Context(), "Adani Ports Mundra capacity", query.QueryTypeStockAnalysis)
	require.Len(t, got, 1)
}

func TestRetrieverCachesResults(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 10)
	r := NewRetriever(NewEmbeddedStore(0), NewTFIDFEmbedder(), 3, testLogger(), WithCache(cache))

	require.NoError(t, r.Ingest(t.Context(), []Document{
		newsDoc("n1", "Wipro signs a multi year cloud transformation deal", time.Now()),
	}))

	first := r.Retrieve(t.Context(), "Wipro cloud deal", query.QueryTypeStockAnalysis)
	require.NotEmpty(t, first)
	assert.Equal(t, 1, cache.Len())

	// A second identical call is served from cache even after the store
	// is emptied underneath.
	require.NoError(t, r.store.Delete(t.Context(), "n1"))
	second := r.Retrieve(t.Context(), "Wipro cloud deal", query.QueryTypeStockAnalysis)
	assert.Equal(t, first, second)
}

func TestRetrieverHonorsTopK(t *testing.T) {
	r := NewRetriever(NewEmbeddedStore(0), NewTFIDFEmbedder(), 2, testLogger())
	t.Cleanup(func() { _ = r.Close() })

	docs := make([]Document, 6)
	for i := range docs {
		docs[i] = newsDoc(fmt.Sprintf("n%d", i),
			fmt.Sprintf("Nifty market update number %d covering banks and energy", i), time.Now())
	}
	require.NoError(t, r.Ingest(t.Context(), docs))

	got := r.Retrieve(t.Context(), "Nifty market update banks", query.QueryTypeMarketOverview)
	assert.LessOrEqual(t, len(got), 2)
	assert.NotEmpty(t, got)
}

func TestRetrieverReingestAfterRefit(t *testing.T) {
	r := NewRetriever(NewEmbeddedStore(0), NewTFIDFEmbedder(), 3, testLogger())
	t.Cleanup(func() { _ = r.Close() })

	first := []Document{
		newsDoc("news-0", "Tata Motors launches new electric vehicle lineup", time.Now()),
		newsDoc("news-1", "Infosys wins large digital services contract", time.Now()),
	}
	require.NoError(t, r.Ingest(t.Context(), first))

	got := r.Retrieve(t.Context(), "Tata Motors electric vehicle", query.QueryTypeStockAnalysis)
	require.NotEmpty(t, got)
	assert.Equal(t, "news-0", got[0].Document.ID)

	// A later feed refresh carries a different corpus, so the tfidf refit
	// produces vectors of a different size than the first batch.
	second := []Document{
		newsDoc("news-0", "HDFC Bank reports strong quarterly loan growth across retail and corporate segments", time.Now()),
		newsDoc("news-1", "Sun Pharma receives regulatory approval for a new generic drug in the United States", time.Now()),
		newsDoc("news-2", "Coal India raises production guidance after record monthly output at key mines", time.Now()),
	}
	require.NoError(t, r.Ingest(t.Context(), second))

	count, err := r.store.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, len(second), count)

	got = r.Retrieve(t.Context(), "HDFC Bank loan growth", query.QueryTypeStockAnalysis)
	require.NotEmpty(t, got)
	assert.Equal(t, "news-0", got[0].Document.ID)
}

func TestEmbeddedStoreResetForgetsDimensions(t *testing.T) {
	store := NewEmbeddedStore(0)

	doc := newsDoc("d1", "first corpus document", time.Now())
	require.NoError(t, store.Store(t.Context(), doc, []float64{0.1, 0.2, 0.3}))

	err := store.Store(t.Context(), newsDoc("d2", "wider vector", time.Now()),
		[]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	require.Error(t, err)

	require.NoError(t, store.Reset(t.Context()))
	count, err := store.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Store(t.Context(), newsDoc("d2", "wider vector", time.Now()),
		[]float64{0.1, 0.2, 0.3, 0.4, 0.5}))
}
