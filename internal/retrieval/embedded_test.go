package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStoreSearchOrdersByScore(t *testing.T) {
	s := NewEmbeddedStore(3)

	require.NoError(t, s.Store(t.Context(), Document{ID: "x", Content: "x"}, []float64{1, 0, 0}))
	require.NoError(t, s.Store(t.Context(), Document{ID: "y", Content: "y"}, []float64{0.9, 0.1, 0}))
	require.NoError(t, s.Store(t.Context(), Document{ID: "z", Content: "z"}, []float64{0, 0, 1}))

	hits, err := s.Search(t.Context(), SearchQuery{Embedding: []float64{1, 0, 0}, TopK: 3})
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "x", hits[0].Document.ID)
	assert.Equal(t, "y", hits[1].Document.ID)
	assert.Equal(t, "z", hits[2].Document.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestEmbeddedStoreAdoptsDimensions(t *testing.T) {
	s := NewEmbeddedStore(0)

	require.NoError(t, s.Store(t.Context(), Document{ID: "a", Content: "a"}, []float64{1, 0}))

	err := s.Store(t.Context(), Document{ID: "b", Content: "b"}, []float64{1, 0, 0})
	require.Error(t, err, "dimensions are fixed by the first stored vector")
}

func TestEmbeddedStoreFilters(t *testing.T) {
	s := NewEmbeddedStore(2)

	docs := []Document{
		{ID: "n", Content: "news doc", Metadata: DocumentMetadata{DocType: "news", Source: "feed"}},
		{ID: "f", Content: "filing doc", Metadata: DocumentMetadata{DocType: "filing", Source: "nse"}},
	}
	require.NoError(t, s.StoreBatch(t.Context(), docs, [][]float64{{1, 0}, {1, 0}}))

	hits, err := s.Search(t.Context(), SearchQuery{
		Embedding: []float64{1, 0},
		TopK:      10,
		Filters:   map[string]string{"doc_type": "filing"},
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "f", hits[0].Document.ID)
}

func TestEmbeddedStoreMinScore(t *testing.T) {
	s := NewEmbeddedStore(2)

	require.NoError(t, s.Store(t.Context(), Document{ID: "near", Content: "near"}, []float64{1, 0}))
	require.NoError(t, s.Store(t.Context(), Document{ID: "far", Content: "far"}, []float64{-1, 0}))

	hits, err := s.Search(t.Context(), SearchQuery{Embedding: []float64{1, 0}, TopK: 10, MinScore: 0.6})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "near", hits[0].Document.ID)
}

func TestEmbeddedStoreGetAndDelete(t *testing.T) {
	s := NewEmbeddedStore(2)
	doc := Document{
		ID:      "d1",
		Content: "alpha",
		Metadata: DocumentMetadata{
			Source:     "test",
			IngestedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, s.Store(t.Context(), doc, []float64{1, 0}))

	got, err := s.Get(t.Context(), "d1")
	require.NoError(t, err)
	assert.Equal(t, doc.Content, got.Content)

	require.NoError(t, s.Delete(t.Context(), "d1"))

	missing, err := s.Get(t.Context(), "d1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := s.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}
