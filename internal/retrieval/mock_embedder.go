package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// MockEmbedder produces deterministic pseudo-embeddings derived from a
// content hash. Test double: no model, stable across runs, records calls.
type MockEmbedder struct {
	mu    sync.Mutex
	dims  int
	calls []string

	// FailWith, when set, makes every call fail with this error.
	FailWith error
}

// NewMockEmbedder creates a MockEmbedder emitting vectors of dims.
func NewMockEmbedder(dims int) *MockEmbedder {
	if dims <= 0 {
		dims = 16
	}
	return &MockEmbedder{dims: dims}
}

// Embed implements Embedder.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	failWith := m.FailWith
	m.mu.Unlock()

	if failWith != nil {
		return nil, types.WrapError(types.EMBEDDING_FAILED, "mock embedder failure", failWith)
	}

	digest := sha256.Sum256([]byte(text))
	vec := make([]float64, m.dims)
	var norm float64
	for i := range vec {
		bits := binary.LittleEndian.Uint32(digest[(i*4)%28:])
		vec[i] = float64(bits%2000)/1000.0 - 1.0
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// EmbedBatch implements Embedder.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions implements Embedder.
func (m *MockEmbedder) Dimensions() int { return m.dims }

// Model implements Embedder.
func (m *MockEmbedder) Model() string { return "mock" }

// Health implements Embedder.
func (m *MockEmbedder) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock embedder operational")
}

// Calls returns every text that was embedded, in order.
func (m *MockEmbedder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
