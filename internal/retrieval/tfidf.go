package retrieval

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

var tokenPattern = regexp.MustCompile(`\p{L}+`)

// tfidfStopwords excludes words that carry no retrieval signal.
var tfidfStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "that": {}, "the": {}, "to": {}, "was": {},
	"were": {}, "will": {}, "with": {},
}

// TFIDFEmbedder embeds text as L2-normalized tf-idf vectors over a fitted
// vocabulary. Fully offline and deterministic: the same corpus and text
// always produce the same vector, which makes it the default embedder.
type TFIDFEmbedder struct {
	mu    sync.RWMutex
	vocab map[string]int
	idf   []float64
	terms []string
}

// NewTFIDFEmbedder creates an unfitted embedder. Fit must run before Embed.
func NewTFIDFEmbedder() *TFIDFEmbedder {
	return &TFIDFEmbedder{}
}

// Fit builds the vocabulary and smoothed inverse document frequencies
// from a corpus. Refitting replaces the previous vocabulary wholesale.
func (e *TFIDFEmbedder) Fit(corpus []string) {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range tokenize(doc) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	e.mu.Lock()
	e.vocab = vocab
	e.idf = idf
	e.terms = terms
	e.mu.Unlock()
}

// Embed implements Embedder. The vector is tf·idf over the fitted
// vocabulary, L2-normalized. Text sharing no terms with the vocabulary
// embeds as the zero vector rather than an error.
func (e *TFIDFEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.vocab) == 0 {
		return nil, types.NewError(types.EMBEDDING_FAILED, "tfidf embedder is not fitted")
	}

	vec := make([]float64, len(e.vocab))
	for _, term := range tokenize(text) {
		if idx, ok := e.vocab[term]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= e.idf[i]
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
func (e *TFIDFEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions implements Embedder. Zero before fitting.
func (e *TFIDFEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.vocab)
}

// Model implements Embedder.
func (e *TFIDFEmbedder) Model() string { return "tfidf" }

// Health implements Embedder.
func (e *TFIDFEmbedder) Health(ctx context.Context) types.HealthStatus {
	if e.Dimensions() == 0 {
		return types.Degraded("tfidf embedder awaiting corpus fit")
	}
	return types.Healthy("tfidf embedder operational")
}

func tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	terms := words[:0]
	for _, word := range words {
		if _, stop := tfidfStopwords[word]; stop {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}
