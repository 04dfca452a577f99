package retrieval

import (
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// DocumentMetadata carries the fields the re-ranker and the fuser consume.
type DocumentMetadata struct {
	// Source names the publisher or feed the document came from.
	Source string `json:"source,omitempty"`

	// DocType labels the document kind: news, report, filing, analysis.
	DocType string `json:"doc_type,omitempty"`

	// IngestedAt is when the document entered the index. Drives recency
	// scoring; zero means unknown and scores neutrally.
	IngestedAt time.Time `json:"ingested_at,omitempty"`

	// Extra holds free-form metadata (symbols, URLs).
	Extra map[string]string `json:"extra,omitempty"`
}

// Document is one retrievable text unit in the document index.
type Document struct {
	ID       string           `json:"id"`
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// Validate checks the document is storable.
func (d *Document) Validate() error {
	if d.ID == "" {
		return types.NewError(types.INVALID_INPUT, "document ID cannot be empty")
	}
	if d.Content == "" {
		return types.NewError(types.INVALID_INPUT, "document content cannot be empty")
	}
	return nil
}

// ScoredDocument pairs a document with a relevance score in [0,1].
type ScoredDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}
