package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/parthkaria14/GenAdvisor/internal/llm"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Span is a named-entity span returned by a recognizer.
type Span struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// IsOrganization reports whether the span is labeled as an organization.
// Only organization spans participate in company resolution.
func (s Span) IsOrganization() bool {
	switch strings.ToUpper(s.Label) {
	case "ORG", "ORGANIZATION", "COMPANY":
		return true
	default:
		return false
	}
}

// Recognizer extracts named-entity spans from text. Implementations may
// call out to a model; failures are treated as an empty contribution by
// the extractor, never as a pipeline error.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}

// StaticRecognizer returns a fixed span list. Test double.
type StaticRecognizer struct {
	Spans []Span
	Err   error

	// Calls records every text passed to Recognize.
	Calls []string
}

// Recognize implements Recognizer.
func (r *StaticRecognizer) Recognize(_ context.Context, text string) ([]Span, error) {
	r.Calls = append(r.Calls, text)
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Spans, nil
}

const nerPrompt = `Extract the named entities from the text below. Respond with only a JSON array of objects with "text" and "label" fields. Use the label "ORG" for companies and organizations, "PERSON" for people, "LOC" for locations.

Text: %q`

// LLMRecognizer recognizes entities with a chat model. The model is asked
// for a JSON span array; anything unparseable is an upstream failure.
type LLMRecognizer struct {
	model llms.Model
}

// NewLLMRecognizer wraps a langchaingo model as a Recognizer.
func NewLLMRecognizer(model llms.Model) *LLMRecognizer {
	return &LLMRecognizer{model: model}
}

// Recognize implements Recognizer.
func (r *LLMRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	prompt := fmt.Sprintf(nerPrompt, text)
	response, err := llms.GenerateFromSinglePrompt(ctx, r.model, prompt,
		llms.WithTemperature(0),
		llms.WithMaxTokens(512),
	)
	if err != nil {
		return nil, types.WrapError(types.UPSTREAM_FAILED, "entity recognition call failed", err)
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, err
	}
	var spans []Span
	if err := json.Unmarshal([]byte(raw), &spans); err != nil {
		return nil, types.WrapError(types.UPSTREAM_FAILED, "failed to parse recognizer response", err)
	}
	return spans, nil
}
