package fuse

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/parthkaria14/GenAdvisor/internal/graph"
	"github.com/parthkaria14/GenAdvisor/internal/market"
	"github.com/parthkaria14/GenAdvisor/internal/query"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Generator turns a fused context into a user-facing answer.
type Generator interface {
	// Generate returns the full response text.
	Generate(ctx context.Context, fused Context) (string, error)

	// GenerateStream returns an ordered channel of response chunks. The
	// channel is closed when the response is complete. Single producer.
	GenerateStream(ctx context.Context, fused Context) (<-chan string, error)
}

// LLMGenerator produces answers with a langchaingo chat model, prompting
// it with the fused context. When the context carries no data the prompt
// instructs the model to say so rather than invent figures.
type LLMGenerator struct {
	model       llms.Model
	temperature float64
	maxTokens   int
	fallback    *TemplateGenerator
}

// NewLLMGenerator creates a Generator backed by a chat model.
func NewLLMGenerator(model llms.Model, temperature float64, maxTokens int) *LLMGenerator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &LLMGenerator{
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		fallback:    NewTemplateGenerator(),
	}
}

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, fused Context) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, g.model, buildPrompt(fused),
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		return "", types.WrapError(types.GENERATION_FAILED, "llm generation failed", err)
	}
	return strings.TrimSpace(response), nil
}

// GenerateStream implements Generator. Chunks arrive on the returned
// channel in model order; the channel closes when generation finishes.
// A model failure degrades to the template answer, same as the
// non-streaming path, so the client still receives a usable response.
func (g *LLMGenerator) GenerateStream(ctx context.Context, fused Context) (<-chan string, error) {
	chunks := make(chan string, 16)

	go func() {
		defer close(chunks)
		streamed := false
		_, err := llms.GenerateFromSinglePrompt(ctx, g.model, buildPrompt(fused),
			llms.WithTemperature(g.temperature),
			llms.WithMaxTokens(g.maxTokens),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				select {
				case chunks <- string(chunk):
					streamed = true
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}),
		)
		if err != nil && ctx.Err() == nil {
			response, ferr := g.fallback.Generate(ctx, fused)
			if ferr != nil {
				return
			}
			// The client may already hold partial model output; the
			// break keeps the template answer readable on its own.
			if streamed {
				response = "\n\n" + response
			}
			select {
			case chunks <- response:
			case <-ctx.Done():
			}
		}
	}()

	return chunks, nil
}

// buildPrompt renders the fused context as grounding material for the
// model. The instruction to admit missing data is part of the generation
// contract, not a style preference.
func buildPrompt(fused Context) string {
	var b strings.Builder

	b.WriteString("You are an equity research assistant for Indian markets (NSE/BSE).\n")
	b.WriteString("Answer the question using ONLY the context below. ")
	b.WriteString("If the context does not contain the needed data, say the data is not available. ")
	b.WriteString("Never invent prices, ratios or news.\n\n")

	fmt.Fprintf(&b, "Question (%s): %s\n\n", fused.QueryType, fused.Query)

	if len(fused.GraphResults) > 0 {
		b.WriteString("Market data:\n")
		for _, res := range fused.GraphResults {
			b.WriteString("- ")
			b.WriteString(describeResult(res))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(fused.Documents) > 0 {
		b.WriteString("Background documents:\n")
		for _, doc := range fused.Documents {
			content := doc.Document.Content
			if len(content) > 500 {
				content = content[:500] + "…"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", doc.Document.Metadata.Source, content)
		}
		b.WriteString("\n")
	}

	if len(fused.GraphResults) == 0 && len(fused.Documents) == 0 {
		b.WriteString("No market data or documents are available for this question.\n\n")
	}

	fmt.Fprintf(&b, "Aggregate sentiment: %s (%.2f). Data confidence: %.0f%%.\n",
		sentimentLabel(fused.Sentiment), fused.Sentiment, fused.Confidence*100)

	return b.String()
}

// describeResult flattens one graph result into a prompt line.
func describeResult(res query.Result) string {
	node := res.Node
	if node == nil {
		return res.Key
	}
	switch node.Type {
	case graph.NodeTypeStock:
		return describeStock(node.Key, node.Stock)
	case graph.NodeTypeSector:
		s := node.Sector
		line := fmt.Sprintf("Sector %s: %d stocks", s.Name, s.StockCount)
		if s.ChangePercent != nil {
			line += fmt.Sprintf(", avg change %.2f%%", *s.ChangePercent)
		}
		return line
	case graph.NodeTypeIndicator:
		ind := node.Indicator
		return fmt.Sprintf("Market breadth: %d advances / %d declines, sentiment %s",
			ind.Advances, ind.Declines, orUnknown(ind.Sentiment))
	case graph.NodeTypeNews:
		n := node.News
		return fmt.Sprintf("News (%s, %s): %s", orUnknown(n.Source), orUnknown(n.Sentiment), n.Title)
	default:
		return node.Name()
	}
}

func describeStock(symbol string, s *graph.StockAttrs) string {
	parts := []string{symbol}
	if s.Name != "" {
		parts[0] = fmt.Sprintf("%s (%s)", s.Name, symbol)
	}
	if s.Price != nil {
		parts = append(parts, fmt.Sprintf("price ₹%.2f", *s.Price))
	}
	if s.ChangePercent != nil {
		parts = append(parts, fmt.Sprintf("change %.2f%%", *s.ChangePercent))
	}
	if s.PERatio != nil {
		parts = append(parts, fmt.Sprintf("P/E %.1f", *s.PERatio))
	}
	if s.RSI != nil {
		parts = append(parts, fmt.Sprintf("RSI %.1f", *s.RSI))
	}
	if s.MACDHistogram != nil {
		parts = append(parts, fmt.Sprintf("MACD hist %.3f", *s.MACDHistogram))
	}
	if len(parts) == 1 {
		parts = append(parts, "no price data available")
	}
	return strings.Join(parts, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func sentimentLabel(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}

// TemplateGenerator is the deterministic offline fallback. It renders the
// fused context directly, stating explicitly when data is unavailable.
type TemplateGenerator struct{}

// NewTemplateGenerator creates the offline fallback generator.
func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

// Generate implements Generator.
func (t *TemplateGenerator) Generate(ctx context.Context, fused Context) (string, error) {
	var b strings.Builder

	switch fused.QueryType {
	case query.QueryTypeMarketOverview:
		b.WriteString("Market overview:\n")
	case query.QueryTypePortfolioAdvice:
		b.WriteString("Portfolio context:\n")
	default:
		fmt.Fprintf(&b, "Analysis for %q:\n", fused.Query)
	}

	if len(fused.GraphResults) == 0 && len(fused.Documents) == 0 {
		b.WriteString("The requested data is not available. ")
		b.WriteString("No matching stocks, sectors or news were found for this query.")
		return b.String(), nil
	}

	for _, res := range fused.GraphResults {
		b.WriteString("• ")
		b.WriteString(describeResult(res))
		b.WriteString("\n")
	}

	if len(fused.Documents) > 0 {
		b.WriteString("\nRelevant reading:\n")
		for _, doc := range fused.Documents {
			title := doc.Document.Content
			if len(title) > 120 {
				title = title[:120] + "…"
			}
			fmt.Fprintf(&b, "• %s (%s)\n", market.StripHTML(title), doc.Document.Metadata.Source)
		}
	}

	fmt.Fprintf(&b, "\nOverall sentiment is %s; confidence %.0f%%.",
		sentimentLabel(fused.Sentiment), fused.Confidence*100)

	return b.String(), nil
}

// GenerateStream implements Generator. The template output is produced in
// one piece and delivered as a single chunk.
func (t *TemplateGenerator) GenerateStream(ctx context.Context, fused Context) (<-chan string, error) {
	response, err := t.Generate(ctx, fused)
	if err != nil {
		return nil, err
	}
	chunks := make(chan string, 1)
	chunks <- response
	close(chunks)
	return chunks, nil
}
