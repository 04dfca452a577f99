package advisor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// maxBatchSize caps one batch-analysis request.
const maxBatchSize = 20

// maxBatchConcurrency bounds how many analyses run at once.
const maxBatchConcurrency = 8

// AnalyzeBatch scores up to 20 symbols concurrently. Output order matches
// input order; per-symbol failures surface as Success:false entries, not
// as an error for the whole batch.
func (a *Advisor) AnalyzeBatch(ctx context.Context, symbols []string) ([]Recommendation, error) {
	if len(symbols) == 0 {
		return nil, types.NewError(types.INVALID_INPUT, "symbols cannot be empty")
	}
	if len(symbols) > maxBatchSize {
		return nil, types.NewErrorf(types.INVALID_INPUT,
			"too many symbols: %d exceeds the batch limit of %d", len(symbols), maxBatchSize)
	}

	results := make([]Recommendation, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchConcurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = a.AnalyzeStock(ctx, symbol)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
