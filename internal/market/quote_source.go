package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// QuoteSourceConfig tunes the live quote fetcher.
type QuoteSourceConfig struct {
	// Symbols to fetch. When empty the source fetches quotes for every
	// symbol already present in the snapshot (layered after FileSource).
	Symbols []string

	// RateLimit caps requests per second to the quote provider.
	RateLimit float64
	Burst     int

	// Parallelism bounds concurrent fetches.
	Parallelism int
}

// QuoteSource overlays live quote data onto a snapshot using the Yahoo
// Finance quote endpoint. Per-symbol failures are logged and skipped so a
// flaky provider degrades the snapshot instead of failing the refresh.
type QuoteSource struct {
	cfg     QuoteSourceConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewQuoteSource creates a QuoteSource.
func NewQuoteSource(cfg QuoteSourceConfig, logger *slog.Logger) *QuoteSource {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return &QuoteSource{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:  logger,
	}
}

// Name implements Source.
func (q *QuoteSource) Name() string { return "quote" }

// Apply implements Source.
func (q *QuoteSource) Apply(ctx context.Context, snap *Snapshot) error {
	symbols := q.cfg.Symbols
	if len(symbols) == 0 {
		symbols = snap.Symbols()
	}
	if len(symbols) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		fetched int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.cfg.Parallelism)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			if err := q.limiter.Wait(gctx); err != nil {
				return err
			}

			result, err := equity.Get(symbol)
			if err != nil || result == nil {
				q.logger.Warn("quote fetch failed, keeping feed values", "symbol", symbol, "error", err)
				return nil
			}

			mu.Lock()
			rec := snap.Stocks[symbol]
			rec.Symbol = symbol
			if rec.Name == "" {
				rec.Name = result.ShortName
			}
			applyQuote(&rec, result)
			snap.Stocks[symbol] = rec
			fetched++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.WrapError(types.DATA_LOAD_FAILED, "quote fetch cancelled", err)
	}

	q.logger.Debug("live quotes applied", "requested", len(symbols), "fetched", fetched)
	return nil
}

// applyQuote copies the equity fields the pipeline consumes onto rec.
// The valuation ratios (market cap, PE, PB, EPS, dividend yield) live on
// the equity payload, not the bare quote. Zero values from the provider
// are treated as absent.
func applyQuote(rec *StockRecord, result *finance.Equity) {
	now := time.Now()
	rec.Timestamp = &now

	if result.RegularMarketPrice > 0 {
		rec.CurrentPrice = Float(result.RegularMarketPrice)
	}
	if result.RegularMarketOpen > 0 {
		rec.Open = Float(result.RegularMarketOpen)
	}
	if result.RegularMarketDayHigh > 0 {
		rec.High = Float(result.RegularMarketDayHigh)
	}
	if result.RegularMarketDayLow > 0 {
		rec.Low = Float(result.RegularMarketDayLow)
	}
	if result.RegularMarketVolume > 0 {
		rec.Volume = Int(int64(result.RegularMarketVolume))
	}
	if result.AverageDailyVolume3Month > 0 {
		rec.AvgVolume = Int(int64(result.AverageDailyVolume3Month))
	}
	if result.MarketCap > 0 {
		rec.MarketCap = Float(float64(result.MarketCap))
	}
	if result.ForwardPE > 0 {
		rec.PERatio = Float(result.ForwardPE)
	}
	if result.PriceToBook > 0 {
		rec.PBRatio = Float(result.PriceToBook)
	}
	if result.EpsTrailingTwelveMonths != 0 {
		rec.EPS = Float(result.EpsTrailingTwelveMonths)
	}
	if result.TrailingAnnualDividendYield > 0 {
		// Yahoo reports the yield as a fraction; the record stores percent.
		rec.DividendYield = Float(result.TrailingAnnualDividendYield * 100)
	}
	if result.FiftyTwoWeekHigh > 0 {
		rec.FiftyTwoWeekHigh = Float(result.FiftyTwoWeekHigh)
	}
	if result.FiftyTwoWeekLow > 0 {
		rec.FiftyTwoWeekLow = Float(result.FiftyTwoWeekLow)
	}
	rec.ChangePercent = Float(result.RegularMarketChangePercent)
}
