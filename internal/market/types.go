package market

import (
	"sort"
	"time"
)

// StockRecord is a normalized per-symbol view over the raw feed data.
// Numeric fields are pointers: a nil field means the source did not report
// it, which downstream consumers must treat as absent rather than zero.
// DividendYield and ChangePercent are percentages (3.5 means 3.5%).
type StockRecord struct {
	Symbol           string     `json:"symbol"`
	Name             string     `json:"name,omitempty"`
	Sector           string     `json:"sector,omitempty"`
	Industry         string     `json:"industry,omitempty"`
	CurrentPrice     *float64   `json:"current_price,omitempty"`
	Open             *float64   `json:"open,omitempty"`
	High             *float64   `json:"high,omitempty"`
	Low              *float64   `json:"low,omitempty"`
	Volume           *int64     `json:"volume,omitempty"`
	AvgVolume        *int64     `json:"avg_volume,omitempty"`
	MarketCap        *float64   `json:"market_cap,omitempty"`
	PERatio          *float64   `json:"pe_ratio,omitempty"`
	PBRatio          *float64   `json:"pb_ratio,omitempty"`
	EPS              *float64   `json:"eps,omitempty"`
	DividendYield    *float64   `json:"dividend_yield,omitempty"`
	Beta             *float64   `json:"beta,omitempty"`
	FiftyTwoWeekHigh *float64   `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64   `json:"fifty_two_week_low,omitempty"`
	ChangePercent    *float64   `json:"change_percent,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
}

// MACD carries the three MACD series values for a symbol.
type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Technicals holds computed technical indicators for one symbol. Absent
// indicators stay nil.
type Technicals struct {
	SMA20           *float64 `json:"sma_20,omitempty"`
	SMA50           *float64 `json:"sma_50,omitempty"`
	SMA200          *float64 `json:"sma_200,omitempty"`
	EMA12           *float64 `json:"ema_12,omitempty"`
	EMA26           *float64 `json:"ema_26,omitempty"`
	RSI             *float64 `json:"rsi,omitempty"`
	MACD            *MACD    `json:"macd,omitempty"`
	BollingerUpper  *float64 `json:"bollinger_upper,omitempty"`
	BollingerMiddle *float64 `json:"bollinger_middle,omitempty"`
	BollingerLower  *float64 `json:"bollinger_lower,omitempty"`
	ATR             *float64 `json:"atr,omitempty"`
	StochasticK     *float64 `json:"stochastic_k,omitempty"`
	StochasticD     *float64 `json:"stochastic_d,omitempty"`
}

// NewsItem is one ingested news article. Sentiment is a label
// (positive, negative, neutral); an empty label means unclassified.
type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	Sentiment   string    `json:"sentiment,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// MarketBreadth summarizes advances versus declines across the market.
type MarketBreadth struct {
	Advances            int       `json:"advances"`
	Declines            int       `json:"declines"`
	Unchanged           int       `json:"unchanged"`
	AdvanceDeclineRatio float64   `json:"advance_decline_ratio"`
	Sentiment           string    `json:"market_sentiment"`
	Timestamp           time.Time `json:"timestamp"`
}

// SectorPerformance aggregates one sector's day-level performance.
type SectorPerformance struct {
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

// Snapshot is an immutable point-in-time view of all market data. A
// Snapshot is never mutated after it is published; refresh builds a new
// one and swaps it in.
type Snapshot struct {
	Stocks     map[string]StockRecord
	Technicals map[string]Technicals
	News       []NewsItem
	Breadth    *MarketBreadth
	Sectors    map[string]SectorPerformance
	LoadedAt   time.Time
}

// NewSnapshot returns an empty snapshot with allocated maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Stocks:     make(map[string]StockRecord),
		Technicals: make(map[string]Technicals),
		Sectors:    make(map[string]SectorPerformance),
		LoadedAt:   time.Now(),
	}
}

// Stock returns the record for symbol and whether it exists.
func (s *Snapshot) Stock(symbol string) (StockRecord, bool) {
	rec, ok := s.Stocks[symbol]
	return rec, ok
}

// TechnicalsFor returns the technical indicators for symbol and whether
// any were loaded.
func (s *Snapshot) TechnicalsFor(symbol string) (Technicals, bool) {
	t, ok := s.Technicals[symbol]
	return t, ok
}

// Symbols returns all symbols in the snapshot in sorted order.
func (s *Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.Stocks))
	for sym := range s.Stocks {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Mover pairs a symbol with its day change for overview rankings.
type Mover struct {
	Symbol        string  `json:"symbol"`
	ChangePercent float64 `json:"change"`
}

// TopMovers returns the top n gainers and losers by change percent.
// Symbols without a reported change are skipped.
func (s *Snapshot) TopMovers(n int) (gainers, losers []Mover) {
	for sym, rec := range s.Stocks {
		if rec.ChangePercent == nil {
			continue
		}
		m := Mover{Symbol: sym, ChangePercent: *rec.ChangePercent}
		if m.ChangePercent > 0 {
			gainers = append(gainers, m)
		} else if m.ChangePercent < 0 {
			losers = append(losers, m)
		}
	}
	sort.Slice(gainers, func(i, j int) bool {
		if gainers[i].ChangePercent != gainers[j].ChangePercent {
			return gainers[i].ChangePercent > gainers[j].ChangePercent
		}
		return gainers[i].Symbol < gainers[j].Symbol
	})
	sort.Slice(losers, func(i, j int) bool {
		if losers[i].ChangePercent != losers[j].ChangePercent {
			return losers[i].ChangePercent < losers[j].ChangePercent
		}
		return losers[i].Symbol < losers[j].Symbol
	})
	if len(gainers) > n {
		gainers = gainers[:n]
	}
	if len(losers) > n {
		losers = losers[:n]
	}
	return gainers, losers
}

// Float returns a pointer to v. Convenience for building records in code.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }
