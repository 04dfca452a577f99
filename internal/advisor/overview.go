package advisor

import (
	"context"
	"sort"
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/market"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// topMoversCount is how many gainers and losers the overview lists.
const topMoversCount = 5

// SectorSummary is one row of the overview's sector table.
type SectorSummary struct {
	Sector        string  `json:"sector"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

// Overview is the market-wide summary.
type Overview struct {
	Breadth     *market.MarketBreadth `json:"breadth,omitempty"`
	TopGainers  []market.Mover        `json:"top_gainers"`
	TopLosers   []market.Mover        `json:"top_losers"`
	Sectors     []SectorSummary       `json:"sectors"`
	StockCount  int                   `json:"stock_count"`
	AsOf        time.Time             `json:"as_of"`
	GeneratedAt time.Time             `json:"generated_at"`
}

/// MarketOverview summarizes the current snapshot: breadth, top movers and
// per-sector performance.
func (a *Advisor) MarketOverview(ctx context.Context) (*Overview, error) {
	snap := a.snapshotFn()
	if snap == nil {
		return nil, types.NewError(types.DATA_MISSING, "market data not loaded")
	}

	gainers, losers := snap.TopMovers(topMoversCount)

	sectors := make([]SectorSummary, 0, len(snap.Sectors))
	for name, perf := range snap.Sectors {
		sectors = append(sectors, SectorSummary{
			Sector:        name,
			ChangePercent: perf.ChangePercent,
			Volume:        perf.Volume,
		})
	}
	sort.Slice(sectors, func(i, j int) bool {
		if sectors[i].ChangePercent != sectors[j].ChangePercent {
			return sectors[i].ChangePercent > sectors[j].ChangePercent
		}
		return sectors[i].Sector < sectors[j].Sector
	})

	return &Overview{
		Breadth:     snap.Breadth,
		TopGainers:  gainers,
		TopLosers:   losers,
		Sectors:     sectors,
		StockCount:  len(snap.Stocks),
		AsOf:        snap.LoadedAt,
		GeneratedAt: a.now(),
	}, nil
}
