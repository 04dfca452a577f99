package market

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Source contributes data to a snapshot under construction. Sources are
// applied in order; a failing source is logged and skipped so a refresh
// always produces the best snapshot the remaining sources allow.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Apply loads the source's data into snap. Apply may only touch the
	// snapshot it is given; it must not retain a reference past return.
	Apply(ctx context.Context, snap *Snapshot) error
}

// Store owns the current market snapshot. Refresh builds a fresh snapshot
// from the configured sources and publishes it atomically; readers always
// see a complete snapshot, never a partially loaded one.
type Store struct {
	sources []Source
	logger  *slog.Logger
	current atomic.Pointer[Snapshot]
}

// NewStore creates a Store over the given sources. The store starts with
// an empty snapshot; call Refresh to load data.
func NewStore(logger *slog.Logger, sources ...Source) *Store {
	s := &Store{
		sources: sources,
		logger:  logger,
	}
	s.current.Store(NewSnapshot())
	return s
}

// Snapshot returns the current published snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Refresh builds a new snapshot from all sources and publishes it. Source
// failures are logged and skipped; Refresh errors only when every source
// failed and nothing was loaded.
func (s *Store) Refresh(ctx context.Context) error {
	snap := NewSnapshot()

	applied := 0
	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := src.Apply(ctx, snap); err != nil {
			s.logger.Warn("market source failed, continuing with remaining sources",
				"source", src.Name(), "error", err)
			continue
		}
		applied++
	}

	if applied == 0 && len(s.sources) > 0 {
		return types.NewError(types.DATA_LOAD_FAILED, "all market sources failed")
	}

	snap.LoadedAt = time.Now()
	s.current.Store(snap)
	s.logger.Info("market snapshot refreshed",
		"stocks", len(snap.Stocks),
		"news", len(snap.News),
		"sectors", len(snap.Sectors),
		"sources_applied", applied)
	return nil
}

// Health reports whether the store holds usable data.
func (s *Store) Health(ctx context.Context) types.HealthStatus {
	snap := s.Snapshot()
	if len(snap.Stocks) == 0 {
		return types.Degraded("no stock records loaded")
	}
	return types.Healthy("market store operational")
}
