package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/elokman/health-api/internal/repository"
	"github.com/elokman/health-api/internal/storage"
	"github.com/elokman/health-api/pkg/metrics"
)

// OrphanSweeper removes upload files that no report row references.
type OrphanSweeper struct {
	repo     repository.ReportRepository
	files    *storage.FileStore
	interval time.Duration
	grace    time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewOrphanSweeper(repo repository.ReportRepository, files *storage.FileStore, interval, grace time.Duration, logger zerolog.Logger, m *metrics.Metrics) *OrphanSweeper {
	return &OrphanSweeper{
		repo:     repo,
		files:    files,
		interval: interval,
		grace:    grace,
		logger:   logger.With().Str("worker", "orphan_sweeper").Logger(),
		metrics:  m,
		now:      time.Now,
	}
}

func (w *OrphanSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Dur("grace", w.grace).Msg("starting orphan sweeper")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("shutting down orphan sweeper")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.logger.Error().Err(err).Msg("orphan sweep failed")
			}
		}
	}
}

// Sweep runs one pass and returns how many files were removed. Files
// younger than the grace period are left alone, since an upload writes
// its file before the row exists.
func (w *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	files, err := w.files.List()
	if err != nil {
		return 0, err
	}

	cutoff := w.now().Add(-w.grace)
	removed := 0
	for _, f := range files {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if f.ModTime.After(cutoff) {
			continue
		}
		referenced, err := w.repo.FileReferenced(ctx, f.Name)
		if err != nil {
			return removed, fmt.Errorf("failed to check file %s: %w", f.Name, err)
		}
		if referenced {
			continue
		}
		if err := w.files.Remove(f.Name); err != nil {
			w.logger.Warn().Err(err).Str("file", f.Name).Msg("failed to remove orphan file")
			continue
		}
		removed++
		if w.metrics != nil {
			w.metrics.OrphansRemoved.Inc()
		}
		w.logger.Info().Str("file", f.Name).Msg("removed orphan file")
	}
	return removed, nil
}
