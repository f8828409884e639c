package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bigchunguss42069/sketch-time-tool/internal/service/aggregate"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// Rebuild recomputes the aggregation index from the latest snapshot of every
// worker and month. With dryRun the stored index is left alone.
func (s *LedgerService) Rebuild(ctx context.Context, dryRun bool) (storage.AggregationIndex, error) {
	const op = "service.LedgerService.Rebuild"

	subs, err := s.latestSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idx := aggregate.Rebuild(subs)
	if dryRun {
		return idx, nil
	}

	if err := s.aggregation.Replace(idx); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	for team := range idx {
		s.publish(ctx, team)
	}

	s.log.Info("aggregation index rebuilt", slog.Int("submissions", len(subs)), slog.Int("teams", len(idx)))
	return idx, nil
}

// Verify compares the stored aggregation index with a fresh rebuild. A stored
// index that cannot be parsed is reported as ErrIndexUnreadable.
func (s *LedgerService) Verify(ctx context.Context) ([]aggregate.Mismatch, error) {
	const op = "service.LedgerService.Verify"

	rebuilt, err := s.Rebuild(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stored, err := s.aggregation.Load()
	if errors.Is(err, storage.ErrCorrupt) {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrIndexUnreadable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return aggregate.Diff(stored, rebuilt), nil
}

func (s *LedgerService) latestSubmissions(ctx context.Context) ([]*storage.Submission, error) {
	workers, err := s.snapshots.ListWorkers()
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out []*storage.Submission
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, w := range workers {
		w := w
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			subs, err := s.snapshots.ListLatest(w)
			if err != nil {
				return fmt.Errorf("worker %s: %w", w, err)
			}
			mu.Lock()
			out = append(out, subs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
