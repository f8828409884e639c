package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bigchunguss42069/sketch-time-tool/internal/service/overview"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type WorkerOverview struct {
	WorkerID     string     `json:"workerId"`
	SubmissionID string     `json:"submissionId,omitempty"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
	overview.Overview
}

// Overview returns the week status of one worker's month. Workers may only
// read their own month; admins may read the months of their team.
func (s *LedgerService) Overview(ctx context.Context, id storage.Identity, worker string, year, monthIndex int) (WorkerOverview, error) {
	const op = "service.LedgerService.Overview"

	if worker == "" {
		worker = id.WorkerID
	}
	if worker == "" || (worker != id.WorkerID && !id.IsAdmin) {
		return WorkerOverview{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	if err := checkMonth(year, monthIndex); err != nil {
		return WorkerOverview{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.requireTeamMember(id, worker); err != nil {
		return WorkerOverview{}, fmt.Errorf("%s: %w", op, err)
	}

	ov, err := s.workerOverview(worker, year, monthIndex)
	if err != nil {
		return WorkerOverview{}, fmt.Errorf("%s: %w", op, err)
	}
	return ov, nil
}

// TeamOverview builds the overview of every worker whose latest submission
// belongs to the caller's team.
func (s *LedgerService) TeamOverview(ctx context.Context, id storage.Identity, year, monthIndex int) ([]WorkerOverview, error) {
	const op = "service.LedgerService.TeamOverview"

	if err := requireAdmin(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkMonth(year, monthIndex); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	workers, err := s.teamWorkers(id.TeamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]WorkerOverview, len(workers))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, w := range workers {
		i, w := i, w
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			ov, err := s.workerOverview(w, year, monthIndex)
			if err != nil {
				return fmt.Errorf("worker %s: %w", w, err)
			}
			out[i] = ov
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *LedgerService) workerOverview(worker string, year, monthIndex int) (WorkerOverview, error) {
	sub, err := s.snapshots.LoadLatestForMonth(worker, year, monthIndex)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sub = nil
	case err != nil:
		return WorkerOverview{}, err
	}

	locks, err := s.locks.ListForWorker(worker)
	if err != nil {
		return WorkerOverview{}, err
	}

	ov := WorkerOverview{WorkerID: worker, Overview: overview.BuildOverview(sub, year, monthIndex)}
	if sub != nil {
		ov.SubmissionID = sub.ID
		sentAt := sub.SentAt
		ov.SentAt = &sentAt
	}
	for i := range ov.Weeks {
		if l, ok := locks[ov.Weeks[i].Key]; ok {
			ov.Weeks[i].Lock = &l
		}
	}
	return ov, nil
}

// teamWorkers returns the workers whose most recent submission was sent
// for team.
func (s *LedgerService) teamWorkers(team string) ([]string, error) {
	workers, err := s.snapshots.ListWorkers()
	if err != nil {
		return nil, err
	}

	var out []string
	for _, w := range workers {
		idx, err := s.snapshots.ListIndex(w)
		if err != nil {
			return nil, err
		}
		if n := len(idx); n > 0 && idx[n-1].TeamID == team {
			out = append(out, w)
		}
	}
	return out, nil
}

func checkMonth(year, monthIndex int) error {
	if year < 2000 || year > 2100 || monthIndex < 0 || monthIndex > 11 {
		return &ValidationError{Problems: []string{fmt.Sprintf("invalid month %d/%d", year, monthIndex)}}
	}
	return nil
}
