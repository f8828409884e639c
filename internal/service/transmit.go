package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/internal/service/aggregate"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service/merge"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service/overview"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// maxAbsenceSpan bounds how far an absence range is walked when looking for
// locked weeks.
const maxAbsenceSpan = 366

type TransmitResult struct {
	SubmissionID string              `json:"submissionId"`
	SentAt       time.Time           `json:"sentAt"`
	Totals       storage.MonthTotals `json:"totals"`
	LockInfo     *storage.LockInfo   `json:"lockInfo,omitempty"`
}

// Transmit stores a new snapshot of the caller's month. Locked weeks keep the
// values of the previous snapshot. The snapshot and the aggregation index
// change together or not at all.
func (s *LedgerService) Transmit(ctx context.Context, id storage.Identity, p storage.Payload) (TransmitResult, error) {
	const op = "service.LedgerService.Transmit"

	if id.WorkerID == "" || id.TeamID == "" {
		return TransmitResult{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	payload, err := ValidatePayload(p)
	if err != nil {
		return TransmitResult{}, fmt.Errorf("%s: %w", op, err)
	}

	worker := id.WorkerID
	unlock := s.lockWorker(worker)
	defer unlock()

	idx, err := s.snapshots.ListIndex(worker)
	if err != nil {
		return TransmitResult{}, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	prev, err := s.snapshots.LoadLatestForMonth(worker, payload.Year, payload.MonthIndex)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		prev = nil
	case err != nil:
		return TransmitResult{}, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	locked, err := s.lockedDates(worker, payload, prev)
	if err != nil {
		if errors.Is(err, storage.ErrLockStoreCorrupt) {
			return TransmitResult{}, fmt.Errorf("%s: %w", op, err)
		}
		return TransmitResult{}, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	merged, info := merge.MergeLocked(payload, prev, locked)

	sentAt := s.nextSentAt(idx)
	sub := &storage.Submission{
		ID:         fmt.Sprintf("%04d-%02d-%d", merged.Year, merged.MonthIndex+1, sentAt.UnixMilli()),
		WorkerID:   worker,
		TeamID:     id.TeamID,
		Year:       merged.Year,
		MonthIndex: merged.MonthIndex,
		MonthLabel: merged.MonthLabel,
		SentAt:     sentAt,
		Days:       merged.Days,
		Pikett:     merged.Pikett,
		Absences:   merged.Absences,
		Totals:     overview.ComputeTotals(merged.Days, merged.Pikett, s.holidays, s.dailyTarget),
		LockInfo:   info,
	}

	if _, err := s.snapshots.Append(worker, sub); err != nil {
		return TransmitResult{}, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	teams, err := s.applyContributions(worker, sub, prev)
	if err != nil {
		if derr := s.snapshots.Discard(worker, sub.ID); derr != nil {
			s.log.Error("rollback of snapshot failed",
				slog.String("op", op),
				slog.String("worker", worker),
				slog.String("submission", sub.ID),
				slog.String("error", derr.Error()),
			)
			return TransmitResult{}, fmt.Errorf("%s: %w: %w", op, ErrAggregationInconsistency, err)
		}
		return TransmitResult{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, team := range teams {
		s.publish(ctx, team)
	}

	s.log.Info("month transmitted",
		slog.String("worker", worker),
		slog.String("team", id.TeamID),
		slog.String("submission", sub.ID),
		slog.Bool("locked", info != nil),
	)

	return TransmitResult{SubmissionID: sub.ID, SentAt: sentAt, Totals: sub.Totals, LockInfo: info}, nil
}

// applyContributions moves the worker's bookings of the month from prev to
// sub in the aggregation index and returns the teams it touched. When the
// worker changed teams the old team's share is removed first; a failure on
// the new team puts it back.
func (s *LedgerService) applyContributions(worker string, sub, prev *storage.Submission) ([]string, error) {
	next := aggregate.ExtractContributions(sub)
	old := aggregate.ExtractContributions(prev)

	if prev == nil || prev.TeamID == "" || prev.TeamID == sub.TeamID {
		if err := s.updateTeam(sub.TeamID, worker, next, old); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return []string{sub.TeamID}, nil
	}

	if err := s.updateTeam(prev.TeamID, worker, nil, old); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.updateTeam(sub.TeamID, worker, next, nil); err != nil {
		if rerr := s.updateTeam(prev.TeamID, worker, old, nil); rerr != nil {
			return nil, fmt.Errorf("%w: %w (restoring team %s: %v)", ErrAggregationInconsistency, err, prev.TeamID, rerr)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return []string{prev.TeamID, sub.TeamID}, nil
}

func (s *LedgerService) updateTeam(team, worker string, next, prev map[string]aggregate.Contribution) error {
	return s.aggregation.Update(team, func(idx storage.TeamIndex) (storage.TeamIndex, error) {
		return aggregate.ApplyDelta(idx, worker, next, prev), nil
	})
}

// nextSentAt returns now, moved past the worker's latest sentAt if the clock
// did not advance.
func (s *LedgerService) nextSentAt(idx []storage.IndexEntry) time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if n := len(idx); n > 0 && !now.After(idx[n-1].SentAt) {
		now = idx[n-1].SentAt.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return now
}

// lockedDates collects every date touched by the month, its pikett entries or
// its absences, old and new, that lies in a locked week of the worker.
func (s *LedgerService) lockedDates(worker string, p storage.Payload, prev *storage.Submission) (merge.DateSet, error) {
	weeks, err := s.locks.ListForWorker(worker)
	if err != nil {
		return nil, err
	}

	set := merge.DateSet{}
	if len(weeks) == 0 {
		return set, nil
	}

	check := func(t time.Time) {
		if _, ok := weeks[storage.WeekKeyOf(t)]; ok {
			set[storage.FormatDate(t)] = true
		}
	}
	checkKey := func(date string) {
		if t, err := storage.ParseDate(date); err == nil {
			check(t)
		}
	}
	checkRange := func(from, to string) {
		start, err := storage.ParseDate(from)
		if err != nil {
			return
		}
		end, err := storage.ParseDate(to)
		if err != nil {
			end = start
		}
		if end.Before(start) {
			start, end = end, start
		}
		for d, n := start, 0; !d.After(end) && n < maxAbsenceSpan; d, n = d.AddDate(0, 0, 1), n+1 {
			check(d)
		}
	}

	first, last := storage.MonthBounds(p.Year, p.MonthIndex)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		check(d)
	}

	absences := p.Absences
	pikett := p.Pikett
	if prev != nil {
		for date := range prev.Days {
			checkKey(date)
		}
		absences = append(append([]storage.AbsenceRequest(nil), absences...), prev.Absences...)
		pikett = append(append([]storage.PikettEntry(nil), pikett...), prev.Pikett...)
	}
	for _, pk := range pikett {
		checkKey(pk.Date)
	}
	for _, a := range absences {
		checkRange(a.From, a.To)
	}

	return set, nil
}
