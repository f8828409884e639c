package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// SetWeekLock locks or unlocks one ISO week of a worker of the admin's team.
func (s *LedgerService) SetWeekLock(ctx context.Context, id storage.Identity, worker string, weekYear, week int, locked bool) (storage.WeekLock, error) {
	const op = "service.LedgerService.SetWeekLock"

	if err := requireAdmin(id); err != nil {
		return storage.WeekLock{}, fmt.Errorf("%s: %w", op, err)
	}
	if worker == "" {
		return storage.WeekLock{}, fmt.Errorf("%s: %w", op, &ValidationError{Problems: []string{"worker is required"}})
	}
	if !validISOWeek(weekYear, week) {
		return storage.WeekLock{}, fmt.Errorf("%s: %w", op, &ValidationError{
			Problems: []string{fmt.Sprintf("%s is not an ISO week", storage.WeekKey(weekYear, week))},
		})
	}

	if err := s.requireTeamMember(id, worker); err != nil {
		return storage.WeekLock{}, fmt.Errorf("%s: %w", op, err)
	}

	lock, err := s.locks.SetLock(worker, weekYear, week, locked, id.WorkerID)
	if err != nil {
		return storage.WeekLock{}, fmt.Errorf("%s: %w", op, err)
	}
	return lock, nil
}

func validISOWeek(weekYear, week int) bool {
	if weekYear < 2000 || weekYear > 2100 || week < 1 || week > 53 {
		return false
	}
	// January 4th is always in week 1.
	jan4 := time.Date(weekYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday())+6)%7)+(week-1)*7)
	y, w := monday.ISOWeek()
	return y == weekYear && w == week
}
