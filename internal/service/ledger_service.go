package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/internal/service/overview"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type SnapshotStore interface {
	Append(worker string, sub *storage.Submission) (string, error)
	ListIndex(worker string) ([]storage.IndexEntry, error)
	ListLatest(worker string) ([]*storage.Submission, error)
	LoadLatestForMonth(worker string, year, monthIndex int) (*storage.Submission, error)
	ListWorkers() ([]string, error)
	Discard(worker, id string) error
}

type LockStore interface {
	ListForWorker(worker string) (map[string]storage.WeekLock, error)
	SetLock(worker string, weekYear, week int, locked bool, actor string) (storage.WeekLock, error)
}

type AggregationStore interface {
	Load() (storage.AggregationIndex, error)
	Team(team string) (storage.TeamIndex, error)
	Update(team string, fn func(storage.TeamIndex) (storage.TeamIndex, error)) error
	Replace(idx storage.AggregationIndex) error
}

type ArchiveStore interface {
	Flags(team string) (map[string]storage.ArchiveFlag, error)
	SetArchived(team, costObjectID string, archived bool, actor string) (storage.ArchiveFlag, error)
}

// IndexReplica receives a copy of a team's aggregation index after every
// committed change. Publishing is best effort.
type IndexReplica interface {
	PublishTeam(ctx context.Context, team string, idx storage.TeamIndex) error
}

type Options struct {
	Holidays         []string
	DailyTargetHours float64
	Replica          IndexReplica
}

// LedgerService runs the transmit flow and the read models on top of the
// stores.
type LedgerService struct {
	log         *slog.Logger
	snapshots   SnapshotStore
	locks       LockStore
	aggregation AggregationStore
	archive     ArchiveStore
	replica     IndexReplica

	holidays    map[string]bool
	dailyTarget float64
	now         func() time.Time

	workerMu sync.Mutex
	workers  map[string]*sync.Mutex
}

func NewLedgerService(
	log *slog.Logger,
	snapshots SnapshotStore,
	locks LockStore,
	aggregation AggregationStore,
	archive ArchiveStore,
	opts Options,
) *LedgerService {
	holidays := make(map[string]bool, len(opts.Holidays))
	for _, h := range opts.Holidays {
		holidays[h] = true
	}
	target := opts.DailyTargetHours
	if target <= 0 {
		target = overview.DefaultDailyTarget
	}

	return &LedgerService{
		log:         log,
		snapshots:   snapshots,
		locks:       locks,
		aggregation: aggregation,
		archive:     archive,
		replica:     opts.Replica,
		holidays:    holidays,
		dailyTarget: target,
		now:         time.Now,
		workers:     map[string]*sync.Mutex{},
	}
}

// lockWorker serializes transmits of one worker.
func (s *LedgerService) lockWorker(worker string) func() {
	s.workerMu.Lock()
	m, ok := s.workers[worker]
	if !ok {
		m = &sync.Mutex{}
		s.workers[worker] = m
	}
	s.workerMu.Unlock()

	m.Lock()
	return m.Unlock
}

func (s *LedgerService) publish(ctx context.Context, team string) {
	if s.replica == nil {
		return
	}

	idx, err := s.aggregation.Team(team)
	if err == nil {
		err = s.replica.PublishTeam(ctx, team, idx)
	}
	if err != nil {
		s.log.Warn("replica publish failed", slog.String("team", team), slog.String("error", err.Error()))
	}
}

func requireAdmin(id storage.Identity) error {
	if !id.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// requireTeamMember allows access to another worker only when that worker's
// latest submission was sent for the caller's team.
func (s *LedgerService) requireTeamMember(id storage.Identity, worker string) error {
	if worker == id.WorkerID {
		return nil
	}
	idx, err := s.snapshots.ListIndex(worker)
	if err != nil {
		return err
	}
	if len(idx) == 0 {
		return storage.ErrNotFound
	}
	if idx[len(idx)-1].TeamID != id.TeamID {
		return ErrForbidden
	}
	return nil
}
