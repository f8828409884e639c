package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

const indexFile = "index.json"

// SnapshotStore keeps one JSON document per submission and an append-only
// metadata index per worker, both under <dir>/<worker>/.
type SnapshotStore struct {
	dir       string
	locks     keyedMutex
	writeFile func(path string, data []byte) error
}

func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir, writeFile: writeFileAtomic}
}

func (s *SnapshotStore) workerDir(worker string) string {
	return filepath.Join(s.dir, worker)
}

func (s *SnapshotStore) loadIndex(worker string) ([]storage.IndexEntry, error) {
	var idx []storage.IndexEntry
	if _, err := readJSON(filepath.Join(s.workerDir(worker), indexFile), &idx); err != nil {
		var perr *parseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
		}
		return nil, err
	}
	return idx, nil
}

func (s *SnapshotStore) writeIndex(worker string, idx []storage.IndexEntry) error {
	data, err := marshalDoc(idx)
	if err != nil {
		return err
	}
	return s.writeFile(filepath.Join(s.workerDir(worker), indexFile), data)
}

// Append writes the snapshot and then records it in the worker's index. If
// the index cannot be written the snapshot file is removed again.
func (s *SnapshotStore) Append(worker string, sub *storage.Submission) (string, error) {
	const op = "storage.filestore.SnapshotStore.Append"

	if err := checkName(worker); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := checkName(sub.ID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.Lock(worker)
	defer unlock()

	idx, err := s.loadIndex(worker)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	for _, e := range idx {
		if e.ID == sub.ID {
			return "", fmt.Errorf("%s: submission %s already exists", op, sub.ID)
		}
	}

	data, err := marshalDoc(sub)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	file := sub.ID + ".json"
	path := filepath.Join(s.workerDir(worker), file)
	if err := s.writeFile(path, data); err != nil {
		return "", fmt.Errorf("%s: writing snapshot: %w", op, err)
	}

	idx = append(idx, storage.IndexEntry{
		ID:         sub.ID,
		WorkerID:   worker,
		TeamID:     sub.TeamID,
		Year:       sub.Year,
		MonthIndex: sub.MonthIndex,
		MonthLabel: sub.MonthLabel,
		SentAt:     sub.SentAt,
		File:       file,
	})
	sort.SliceStable(idx, func(i, j int) bool { return idx[i].SentAt.Before(idx[j].SentAt) })

	if err := s.writeIndex(worker, idx); err != nil {
		if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			return "", fmt.Errorf("%s: writing index: %w (orphan %s not removed: %v)", op, err, file, rerr)
		}
		return "", fmt.Errorf("%s: writing index: %w", op, err)
	}

	return sub.ID, nil
}

// ListIndex returns the worker's submission metadata ordered by sentAt.
func (s *SnapshotStore) ListIndex(worker string) ([]storage.IndexEntry, error) {
	const op = "storage.filestore.SnapshotStore.ListIndex"

	if err := checkName(worker); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idx, err := s.loadIndex(worker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return idx, nil
}

// LatestForMonth returns the index entry with the greatest sentAt for a month.
func LatestForMonth(idx []storage.IndexEntry, year, monthIndex int) (storage.IndexEntry, bool) {
	for i := len(idx) - 1; i >= 0; i-- {
		if idx[i].Year == year && idx[i].MonthIndex == monthIndex {
			return idx[i], true
		}
	}
	return storage.IndexEntry{}, false
}

// LatestPerMonth keeps only the authoritative entry of every month.
func LatestPerMonth(idx []storage.IndexEntry) []storage.IndexEntry {
	type month struct{ y, m int }
	seen := map[month]bool{}
	var out []storage.IndexEntry
	for i := len(idx) - 1; i >= 0; i-- {
		k := month{idx[i].Year, idx[i].MonthIndex}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, idx[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out
}

// LoadLatestForMonth returns storage.ErrNotFound when the month was never transmitted.
func (s *SnapshotStore) LoadLatestForMonth(worker string, year, monthIndex int) (*storage.Submission, error) {
	const op = "storage.filestore.SnapshotStore.LoadLatestForMonth"

	idx, err := s.ListIndex(worker)
	if err != nil {
		return nil, err
	}

	entry, ok := LatestForMonth(idx, year, monthIndex)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return s.loadFile(worker, entry.File)
}

// ListLatest loads the authoritative submission of every month the worker
// transmitted, ordered by sentAt.
func (s *SnapshotStore) ListLatest(worker string) ([]*storage.Submission, error) {
	idx, err := s.ListIndex(worker)
	if err != nil {
		return nil, err
	}

	latest := LatestPerMonth(idx)
	out := make([]*storage.Submission, 0, len(latest))
	for _, e := range latest {
		sub, err := s.loadFile(worker, e.File)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *SnapshotStore) LoadByID(worker, id string) (*storage.Submission, error) {
	const op = "storage.filestore.SnapshotStore.LoadByID"

	idx, err := s.ListIndex(worker)
	if err != nil {
		return nil, err
	}
	for _, e := range idx {
		if e.ID == id {
			return s.loadFile(worker, e.File)
		}
	}
	return nil, fmt.Errorf("%s: %s: %w", op, id, storage.ErrNotFound)
}

func (s *SnapshotStore) loadFile(worker, file string) (*storage.Submission, error) {
	const op = "storage.filestore.SnapshotStore.loadFile"

	var sub storage.Submission
	found, err := readJSON(filepath.Join(s.workerDir(worker), file), &sub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: indexed snapshot %s missing: %w", op, file, storage.ErrCorrupt)
	}
	return &sub, nil
}

// ListWorkers returns every worker that has a snapshot directory.
func (s *SnapshotStore) ListWorkers() ([]string, error) {
	const op = "storage.filestore.SnapshotStore.ListWorkers"

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var workers []string
	for _, e := range entries {
		if e.IsDir() && checkName(e.Name()) == nil {
			workers = append(workers, e.Name())
		}
	}
	sort.Strings(workers)
	return workers, nil
}

// Discard undoes an Append whose follow-up steps failed. It is the only way
// an index entry is ever removed.
func (s *SnapshotStore) Discard(worker, id string) error {
	const op = "storage.filestore.SnapshotStore.Discard"

	if err := checkName(worker); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.Lock(worker)
	defer unlock()

	idx, err := s.loadIndex(worker)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	kept := idx[:0:0]
	file := ""
	for _, e := range idx {
		if e.ID == id {
			file = e.File
			continue
		}
		kept = append(kept, e)
	}
	if file == "" {
		return fmt.Errorf("%s: %s: %w", op, id, storage.ErrNotFound)
	}

	if err := s.writeIndex(worker, kept); err != nil {
		return fmt.Errorf("%s: writing index: %w", op, err)
	}
	if err := os.Remove(filepath.Join(s.workerDir(worker), file)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: removing snapshot: %w", op, err)
	}
	return nil
}
