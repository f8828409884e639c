package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// LockStore persists the week lock registry as a single JSON document.
type LockStore struct {
	path      string
	mu        sync.Mutex
	now       func() time.Time
	writeFile func(path string, data []byte) error
}

func NewLockStore(path string) *LockStore {
	return &LockStore{
		path:      path,
		now:       time.Now,
		writeFile: writeFileAtomic,
	}
}

// load reads the registry. A registry that exists but does not parse is
// renamed aside and reported as storage.ErrLockStoreCorrupt; it is never
// treated as empty.
func (s *LockStore) load() (storage.LockRegistry, error) {
	const op = "storage.filestore.LockStore.load"

	reg := storage.LockRegistry{}
	found, err := readJSON(s.path, &reg)
	if err != nil {
		var perr *parseError
		if errors.As(err, &perr) {
			aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().UnixNano())
			if rerr := os.Rename(s.path, aside); rerr != nil {
				return nil, fmt.Errorf("%s: %w: %v (quarantine failed: %v)", op, storage.ErrLockStoreCorrupt, err, rerr)
			}
			return nil, fmt.Errorf("%s: %w: %v (moved to %s)", op, storage.ErrLockStoreCorrupt, err, filepath.Base(aside))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !found {
		// A quarantined registry without a repaired replacement still blocks.
		quarantined, gerr := filepath.Glob(s.path + ".corrupt-*")
		if gerr != nil {
			return nil, fmt.Errorf("%s: %w", op, gerr)
		}
		if len(quarantined) > 0 {
			return nil, fmt.Errorf("%s: %w: registry missing, %d quarantined copies pending repair", op, storage.ErrLockStoreCorrupt, len(quarantined))
		}
	}

	if reg == nil {
		reg = storage.LockRegistry{}
	}
	return reg, nil
}

func (s *LockStore) IsLocked(worker string, weekYear, week int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.load()
	if err != nil {
		return false, err
	}
	return reg[worker][storage.WeekKey(weekYear, week)].Locked, nil
}

// ListForWorker returns all locked weeks of a worker keyed by week key.
func (s *LockStore) ListForWorker(worker string) (map[string]storage.WeekLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make(map[string]storage.WeekLock, len(reg[worker]))
	for k, v := range reg[worker] {
		if v.Locked {
			out[k] = v
		}
	}
	return out, nil
}

// SetLock locks or unlocks one ISO week. Unlocking removes the entry.
func (s *LockStore) SetLock(worker string, weekYear, week int, locked bool, actor string) (storage.WeekLock, error) {
	const op = "storage.filestore.LockStore.SetLock"

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.load()
	if err != nil {
		return storage.WeekLock{}, err
	}

	key := storage.WeekKey(weekYear, week)
	var meta storage.WeekLock

	if locked {
		meta = storage.WeekLock{Locked: true, LockedAt: s.now().UTC(), LockedBy: actor}
		if reg[worker] == nil {
			reg[worker] = map[string]storage.WeekLock{}
		}
		reg[worker][key] = meta
	} else {
		delete(reg[worker], key)
		if len(reg[worker]) == 0 {
			delete(reg, worker)
		}
	}

	data, err := marshalDoc(reg)
	if err != nil {
		return storage.WeekLock{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writeFile(s.path, data); err != nil {
		return storage.WeekLock{}, fmt.Errorf("%s: %w", op, err)
	}

	return meta, nil
}
