package filestore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// ArchiveStore persists which cost objects a team has archived.
type ArchiveStore struct {
	path      string
	mu        sync.Mutex
	now       func() time.Time
	writeFile func(path string, data []byte) error
}

func NewArchiveStore(path string) *ArchiveStore {
	return &ArchiveStore{path: path, now: time.Now, writeFile: writeFileAtomic}
}

func (s *ArchiveStore) load() (storage.ArchiveRegistry, error) {
	reg := storage.ArchiveRegistry{}
	if _, err := readJSON(s.path, &reg); err != nil {
		var perr *parseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
		}
		return nil, err
	}
	if reg == nil {
		reg = storage.ArchiveRegistry{}
	}
	return reg, nil
}

// Flags returns the archive flags of a team keyed by cost object id.
func (s *ArchiveStore) Flags(team string) (map[string]storage.ArchiveFlag, error) {
	const op = "storage.filestore.ArchiveStore.Flags"

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make(map[string]storage.ArchiveFlag, len(reg[team]))
	for k, v := range reg[team] {
		out[k] = v
	}
	return out, nil
}

func (s *ArchiveStore) SetArchived(team, costObjectID string, archived bool, actor string) (storage.ArchiveFlag, error) {
	const op = "storage.filestore.ArchiveStore.SetArchived"

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.load()
	if err != nil {
		return storage.ArchiveFlag{}, fmt.Errorf("%s: %w", op, err)
	}

	var flag storage.ArchiveFlag
	if archived {
		flag = storage.ArchiveFlag{Archived: true, ArchivedAt: s.now().UTC(), ArchivedBy: actor}
		if reg[team] == nil {
			reg[team] = map[string]storage.ArchiveFlag{}
		}
		reg[team][costObjectID] = flag
	} else {
		delete(reg[team], costObjectID)
		if len(reg[team]) == 0 {
			delete(reg, team)
		}
	}

	data, err := marshalDoc(reg)
	if err != nil {
		return storage.ArchiveFlag{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writeFile(s.path, data); err != nil {
		return storage.ArchiveFlag{}, fmt.Errorf("%s: %w", op, err)
	}
	return flag, nil
}
