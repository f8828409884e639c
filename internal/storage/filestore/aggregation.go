package filestore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// AggregationStore persists the cost-object index of all teams in one
// document. Updates run under a single mutex and replace the file atomically.
type AggregationStore struct {
	path      string
	mu        sync.Mutex
	writeFile func(path string, data []byte) error
}

func NewAggregationStore(path string) *AggregationStore {
	return &AggregationStore{path: path, writeFile: writeFileAtomic}
}

func (s *AggregationStore) load() (storage.AggregationIndex, error) {
	idx := storage.AggregationIndex{}
	if _, err := readJSON(s.path, &idx); err != nil {
		var perr *parseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
		}
		return nil, err
	}
	if idx == nil {
		idx = storage.AggregationIndex{}
	}
	return idx, nil
}

func (s *AggregationStore) save(idx storage.AggregationIndex) error {
	data, err := marshalDoc(idx)
	if err != nil {
		return err
	}
	return s.writeFile(s.path, data)
}

// Load returns the whole index.
func (s *AggregationStore) Load() (storage.AggregationIndex, error) {
	const op = "storage.filestore.AggregationStore.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return idx, nil
}

// Team returns one team's index, empty when the team has no bookings.
func (s *AggregationStore) Team(team string) (storage.TeamIndex, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	if idx[team] == nil {
		return storage.TeamIndex{}, nil
	}
	return idx[team], nil
}

// Update loads the team's index, hands it to fn and persists the result.
// Nothing is written when fn fails.
func (s *AggregationStore) Update(team string, fn func(storage.TeamIndex) (storage.TeamIndex, error)) error {
	const op = "storage.filestore.AggregationStore.Update"

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current := idx[team]
	if current == nil {
		current = storage.TeamIndex{}
	}

	next, err := fn(current)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(next) == 0 {
		delete(idx, team)
	} else {
		idx[team] = next
	}

	if err := s.save(idx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Replace overwrites the whole index, used by the rebuild tool.
func (s *AggregationStore) Replace(idx storage.AggregationIndex) error {
	const op = "storage.filestore.AggregationStore.Replace"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(idx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
