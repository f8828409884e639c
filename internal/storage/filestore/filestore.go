// Package filestore keeps the ledger state as JSON documents on disk. Every
// document is replaced with a temp-file rename so a crash never leaves a
// partially written file behind.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage bundles the stores of one data directory.
type Storage struct {
	Snapshots   *SnapshotStore
	Locks       *LockStore
	Aggregation *AggregationStore
	Archive     *ArchiveStore
}

func New(dataDir string) (*Storage, error) {
	const op = "storage.filestore.New"

	if err := os.MkdirAll(filepath.Join(dataDir, "submissions"), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		Snapshots:   NewSnapshotStore(filepath.Join(dataDir, "submissions")),
		Locks:       NewLockStore(filepath.Join(dataDir, "week-locks.json")),
		Aggregation: NewAggregationStore(filepath.Join(dataDir, "cost-object-index.json")),
		Archive:     NewArchiveStore(filepath.Join(dataDir, "cost-object-archive.json")),
	}, nil
}
