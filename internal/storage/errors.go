package storage

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrLockStoreCorrupt means the lock registry exists but cannot be parsed.
	// The file has been moved aside and must be repaired by hand.
	ErrLockStoreCorrupt = errors.New("week lock registry is corrupt")
	ErrCorrupt          = errors.New("stored document is corrupt")
)
