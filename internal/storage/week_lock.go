package storage

import "time"

// WeekLock is the admin set freeze of one ISO week of one worker.
type WeekLock struct {
	Locked   bool      `json:"locked"`
	LockedAt time.Time `json:"lockedAt"`
	LockedBy string    `json:"lockedBy"`
}

// LockRegistry is the persisted document: worker -> weekKey -> lock.
type LockRegistry map[string]map[string]WeekLock
