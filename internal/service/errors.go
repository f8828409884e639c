package service

import (
	"errors"
	"strings"
)

var (
	// ErrPersistence means a write failed and the request was rolled back.
	ErrPersistence = errors.New("persistence failure")
	// ErrAggregationInconsistency means a rollback failed as well. The
	// aggregation index has to be rebuilt from the snapshots.
	ErrAggregationInconsistency = errors.New("aggregation index inconsistent, rebuild required")
	ErrForbidden                = errors.New("forbidden")
	// ErrIndexUnreadable means the stored aggregation index cannot be parsed.
	// Rebuild still works since it never reads the old index.
	ErrIndexUnreadable = errors.New("stored aggregation index unreadable")
)

// ValidationError rejects a request before any state is touched.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid payload: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}
