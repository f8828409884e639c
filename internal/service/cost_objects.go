package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusAll      = "all"
)

type CostObjectFilter struct {
	Status string
	Search string
}

type CostObjectSummary struct {
	ID               string  `json:"id"`
	TotalHours       float64 `json:"totalHours"`
	LastActivityDate string  `json:"lastActivityDate"`
	WorkerCount      int     `json:"workerCount"`
	Archived         bool    `json:"archived"`
}

type HoursBucket struct {
	Key   string  `json:"key"`
	Label string  `json:"label,omitempty"`
	Hours float64 `json:"hours"`
}

type CostObjectDetail struct {
	CostObjectSummary
	Operations []HoursBucket        `json:"operations"`
	Workers    []HoursBucket        `json:"workers"`
	Archive    *storage.ArchiveFlag `json:"archive,omitempty"`
}

// CostObjects lists the caller's team totals, most recent activity first.
func (s *LedgerService) CostObjects(ctx context.Context, id storage.Identity, f CostObjectFilter) ([]CostObjectSummary, error) {
	const op = "service.LedgerService.CostObjects"

	if err := requireAdmin(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := f.Status
	if status == "" {
		status = StatusActive
	}
	if status != StatusActive && status != StatusArchived && status != StatusAll {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Problems: []string{fmt.Sprintf("unknown status %q", f.Status)}})
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	idx, flags, err := s.teamTotals(id.TeamID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := []CostObjectSummary{}
	for coID, t := range idx {
		archived := flags[coID].Archived
		if (status == StatusActive && archived) || (status == StatusArchived && !archived) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(coID), search) {
			continue
		}
		out = append(out, summary(coID, t, archived))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActivityDate != out[j].LastActivityDate {
			return out[i].LastActivityDate > out[j].LastActivityDate
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CostObject returns the breakdown of one cost object per operation and per
// worker. Unknown ids wrap storage.ErrNotFound.
func (s *LedgerService) CostObject(ctx context.Context, id storage.Identity, costObjectID string) (CostObjectDetail, error) {
	const op = "service.LedgerService.CostObject"

	if err := requireAdmin(id); err != nil {
		return CostObjectDetail{}, fmt.Errorf("%s: %w", op, err)
	}

	idx, flags, err := s.teamTotals(id.TeamID)
	if err != nil {
		return CostObjectDetail{}, fmt.Errorf("%s: %w", op, err)
	}
	t, ok := idx[costObjectID]
	if !ok {
		return CostObjectDetail{}, fmt.Errorf("%s: %s: %w", op, costObjectID, storage.ErrNotFound)
	}

	d := CostObjectDetail{
		CostObjectSummary: summary(costObjectID, t, flags[costObjectID].Archived),
		Operations:        buckets(t.HoursByOperation, storage.OperationLabels),
		Workers:           buckets(t.HoursByWorker, nil),
	}
	if flag, ok := flags[costObjectID]; ok {
		d.Archive = &flag
	}
	return d, nil
}

// SetArchived hides or shows a cost object in the active list. The totals
// stay in the index either way.
func (s *LedgerService) SetArchived(ctx context.Context, id storage.Identity, costObjectID string, archived bool) (storage.ArchiveFlag, error) {
	const op = "service.LedgerService.SetArchived"

	if err := requireAdmin(id); err != nil {
		return storage.ArchiveFlag{}, fmt.Errorf("%s: %w", op, err)
	}

	idx, err := s.aggregation.Team(id.TeamID)
	if err != nil {
		return storage.ArchiveFlag{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := idx[costObjectID]; !ok {
		return storage.ArchiveFlag{}, fmt.Errorf("%s: %s: %w", op, costObjectID, storage.ErrNotFound)
	}

	flag, err := s.archive.SetArchived(id.TeamID, costObjectID, archived, id.WorkerID)
	if err != nil {
		return storage.ArchiveFlag{}, fmt.Errorf("%s: %w", op, err)
	}
	return flag, nil
}

func (s *LedgerService) teamTotals(team string) (storage.TeamIndex, map[string]storage.ArchiveFlag, error) {
	idx, err := s.aggregation.Team(team)
	if err != nil {
		return nil, nil, err
	}
	flags, err := s.archive.Flags(team)
	if err != nil {
		return nil, nil, err
	}
	return idx, flags, nil
}

func summary(id string, t storage.CostObjectTotals, archived bool) CostObjectSummary {
	return CostObjectSummary{
		ID:               id,
		TotalHours:       t.TotalHours,
		LastActivityDate: t.LastActivityDate,
		WorkerCount:      len(t.HoursByWorker),
		Archived:         archived,
	}
}

// buckets sorts by hours, largest first.
func buckets(m map[string]float64, labels map[string]string) []HoursBucket {
	out := make([]HoursBucket, 0, len(m))
	for k, h := range m {
		out = append(out, HoursBucket{Key: k, Label: labels[k], Hours: h})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Key < out[j].Key
	})
	return out
}
