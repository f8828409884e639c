package storage

import "time"

// CostObjectTotals is one entry of the aggregation index.
type CostObjectTotals struct {
	TotalHours       float64            `json:"totalHours"`
	HoursByOperation map[string]float64 `json:"hoursByOperation"`
	HoursByWorker    map[string]float64 `json:"hoursByWorker"`
	LastActivityDate string             `json:"lastActivityDate"`
}

// TeamIndex maps cost object id to its totals for one team.
type TeamIndex map[string]CostObjectTotals

// AggregationIndex is the persisted document: team -> cost object -> totals.
type AggregationIndex map[string]TeamIndex

// ArchiveFlag marks a cost object as archived for a team.
type ArchiveFlag struct {
	Archived   bool      `json:"archived"`
	ArchivedAt time.Time `json:"archivedAt"`
	ArchivedBy string    `json:"archivedBy"`
}

// ArchiveRegistry is the persisted document: team -> cost object -> flag.
type ArchiveRegistry map[string]map[string]ArchiveFlag
