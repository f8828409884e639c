package aggregate

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

func submission(worker, team string, sentAt time.Time, days map[string]storage.DayRecord) *storage.Submission {
	return &storage.Submission{
		ID:         fmt.Sprintf("2025-03-%d", sentAt.UnixMilli()),
		WorkerID:   worker,
		TeamID:     team,
		Year:       2025,
		MonthIndex: 2,
		SentAt:     sentAt,
		Days:       days,
	}
}

func entryDay(costObject string, hours map[string]float64) storage.DayRecord {
	return storage.DayRecord{Entries: []storage.Entry{{CostObjectID: costObject, Hours: hours}}}
}

func TestExtractContributions(t *testing.T) {
	sub := submission("anna", "montage", time.Now(), map[string]storage.DayRecord{
		"2025-03-03": {
			Entries: []storage.Entry{
				{CostObjectID: "A-100", Hours: map[string]float64{"option1": 4, "option3": 1.5}},
				{CostObjectID: " ", Hours: map[string]float64{"option1": 0}},
			},
			SpecialEntries: []storage.SpecialEntry{
				{Type: storage.SpecialTypeRegie, CostObjectID: "A-100", Hours: 1},
				{Type: storage.SpecialTypeFehler, CostObjectID: "B-7", Hours: 0.5},
			},
			DayHours: storage.DayHours{Schulung: 2},
		},
		"2025-03-12": entryDay("A-100", map[string]float64{"option1": 2, "option6": 0}),
	})
	sub.Pikett = []storage.PikettEntry{{Date: "2025-03-15", CostObjectID: "A-100", Hours: 5}}

	got := ExtractContributions(sub)

	require.Len(t, got, 2)
	assert.Equal(t, Contribution{
		Total:        8.5,
		ByOperation:  map[string]float64{"option1": 6, "option3": 1.5, "regie": 1},
		LastActivity: "2025-03-12",
	}, got["A-100"])
	assert.Equal(t, Contribution{
		Total:        0.5,
		ByOperation:  map[string]float64{"fehler": 0.5},
		LastActivity: "2025-03-03",
	}, got["B-7"])

	assert.Nil(t, ExtractContributions(nil))
}

func TestApplyDelta_IdempotentResubmission(t *testing.T) {
	s := submission("anna", "montage", time.Now(), map[string]storage.DayRecord{
		"2025-03-03": entryDay("A-100", map[string]float64{"option1": 4}),
	})
	c := ExtractContributions(s)

	first := ApplyDelta(nil, "anna", c, nil)
	second := ApplyDelta(first, "anna", c, c)

	assert.Equal(t, first, second)
	assert.Equal(t, 4.0, second["A-100"].TotalHours)
}

func TestApplyDelta_Symmetry(t *testing.T) {
	base := ApplyDelta(nil, "beat", map[string]Contribution{
		"A-100": {Total: 0.3, ByOperation: map[string]float64{"option2": 0.3}, LastActivity: "2025-03-20"},
	}, nil)

	s1 := ExtractContributions(submission("anna", "montage", time.Now(), map[string]storage.DayRecord{
		"2025-03-03": entryDay("A-100", map[string]float64{"option1": 0.1, "option2": 0.2}),
		"2025-03-04": entryDay("C-1", map[string]float64{"option4": 7.75}),
	}))
	s2 := ExtractContributions(submission("anna", "montage", time.Now(), map[string]storage.DayRecord{
		"2025-03-03": entryDay("A-100", map[string]float64{"option1": 0.7}),
		"2025-03-05": entryDay("D-9", map[string]float64{"option5": 1.1}),
	}))

	before := ApplyDelta(base, "anna", s1, nil)
	after := ApplyDelta(before, "anna", s2, s1)
	restored := ApplyDelta(after, "anna", s1, s2)

	// C-1 vanished under s2 and reappears, D-9 is gone again
	assert.NotContains(t, after, "C-1")
	assert.Contains(t, after, "D-9")
	assert.Equal(t, 0.7+0.3, after["A-100"].TotalHours)

	assert.Equal(t, before, restored)
}

func TestApplyDelta_SymmetryKeepsLaterActivityDate(t *testing.T) {
	s1 := map[string]Contribution{
		"A-100": {Total: 4, ByOperation: map[string]float64{"option1": 4}, LastActivity: "2025-03-03"},
	}
	s2 := map[string]Contribution{
		"A-100": {Total: 5, ByOperation: map[string]float64{"option1": 5}, LastActivity: "2025-03-20"},
	}

	before := ApplyDelta(nil, "anna", s1, nil)
	restored := ApplyDelta(ApplyDelta(before, "anna", s2, s1), "anna", s1, s2)

	assert.Equal(t, before["A-100"].TotalHours, restored["A-100"].TotalHours)
	assert.Equal(t, before["A-100"].HoursByOperation, restored["A-100"].HoursByOperation)
	assert.Equal(t, before["A-100"].HoursByWorker, restored["A-100"].HoursByWorker)
	assert.Equal(t, "2025-03-03", before["A-100"].LastActivityDate)
	assert.Equal(t, "2025-03-20", restored["A-100"].LastActivityDate)
}

func TestApplyDelta_PrunesZeroBuckets(t *testing.T) {
	idx := ApplyDelta(nil, "anna", map[string]Contribution{
		"A-100": {Total: 4, ByOperation: map[string]float64{"option1": 4}, LastActivity: "2025-03-03"},
	}, nil)
	idx = ApplyDelta(idx, "beat", map[string]Contribution{
		"A-100": {Total: 2, ByOperation: map[string]float64{"option2": 2}, LastActivity: "2025-03-01"},
	}, nil)

	idx = ApplyDelta(idx, "anna", nil, map[string]Contribution{
		"A-100": {Total: 4, ByOperation: map[string]float64{"option1": 4}},
	})

	entry := idx["A-100"]
	assert.Equal(t, 2.0, entry.TotalHours)
	assert.Equal(t, map[string]float64{"option2": 2}, entry.HoursByOperation)
	assert.Equal(t, map[string]float64{"beat": 2}, entry.HoursByWorker)
	assert.Equal(t, "2025-03-03", entry.LastActivityDate, "activity date never moves back")

	idx = ApplyDelta(idx, "beat", nil, map[string]Contribution{
		"A-100": {Total: 2, ByOperation: map[string]float64{"option2": 2}},
	})
	assert.Empty(t, idx)
}

func TestApplyDelta_DoesNotModifyInput(t *testing.T) {
	idx := storage.TeamIndex{"A-100": {
		TotalHours:       1,
		HoursByOperation: map[string]float64{"option1": 1},
		HoursByWorker:    map[string]float64{"anna": 1},
	}}

	_ = ApplyDelta(idx, "anna", map[string]Contribution{"A-100": {Total: 3, ByOperation: map[string]float64{"option1": 3}}}, nil)

	assert.Equal(t, 1.0, idx["A-100"].TotalHours)
	assert.Equal(t, 1.0, idx["A-100"].HoursByOperation["option1"])
}

func TestRebuild_MatchesIncrementalDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	workers := []string{"anna", "beat", "chris"}
	teamOf := map[string]string{"anna": "montage", "beat": "montage", "chris": "service"}
	costObjects := []string{"A-100", "A-200", "B-7", "C-1"}
	ops := []string{"option1", "option2", "option3", "option6"}

	type key struct {
		worker string
		month  int
	}
	latest := map[key]*storage.Submission{}
	incremental := storage.AggregationIndex{}
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		w := workers[rng.Intn(len(workers))]
		month := rng.Intn(2)
		days := map[string]storage.DayRecord{}
		n := rng.Intn(6)
		for d := 0; d < n; d++ {
			date := fmt.Sprintf("2025-%02d-%02d", month+3, rng.Intn(28)+1)
			rec := days[date]
			rec.Entries = append(rec.Entries, storage.Entry{
				CostObjectID: costObjects[rng.Intn(len(costObjects))],
				Hours:        map[string]float64{ops[rng.Intn(len(ops))]: float64(rng.Intn(40)) * 0.25},
			})
			if rng.Intn(4) == 0 {
				rec.SpecialEntries = append(rec.SpecialEntries, storage.SpecialEntry{
					Type:         []string{"regie", "fehler"}[rng.Intn(2)],
					CostObjectID: costObjects[rng.Intn(len(costObjects))],
					Hours:        0.1 * float64(rng.Intn(30)),
				})
			}
			days[date] = rec
		}

		sub := submission(w, teamOf[w], t0.Add(time.Duration(i)*time.Minute), days)
		sub.MonthIndex = month + 2
		k := key{w, month}

		team := sub.TeamID
		incremental[team] = ApplyDelta(incremental[team], w, ExtractContributions(sub), ExtractContributions(latest[k]))
		if len(incremental[team]) == 0 {
			delete(incremental, team)
		}
		latest[k] = sub
	}

	var subs []*storage.Submission
	for _, s := range latest {
		subs = append(subs, s)
	}
	rebuilt := Rebuild(subs)

	assert.Empty(t, Diff(incremental, rebuilt))

	for team := range incremental {
		for id := range incremental[team] {
			stripActivity(incremental[team], id)
		}
	}
	for team := range rebuilt {
		for id := range rebuilt[team] {
			stripActivity(rebuilt[team], id)
		}
	}
	assert.Equal(t, rebuilt, incremental)
}

func TestDiff(t *testing.T) {
	stored := storage.AggregationIndex{"montage": {
		"A-100": {TotalHours: 4, HoursByOperation: map[string]float64{"option1": 4}, HoursByWorker: map[string]float64{"anna": 4}, LastActivityDate: "2025-03-01"},
		"B-7":   {TotalHours: 1, HoursByOperation: map[string]float64{"regie": 1}, HoursByWorker: map[string]float64{"anna": 1}},
	}}
	rebuilt := storage.AggregationIndex{"montage": {
		"A-100": {TotalHours: 5, HoursByOperation: map[string]float64{"option1": 5}, HoursByWorker: map[string]float64{"anna": 5}, LastActivityDate: "2025-03-04"},
	}}

	got := Diff(stored, rebuilt)

	fields := map[string]bool{}
	for _, m := range got {
		fields[m.CostObjectID+" "+m.Field] = true
	}
	assert.True(t, fields["A-100 totalHours"])
	assert.True(t, fields["A-100 hoursByOperation.option1"])
	assert.True(t, fields["A-100 hoursByWorker.anna"])
	assert.True(t, fields["A-100 lastActivityDate"])
	assert.True(t, fields["B-7 presence"])
	assert.Len(t, got, 5)
}

func stripActivity(idx storage.TeamIndex, id string) {
	if e, ok := idx[id]; ok {
		e.LastActivityDate = ""
		idx[id] = e
	}
}
