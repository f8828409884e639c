package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

func day(costObject string, option1 float64) storage.DayRecord {
	return storage.DayRecord{
		Entries: []storage.Entry{{CostObjectID: costObject, Hours: map[string]float64{"option1": option1}}},
	}
}

// week 10 of 2025 runs from 2025-03-03 to 2025-03-09
func week10() DateSet {
	return NewDateSet("2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07", "2025-03-08", "2025-03-09")
}

func previous() *storage.Submission {
	return &storage.Submission{
		ID:         "2025-03-1",
		Year:       2025,
		MonthIndex: 2,
		Days: map[string]storage.DayRecord{
			"2025-03-03": day("A-100", 4),
			"2025-03-10": day("A-100", 8),
		},
		Pikett: []storage.PikettEntry{
			{Date: "2025-03-08", CostObjectID: "A-100", Hours: 3},
			{Date: "2025-03-15", CostObjectID: "A-200", Hours: 2},
		},
		Absences: []storage.AbsenceRequest{
			{ID: "abs-1", Type: "ferien", From: "2025-03-05", To: "2025-03-06", Status: storage.AbsenceAccepted},
			{ID: "abs-2", Type: "arzt", From: "2025-03-20", To: "2025-03-20", Status: storage.AbsencePending},
		},
	}
}

func TestMergeLocked_LockedDayKeepsPreviousValue(t *testing.T) {
	next := storage.Payload{
		Year:       2025,
		MonthIndex: 2,
		Days: map[string]storage.DayRecord{
			"2025-03-03": day("A-100", 8),
			"2025-03-10": day("A-100", 6),
		},
	}

	merged, info := MergeLocked(next, previous(), week10())

	require.NotNil(t, info)
	assert.Equal(t, 4.0, merged.Days["2025-03-03"].Entries[0].Hours["option1"], "locked day restored")
	assert.Equal(t, 6.0, merged.Days["2025-03-10"].Entries[0].Hours["option1"], "unlocked day edited")
	assert.Equal(t, []string{"2025-W10"}, info.LockedWeeks)
	assert.Equal(t, 1, info.RestoredDays)

	// the caller's payload is untouched
	assert.Equal(t, 8.0, next.Days["2025-03-03"].Entries[0].Hours["option1"])
}

func TestMergeLocked_NewDayOnLockedDateIsRemoved(t *testing.T) {
	next := storage.Payload{
		Days: map[string]storage.DayRecord{
			"2025-03-04": day("A-300", 2),
		},
	}

	merged, info := MergeLocked(next, previous(), week10())

	assert.NotContains(t, merged.Days, "2025-03-04")
	// the previous day of 2025-03-03 comes back even though the worker dropped it
	assert.Contains(t, merged.Days, "2025-03-03")
	assert.Equal(t, 2, info.RestoredDays)
}

func TestMergeLocked_Pikett(t *testing.T) {
	next := storage.Payload{
		Pikett: []storage.PikettEntry{
			{Date: "2025-03-08", CostObjectID: "A-100", Hours: 10},
			{Date: "2025-03-09", CostObjectID: "A-100", Hours: 1},
			{Date: "2025-03-22", CostObjectID: "A-200", Hours: 5},
		},
	}

	merged, info := MergeLocked(next, previous(), week10())

	require.Len(t, merged.Pikett, 2)
	assert.Equal(t, storage.PikettEntry{Date: "2025-03-08", CostObjectID: "A-100", Hours: 3}, merged.Pikett[0])
	assert.Equal(t, "2025-03-22", merged.Pikett[1].Date)
	assert.Equal(t, 2, info.DroppedPikett)
}

func TestMergeLocked_Absences(t *testing.T) {
	next := storage.Payload{
		Absences: []storage.AbsenceRequest{
			// moved out of the locked week, previous version still wins
			{ID: "abs-1", Type: "ferien", From: "2025-03-24", To: "2025-03-25", Status: storage.AbsenceAccepted},
			// new absence inside the locked week is discarded
			{ID: "abs-3", Type: "arzt", From: "2025-03-07", To: "2025-03-07", Status: storage.AbsencePending},
			// outside locked dates: passes through as sent
			{ID: "abs-2", Type: "arzt", From: "2025-03-21", To: "2025-03-21", Status: storage.AbsenceAccepted},
			{ID: "abs-4", Type: "militaer", From: "2025-03-26", To: "2025-03-28", Status: storage.AbsencePending},
		},
	}

	merged, info := MergeLocked(next, previous(), week10())

	byID := map[string]storage.AbsenceRequest{}
	for _, a := range merged.Absences {
		byID[a.ID] = a
	}
	require.Len(t, byID, 3)
	assert.Equal(t, "2025-03-05", byID["abs-1"].From)
	assert.NotContains(t, byID, "abs-3")
	assert.Equal(t, "2025-03-21", byID["abs-2"].From)
	assert.Equal(t, storage.AbsenceAccepted, byID["abs-2"].Status)
	assert.Contains(t, byID, "abs-4")
	assert.Equal(t, 1, info.RestoredAbsences)
}

func TestMergeLocked_AbsenceSpanningIntoLockedWeek(t *testing.T) {
	next := storage.Payload{
		Absences: []storage.AbsenceRequest{
			{ID: "abs-9", Type: "ferien", From: "2025-02-27", To: "2025-03-04", Status: storage.AbsenceAccepted},
		},
	}

	merged, _ := MergeLocked(next, previous(), week10())

	for _, a := range merged.Absences {
		assert.NotEqual(t, "abs-9", a.ID)
	}
}

func TestMergeLocked_PassThrough(t *testing.T) {
	next := storage.Payload{
		Days: map[string]storage.DayRecord{"2025-03-03": day("A-100", 8)},
	}

	merged, info := MergeLocked(next, nil, week10())
	assert.Nil(t, info, "first submission of a month cannot be frozen")
	assert.Equal(t, next, merged)

	merged, info = MergeLocked(next, previous(), DateSet{})
	assert.Nil(t, info)
	assert.Equal(t, next, merged)
}

func TestDateSet_Overlaps(t *testing.T) {
	s := NewDateSet("2025-03-05")

	assert.True(t, s.Overlaps("2025-03-01", "2025-03-31"))
	assert.True(t, s.Overlaps("2025-03-31", "2025-03-01"), "reversed range")
	assert.True(t, s.Overlaps("2025-03-05", "2025-03-05"))
	assert.False(t, s.Overlaps("2025-03-06", "2025-03-31"))
}
