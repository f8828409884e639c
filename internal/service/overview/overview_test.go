package overview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

func workedDay(h float64) storage.DayRecord {
	return storage.DayRecord{Entries: []storage.Entry{{CostObjectID: "A-100", Hours: map[string]float64{storage.OpMontage: h}}}}
}

func findDay(t *testing.T, ov Overview, date string) Day {
	t.Helper()
	for _, w := range ov.Weeks {
		for _, d := range w.Days {
			if d.Date == date {
				return d
			}
		}
	}
	t.Fatalf("day %s not in overview", date)
	return Day{}
}

func findWeek(t *testing.T, ov Overview, key string) Week {
	t.Helper()
	for _, w := range ov.Weeks {
		if w.Key == key {
			return w
		}
	}
	t.Fatalf("week %s not in overview", key)
	return Week{}
}

func TestBuildOverview_WeekClassification(t *testing.T) {
	sub := &storage.Submission{Year: 2025, MonthIndex: 2, Days: map[string]storage.DayRecord{}}
	first, last := storage.MonthBounds(2025, 2)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := storage.FormatDate(d)
		if isoWeekday(d) <= 5 && date != "2025-03-10" {
			sub.Days[date] = workedDay(8)
		}
	}

	ov := BuildOverview(sub, 2025, 2)

	for _, w := range ov.Weeks {
		for _, d := range w.Days {
			if d.Date == "2025-03-10" {
				assert.Equal(t, StatusMissing, d.Status)
				continue
			}
			assert.Equal(t, StatusOK, d.Status, d.Date)
		}
	}

	w11 := findWeek(t, ov, "2025-W11")
	assert.Equal(t, 5, w11.WorkdayCount)
	assert.Equal(t, 1, w11.MissingCount)
	assert.Equal(t, 32.0, w11.TotalHours)
	assert.Equal(t, 160.0, ov.MonthTotalHours)

	keys := make([]string, 0, len(ov.Weeks))
	for _, w := range ov.Weeks {
		keys = append(keys, w.Key)
	}
	assert.Equal(t, []string{"2025-W9", "2025-W10", "2025-W11", "2025-W12", "2025-W13", "2025-W14"}, keys)

	w9 := findWeek(t, ov, "2025-W9")
	assert.Equal(t, 0, w9.WorkdayCount)
	assert.Empty(t, w9.Days)
	assert.Equal(t, "2025-03-01", w9.MinDate)
	assert.Equal(t, "2025-03-02", w9.MaxDate)
}

func TestBuildOverview_AbsencePrecedence(t *testing.T) {
	sub := &storage.Submission{
		Days: map[string]storage.DayRecord{
			"2025-03-05": {Flags: storage.DayFlags{Ferien: true}},
			"2025-03-06": workedDay(8),
		},
		Absences: []storage.AbsenceRequest{
			{ID: "a1", Type: "ferien", From: "2025-03-04", To: "2025-03-06", Status: storage.AbsenceAccepted},
			{ID: "a2", Type: "ferien", From: "2025-03-12", To: "2025-03-12", Status: storage.AbsencePending},
		},
	}

	ov := BuildOverview(sub, 2025, 2)

	assert.Equal(t, StatusAbsence, findDay(t, ov, "2025-03-04").Status)
	assert.Equal(t, StatusFerien, findDay(t, ov, "2025-03-05").Status)
	assert.Equal(t, StatusAbsence, findDay(t, ov, "2025-03-06").Status, "accepted absence wins over hours")
	assert.Equal(t, StatusMissing, findDay(t, ov, "2025-03-12").Status, "pending absences do not count")
}

func TestBuildOverview_WeekendPikettCountsInWeekTotal(t *testing.T) {
	sub := &storage.Submission{
		Days: map[string]storage.DayRecord{"2025-03-03": workedDay(8)},
		Pikett: []storage.PikettEntry{
			{Date: "2025-03-08", CostObjectID: "A-100", Hours: 3},
			{Date: "2025-03-08", CostObjectID: "B-7", Hours: 2},
			{Date: "2025-03-04", CostObjectID: "A-100", Hours: 1.5},
		},
	}

	ov := BuildOverview(sub, 2025, 2)

	w10 := findWeek(t, ov, "2025-W10")
	assert.Len(t, w10.Days, 5)
	assert.Equal(t, 4, w10.MissingCount)
	assert.Equal(t, 8+1.5+5.0, w10.TotalHours)

	tue := findDay(t, ov, "2025-03-04")
	assert.Equal(t, StatusOK, tue.Status)
	assert.Equal(t, 1.5, tue.PikettHours)
	assert.Equal(t, 14.5, ov.MonthTotalHours)
}

func TestBuildOverview_ISOYearBoundaries(t *testing.T) {
	ov := BuildOverview(nil, 2024, 11)

	require.NotEmpty(t, ov.Weeks)
	first, last := ov.Weeks[0], ov.Weeks[len(ov.Weeks)-1]
	assert.Equal(t, "2024-W48", first.Key)
	assert.Equal(t, 0, first.WorkdayCount)
	assert.Equal(t, "2025-W1", last.Key)
	assert.Equal(t, "2024-12-30", last.MinDate)
	assert.Equal(t, "2024-12-31", last.MaxDate)
	assert.Equal(t, 2, last.WorkdayCount)
	assert.Equal(t, 2, last.MissingCount)

	jan := BuildOverview(nil, 2021, 0)
	assert.Equal(t, 2020, jan.Weeks[0].WeekYear)
	assert.Equal(t, 53, jan.Weeks[0].Week)
	assert.Equal(t, "2021-W1", jan.Weeks[1].Key)
}

func TestComputeTotals(t *testing.T) {
	days := map[string]storage.DayRecord{
		"2025-03-03": {
			Entries:  []storage.Entry{{CostObjectID: "A-100", Hours: map[string]float64{storage.OpMontage: 9}}},
			DayHours: storage.DayHours{Schulung: 1},
		},
		"2025-03-04": {Flags: storage.DayFlags{Ferien: true}},
		"2025-03-05": {Flags: storage.DayFlags{Ferien: true}, Entries: workedDay(4).Entries},
		"2025-03-06": {Flags: storage.DayFlags{Ferien: true}, Entries: workedDay(10).Entries},
		"2025-03-07": {SpecialEntries: []storage.SpecialEntry{{Type: storage.SpecialTypeRegie, CostObjectID: "A-100", Hours: 6}}},
		"2025-03-08": {Flags: storage.DayFlags{Ferien: true}},
		"2025-03-10": {Flags: storage.DayFlags{Ferien: true}},
		"2025-03-11": {},
	}
	pikett := []storage.PikettEntry{
		{Date: "2025-03-08", Hours: 3},
		{Date: "2025-03-09", Hours: 2, IsOvertime3: true},
	}

	got := ComputeTotals(days, pikett, map[string]bool{"2025-03-10": true}, 0)

	assert.Equal(t, storage.MonthTotals{
		CostObjectHours:  29,
		DayHours:         1,
		PikettHours:      3,
		Overtime3Hours:   2,
		TotalHours:       35,
		Overtime1Hours:   2,
		VacationDaysUsed: 1.5,
	}, got)
}
