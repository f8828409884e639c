package overview

import (
	"github.com/shopspring/decimal"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// DefaultDailyTarget is the number of hours a regular workday is worth.
const DefaultDailyTarget = 8.0

// ComputeTotals sums the hour buckets of a month.
//
// Overtime 1 is the net of every non-empty day against the daily target. A
// vacation day with fewer hours than the target counts as zero; with more, the
// surplus still becomes overtime. Vacation usage is 1 day for a flagged weekday
// without hours, 0.5 below the target and 0 from the target on. Holidays never
// use vacation.
func ComputeTotals(days map[string]storage.DayRecord, pikett []storage.PikettEntry, holidays map[string]bool, dailyTarget float64) storage.MonthTotals {
	if dailyTarget <= 0 {
		dailyTarget = DefaultDailyTarget
	}
	target := hours(dailyTarget)

	var costObject, dayHours, pk, ot3, ot1, vacation decimal.Decimal
	half := decimal.NewFromFloat(0.5)

	for date, d := range days {
		co := hours(d.CostObjectHours())
		dh := hours(d.DayHours.Sum())
		costObject = costObject.Add(co)
		dayHours = dayHours.Add(dh)

		worked := co.Add(dh)
		hasHours := worked.IsPositive()
		hasFlag := d.Flags.Ferien || d.Flags.Schmutzzulage || d.Flags.Nebenauslagen
		if !hasHours && !hasFlag {
			continue
		}

		switch {
		case d.Flags.Ferien && worked.GreaterThanOrEqual(target):
			ot1 = ot1.Add(worked.Sub(target))
		case d.Flags.Ferien:
		case hasHours:
			ot1 = ot1.Add(worked.Sub(target))
		}

		if !d.Flags.Ferien || holidays[date] {
			continue
		}
		t, err := storage.ParseDate(date)
		if err != nil || isoWeekday(t) > 5 {
			continue
		}
		switch {
		case !hasHours:
			vacation = vacation.Add(decimal.NewFromInt(1))
		case worked.LessThan(target):
			vacation = vacation.Add(half)
		}
	}

	for _, p := range pikett {
		if p.IsOvertime3 {
			ot3 = ot3.Add(hours(p.Hours))
			continue
		}
		pk = pk.Add(hours(p.Hours))
	}

	return storage.MonthTotals{
		CostObjectHours:  toFloat(costObject),
		DayHours:         toFloat(dayHours),
		PikettHours:      toFloat(pk),
		Overtime3Hours:   toFloat(ot3),
		TotalHours:       toFloat(costObject.Add(dayHours).Add(pk).Add(ot3)),
		Overtime1Hours:   toFloat(ot1),
		VacationDaysUsed: toFloat(vacation),
	}
}
