package storage

import (
	"fmt"
	"time"
)

// DateLayout is the key format of days, pikett entries and absences.
const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekKey formats an ISO week the way the registry stores it, e.g. "2025-W10".
func WeekKey(isoYear, isoWeek int) string {
	return fmt.Sprintf("%d-W%d", isoYear, isoWeek)
}

// WeekKeyOf returns the ISO week key of a date.
func WeekKeyOf(t time.Time) string {
	y, w := t.ISOWeek()
	return WeekKey(y, w)
}

// MonthBounds returns the first and last day of a month, monthIndex 0-11.
func MonthBounds(year, monthIndex int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(monthIndex+1), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// InMonth reports whether a date key belongs to the given month.
func InMonth(date string, year, monthIndex int) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	return t.Year() == year && int(t.Month())-1 == monthIndex
}
