// Package overview classifies the days of a month and groups them into ISO
// weeks for the status screens.
package overview

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

const (
	StatusFerien  = "ferien"
	StatusAbsence = "absence"
	StatusOK      = "ok"
	StatusMissing = "missing"
)

type Day struct {
	Date        string  `json:"date"`
	Weekday     int     `json:"weekday"` // 1 Monday ... 7 Sunday
	Hours       float64 `json:"hours"`
	PikettHours float64 `json:"pikettHours"`
	Status      string  `json:"status"`
}

// Week aggregates the days of one ISO week that fall into the month.
// Days holds weekdays only; TotalHours includes weekend hours as well.
type Week struct {
	WeekYear     int               `json:"weekYear"`
	Week         int               `json:"week"`
	Key          string            `json:"key"`
	MinDate      string            `json:"minDate"`
	MaxDate      string            `json:"maxDate"`
	WorkdayCount int               `json:"workdayCount"`
	MissingCount int               `json:"missingCount"`
	TotalHours   float64           `json:"totalHours"`
	Days         []Day             `json:"days"`
	Lock         *storage.WeekLock `json:"lock,omitempty"`
}

type Overview struct {
	Year            int     `json:"year"`
	MonthIndex      int     `json:"monthIndex"`
	MonthTotalHours float64 `json:"monthTotalHours"`
	Weeks           []Week  `json:"weeks"`
}

// BuildOverview walks every calendar day of the month. sub may be nil, in
// which case every weekday is missing.
func BuildOverview(sub *storage.Submission, year, monthIndex int) Overview {
	var (
		days     map[string]storage.DayRecord
		pikett   []storage.PikettEntry
		absences []storage.AbsenceRequest
	)
	if sub != nil {
		days, pikett, absences = sub.Days, sub.Pikett, sub.Absences
	}

	pikettByDate := map[string]decimal.Decimal{}
	for _, p := range pikett {
		pikettByDate[p.Date] = pikettByDate[p.Date].Add(hours(p.Hours))
	}

	type bucket struct {
		week  Week
		total decimal.Decimal
	}
	weeks := map[string]*bucket{}
	monthTotal := decimal.Zero

	first, last := storage.MonthBounds(year, monthIndex)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := storage.FormatDate(d)
		rec, hasRec := days[date]

		dayHours := decimal.Zero
		if hasRec {
			dayHours = hours(rec.NonPikettHours())
		}
		pk := pikettByDate[date]
		total := dayHours.Add(pk)
		monthTotal = monthTotal.Add(total)

		wy, wn := d.ISOWeek()
		key := storage.WeekKey(wy, wn)
		b, ok := weeks[key]
		if !ok {
			b = &bucket{week: Week{WeekYear: wy, Week: wn, Key: key, MinDate: date, Days: []Day{}}}
			weeks[key] = b
		}
		b.week.MaxDate = date
		b.total = b.total.Add(total)

		wd := isoWeekday(d)
		if wd > 5 {
			continue
		}

		status := classify(rec, hasRec, total, date, absences)
		b.week.WorkdayCount++
		if status == StatusMissing {
			b.week.MissingCount++
		}
		b.week.Days = append(b.week.Days, Day{
			Date:        date,
			Weekday:     wd,
			Hours:       toFloat(total),
			PikettHours: toFloat(pk),
			Status:      status,
		})
	}

	out := Overview{Year: year, MonthIndex: monthIndex, MonthTotalHours: toFloat(monthTotal), Weeks: make([]Week, 0, len(weeks))}
	for _, b := range weeks {
		b.week.TotalHours = toFloat(b.total)
		out.Weeks = append(out.Weeks, b.week)
	}
	sort.Slice(out.Weeks, func(i, j int) bool {
		if out.Weeks[i].WeekYear != out.Weeks[j].WeekYear {
			return out.Weeks[i].WeekYear < out.Weeks[j].WeekYear
		}
		return out.Weeks[i].Week < out.Weeks[j].Week
	})
	return out
}

func classify(rec storage.DayRecord, hasRec bool, total decimal.Decimal, date string, absences []storage.AbsenceRequest) string {
	switch {
	case hasRec && rec.Flags.Ferien:
		return StatusFerien
	case acceptedAbsenceCovers(absences, date):
		return StatusAbsence
	case total.IsPositive():
		return StatusOK
	default:
		return StatusMissing
	}
}

func acceptedAbsenceCovers(absences []storage.AbsenceRequest, date string) bool {
	for _, a := range absences {
		if a.Status != storage.AbsenceAccepted {
			continue
		}
		from, to := a.From, a.To
		if to == "" {
			to = from
		}
		if from > to {
			from, to = to, from
		}
		if from <= date && date <= to {
			return true
		}
	}
	return false
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func hours(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(4)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(4).Float64()
	return f
}
