// Package merge freezes locked dates of a resubmitted month back to the
// values of the previous submission.
package merge

import (
	"reflect"
	"sort"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// DateSet is a set of YYYY-MM-DD date keys.
type DateSet map[string]bool

func NewDateSet(dates ...string) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = true
	}
	return s
}

// Overlaps reports whether any date in [from, to] is in the set. Date keys
// sort chronologically, so plain string comparison is enough.
func (s DateSet) Overlaps(from, to string) bool {
	if to < from {
		from, to = to, from
	}
	for d := range s {
		if d >= from && d <= to {
			return true
		}
	}
	return false
}

// Sorted returns the dates in ascending order.
func (s DateSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// MergeLocked returns next with every locked date forced back to prev:
//   - days on locked dates are replaced by prev's day, or removed if prev had none;
//   - pikett entries on locked dates come from prev only;
//   - absences overlapping a locked date come from prev, matched by id, prev winning.
//
// Without a previous submission or without locked dates next passes through
// unchanged and the returned LockInfo is nil. Inputs are never modified.
func MergeLocked(next storage.Payload, prev *storage.Submission, locked DateSet) (storage.Payload, *storage.LockInfo) {
	out := next.Clone()
	if prev == nil || len(locked) == 0 {
		return out, nil
	}

	info := &storage.LockInfo{LockedDates: locked.Sorted()}
	weeks := map[string]bool{}
	for _, d := range info.LockedDates {
		if t, err := storage.ParseDate(d); err == nil {
			weeks[storage.WeekKeyOf(t)] = true
		}
	}
	for w := range weeks {
		info.LockedWeeks = append(info.LockedWeeks, w)
	}
	sort.Strings(info.LockedWeeks)

	// days
	for d := range locked {
		prevDay, had := prev.Days[d]
		nextDay, has := out.Days[d]
		switch {
		case had:
			if !has || !reflect.DeepEqual(prevDay, nextDay) {
				info.RestoredDays++
			}
			if out.Days == nil {
				out.Days = map[string]storage.DayRecord{}
			}
			out.Days[d] = prevDay.Clone()
		case has:
			delete(out.Days, d)
			info.RestoredDays++
		}
	}

	// pikett
	var pikett []storage.PikettEntry
	for _, e := range out.Pikett {
		if locked[e.Date] {
			info.DroppedPikett++
			continue
		}
		pikett = append(pikett, e)
	}
	for _, e := range prev.Pikett {
		if locked[e.Date] {
			pikett = append(pikett, e)
		}
	}
	sort.SliceStable(pikett, func(i, j int) bool { return pikett[i].Date < pikett[j].Date })
	out.Pikett = pikett

	// absences
	frozen := map[string]bool{}
	var restored []storage.AbsenceRequest
	for _, a := range prev.Absences {
		if !locked.Overlaps(a.From, a.To) || frozen[a.ID] {
			continue
		}
		frozen[a.ID] = true
		restored = append(restored, a.Clone())
	}

	seen := map[string]bool{}
	var absences []storage.AbsenceRequest
	for _, a := range out.Absences {
		if frozen[a.ID] || seen[a.ID] || locked.Overlaps(a.From, a.To) {
			continue
		}
		seen[a.ID] = true
		absences = append(absences, a)
	}
	absences = append(absences, restored...)
	info.RestoredAbsences = len(restored)
	out.Absences = absences

	return out, info
}
