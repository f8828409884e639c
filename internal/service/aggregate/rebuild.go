package aggregate

import (
	"fmt"
	"sort"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// Rebuild computes the index from scratch out of the authoritative (latest
// per month) submissions. Submissions are applied in sentAt order through
// ApplyDelta, so the hour math is the same as for incremental updates.
func Rebuild(latest []*storage.Submission) storage.AggregationIndex {
	subs := append([]*storage.Submission(nil), latest...)
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].SentAt.Before(subs[j].SentAt) })

	idx := storage.AggregationIndex{}
	for _, sub := range subs {
		team := idx[sub.TeamID]
		team = ApplyDelta(team, sub.WorkerID, ExtractContributions(sub), nil)
		if len(team) == 0 {
			delete(idx, sub.TeamID)
			continue
		}
		idx[sub.TeamID] = team
	}
	return idx
}

// Mismatch describes one difference between a stored and a rebuilt index.
type Mismatch struct {
	Team         string `json:"team"`
	CostObjectID string `json:"costObjectId"`
	Field        string `json:"field"`
	Stored       string `json:"stored"`
	Rebuilt      string `json:"rebuilt"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s/%s %s: stored=%s rebuilt=%s", m.Team, m.CostObjectID, m.Field, m.Stored, m.Rebuilt)
}

// Diff compares hours exactly. The stored LastActivityDate may be later than
// the rebuilt one (it never moves backwards) but never earlier.
func Diff(stored, rebuilt storage.AggregationIndex) []Mismatch {
	var out []Mismatch

	teams := map[string]bool{}
	for t := range stored {
		teams[t] = true
	}
	for t := range rebuilt {
		teams[t] = true
	}

	for team := range teams {
		ids := map[string]bool{}
		for id := range stored[team] {
			ids[id] = true
		}
		for id := range rebuilt[team] {
			ids[id] = true
		}

		for id := range ids {
			s, sok := stored[team][id]
			r, rok := rebuilt[team][id]
			switch {
			case !sok:
				out = append(out, Mismatch{Team: team, CostObjectID: id, Field: "presence", Stored: "missing", Rebuilt: fmtHours(r.TotalHours)})
				continue
			case !rok:
				out = append(out, Mismatch{Team: team, CostObjectID: id, Field: "presence", Stored: fmtHours(s.TotalHours), Rebuilt: "missing"})
				continue
			}

			if s.TotalHours != r.TotalHours {
				out = append(out, Mismatch{Team: team, CostObjectID: id, Field: "totalHours", Stored: fmtHours(s.TotalHours), Rebuilt: fmtHours(r.TotalHours)})
			}
			out = append(out, diffBuckets(team, id, "hoursByOperation", s.HoursByOperation, r.HoursByOperation)...)
			out = append(out, diffBuckets(team, id, "hoursByWorker", s.HoursByWorker, r.HoursByWorker)...)
			if s.LastActivityDate < r.LastActivityDate {
				out = append(out, Mismatch{Team: team, CostObjectID: id, Field: "lastActivityDate", Stored: s.LastActivityDate, Rebuilt: r.LastActivityDate})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func diffBuckets(team, id, field string, stored, rebuilt map[string]float64) []Mismatch {
	var out []Mismatch
	keys := map[string]bool{}
	for k := range stored {
		keys[k] = true
	}
	for k := range rebuilt {
		keys[k] = true
	}
	for k := range keys {
		if stored[k] != rebuilt[k] {
			out = append(out, Mismatch{
				Team:         team,
				CostObjectID: id,
				Field:        field + "." + k,
				Stored:       fmtHours(stored[k]),
				Rebuilt:      fmtHours(rebuilt[k]),
			})
		}
	}
	return out
}

func fmtHours(h float64) string {
	return fmt.Sprintf("%.4f", h)
}
