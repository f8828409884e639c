// Package aggregate keeps per-cost-object hour totals consistent with the
// latest monthly submission of every worker.
package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// precision is the number of decimal places hours are kept at. Values are
// rounded once on extraction; every later sum is exact.
const precision = 4

// Contribution is what one submission books on one cost object.
type Contribution struct {
	Total        float64            `json:"total"`
	ByOperation  map[string]float64 `json:"byOperation"`
	LastActivity string             `json:"lastActivity"`
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(precision)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(precision).Float64()
	return f
}

// ExtractContributions sums a submission's entries per cost object and
// operation code. Special entries land in the "regie" and "fehler" buckets.
// Day hours and pikett are not bound to cost object totals.
func ExtractContributions(sub *storage.Submission) map[string]Contribution {
	if sub == nil {
		return nil
	}

	type acc struct {
		ops  map[string]decimal.Decimal
		last string
	}
	sums := map[string]*acc{}

	add := func(costObject, bucket, date string, hours float64) {
		costObject = strings.TrimSpace(costObject)
		if costObject == "" || hours <= 0 {
			return
		}
		a, ok := sums[costObject]
		if !ok {
			a = &acc{ops: map[string]decimal.Decimal{}}
			sums[costObject] = a
		}
		a.ops[bucket] = a.ops[bucket].Add(dec(hours))
		if date > a.last {
			a.last = date
		}
	}

	for date, d := range sub.Days {
		for _, e := range d.Entries {
			for op, h := range e.Hours {
				add(e.CostObjectID, op, date, h)
			}
		}
		for _, s := range d.SpecialEntries {
			add(s.CostObjectID, s.Type, date, s.Hours)
		}
	}

	out := make(map[string]Contribution, len(sums))
	for id, a := range sums {
		c := Contribution{ByOperation: map[string]float64{}, LastActivity: a.last}
		total := decimal.Zero
		for op, h := range a.ops {
			if h.IsZero() {
				continue
			}
			c.ByOperation[op] = toFloat(h)
			total = total.Add(h)
		}
		if total.IsPositive() {
			c.Total = toFloat(total)
			out[id] = c
		}
	}
	return out
}
