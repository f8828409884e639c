package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

// ApplyDelta replaces a worker's old contribution with the new one in a copy
// of idx. Every affected value moves by exactly (new - old); values that end
// at zero are pruned and cost objects whose total drops to zero or below
// disappear. LastActivityDate only ever moves forward.
func ApplyDelta(idx storage.TeamIndex, worker string, next, prev map[string]Contribution) storage.TeamIndex {
	out := cloneTeam(idx)

	ids := map[string]bool{}
	for id := range next {
		ids[id] = true
	}
	for id := range prev {
		ids[id] = true
	}

	for id := range ids {
		n, p := next[id], prev[id]
		cur, ok := out[id]
		if !ok {
			cur = storage.CostObjectTotals{
				HoursByOperation: map[string]float64{},
				HoursByWorker:    map[string]float64{},
			}
		}

		diff := dec(n.Total).Sub(dec(p.Total))
		total := dec(cur.TotalHours).Add(diff)

		ops := map[string]bool{}
		for op := range n.ByOperation {
			ops[op] = true
		}
		for op := range p.ByOperation {
			ops[op] = true
		}
		for op := range ops {
			v := dec(cur.HoursByOperation[op]).Add(dec(n.ByOperation[op])).Sub(dec(p.ByOperation[op]))
			setOrPrune(cur.HoursByOperation, op, v)
		}

		setOrPrune(cur.HoursByWorker, worker, dec(cur.HoursByWorker[worker]).Add(diff))

		if n.LastActivity > cur.LastActivityDate {
			cur.LastActivityDate = n.LastActivity
		}

		if !total.IsPositive() {
			delete(out, id)
			continue
		}
		cur.TotalHours = toFloat(total)
		out[id] = cur
	}

	return out
}

func setOrPrune(m map[string]float64, key string, v decimal.Decimal) {
	if v.Round(precision).IsZero() {
		delete(m, key)
		return
	}
	m[key] = toFloat(v)
}

func cloneTeam(idx storage.TeamIndex) storage.TeamIndex {
	out := make(storage.TeamIndex, len(idx))
	for id, t := range idx {
		c := t
		c.HoursByOperation = make(map[string]float64, len(t.HoursByOperation))
		for k, v := range t.HoursByOperation {
			c.HoursByOperation[k] = v
		}
		c.HoursByWorker = make(map[string]float64, len(t.HoursByWorker))
		for k, v := range t.HoursByWorker {
			c.HoursByWorker[k] = v
		}
		out[id] = c
	}
	return out
}
