package storage

// Clone returns a deep copy so callers can change the result freely.
func (d DayRecord) Clone() DayRecord {
	out := d
	if d.Entries != nil {
		out.Entries = make([]Entry, len(d.Entries))
		for i, e := range d.Entries {
			out.Entries[i] = Entry{CostObjectID: e.CostObjectID}
			if e.Hours != nil {
				out.Entries[i].Hours = make(map[string]float64, len(e.Hours))
				for k, v := range e.Hours {
					out.Entries[i].Hours[k] = v
				}
			}
		}
	}
	if d.SpecialEntries != nil {
		out.SpecialEntries = append([]SpecialEntry(nil), d.SpecialEntries...)
	}
	if d.MealAllowance != nil {
		out.MealAllowance = make(map[string]bool, len(d.MealAllowance))
		for k, v := range d.MealAllowance {
			out.MealAllowance[k] = v
		}
	}
	return out
}

func (a AbsenceRequest) Clone() AbsenceRequest {
	out := a
	if a.Days != nil {
		days := *a.Days
		out.Days = &days
	}
	return out
}

func (p Payload) Clone() Payload {
	out := p
	if p.Days != nil {
		out.Days = make(map[string]DayRecord, len(p.Days))
		for k, d := range p.Days {
			out.Days[k] = d.Clone()
		}
	}
	if p.Pikett != nil {
		out.Pikett = append([]PikettEntry(nil), p.Pikett...)
	}
	if p.Absences != nil {
		out.Absences = make([]AbsenceRequest, len(p.Absences))
		for i, a := range p.Absences {
			out.Absences[i] = a.Clone()
		}
	}
	return out
}
