package storage

import "time"

// Operation codes of a regular cost-object booking.
const (
	OpMontage         = "option1"
	OpDemontage       = "option2"
	OpTransport       = "option3"
	OpInbetriebnahme  = "option4"
	OpAbnahme         = "option5"
	OpWerk            = "option6"
	SpecialTypeRegie  = "regie"
	SpecialTypeFehler = "fehler"
)

// OperationLabels maps operation buckets to the labels shown on the admin screens.
var OperationLabels = map[string]string{
	OpMontage:         "Montage",
	OpDemontage:       "Demontage",
	OpTransport:       "Transport",
	OpInbetriebnahme:  "Inbetriebnahme",
	OpAbnahme:         "Abnahme",
	OpWerk:            "Werk",
	SpecialTypeRegie:  "Regie",
	SpecialTypeFehler: "Fehler",
}

const (
	AbsencePending  = "pending"
	AbsenceAccepted = "accepted"
	AbsenceRejected = "rejected"
)

// Payload is what a worker transmits for one month.
type Payload struct {
	Year       int                  `json:"year" validate:"min=2000,max=2100"`
	MonthIndex int                  `json:"monthIndex" validate:"min=0,max=11"`
	MonthLabel string               `json:"monthLabel" validate:"required"`
	Days       map[string]DayRecord `json:"days" validate:"dive,keys,datekey,endkeys"`
	Pikett     []PikettEntry        `json:"pikett" validate:"dive"`
	Absences   []AbsenceRequest     `json:"absences" validate:"dive"`
}

// Submission is an immutable monthly snapshot of a worker.
type Submission struct {
	ID         string               `json:"id"`
	WorkerID   string               `json:"workerId"`
	TeamID     string               `json:"teamId"`
	Year       int                  `json:"year"`
	MonthIndex int                  `json:"monthIndex"`
	MonthLabel string               `json:"monthLabel"`
	SentAt     time.Time            `json:"sentAt"`
	Days       map[string]DayRecord `json:"days"`
	Pikett     []PikettEntry        `json:"pikett"`
	Absences   []AbsenceRequest     `json:"absences"`
	Totals     MonthTotals          `json:"totals"`
	LockInfo   *LockInfo            `json:"_lockInfo,omitempty"`
}

// Payload returns the worker supplied part of the snapshot.
func (s *Submission) Payload() Payload {
	return Payload{
		Year:       s.Year,
		MonthIndex: s.MonthIndex,
		MonthLabel: s.MonthLabel,
		Days:       s.Days,
		Pikett:     s.Pikett,
		Absences:   s.Absences,
	}
}

type DayRecord struct {
	Entries        []Entry         `json:"entries" validate:"dive"`
	SpecialEntries []SpecialEntry  `json:"specialEntries" validate:"dive"`
	DayHours       DayHours        `json:"dayHours"`
	Flags          DayFlags        `json:"flags"`
	MealAllowance  map[string]bool `json:"mealAllowance,omitempty"`
}

// Entry books hours per operation code against one cost object.
type Entry struct {
	CostObjectID string             `json:"costObjectId"`
	Hours        map[string]float64 `json:"hours" validate:"dive,keys,oneof=option1 option2 option3 option4 option5 option6,endkeys,min=0,max=24"`
}

type SpecialEntry struct {
	Type         string  `json:"type" validate:"oneof=regie fehler"`
	CostObjectID string  `json:"costObjectId"`
	Hours        float64 `json:"hours" validate:"min=0,max=24"`
	RapportNr    string  `json:"rapportNr,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// DayHours are fixed categories not tied to a cost object.
type DayHours struct {
	Schulung    float64 `json:"schulung" validate:"min=0,max=24"`
	SitzungKurs float64 `json:"sitzungKurs" validate:"min=0,max=24"`
	ArztKrank   float64 `json:"arztKrank" validate:"min=0,max=24"`
}

func (h DayHours) Sum() float64 {
	return h.Schulung + h.SitzungKurs + h.ArztKrank
}

type DayFlags struct {
	Ferien        bool `json:"ferien"`
	Schmutzzulage bool `json:"schmutzzulage"`
	Nebenauslagen bool `json:"nebenauslagen"`
}

// PikettEntry is an on-call booking. IsOvertime3 routes the hours into the
// weekend overtime bucket instead of the on-call bucket.
type PikettEntry struct {
	Date         string  `json:"date" validate:"datekey"`
	CostObjectID string  `json:"costObjectId"`
	Hours        float64 `json:"hours" validate:"min=0,max=24"`
	Note         string  `json:"note"`
	IsOvertime3  bool    `json:"isOvertime3"`
}

type AbsenceRequest struct {
	ID      string   `json:"id"`
	Type    string   `json:"type" validate:"required"`
	From    string   `json:"from" validate:"datekey"`
	To      string   `json:"to" validate:"datekey"`
	Days    *float64 `json:"days,omitempty" validate:"omitempty,min=0"`
	Comment string   `json:"comment"`
	Status  string   `json:"status" validate:"oneof=pending accepted rejected"`
}

// NonPikettHours is the sum of entries, special entries and day hours.
func (d DayRecord) NonPikettHours() float64 {
	var total float64
	for _, e := range d.Entries {
		for _, h := range e.Hours {
			total += h
		}
	}
	for _, s := range d.SpecialEntries {
		total += s.Hours
	}
	return total + d.DayHours.Sum()
}

// CostObjectHours is the sum of entries and special entries only.
func (d DayRecord) CostObjectHours() float64 {
	return d.NonPikettHours() - d.DayHours.Sum()
}

// MonthTotals is the hour breakdown stored with every submission.
type MonthTotals struct {
	CostObjectHours  float64 `json:"costObjectHours"`
	DayHours         float64 `json:"dayHours"`
	PikettHours      float64 `json:"pikettHours"`
	Overtime3Hours   float64 `json:"overtime3Hours"`
	TotalHours       float64 `json:"totalHours"`
	Overtime1Hours   float64 `json:"overtime1Hours"`
	VacationDaysUsed float64 `json:"vacationDaysUsed"`
}

// LockInfo records which locked dates a merge forced back.
type LockInfo struct {
	LockedWeeks      []string `json:"lockedWeeks"`
	LockedDates      []string `json:"lockedDates"`
	RestoredDays     int      `json:"restoredDays"`
	DroppedPikett    int      `json:"droppedPikett"`
	RestoredAbsences int      `json:"restoredAbsences"`
}

// IndexEntry is the metadata kept per submission in a worker's index.
type IndexEntry struct {
	ID         string    `json:"id"`
	WorkerID   string    `json:"workerId"`
	TeamID     string    `json:"teamId"`
	Year       int       `json:"year"`
	MonthIndex int       `json:"monthIndex"`
	MonthLabel string    `json:"monthLabel"`
	SentAt     time.Time `json:"sentAt"`
	File       string    `json:"file"`
}

// Identity is the caller as resolved by the auth middleware.
type Identity struct {
	WorkerID string
	TeamID   string
	IsAdmin  bool
}
