package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

func TestValidatePayload_Normalizes(t *testing.T) {
	in := marchPayload(4, 2)
	in.Days["2025-03-03"].Entries[0].CostObjectID = " A-100 "
	in.Absences = []storage.AbsenceRequest{
		{Type: "ferien", From: "2025-03-17", To: "2025-03-18", Status: storage.AbsencePending},
		{ID: "keep", Type: "militaer", From: "2025-03-20", To: "2025-03-20", Status: storage.AbsenceAccepted},
	}

	out, err := ValidatePayload(in)
	require.NoError(t, err)

	assert.Equal(t, "A-100", out.Days["2025-03-03"].Entries[0].CostObjectID)
	assert.Equal(t, " A-100 ", in.Days["2025-03-03"].Entries[0].CostObjectID, "input is not modified")
	assert.NotNil(t, out.Pikett)

	_, err = uuid.Parse(out.Absences[0].ID)
	assert.NoError(t, err)
	assert.Empty(t, in.Absences[0].ID)
	assert.Equal(t, "keep", out.Absences[1].ID)
}

func TestValidatePayload_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *storage.Payload)
	}{
		{"month index", func(p *storage.Payload) { p.MonthIndex = 12 }},
		{"missing label", func(p *storage.Payload) { p.MonthLabel = "" }},
		{"bad date key", func(p *storage.Payload) { p.Days["03/04/2025"] = storage.DayRecord{} }},
		{"unknown operation", func(p *storage.Payload) {
			p.Days["2025-03-04"] = storage.DayRecord{Entries: []storage.Entry{{CostObjectID: "A", Hours: map[string]float64{"option9": 1}}}}
		}},
		{"negative hours", func(p *storage.Payload) {
			p.Days["2025-03-04"] = storage.DayRecord{DayHours: storage.DayHours{Schulung: -1}}
		}},
		{"special type", func(p *storage.Payload) {
			p.Days["2025-03-04"] = storage.DayRecord{SpecialEntries: []storage.SpecialEntry{{Type: "bonus", CostObjectID: "A", Hours: 1}}}
		}},
		{"pikett date", func(p *storage.Payload) {
			p.Pikett = []storage.PikettEntry{{Date: "tomorrow", Hours: 2}}
		}},
		{"pikett in other month", func(p *storage.Payload) {
			p.Pikett = []storage.PikettEntry{{Date: "2025-04-05", CostObjectID: "A-100", Hours: 6}}
		}},
		{"absence range", func(p *storage.Payload) {
			p.Absences = []storage.AbsenceRequest{{Type: "ferien", From: "2025-03-10", To: "2025-03-07", Status: storage.AbsencePending}}
		}},
		{"absence status", func(p *storage.Payload) {
			p.Absences = []storage.AbsenceRequest{{Type: "ferien", From: "2025-03-10", To: "2025-03-10", Status: "maybe"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := marchPayload(4, 2)
			tt.mutate(&p)

			_, err := ValidatePayload(p)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
		})
	}
}

func TestValidatePayload_PikettInMonth(t *testing.T) {
	p := marchPayload(4, 2)
	p.Pikett = []storage.PikettEntry{{Date: "2025-03-08", CostObjectID: " A-100 ", Hours: 6, IsOvertime3: true}}

	out, err := ValidatePayload(p)
	require.NoError(t, err)
	require.Len(t, out.Pikett, 1)
	assert.Equal(t, "A-100", out.Pikett[0].CostObjectID)

	p.Pikett = append(p.Pikett, storage.PikettEntry{Date: "2025-02-28", Hours: 2})
	_, err = ValidatePayload(p)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"pikett[1]: 2025-02-28 outside of 2025-03"}, verr.Problems)
}
