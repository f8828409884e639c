package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		_, err := storage.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

// ValidatePayload checks the shape of a transmitted month and returns a
// normalized copy: trimmed cost object ids, empty instead of nil lists and an
// id on every absence. The input is left untouched.
func ValidatePayload(p storage.Payload) (storage.Payload, error) {
	verr := &ValidationError{}

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return storage.Payload{}, err
		}
		for _, fe := range fieldErrs {
			verr.add(fmt.Sprintf("%s: failed on %q", fe.Namespace(), fe.Tag()))
		}
		return storage.Payload{}, verr
	}

	out := p.Clone()
	if out.Days == nil {
		out.Days = map[string]storage.DayRecord{}
	}
	if out.Pikett == nil {
		out.Pikett = []storage.PikettEntry{}
	}
	if out.Absences == nil {
		out.Absences = []storage.AbsenceRequest{}
	}

	for date, day := range out.Days {
		if !storage.InMonth(date, out.Year, out.MonthIndex) {
			verr.add(fmt.Sprintf("days[%s]: outside of %04d-%02d", date, out.Year, out.MonthIndex+1))
		}
		for i := range day.Entries {
			e := &day.Entries[i]
			e.CostObjectID = strings.TrimSpace(e.CostObjectID)
			if e.CostObjectID == "" && sumHours(e.Hours) > 0 {
				verr.add(fmt.Sprintf("days[%s].entries[%d]: hours without cost object", date, i))
			}
		}
		for i := range day.SpecialEntries {
			s := &day.SpecialEntries[i]
			s.CostObjectID = strings.TrimSpace(s.CostObjectID)
			if s.CostObjectID == "" && s.Hours > 0 {
				verr.add(fmt.Sprintf("days[%s].specialEntries[%d]: hours without cost object", date, i))
			}
		}
		out.Days[date] = day
	}

	for i := range out.Pikett {
		pk := &out.Pikett[i]
		pk.CostObjectID = strings.TrimSpace(pk.CostObjectID)
		if !storage.InMonth(pk.Date, out.Year, out.MonthIndex) {
			verr.add(fmt.Sprintf("pikett[%d]: %s outside of %04d-%02d", i, pk.Date, out.Year, out.MonthIndex+1))
		}
	}

	for i := range out.Absences {
		a := &out.Absences[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.To < a.From {
			verr.add(fmt.Sprintf("absences[%d]: to %s before from %s", i, a.To, a.From))
		}
	}

	if len(verr.Problems) > 0 {
		return storage.Payload{}, verr
	}
	return out, nil
}

func sumHours(h map[string]float64) float64 {
	var total float64
	for _, v := range h {
		total += v
	}
	return total
}
