// Package pregnancy derives the gestational status of a patient from the
// date the pregnancy was recorded and the weeks reported on that date.
package pregnancy

import (
	"strings"
	"time"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

const (
	// TermWeeks is the length of a full-term pregnancy.
	TermWeeks = 40

	DateLayout = "2006-01-02"
)

// Status is the derived pregnancy state. The zero value means "not pregnant".
type Status struct {
	FechaFin             string `json:"fechaFin"`
	SemanasRestantes     int    `json:"semanasRestantes"`
	EstaActivo           bool   `json:"estaActivo"`
	SemanasTranscurridas int    `json:"semanasTranscurridas"`
}

// Calculate returns the status of a pregnancy that was initialWeeks old on
// startDate (YYYY-MM-DD), as seen on the calendar day of now.
//
// The estimated end date is conception (start minus initialWeeks) plus 40
// weeks. Days are counted between calendar dates in now's location, so
// daylight saving changes never shift the result. An empty or unparseable
// start date, or a non-positive week count, yields the zero Status.
func Calculate(startDate string, initialWeeks int, now time.Time) Status {
	if initialWeeks <= 0 {
		return Status{}
	}
	start, ok := ParseDate(startDate, now.Location())
	if !ok {
		return Status{}
	}

	today := civil(now)
	end := start.AddDate(0, 0, (TermWeeks-initialWeeks)*7)

	elapsed := floorDiv(daysBetween(start, today), 7)
	weeks := initialWeeks + elapsed

	return Status{
		FechaFin:             end.Format(DateLayout),
		SemanasRestantes:     max(0, TermWeeks-weeks),
		EstaActivo:           weeks < TermWeeks && !today.After(end),
		SemanasTranscurridas: weeks,
	}
}

// Apply recomputes the derived pregnancy fields of p.
func Apply(p *model.Patient, now time.Time) {
	if p == nil {
		return
	}
	if p.Embarazo != model.EmbarazoSi || p.FechaInicio == "" ||
		p.SemanasEmbarazo == nil || *p.SemanasEmbarazo <= 0 {
		p.EmbarazoActivo = false
		p.EmbarazoFechaFin = nil
		return
	}

	st := Calculate(p.FechaInicio, *p.SemanasEmbarazo, now)
	p.EmbarazoActivo = st.EstaActivo
	if st.FechaFin == "" {
		p.EmbarazoFechaFin = nil
		return
	}
	fin := st.FechaFin
	p.EmbarazoFechaFin = &fin
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc. A full timestamp
// is accepted too; only its date part is used.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b using their Y/M/D only.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// floorDiv rounds toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
