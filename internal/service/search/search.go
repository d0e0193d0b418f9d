// Package search implements the clinic-wide federated search.
//
// Search is a pure function of a query and a Corpus. The Service loads the
// corpus for a caller and runs Search on every request; results are never
// cached.
package search

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

// GroupLimit caps every record group except patients and pages.
const GroupLimit = 3

// Matched patient fields, in evaluation order.
const (
	FieldNombre             = "nombre_completo"
	FieldIdentidad          = "numero_identidad"
	FieldCodigo             = "codigo"
	FieldTelefono           = "telefono"
	FieldEmail              = "email"
	FieldID                 = "id"
	FieldContactoEmergencia = "contacto_emergencia"
	FieldTelefonoAlterno    = "telefono_alterno"
)

type fieldWeight struct {
	name   string
	weight int
	values func(p *model.Patient) []string
}

var patientFields = []fieldWeight{
	{FieldNombre, 100, func(p *model.Patient) []string { return []string{p.NombreCompleto} }},
	{FieldIdentidad, 80, func(p *model.Patient) []string { return []string{p.NumeroIdentidad} }},
	{FieldCodigo, 60, func(p *model.Patient) []string { return []string{p.Codigo} }},
	{FieldTelefono, 40, func(p *model.Patient) []string { return []string{p.Telefono} }},
	{FieldEmail, 30, func(p *model.Patient) []string { return []string{p.Email} }},
	{FieldID, 50, func(p *model.Patient) []string { return []string{idString(p.ID)} }},
	{FieldContactoEmergencia, 10, func(p *model.Patient) []string {
		return []string{p.ContactoEmergencia, p.TelefonoEmergencia}
	}},
	{FieldTelefonoAlterno, 10, func(p *model.Patient) []string { return []string{p.TelefonoAlterno} }},
}

// primaryFields decide whether the best match counts as a direct hit.
var primaryFields = []string{FieldNombre, FieldIdentidad, FieldTelefono, FieldEmail}

// Corpus is the data one search runs over. Search only reads it.
type Corpus struct {
	Patients            []*model.Patient
	Treatments          []*model.Treatment
	CompletedTreatments []*model.CompletedTreatment
	Odontograms         []*model.Odontogram
	Consents            []*model.Consent
	Events              []model.CalendarEvent
	Promotions          []*model.Promotion
	Pages               []model.PageDescriptor
}

// PatientMatch is a matched patient together with its clinical records.
type PatientMatch struct {
	Patient             *model.Patient              `json:"patient"`
	Score               int                         `json:"score"`
	MatchedFields       []string                    `json:"matchedFields"`
	Primary             bool                        `json:"isDirectMatch"`
	CompletedTreatments []*model.CompletedTreatment `json:"completedTreatments"`
	Odontograms         []*model.Odontogram         `json:"odontograms"`
	Consents            []*model.Consent            `json:"consents"`

	// NameJoined counts completed treatments attached by name only.
	NameJoined int `json:"-"`
}

// Results holds one search's groups. The zero value is the empty result.
type Results struct {
	Query               string                      `json:"query"`
	Visible             bool                        `json:"visible"`
	PatientCentric      []PatientMatch              `json:"patientCentric"`
	Pages               []model.PageDescriptor      `json:"pages"`
	Events              []model.CalendarEvent       `json:"events"`
	Treatments          []*model.Treatment          `json:"treatments"`
	CompletedTreatments []*model.CompletedTreatment `json:"completedTreatments"`
	Odontograms         []*model.Odontogram         `json:"odontograms"`
	Consents            []*model.Consent            `json:"consents"`
	Promotions          []*model.Promotion          `json:"promotions"`
}

// Group is a named result group.
type Group struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Groups lists the result groups in display order.
func (r Results) Groups() []Group {
	return []Group{
		{"patientCentric", len(r.PatientCentric)},
		{"pages", len(r.Pages)},
		{"events", len(r.Events)},
		{"treatments", len(r.Treatments)},
		{"completedTreatments", len(r.CompletedTreatments)},
		{"odontograms", len(r.Odontograms)},
		{"consents", len(r.Consents)},
		{"promotions", len(r.Promotions)},
	}
}

// Total is the number of results across all groups.
func (r Results) Total() int {
	n := 0
	for _, g := range r.Groups() {
		n += g.Count
	}
	return n
}

// Normalize lowercases and trims a query. An empty result means "no search".
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Search ranks every collection of c against query. A blank query yields
// the zero Results with Visible false.
func Search(query string, c Corpus) Results {
	q := Normalize(query)
	if q == "" {
		return Results{}
	}

	names := patientNames(c.Patients)

	r := Results{
		Query:          q,
		Visible:        true,
		PatientCentric: rankPatients(q, c),
		Pages: filter(c.Pages, 0, func(p model.PageDescriptor) bool {
			return contains(q, p.Title, p.Description, p.Path, strings.Join(p.Keywords, " "))
		}),
		Events: filter(c.Events, GroupLimit, func(e model.CalendarEvent) bool {
			return contains(q, e.Title, e.Description, e.Location)
		}),
		Treatments: filter(c.Treatments, GroupLimit, func(t *model.Treatment) bool {
			return t != nil && contains(q, t.Codigo, t.Nombre, t.Descripcion, t.Categoria)
		}),
		CompletedTreatments: filter(c.CompletedTreatments, GroupLimit, func(t *model.CompletedTreatment) bool {
			return t != nil && contains(q, t.PatientName, t.TreatmentName, t.DoctorName, t.Notas, t.Fecha)
		}),
		Odontograms: filter(c.Odontograms, GroupLimit, func(o *model.Odontogram) bool {
			return o != nil && contains(q, names[o.PatientID], o.DoctorName, o.Notas)
		}),
		Consents: filter(c.Consents, GroupLimit, func(k *model.Consent) bool {
			return k != nil && contains(q, names[k.PatientID], k.Titulo, k.Tipo)
		}),
		Promotions: filter(c.Promotions, GroupLimit, func(p *model.Promotion) bool {
			return p != nil && contains(q, p.Titulo, p.Descripcion, p.Codigo)
		}),
	}
	return r
}

func rankPatients(q string, c Corpus) []PatientMatch {
	var out []PatientMatch
	for _, p := range c.Patients {
		if p == nil || !contains(q, patientHaystack(p)...) {
			continue
		}
		score, fields := scorePatient(q, p)
		m := Aggregate(p, c.CompletedTreatments, c.Odontograms, c.Consents)
		m.Score = score
		m.MatchedFields = fields
		out = append(out, m)
	}

	slices.SortStableFunc(out, func(a, b PatientMatch) int {
		return b.Score - a.Score
	})

	if len(out) > 0 {
		out[0].Primary = slices.ContainsFunc(out[0].MatchedFields, func(f string) bool {
			return slices.Contains(primaryFields, f)
		})
	}
	return out
}

func patientHaystack(p *model.Patient) []string {
	return []string{
		p.NombreCompleto, p.NumeroIdentidad, p.Codigo, p.Telefono, p.TelefonoAlterno,
		p.Email, p.ContactoEmergencia, p.TelefonoEmergencia, idString(p.ID),
	}
}

func scorePatient(q string, p *model.Patient) (int, []string) {
	score := 0
	fields := []string{}
	for _, f := range patientFields {
		if slices.ContainsFunc(f.values(p), func(v string) bool { return contains(q, v) }) {
			score += f.weight
			fields = append(fields, f.name)
		}
	}
	return score, fields
}

// Aggregate collects the clinical records of p. Completed treatments join by
// patient id or by exact patient name; odontograms and consents join by id
// only.
func Aggregate(p *model.Patient, cts []*model.CompletedTreatment, odos []*model.Odontogram, consents []*model.Consent) PatientMatch {
	m := PatientMatch{
		Patient:             p,
		MatchedFields:       []string{},
		CompletedTreatments: []*model.CompletedTreatment{},
		Odontograms:         []*model.Odontogram{},
		Consents:            []*model.Consent{},
	}
	for _, ct := range cts {
		if ct == nil {
			continue
		}
		byID := ct.PatientID != uuid.Nil && ct.PatientID == p.ID
		byName := p.NombreCompleto != "" && ct.PatientName == p.NombreCompleto
		if byID || byName {
			m.CompletedTreatments = append(m.CompletedTreatments, ct)
			if !byID {
				m.NameJoined++
			}
		}
	}
	for _, o := range odos {
		if o != nil && o.PatientID == p.ID {
			m.Odontograms = append(m.Odontograms, o)
		}
	}
	for _, k := range consents {
		if k != nil && k.PatientID == p.ID {
			m.Consents = append(m.Consents, k)
		}
	}
	return m
}

// contains reports whether the space-joined, lowercased fields contain q.
func contains(q string, fields ...string) bool {
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), q)
}

// filter keeps the items matching keep, at most limit of them when limit > 0.
func filter[T any](items []T, limit int, keep func(T) bool) []T {
	out := []T{}
	for _, it := range items {
		if limit > 0 && len(out) == limit {
			break
		}
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func patientNames(ps []*model.Patient) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(ps))
	for _, p := range ps {
		if p != nil {
			names[p.ID] = p.NombreCompleto
		}
	}
	return names
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
