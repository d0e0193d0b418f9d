package calendar

import (
	"time"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
)

// Provider payloads follow the Google Calendar v3 event resource.

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

type attendee struct {
	Email string `json:"email"`
}

type extendedProperties struct {
	Private map[string]string `json:"private,omitempty"`
}

type wireEvent struct {
	ID                 string              `json:"id,omitempty"`
	Summary            string              `json:"summary"`
	Description        string              `json:"description,omitempty"`
	Location           string              `json:"location,omitempty"`
	Start              eventTime           `json:"start"`
	End                eventTime           `json:"end"`
	Attendees          []attendee          `json:"attendees,omitempty"`
	ExtendedProperties *extendedProperties `json:"extendedProperties,omitempty"`
}

type eventList struct {
	Items         []wireEvent `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

const (
	propPatientID    = "patient_id"
	propPatientPhone = "patient_phone"
)

func toWire(e *model.CalendarEvent) wireEvent {
	w := wireEvent{
		Summary:     e.Title,
		Description: e.Description,
		Location:    e.Location,
		Start:       eventTime{DateTime: e.Start.Format(time.RFC3339)},
		End:         eventTime{DateTime: e.End.Format(time.RFC3339)},
	}
	for _, a := range e.Attendees {
		w.Attendees = append(w.Attendees, attendee{Email: a})
	}
	if e.PatientID != "" || e.PatientPhone != "" {
		w.ExtendedProperties = &extendedProperties{Private: map[string]string{}}
		if e.PatientID != "" {
			w.ExtendedProperties.Private[propPatientID] = e.PatientID
		}
		if e.PatientPhone != "" {
			w.ExtendedProperties.Private[propPatientPhone] = e.PatientPhone
		}
	}
	return w
}

func fromWire(w wireEvent, loc *time.Location) model.CalendarEvent {
	e := model.CalendarEvent{
		ID:          w.ID,
		Title:       w.Summary,
		Description: w.Description,
		Location:    w.Location,
		Start:       w.Start.parse(loc),
		End:         w.End.parse(loc),
	}
	for _, a := range w.Attendees {
		e.Attendees = append(e.Attendees, a.Email)
	}
	if w.ExtendedProperties != nil {
		e.PatientID = w.ExtendedProperties.Private[propPatientID]
		e.PatientPhone = w.ExtendedProperties.Private[propPatientPhone]
	}
	return e
}

// parse reads dateTime, or an all-day date at midnight in loc.
func (t eventTime) parse(loc *time.Location) time.Time {
	if t.DateTime != "" {
		if v, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return v
		}
	}
	if t.Date != "" {
		if v, err := time.ParseInLocation(time.DateOnly, t.Date, loc); err == nil {
			return v
		}
	}
	return time.Time{}
}
