package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const defaultClinicName = "Diamond Link"

// AppointmentEmailData holds what the appointment notice shows.
type AppointmentEmailData struct {
	ClinicName string
	To         []string
	Title      string
	Location   string
	Start      time.Time
	End        time.Time
}

// BuildAppointmentEmail creates the notice sent to attendees of a new
// calendar event. Times are rendered in the location carried by Start.
func BuildAppointmentEmail(data AppointmentEmailData) Message {
	clinic := data.ClinicName
	if clinic == "" {
		clinic = defaultClinicName
	}

	when := data.Start.Format("02/01/2006 15:04")
	if !data.End.IsZero() {
		when += " - " + data.End.Format("15:04")
	}

	subject := fmt.Sprintf("Cita programada: %s", data.Title)

	var text strings.Builder
	fmt.Fprintf(&text, "Hola,\n\nSe ha programado la cita \"%s\" para el %s.\n", data.Title, when)
	if data.Location != "" {
		fmt.Fprintf(&text, "Lugar: %s\n", data.Location)
	}
	fmt.Fprintf(&text, "\nSaludos,\n%s", clinic)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #0e7490;">%s</h2>
    <p>Se ha programado la cita <strong>%s</strong> para el <strong>%s</strong>.</p>
    %s
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Saludos,<br>%s</p>
</body>
</html>`,
		html.EscapeString(clinic),
		html.EscapeString(data.Title),
		html.EscapeString(when),
		locationHTML(data.Location),
		html.EscapeString(clinic))

	return Message{
		To:       data.To,
		Subject:  subject,
		TextBody: text.String(),
		HTMLBody: htmlBody,
	}
}

func locationHTML(loc string) string {
	if loc == "" {
		return ""
	}
	return "<p>Lugar: " + html.EscapeString(loc) + "</p>"
}

// BuildConsentSignedEmail tells administrators a consent form was signed.
func BuildConsentSignedEmail(clinic string, to []string, patientName, consentTitle string, at time.Time) Message {
	if clinic == "" {
		clinic = defaultClinicName
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Consentimiento firmado: %s", patientName),
		TextBody: fmt.Sprintf("El paciente %s firmó \"%s\" el %s.\n\n%s",
			patientName, consentTitle, at.Format("02/01/2006 15:04"), clinic),
	}
}
