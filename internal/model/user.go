package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID       `json:"id"`
	Email         string          `json:"email"`
	FullName      string          `json:"full_name"`
	PasswordHash  string          `json:"-"`
	Role          string          `json:"role"`
	IsActive      bool            `json:"is_active"`
	TutorialsSeen map[string]bool `json:"tutorials_seen"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// CalendarEvent is an event held by the external calendar provider.
type CalendarEvent struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	PatientID    string    `json:"patient_id,omitempty"`
	PatientPhone string    `json:"patient_phone,omitempty"`
	Attendees    []string  `json:"attendees,omitempty"`
}

// PageDescriptor describes a navigable page of the web client.
type PageDescriptor struct {
	Title       string   `json:"title"`
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}
