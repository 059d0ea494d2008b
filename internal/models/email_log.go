package models

import "time"

// EmailLogStatus values.
const (
	EmailStatusQueued = "queued"
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records a notification email attempt.
type EmailLog struct {
	ID             int64     `json:"id"`
	OrganizationID *int64    `json:"organization_id"`
	Recipient      string    `json:"recipient"`
	Subject        string    `json:"subject"`
	Kind           string    `json:"kind"` // e.g. "event_cancelled", "invite"
	Status         string    `json:"status"`
	Error          *string   `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
