package models

import "time"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "Draft"
	EventScheduled EventStatus = "Scheduled"
	EventCancelled EventStatus = "Cancelled"
	EventCompleted EventStatus = "Completed"
)

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s string) bool {
	switch EventStatus(s) {
	case EventDraft, EventScheduled, EventCancelled, EventCompleted:
		return true
	}
	return false
}

// Event is an organization-scoped event (service, conference, rehearsal).
type Event struct {
	ID             int64       `json:"id"`
	OrganizationID int64       `json:"organization_id"`
	Title          string      `json:"title"`
	Description    *string     `json:"description"`
	Location       *string     `json:"location"`
	StartDate      time.Time   `json:"start_date"`
	EndDate        *time.Time  `json:"end_date"`
	Status         EventStatus `json:"status"`
	CreatedBy      int64       `json:"created_by"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// EventSchedule is one agenda entry of an event.
type EventSchedule struct {
	ID            int64     `json:"id"`
	EventID       int64     `json:"event_id"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	OrderPosition int       `json:"order_position"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventBlock marks a period during which the event venue or team is blocked.
type EventBlock struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
