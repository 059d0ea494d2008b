package models

import "time"

// ApplicationUser is the tenant-scoped profile, distinct from the auth identity.
type ApplicationUser struct {
	ID                             int64      `json:"id"`
	Email                          string     `json:"email"`
	Name                           string     `json:"name"`
	OrganizationID                 int64      `json:"organization_id"`
	IsAdmin                        bool       `json:"is_admin"`
	CanAddPeople                   bool       `json:"can_add_people"`
	CanOrganizeEvents              bool       `json:"can_organize_events"`
	CanManageMedia                 bool       `json:"can_manage_media"`
	ReceiveCancelEventNotification bool       `json:"receive_cancel_event_notification"`
	Pending                        bool       `json:"pending"`
	PhoneNumber                    *string    `json:"phone_number"`
	BirthDate                      *time.Time `json:"birth_date"`
	CountryDialCode                *string    `json:"country_dial_code"`
	ProfileURL                     *string    `json:"profile_url"`
	CreatedAt                      time.Time  `json:"created_at"`
	UpdatedAt                      time.Time  `json:"updated_at"`
}

// UserStats summarizes users for the admin-master dashboard.
type UserStats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Admins  int `json:"admins"`
	Recent  int `json:"recent"` // created within the last 30 days
}
