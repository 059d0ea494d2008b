package models

import "time"

// OrganizationTeam is a ministry team within an organization (worship, media, reception).
type OrganizationTeam struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TeamPosition is a role within a team (vocalist, drummer, sound desk).
type TeamPosition struct {
	ID                 int64     `json:"id"`
	OrganizationTeamID int64     `json:"organization_team_id"`
	Name               string    `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
}

// TeamPositionAssignment links an application user to a team position.
type TeamPositionAssignment struct {
	ID                int64     `json:"id"`
	ApplicationUserID int64     `json:"application_user_id"`
	TeamPositionID    int64     `json:"team_position_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// TeamMember is an assignment joined with user and position details.
type TeamMember struct {
	AssignmentID int64  `json:"assignment_id"`
	UserID       int64  `json:"user_id"`
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	PositionID   int64  `json:"position_id"`
	PositionName string `json:"position_name"`
}
