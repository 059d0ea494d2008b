package models

import "time"

// Identity is an authentication principal (email/password or OAuth).
// It belongs to the auth layer; application code only reads it.
type Identity struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"` // nil for OAuth-only identities
	DisplayName  string    `json:"display_name"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
