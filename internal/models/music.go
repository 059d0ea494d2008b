package models

import "time"

// Music is one song in an organization's repertoire.
type Music struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Title          string    `json:"title"`
	Artist         *string   `json:"artist"`
	Key            *string   `json:"key"`
	BPM            *int      `json:"bpm"`
	Lyrics         *string   `json:"lyrics"`
	YoutubeURL     *string   `json:"youtube_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
