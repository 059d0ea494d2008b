package models

import "time"

// File is tenant file metadata; the bytes live in S3 under S3Key.
type File struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"` // MIME type
	Size           int64     `json:"size"` // bytes
	S3Key          string    `json:"s3_key"`
	URL            *string   `json:"url"`
	UploadedBy     int64     `json:"uploaded_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
