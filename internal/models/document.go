package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is metadata over a file held in blob storage under FileKey.
type Document struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	AssociationID uuid.UUID  `json:"association_id" db:"association_id"`
	Title         string     `json:"title" db:"title"`
	Description   *string    `json:"description" db:"description"`
	Category      string     `json:"category" db:"category"`
	FileKey       string     `json:"file_key" db:"file_key"`
	FileName      string     `json:"file_name" db:"file_name"`
	ContentType   string     `json:"content_type" db:"content_type"`
	FileSize      int64      `json:"file_size" db:"file_size"`
	UploadedBy    string     `json:"uploaded_by" db:"uploaded_by"`
	Visibility    Visibility `json:"visibility" db:"visibility"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
