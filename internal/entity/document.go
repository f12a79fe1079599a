package entity

import "time"

// Document represents an uploaded document for data transfer between layers.
// The ID is assigned by the upload collaborator and immutable afterwards.
type Document struct {
	ID          string    `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	FileExt     string    `json:"file_ext" db:"file_ext"`
	FileSize    *int64    `json:"file_size,omitempty" db:"file_size"`
	ContentHash []byte    `json:"content_hash,omitempty" db:"content_hash"`
	SourcePath  string    `json:"source_path,omitempty" db:"source_path"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Processed   bool      `json:"processed" db:"processed"`
	Summary     *string   `json:"summary,omitempty" db:"summary"`
}
