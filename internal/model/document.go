package model

import "time"

// Document represents one filed case document: who complained, what about,
// which department it came from, when it was received, and an optional single
// file attachment.
//
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID              string    `json:"id"`
	ComplainantName string    `json:"complainant_name"`
	Subject         string    `json:"subject"`
	Source          string    `json:"source"`
	ReceivedDate    time.Time `json:"received_date"`
	Notes           string    `json:"notes,omitempty"`

	// Attachment fields are all set or all empty. FileName keeps the name the
	// user uploaded for display; FilePath is the object-storage key needed to
	// delete the blob later.
	FileName string `json:"file_name,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	FilePath string `json:"file_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasFile reports whether the document carries an attachment.
func (d *Document) HasFile() bool {
	return d.FilePath != ""
}
