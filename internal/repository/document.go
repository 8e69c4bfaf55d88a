// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g. postgres) inside this directory.
package repository

import (
	"context"
	"errors"
	"time"

	"casedocs/internal/model"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentFields are the user-editable metadata of a document. They are used
// for both create and update; the attachment triple is managed separately so
// an edit can never partially touch it.
type DocumentFields struct {
	ComplainantName string
	Subject         string
	Source          string
	ReceivedDate    time.Time
	Notes           string
}

// FileMeta is the attachment triple patched onto a record after its blob has
// been uploaded. All three values are required together.
type FileMeta struct {
	FileName string
	FileURL  string
	FilePath string
}

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations. Each call is a
// single round trip with no local caching.
type DocumentRepository interface {
	// Create inserts a new document record. The store assigns the ID and
	// creation time; the returned document carries them.
	Create(ctx context.Context, f DocumentFields) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns the full document snapshot ordered by receivedDate
	// descending. Deliberately non-paginated: the anticipated corpus is small
	// and the callers derive search/stat views from the whole snapshot.
	List(ctx context.Context) ([]model.Document, error)

	// Update overwrites the metadata fields of an existing document. The
	// attachment fields are left untouched. Returns ErrNotFound if the row
	// does not exist.
	Update(ctx context.Context, id string, f DocumentFields) error

	// SetFile attaches file metadata to an existing record.
	SetFile(ctx context.Context, id string, fm FileMeta) error

	// Delete removes a document by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
