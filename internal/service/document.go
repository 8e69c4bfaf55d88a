package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"casedocs/internal/docstats"
	"casedocs/internal/model"
	"casedocs/internal/repository"
	"casedocs/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
	ErrValidation = errors.New("validation failed")
)

// DocumentInput carries the user-supplied metadata for create and update.
type DocumentInput struct {
	ComplainantName string
	Subject         string
	Source          string
	ReceivedDate    time.Time
	Notes           string
}

// FileUpload is an optional attachment accompanying a create call. Name keeps
// the browser-supplied filename for display; only its extension ends up in
// the storage key.
type FileUpload struct {
	Reader      io.Reader
	Name        string
	ContentType string
	Size        int64
}

// ListQuery selects a view over the snapshot. Zero values mean "everything".
type ListQuery struct {
	Search string
	Source string
}

// DocumentListResult is the service-level DTO for a filtered snapshot view.
// Total counts the whole snapshot so callers can render "showing X of Y".
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling case documents.
type DocumentService interface {
	// Create stores the metadata record and, if a file is attached, uploads
	// the blob and patches the record with the attachment triple. The three
	// steps form a compensating transaction: any failure undoes what came
	// before, so a created document is always complete.
	Create(ctx context.Context, in DocumentInput, file *FileUpload) (*model.Document, error)

	// List loads the full snapshot and applies the search/source filters.
	List(ctx context.Context, q ListQuery) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Update overwrites the metadata of an existing document. Attachment
	// fields are never touched by an edit.
	Update(ctx context.Context, id string, in DocumentInput) error

	// Delete removes the blob first (when present), then the record. A blob
	// deletion failure is reported and the record is still removed.
	Delete(ctx context.Context, id string) error

	// Sources returns the filter catalogue for the current snapshot.
	Sources(ctx context.Context) ([]string, error)

	// DownloadURL returns a short-lived URL for the document's attachment.
	DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error)

	// Stats computes the dashboard summary for the current snapshot.
	Stats(ctx context.Context, now time.Time) (*docstats.Summary, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	log   *slog.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, log *slog.Logger) DocumentService {
	if log == nil {
		log = slog.Default()
	}
	return &documentService{store: store, repo: repo, log: log}
}

func (in DocumentInput) validate() error {
	switch {
	case strings.TrimSpace(in.ComplainantName) == "":
		return fmt.Errorf("%w: complainant name is required", ErrValidation)
	case strings.TrimSpace(in.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrValidation)
	case strings.TrimSpace(in.Source) == "":
		return fmt.Errorf("%w: source is required", ErrValidation)
	case in.ReceivedDate.IsZero():
		return fmt.Errorf("%w: received date is required", ErrValidation)
	}
	return nil
}

func (in DocumentInput) fields() repository.DocumentFields {
	return repository.DocumentFields{
		ComplainantName: strings.TrimSpace(in.ComplainantName),
		Subject:         strings.TrimSpace(in.Subject),
		Source:          strings.TrimSpace(in.Source),
		ReceivedDate:    in.ReceivedDate.UTC(),
		Notes:           in.Notes,
	}
}

// attachmentKey builds the collision-resistant storage key for a document's
// file: scoped under the document ID, named by upload timestamp plus the
// original extension. The original name never reaches the key, so unsafe
// characters stay out of storage.
func attachmentKey(docID, originalName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(originalName))
	return fmt.Sprintf("documents/%s/%d%s", docID, now.UnixMilli(), ext)
}

func (s *documentService) Create(ctx context.Context, in DocumentInput, file *FileUpload) (*model.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if file != nil && file.Reader == nil {
		return nil, fmt.Errorf("%w: file reader is nil", ErrValidation)
	}

	doc, err := s.repo.Create(ctx, in.fields())
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	if file == nil {
		return doc, nil
	}

	key := attachmentKey(doc.ID, file.Name, time.Now())

	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	_, err = s.store.Put(ctx, key, file.Reader, storage.PutObjectOptions{
		Size:        file.Size,
		ContentType: ct,
		Metadata: map[string]string{
			"original-filename": file.Name,
		},
	})
	if err != nil {
		// Roll back the record so no fileless orphan survives the failure.
		if delErr := s.repo.Delete(ctx, doc.ID); delErr != nil {
			return nil, fmt.Errorf("upload to storage: %v; rollback record failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	fm := repository.FileMeta{
		FileName: file.Name,
		FileURL:  s.store.PublicURL(key),
		FilePath: key,
	}
	if err := s.repo.SetFile(ctx, doc.ID, fm); err != nil {
		// Roll back both steps: the blob and the record.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Error("orphaned blob after failed rollback",
				"document_id", doc.ID, "file_path", key, "error", delErr)
		}
		if delErr := s.repo.Delete(ctx, doc.ID); delErr != nil {
			return nil, fmt.Errorf("attach file metadata: %v; rollback record failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("attach file metadata: %w", err)
	}

	doc.FileName = fm.FileName
	doc.FileURL = fm.FileURL
	doc.FilePath = fm.FilePath
	return doc, nil
}

// List loads the snapshot and derives the filtered view in memory.
func (s *documentService) List(ctx context.Context, q ListQuery) (*DocumentListResult, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{
		Items: docstats.Filter(docs, q.Search, q.Source),
		Total: len(docs),
	}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Update overwrites the metadata fields of an existing document.
func (s *documentService) Update(ctx context.Context, id string, in DocumentInput) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := in.validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, in.fields()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the attachment blob first, then the record. The order is
// kept even when the blob deletion fails: the record removal proceeds and
// the orphaned key is reported for out-of-band cleanup.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if doc.HasFile() {
		if err := s.store.Delete(ctx, doc.FilePath); err != nil {
			s.log.Error("orphaned blob: storage delete failed, removing record anyway",
				"document_id", id, "file_path", doc.FilePath, "error", err)
		}
	}
	return s.repo.Delete(ctx, id)
}

// Sources returns the catalogue of distinct sources for the snapshot.
func (s *documentService) Sources(ctx context.Context) ([]string, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return docstats.Sources(docs), nil
}

// DownloadURL presigns a short-lived link for the attachment.
func (s *documentService) DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !doc.HasFile() {
		return "", ErrNotFound
	}
	return s.store.PresignGet(ctx, doc.FilePath, expiry)
}

// Stats computes the dashboard summary from a fresh snapshot.
func (s *documentService) Stats(ctx context.Context, now time.Time) (*docstats.Summary, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sum := docstats.Summarize(docs, now)
	return &sum, nil
}
