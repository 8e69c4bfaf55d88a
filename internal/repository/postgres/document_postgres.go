package postgres

import (
	"context"
	"database/sql"
	"errors"

	"casedocs/internal/model"
	"casedocs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, complainant_name, subject, source, received_date, notes, file_name, file_url, file_path, created_at`

func scanDocument(row interface{ Scan(dest ...any) error }) (*model.Document, error) {
	var (
		d                        model.Document
		fileName, fileURL, fPath sql.NullString
	)
	if err := row.Scan(
		&d.ID,
		&d.ComplainantName,
		&d.Subject,
		&d.Source,
		&d.ReceivedDate,
		&d.Notes,
		&fileName,
		&fileURL,
		&fPath,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.FileName = fileName.String
	d.FileURL = fileURL.String
	d.FilePath = fPath.String
	// Canonical instant in the store, local representation for callers.
	d.ReceivedDate = d.ReceivedDate.UTC()
	return &d, nil
}

// Create inserts a new document row. The database assigns id and created_at.
func (r *DocumentPostgres) Create(ctx context.Context, f repository.DocumentFields) (*model.Document, error) {
	const q = `
		INSERT INTO documents (complainant_name, subject, source, received_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ComplainantName,
		f.Subject,
		f.Source,
		f.ReceivedDate.UTC(),
		f.Notes,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// List returns the full snapshot ordered by received_date descending.
func (r *DocumentPostgres) List(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY received_date DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the metadata fields, leaving the attachment triple intact.
func (r *DocumentPostgres) Update(ctx context.Context, id string, f repository.DocumentFields) error {
	const q = `
		UPDATE documents
		SET complainant_name = $2, subject = $3, source = $4, received_date = $5, notes = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id,
		f.ComplainantName,
		f.Subject,
		f.Source,
		f.ReceivedDate.UTC(),
		f.Notes,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetFile attaches the file metadata triple to an existing record.
func (r *DocumentPostgres) SetFile(ctx context.Context, id string, fm repository.FileMeta) error {
	const q = `
		UPDATE documents
		SET file_name = $2, file_url = $3, file_path = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, fm.FileName, fm.FileURL, fm.FilePath)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Ignore rows affected: deleting an already-gone row is not an error.
	_, _ = res.RowsAffected()
	return nil
}
