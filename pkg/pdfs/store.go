package pdfs

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const pdfColumns = "id, owner_id, title, filename, blob_key, size_bytes, page_count, created_at, updated_at"

// Store persists PDF records in PostgreSQL
type Store struct {
	db *sql.DB
}

// NewStore creates a PDF store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func scanPDF(row interface{ Scan(...interface{}) error }) (*PDF, error) {
	pdf := &PDF{}
	err := row.Scan(&pdf.ID, &pdf.OwnerID, &pdf.Title, &pdf.Filename, &pdf.BlobKey,
		&pdf.SizeBytes, &pdf.PageCount, &pdf.CreatedAt, &pdf.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to scan pdf: %w", err)
	}
	return pdf, nil
}

// Create inserts a PDF record
func (s *Store) Create(ctx context.Context, pdf *PDF) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO pdfs (id, owner_id, title, filename, blob_key, size_bytes, page_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		pdf.ID, pdf.OwnerID, pdf.Title, pdf.Filename, pdf.BlobKey, pdf.SizeBytes, pdf.PageCount,
	).Scan(&pdf.CreatedAt, &pdf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pdf: %w", err)
	}
	return nil
}

// Get returns a PDF owned by the given user
func (s *Store) Get(ctx context.Context, ownerID, id string) (*PDF, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pdfColumns+`
		FROM pdfs WHERE id = $1 AND owner_id = $2`,
		id, ownerID)
	return scanPDF(row)
}

// List returns a page of the user's PDFs, newest first
func (s *Store) List(ctx context.Context, ownerID string, limit, offset int) ([]*PDF, int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pdfs WHERE owner_id = $1", ownerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count pdfs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pdfColumns+`
		FROM pdfs WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pdfs: %w", err)
	}
	defer rows.Close()

	var pdfs []*PDF
	for rows.Next() {
		pdf, err := scanPDF(rows)
		if err != nil {
			return nil, 0, err
		}
		pdfs = append(pdfs, pdf)
	}
	return pdfs, total, rows.Err()
}

// Search returns the user's PDFs whose title or filename matches the
// query, newest first
func (s *Store) Search(ctx context.Context, ownerID, query string, limit int) ([]*PDF, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pdfColumns+`
		FROM pdfs
		WHERE owner_id = $1 AND (LOWER(title) LIKE $2 OR LOWER(filename) LIKE $2)
		ORDER BY created_at DESC
		LIMIT $3`,
		ownerID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search pdfs: %w", err)
	}
	defer rows.Close()

	var pdfs []*PDF
	for rows.Next() {
		pdf, err := scanPDF(rows)
		if err != nil {
			return nil, err
		}
		pdfs = append(pdfs, pdf)
	}
	return pdfs, rows.Err()
}

// UpdateTitle renames a PDF
func (s *Store) UpdateTitle(ctx context.Context, ownerID, id, title string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE pdfs SET title = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2`,
		id, ownerID, title)
	if err != nil {
		return fmt.Errorf("failed to update pdf: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a PDF record
func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM pdfs WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete pdf: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of stored PDFs across all users
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pdfs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pdfs: %w", err)
	}
	return count, nil
}
