package shop

import (
	"context"
	"database/sql"
	"fmt"
)

const itemColumns = "id, title, description, blob_key, price_cents, uploaded_by, published, created_at, updated_at"

// Store persists shop items in PostgreSQL
type Store struct {
	db *sql.DB
}

// NewStore creates a shop store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func scanItem(row interface{ Scan(...interface{}) error }) (*Item, error) {
	item := &Item{}
	var description, uploadedBy sql.NullString
	err := row.Scan(&item.ID, &item.Title, &description, &item.BlobKey, &item.PriceCents,
		&uploadedBy, &item.Published, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to scan shop item: %w", err)
	}
	item.Description = description.String
	item.UploadedBy = uploadedBy.String
	return item, nil
}

// Create inserts a shop item
func (s *Store) Create(ctx context.Context, item *Item) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO shop_pdfs (id, title, description, blob_key, price_cents, uploaded_by, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		item.ID, item.Title, item.Description, item.BlobKey, item.PriceCents,
		item.UploadedBy, item.Published,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shop item: %w", err)
	}
	return nil
}

// Get returns one shop item by id
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM shop_pdfs WHERE id = $1", id)
	return scanItem(row)
}

// ListPublished returns published items, newest first
func (s *Store) ListPublished(ctx context.Context, limit, offset int) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM shop_pdfs WHERE published = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListAll returns every item including unpublished drafts, for the
// admin catalog view
func (s *Store) ListAll(ctx context.Context, limit, offset int) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM shop_pdfs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update changes an item's listing fields
func (s *Store) Update(ctx context.Context, id, title, description string, priceCents int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shop_pdfs SET title = $2, description = $3, price_cents = $4, updated_at = NOW()
		WHERE id = $1`,
		id, title, description, priceCents)
	if err != nil {
		return fmt.Errorf("failed to update shop item: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished flips an item's published state
func (s *Store) SetPublished(ctx context.Context, id string, published bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shop_pdfs SET published = $2, updated_at = NOW()
		WHERE id = $1`,
		id, published)
	if err != nil {
		return fmt.Errorf("failed to publish shop item: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM shop_pdfs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete shop item: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
