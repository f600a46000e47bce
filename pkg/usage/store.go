package usage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
)

// Store persists usage counters in PostgreSQL
type Store struct {
	db    *sql.DB
	cache *Cache
}

// NewStore creates a usage store. The cache is optional; pass nil to
// read straight from the database.
func NewStore(db *sql.DB, cache *Cache) *Store {
	return &Store{db: db, cache: cache}
}

// Snapshot returns the current counters for a user. A user with no
// row yet reads as zero usage.
func (s *Store) Snapshot(ctx context.Context, userID string) (*auth.UsageSnapshot, error) {
	if s.cache != nil {
		if snap, ok := s.cache.Get(ctx, userID); ok {
			return snap, nil
		}
	}

	var snap auth.UsageSnapshot
	err := s.db.QueryRowContext(ctx,
		"SELECT pdf_count, monthly_uploads FROM usage_counters WHERE user_id = $1",
		userID,
	).Scan(&snap.PDFCount, &snap.MonthlyUploads)

	if err == sql.ErrNoRows {
		snap = auth.UsageSnapshot{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read usage counters: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, &snap)
	}
	return &snap, nil
}

// RecordUpload increments both counters for a completed upload
func (s *Store) RecordUpload(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_counters (user_id, pdf_count, monthly_uploads)
		VALUES ($1, 1, 1)
		ON CONFLICT (user_id) DO UPDATE SET
			pdf_count = usage_counters.pdf_count + 1,
			monthly_uploads = usage_counters.monthly_uploads + 1,
			updated_at = NOW()`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return nil
}

// RecordDelete decrements the PDF count for a removed document.
// Monthly uploads are a high-water mark for the period and do not
// decrease on delete.
func (s *Store) RecordDelete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE usage_counters SET
			pdf_count = GREATEST(pdf_count - 1, 0),
			updated_at = NOW()
		WHERE user_id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to record delete: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return nil
}

// ResetMonthly zeroes every user's monthly upload counter and starts
// a new period. Called by the scheduler at the beginning of each month.
func (s *Store) ResetMonthly(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE usage_counters SET
			monthly_uploads = 0,
			period_start = NOW(),
			updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset monthly counters: %w", err)
	}

	affected, _ := result.RowsAffected()

	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	return affected, nil
}
