package promotions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a promotion does not exist
	ErrNotFound = errors.New("promotion not found")

	// ErrCodeTaken is returned when a promotion code already exists
	ErrCodeTaken = errors.New("promotion code already exists")

	// ErrNotActive is returned when redeeming outside the promotion
	// window
	ErrNotActive = errors.New("promotion is not active")

	// ErrExhausted is returned when the promotion hit its use limit
	ErrExhausted = errors.New("promotion has no uses left")

	// ErrAlreadyRedeemed is returned on a second redemption by the
	// same user
	ErrAlreadyRedeemed = errors.New("promotion already redeemed")
)

// Promotion is a discount code with a validity window and a use
// limit. MaxUses of zero means unlimited.
type Promotion struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	Description     string    `json:"description,omitempty"`
	DiscountPercent int       `json:"discount_percent"`
	MaxUses         int       `json:"max_uses"`
	UseCount        int       `json:"use_count"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

const promotionColumns = "id, code, description, discount_percent, max_uses, use_count, starts_at, ends_at, created_by, created_at"

// Store persists promotions in PostgreSQL
type Store struct {
	db *sql.DB
}

// NewStore creates a promotion store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func scanPromotion(row interface{ Scan(...interface{}) error }) (*Promotion, error) {
	p := &Promotion{}
	var description, createdBy sql.NullString
	err := row.Scan(&p.ID, &p.Code, &description, &p.DiscountPercent, &p.MaxUses,
		&p.UseCount, &p.StartsAt, &p.EndsAt, &createdBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to scan promotion: %w", err)
	}
	p.Description = description.String
	p.CreatedBy = createdBy.String
	return p, nil
}

// Create inserts a promotion. Codes are stored uppercase.
func (s *Store) Create(ctx context.Context, p *Promotion) error {
	p.Code = strings.ToUpper(p.Code)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO promotions (id, code, description, discount_percent, max_uses, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		p.ID, p.Code, p.Description, p.DiscountPercent, p.MaxUses, p.StartsAt, p.EndsAt, p.CreatedBy,
	).Scan(&p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to create promotion: %w", err)
	}
	return nil
}

// GetByCode returns a promotion by its code
func (s *Store) GetByCode(ctx context.Context, code string) (*Promotion, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+promotionColumns+" FROM promotions WHERE code = $1",
		strings.ToUpper(code))
	return scanPromotion(row)
}

// List returns promotions, newest first
func (s *Store) List(ctx context.Context, limit, offset int) ([]*Promotion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+promotionColumns+`
		FROM promotions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	var promos []*Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// Delete removes a promotion and its redemptions
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM promotions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Redeem applies a promotion code for a user. A code redeems at most
// once per user, only inside its window, and only while uses remain.
func (s *Store) Redeem(ctx context.Context, code, userID string, now time.Time) (*Promotion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanPromotion(tx.QueryRowContext(ctx,
		"SELECT "+promotionColumns+" FROM promotions WHERE code = $1 FOR UPDATE",
		strings.ToUpper(code)))
	if err != nil {
		return nil, err
	}

	if now.Before(p.StartsAt) || now.After(p.EndsAt) {
		return nil, ErrNotActive
	}
	if p.MaxUses > 0 && p.UseCount >= p.MaxUses {
		return nil, ErrExhausted
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO promotion_redemptions (promotion_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (promotion_id, user_id) DO NOTHING`,
		p.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrAlreadyRedeemed
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE promotions SET use_count = use_count + 1 WHERE id = $1", p.ID); err != nil {
		return nil, fmt.Errorf("failed to increment use count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.UseCount++
	return p, nil
}
