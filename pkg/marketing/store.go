package marketing

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
	// ErrNotFound is returned when a campaign does not exist
	ErrNotFound = errors.New("campaign not found")

	// ErrSlugTaken is returned when a campaign slug already exists
	ErrSlugTaken = errors.New("campaign slug already exists")
)

// Campaign is a marketing push with a run window. Active controls
// whether the campaign is currently shown, independent of the window.
type Campaign struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const campaignColumns = "id, name, slug, active, starts_at, ends_at, created_by, created_at, updated_at"

// Store persists campaigns in PostgreSQL
type Store struct {
	db *sql.DB
}

// NewStore creates a campaign store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func scanCampaign(row interface{ Scan(...interface{}) error }) (*Campaign, error) {
	c := &Campaign{}
	var createdBy sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Active, &c.StartsAt, &c.EndsAt,
		&createdBy, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to scan campaign: %w", err)
	}
	c.CreatedBy = createdBy.String
	return c, nil
}

// Create inserts a campaign. Slugs are stored lowercase.
func (s *Store) Create(ctx context.Context, c *Campaign) error {
	c.Slug = strings.ToLower(c.Slug)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO marketing_campaigns (id, name, slug, active, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Slug, c.Active, c.StartsAt, c.EndsAt, c.CreatedBy,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// Get returns a campaign by ID
func (s *Store) Get(ctx context.Context, id string) (*Campaign, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+campaignColumns+" FROM marketing_campaigns WHERE id = $1", id)
	return scanCampaign(row)
}

// List returns campaigns, newest first
func (s *Store) List(ctx context.Context, limit, offset int) ([]*Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM marketing_campaigns
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListActive returns campaigns that are switched on and inside their
// run window at the given time
func (s *Store) ListActive(ctx context.Context, now time.Time) ([]*Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM marketing_campaigns
		WHERE active = TRUE AND starts_at <= $1 AND ends_at >= $1
		ORDER BY starts_at DESC`,
		now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// SetActive switches a campaign on or off
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE marketing_campaigns
		SET active = $2, updated_at = NOW()
		WHERE id = $1`,
		id, active)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a campaign
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM marketing_campaigns WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
