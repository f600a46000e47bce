package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/crypto/bcrypt"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
)

// ErrNotFound is returned when a profile does not exist
var ErrNotFound = errors.New("profile not found")

// ErrInvalidCredentials is returned when email/password verification fails
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when registering an email that already has a profile
var ErrEmailTaken = errors.New("email already registered")

const (
	cacheSize = 4096
	cacheTTL  = 30 * time.Second
)

// Store provides profile persistence backed by PostgreSQL with a
// short-lived in-process LRU cache in front of reads by ID.
type Store struct {
	db    *sql.DB
	cache *expirable.LRU[string, *auth.User]
}

// NewStore creates a profile store
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		cache: expirable.NewLRU[string, *auth.User](cacheSize, nil, cacheTTL),
	}
}

const profileColumns = "id, email, name, avatar_url, role, is_admin, created_at, updated_at"

func scanProfile(row interface{ Scan(...interface{}) error }) (*auth.User, error) {
	var u auth.User
	var name, avatarURL sql.NullString
	err := row.Scan(&u.ID, &u.Email, &name, &avatarURL, &u.Role, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Name = name.String
	u.AvatarURL = avatarURL.String
	return &u, nil
}

// GetProfile returns the profile by ID. Reads go through the cache;
// the TTL bounds how stale a cached role can be.
func (s *Store) GetProfile(ctx context.Context, id string) (*auth.User, error) {
	if u, ok := s.cache.Get(id); ok {
		return u, nil
	}

	query := "SELECT " + profileColumns + " FROM profiles WHERE id = $1"
	u, err := scanProfile(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	s.cache.Add(id, u)
	return u, nil
}

// GetProfileByEmail returns the profile with the given email
func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE email = $1"
	u, err := scanProfile(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return u, nil
}

// EnsureProfile resolves an external principal to a profile, creating
// one on first sign-in. New profiles always start as free_user with
// the admin flag off; role upgrades happen through billing or admin
// action, never through sign-in. Returns the profile and whether it
// was created.
func (s *Store) EnsureProfile(ctx context.Context, principal auth.ExternalPrincipal) (*auth.User, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Known identity mapping wins regardless of current email.
	var userID string
	err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM identities WHERE provider = $1 AND external_id = $2",
		principal.Provider, principal.ExternalID,
	).Scan(&userID)

	switch {
	case err == nil:
		u, err := scanProfile(tx.QueryRowContext(ctx,
			"SELECT "+profileColumns+" FROM profiles WHERE id = $1", userID))
		if err != nil {
			return nil, false, fmt.Errorf("failed to load mapped profile: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit: %w", err)
		}
		return u, false, nil

	case err != sql.ErrNoRows:
		return nil, false, fmt.Errorf("failed to look up identity: %w", err)
	}

	// No mapping yet. Attach to an existing profile with the same
	// email, or provision a fresh one.
	email := strings.ToLower(principal.Email)
	created := false

	u, err := scanProfile(tx.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE email = $1", email))
	if err == sql.ErrNoRows {
		created = true
		u = &auth.User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      principal.Name,
			AvatarURL: principal.AvatarURL,
			Role:      auth.RoleFreeUser,
			IsAdmin:   false,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO profiles (id, email, name, avatar_url, role, is_admin)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at`,
			u.ID, u.Email, u.Name, u.AvatarURL, u.Role, u.IsAdmin,
		).Scan(&u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create profile: %w", err)
		}
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to look up profile by email: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO identities (provider, external_id, user_id) VALUES ($1, $2, $3)",
		principal.Provider, principal.ExternalID, u.ID); err != nil {
		return nil, false, fmt.Errorf("failed to record identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit: %w", err)
	}

	s.cache.Remove(u.ID)
	return u, created, nil
}

// RegisterWithPassword creates a credentials-backed profile. The
// password is stored as a bcrypt hash.
func (s *Store) RegisterWithPassword(ctx context.Context, email, name, password string) (*auth.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &auth.User{
		ID:      uuid.NewString(),
		Email:   strings.ToLower(email),
		Name:    name,
		Role:    auth.RoleFreeUser,
		IsAdmin: false,
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, name, role, is_admin, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at, updated_at`,
		u.ID, u.Email, u.Name, u.Role, u.IsAdmin, string(hash),
	).Scan(&u.CreatedAt, &u.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrEmailTaken
	} else if err != nil {
		return nil, fmt.Errorf("failed to register profile: %w", err)
	}
	return u, nil
}

// VerifyCredentials checks an email/password pair and returns the
// profile on success. Both a missing profile and a wrong password
// return ErrInvalidCredentials.
func (s *Store) VerifyCredentials(ctx context.Context, email, password string) (*auth.User, error) {
	query := "SELECT " + profileColumns + ", password_hash FROM profiles WHERE email = $1"

	var u auth.User
	var name, avatarURL, passwordHash sql.NullString
	err := s.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&u.ID, &u.Email, &name, &avatarURL, &u.Role, &u.IsAdmin,
		&u.CreatedAt, &u.UpdatedAt, &passwordHash,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	// Federated-only profiles have no password hash.
	if !passwordHash.Valid || passwordHash.String == "" {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash.String), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	u.Name = name.String
	u.AvatarURL = avatarURL.String
	return &u, nil
}

// UpdateRole sets the profile's role
func (s *Store) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	if !auth.ValidRole(role) {
		return fmt.Errorf("invalid role: %s", role)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2", role, id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	s.cache.Remove(id)
	return nil
}

// SetAdminFlag sets the orthogonal admin flag on a profile
func (s *Store) SetAdminFlag(ctx context.Context, id string, isAdmin bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET is_admin = $1, updated_at = NOW() WHERE id = $2", isAdmin, id)
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	s.cache.Remove(id)
	return nil
}

// UpdateProfile updates the display name and avatar
func (s *Store) UpdateProfile(ctx context.Context, id, name, avatarURL string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET name = $1, avatar_url = $2, updated_at = NOW() WHERE id = $3",
		name, avatarURL, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	s.cache.Remove(id)
	return nil
}

// List returns profiles ordered by creation time, newest first
func (s *Store) List(ctx context.Context, limit, offset int) ([]*auth.User, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	query := "SELECT " + profileColumns + ` FROM profiles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		u, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		users = append(users, u)
	}

	return users, total, rows.Err()
}

// ListAdmins returns all profiles with admin-level access
func (s *Store) ListAdmins(ctx context.Context) ([]*auth.User, error) {
	query := "SELECT " + profileColumns + ` FROM profiles
		WHERE role IN ($1, $2) OR is_admin
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, auth.RoleSuperAdmin, auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		u, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Count returns the total number of profiles
func (s *Store) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return total, nil
}
