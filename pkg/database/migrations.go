package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all schema migrations in order
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create profiles table",
			SQL: `
				CREATE TABLE IF NOT EXISTS profiles (
					id UUID PRIMARY KEY,
					email VARCHAR(255) NOT NULL UNIQUE,
					name VARCHAR(255),
					avatar_url TEXT,
					role VARCHAR(50) NOT NULL DEFAULT 'free_user',
					is_admin BOOLEAN NOT NULL DEFAULT FALSE,
					password_hash TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email);
				CREATE INDEX IF NOT EXISTS idx_profiles_role ON profiles(role);
			`,
		},
		{
			Version:     2,
			Description: "Create identities table for federated sign-in",
			SQL: `
				CREATE TABLE IF NOT EXISTS identities (
					provider VARCHAR(50) NOT NULL,
					external_id VARCHAR(255) NOT NULL,
					user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (provider, external_id)
				);

				CREATE INDEX IF NOT EXISTS idx_identities_user_id ON identities(user_id);
			`,
		},
		{
			Version:     3,
			Description: "Create sessions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS sessions (
					token_hash VARCHAR(64) PRIMARY KEY,
					user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					email VARCHAR(255) NOT NULL,
					role VARCHAR(50) NOT NULL,
					is_admin BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					expires_at TIMESTAMPTZ NOT NULL,
					refreshed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
				CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
			`,
		},
		{
			Version:     4,
			Description: "Create usage counters table",
			SQL: `
				CREATE TABLE IF NOT EXISTS usage_counters (
					user_id UUID PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
					pdf_count INT NOT NULL DEFAULT 0,
					monthly_uploads INT NOT NULL DEFAULT 0,
					period_start TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     5,
			Description: "Create pdfs table",
			SQL: `
				CREATE TABLE IF NOT EXISTS pdfs (
					id UUID PRIMARY KEY,
					owner_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					title VARCHAR(512) NOT NULL,
					filename VARCHAR(512) NOT NULL,
					blob_key TEXT NOT NULL,
					size_bytes BIGINT NOT NULL DEFAULT 0,
					page_count INT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_pdfs_owner_id ON pdfs(owner_id);
				CREATE INDEX IF NOT EXISTS idx_pdfs_created_at ON pdfs(created_at);
			`,
		},
		{
			Version:     6,
			Description: "Create shop_pdfs table",
			SQL: `
				CREATE TABLE IF NOT EXISTS shop_pdfs (
					id UUID PRIMARY KEY,
					title VARCHAR(512) NOT NULL,
					description TEXT,
					blob_key TEXT NOT NULL,
					price_cents INT NOT NULL DEFAULT 0,
					uploaded_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
					published BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_shop_pdfs_published ON shop_pdfs(published);
			`,
		},
		{
			Version:     7,
			Description: "Create promotions tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS promotions (
					id UUID PRIMARY KEY,
					code VARCHAR(64) NOT NULL UNIQUE,
					description TEXT,
					discount_percent INT NOT NULL DEFAULT 0,
					max_uses INT NOT NULL DEFAULT 0,
					use_count INT NOT NULL DEFAULT 0,
					starts_at TIMESTAMPTZ NOT NULL,
					ends_at TIMESTAMPTZ NOT NULL,
					created_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS promotion_redemptions (
					promotion_id UUID NOT NULL REFERENCES promotions(id) ON DELETE CASCADE,
					user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					redeemed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (promotion_id, user_id)
				);
			`,
		},
		{
			Version:     8,
			Description: "Create subscriptions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS subscriptions (
					user_id UUID PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
					plan VARCHAR(50) NOT NULL DEFAULT 'free',
					status VARCHAR(50) NOT NULL DEFAULT 'none',
					external_ref VARCHAR(255),
					current_period_end TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     9,
			Description: "Create marketing_campaigns table",
			SQL: `
				CREATE TABLE IF NOT EXISTS marketing_campaigns (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					slug VARCHAR(100) NOT NULL UNIQUE,
					active BOOLEAN NOT NULL DEFAULT FALSE,
					starts_at TIMESTAMPTZ NOT NULL,
					ends_at TIMESTAMPTZ NOT NULL,
					created_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     10,
			Description: "Create audit_log table",
			SQL: `
				CREATE TABLE IF NOT EXISTS audit_log (
					id BIGSERIAL PRIMARY KEY,
					event_type VARCHAR(100) NOT NULL,
					actor_id UUID NOT NULL,
					target_id VARCHAR(255) NOT NULL,
					detail JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at DESC);
				CREATE INDEX IF NOT EXISTS idx_audit_log_actor ON audit_log(actor_id);
			`,
		},
	}
}

// RunMigrations executes all pending migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}

	appliedVersions := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		appliedVersions[version] = true
	}
	rows.Close()

	for _, migration := range GetMigrations() {
		if appliedVersions[migration.Version] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w",
				migration.Version, migration.Description, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
