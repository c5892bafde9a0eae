package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"civiclink/internal/platform/config"
)

const uniqueViolation = "23505"

// Open connects through the pgx database/sql driver and verifies the
// connection. Stores work on *sql.DB so they can share transactions.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// UniqueConstraint returns the violated constraint name, or "" when err is not
// a unique violation.
func UniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		phone TEXT,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		profile_picture TEXT NOT NULL DEFAULT '',
		district TEXT,
		city TEXT,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		ministry_id UUID,
		ngo_id UUID,
		created_at TIMESTAMPTZ NOT NULL,
		last_login_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_phone_key ON users (phone) WHERE phone IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS users_ministry_idx ON users (ministry_id)`,

	`CREATE TABLE IF NOT EXISTS ministries (
		id UUID PRIMARY KEY,
		name_en TEXT NOT NULL,
		name_si TEXT NOT NULL DEFAULT '',
		name_ta TEXT NOT NULL DEFAULT '',
		categories TEXT[] NOT NULL DEFAULT '{}',
		contact_email TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		officers TEXT[] NOT NULL DEFAULT '{}',
		total_issues INTEGER NOT NULL DEFAULT 0,
		solved INTEGER NOT NULL DEFAULT 0,
		pending INTEGER NOT NULL DEFAULT 0,
		resolution_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		avg_response_time_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		stats_computed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ministries_categories_idx ON ministries USING GIN (categories)`,

	`CREATE TABLE IF NOT EXISTS ngos (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		registration_number TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL,
		contact_phone TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		areas_of_work TEXT[] NOT NULL DEFAULT '{}',
		admins TEXT[] NOT NULL DEFAULT '{}',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		approved_by UUID,
		approved_at TIMESTAMPTZ,
		total_claimed INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		success_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		stats_computed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ngos_registration_number_key ON ngos (registration_number)`,

	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY,
		reporter_id UUID NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		images TEXT[] NOT NULL DEFAULT '{}',
		tagged_ministries TEXT[] NOT NULL DEFAULT '{}',
		verified_by TEXT[] NOT NULL DEFAULT '{}',
		verification_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		is_crisis BOOLEAN NOT NULL DEFAULT FALSE,
		government_response JSONB,
		ngo_claim JSONB,
		claim_ngo_id UUID,
		solution_verified BOOLEAN NOT NULL DEFAULT FALSE,
		solution_verified_at TIMESTAMPTZ,
		reported_from TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS issues_status_idx ON issues (status)`,
	`CREATE INDEX IF NOT EXISTS issues_district_idx ON issues (district)`,
	`CREATE INDEX IF NOT EXISTS issues_created_at_idx ON issues (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS issues_tagged_ministries_idx ON issues USING GIN (tagged_ministries)`,
	`CREATE INDEX IF NOT EXISTS issues_claim_ngo_idx ON issues (claim_ngo_id)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		issue_id UUID,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC)`,
}

// Migrate creates the tables and indexes when they are missing. Every
// statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Tables lists every table Migrate creates, in an order safe for TRUNCATE.
func Tables() []string {
	return []string{"notifications", "issues", "ngos", "ministries", "users"}
}
