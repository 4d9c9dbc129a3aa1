package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		age_bracket TEXT NOT NULL,
		level TEXT NOT NULL,
		gender TEXT NOT NULL,
		gender_preference TEXT NOT NULL,
		handle TEXT NOT NULL,
		rating DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		user_id BIGINT PRIMARY KEY,
		partner_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS past_matches (
		user1 BIGINT NOT NULL,
		user2 BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user1, user2)
	)`,
	`CREATE TABLE IF NOT EXISTS review_queue (
		user1 BIGINT NOT NULL,
		user2 BIGINT NOT NULL,
		due_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user1, user2)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_review_queue_due_at ON review_queue (due_at)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id UUID PRIMARY KEY,
		from_user BIGINT NOT NULL,
		to_user BIGINT NOT NULL,
		q1 INT NOT NULL,
		q2 INT NOT NULL,
		q3 INT NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (from_user, to_user)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_to_user ON feedback (to_user)`,
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
