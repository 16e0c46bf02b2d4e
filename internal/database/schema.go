package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		authority_level TEXT NOT NULL DEFAULT 'USER' CHECK (authority_level IN ('ADMIN','DEVELOPER','USER')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL CHECK (name <> ''),
		description TEXT,
		created_by BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_projects (
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL CHECK (title <> ''),
		description TEXT,
		type TEXT NOT NULL DEFAULT 'BUG' CHECK (type IN ('BUG','FEATURE','ENHANCEMENT','DOCUMENTATION')),
		priority TEXT NOT NULL DEFAULT 'MEDIUM' CHECK (priority IN ('LOW','MEDIUM','HIGH')),
		status TEXT NOT NULL DEFAULT 'OPEN' CHECK (status IN ('OPEN','IN_PROGRESS','CLOSED')),
		created_by BIGINT NOT NULL REFERENCES users(id),
		time_estimate INTEGER CHECK (time_estimate > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS dev_assignments (
		ticket_id BIGINT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (ticket_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		ticket_id BIGINT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id),
		content TEXT NOT NULL CHECK (content <> ''),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tickets_project ON tickets(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dev_assignments_user ON dev_assignments(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_projects_user ON user_projects(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_ticket ON comments(ticket_id)`,
}

// EnsureSchema creates any missing tables and indexes. It is safe to run on
// every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
