package store

import (
	"context"
	"fmt"
)

// The schema is portable between SQLite and Postgres: ids, dates and
// timestamps are TEXT, and every name has a lower-cased *_key companion for
// case-insensitive substring search. Names are unique on that key, so
// "Tower A" and "tower a" cannot coexist in one scope. Hierarchy foreign keys do not cascade,
// so the database itself refuses to orphan children.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		first_name      TEXT NOT NULL DEFAULT '',
		last_name       TEXT NOT NULL DEFAULT '',
		full_name       TEXT NOT NULL DEFAULT '',
		email           TEXT NOT NULL,
		first_key       TEXT NOT NULL DEFAULT '',
		last_key        TEXT NOT NULL DEFAULT '',
		full_key        TEXT NOT NULL DEFAULT '',
		email_key       TEXT NOT NULL,
		department      TEXT NOT NULL DEFAULT '',
		team            TEXT NOT NULL DEFAULT '',
		position        TEXT NOT NULL DEFAULT '',
		employment_rate DOUBLE PRECISION NOT NULL DEFAULT 1,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email_key)`,
	`CREATE INDEX IF NOT EXISTS idx_users_full ON users(full_key)`,
	`CREATE INDEX IF NOT EXISTS idx_users_team ON users(team)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		name_key         TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		manager_id       TEXT REFERENCES users(id) ON DELETE SET NULL,
		lead_engineer_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		status           TEXT NOT NULL DEFAULT 'active'
		                 CHECK (status IN ('active', 'archived', 'paused', 'canceled')),
		client           TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_name_key ON projects(name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_manager ON projects(manager_id)`,

	`CREATE TABLE IF NOT EXISTS stages (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id),
		name        TEXT NOT NULL,
		name_key    TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_date  TEXT,
		end_date    TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_stages_name_key ON stages(project_id, name_key)`,

	`CREATE TABLE IF NOT EXISTS objects (
		id             TEXT PRIMARY KEY,
		stage_id       TEXT NOT NULL REFERENCES stages(id),
		project_id     TEXT NOT NULL REFERENCES projects(id),
		name           TEXT NOT NULL,
		name_key       TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		responsible_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		start_date     TEXT,
		end_date       TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_objects_name_key ON objects(stage_id, name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_objects_project ON objects(project_id, name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_objects_responsible ON objects(responsible_id)`,

	`CREATE TABLE IF NOT EXISTS sections (
		id             TEXT PRIMARY KEY,
		object_id      TEXT NOT NULL REFERENCES objects(id),
		project_id     TEXT NOT NULL REFERENCES projects(id),
		name           TEXT NOT NULL,
		name_key       TEXT NOT NULL,
		type           TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		responsible_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		start_date     TEXT,
		end_date       TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sections_name_key ON sections(object_id, name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_project ON sections(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_responsible ON sections(responsible_id)`,

	`CREATE TABLE IF NOT EXISTS notes (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		search_key TEXT NOT NULL,
		project_id TEXT REFERENCES projects(id) ON DELETE SET NULL,
		object_id  TEXT REFERENCES objects(id) ON DELETE SET NULL,
		author_id  TEXT REFERENCES users(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project_id, created_at)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// Migrate re-applies the schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}
