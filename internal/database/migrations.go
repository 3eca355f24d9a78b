package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		provider VARCHAR(50) NOT NULL,
		provider_id VARCHAR(255) NOT NULL,
		plan VARCHAR(50) NOT NULL DEFAULT 'free',
		daily_extraction_count INTEGER NOT NULL DEFAULT 0,
		last_extraction_reset TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(provider, provider_id)
	)`,

	`CREATE TABLE IF NOT EXISTS spaces (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(50) NOT NULL DEFAULT 'personal',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		space_id UUID NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		manager_note_access BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS memberships (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL DEFAULT 'member',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(workspace_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		color VARCHAR(20) NOT NULL DEFAULT '#6366F1',
		space_id UUID REFERENCES spaces(id) ON DELETE CASCADE,
		workspace_id UUID REFERENCES workspaces(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		space_id UUID REFERENCES spaces(id) ON DELETE CASCADE,
		workspace_id UUID REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		author_id UUID REFERENCES users(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		tags JSONB NOT NULL DEFAULT '[]',
		visibility_scope VARCHAR(20) NOT NULL DEFAULT 'private',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS recurring_tasks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		pattern VARCHAR(20) NOT NULL,
		interval_value INTEGER NOT NULL DEFAULT 1,
		weekdays JSONB NOT NULL DEFAULT '[]',
		month_day INTEGER,
		month_of_year INTEGER,
		end_date TIMESTAMP WITH TIME ZONE,
		max_occurrences INTEGER,
		current_occurrence INTEGER NOT NULL DEFAULT 0,
		last_generated_date TIMESTAMP WITH TIME ZONE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		note_id UUID REFERENCES notes(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		description TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'todo',
		priority VARCHAR(20) NOT NULL DEFAULT 'medium',
		assignee_id UUID REFERENCES users(id) ON DELETE SET NULL,
		due_date TIMESTAMP WITH TIME ZONE,
		tags JSONB NOT NULL DEFAULT '[]',
		series_id UUID REFERENCES recurring_tasks(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// template_task_id references tasks, which must exist before the column can
	`ALTER TABLE recurring_tasks ADD COLUMN IF NOT EXISTS template_task_id UUID REFERENCES tasks(id) ON DELETE CASCADE`,

	// UNIQUE(task_id) is the invariant: at most one running timer per task,
	// enforced at the storage layer so concurrent instances cannot race past it.
	`CREATE TABLE IF NOT EXISTS active_timers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE UNIQUE,
		start_time TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		start_time TIMESTAMP WITH TIME ZONE NOT NULL,
		end_time TIMESTAMP WITH TIME ZONE,
		duration INTEGER NOT NULL DEFAULT 0,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS feature_flags (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		scope_type VARCHAR(50) NOT NULL,
		scope_id UUID NOT NULL,
		key VARCHAR(255) NOT NULL,
		value BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(scope_type, scope_id, key)
	)`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID REFERENCES workspaces(id) ON DELETE CASCADE,
		actor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		action VARCHAR(100) NOT NULL,
		target_type VARCHAR(50) NOT NULL,
		target_id UUID NOT NULL,
		diff_json JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS weekly_reports (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		period_start TIMESTAMP WITH TIME ZONE NOT NULL,
		period_end TIMESTAMP WITH TIME ZONE NOT NULL,
		completed_tasks INTEGER NOT NULL DEFAULT 0,
		tracked_seconds INTEGER NOT NULL DEFAULT 0,
		active_projects INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_spaces_owner_id ON spaces(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_workspace_id ON memberships(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_user_id ON memberships(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_workspace_id ON projects(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_space_id ON projects(space_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_workspace_id ON notes(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_author_id ON notes(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee_id ON tasks(assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_series_id ON tasks(series_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_task_id ON time_entries(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_workspace_id ON audit_logs(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_reports_user_id ON weekly_reports(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_last_extraction_reset ON users(last_extraction_reset)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
