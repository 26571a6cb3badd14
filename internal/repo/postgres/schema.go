package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables on first start. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return nil
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			tg_id BIGINT NOT NULL UNIQUE,
			username TEXT NOT NULL DEFAULT '',
			fio TEXT NOT NULL DEFAULT '',
			register_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			cash BIGINT NOT NULL DEFAULT 0,
			cpm NUMERIC(10,1) NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			trc20 TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS requests (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			register_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			text TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			status INT NOT NULL DEFAULT 0,
			moderator_id BIGINT NOT NULL DEFAULT 0,
			reject_text TEXT NOT NULL DEFAULT '',
			cpm NUMERIC(10,1) NOT NULL DEFAULT 0,
			group_chat_id BIGINT NOT NULL DEFAULT 0,
			group_message_id INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS links (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			register_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			link TEXT NOT NULL UNIQUE,
			link_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'created',
			moderator_id BIGINT NOT NULL DEFAULT 0,
			view_count BIGINT NOT NULL DEFAULT 0,
			cost BIGINT NOT NULL DEFAULT 0,
			group_chat_id BIGINT NOT NULL DEFAULT 0,
			group_message_id INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS work_link_requests (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			register_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status INT NOT NULL DEFAULT 0,
			reject_text TEXT NOT NULL DEFAULT '',
			moderator_id BIGINT NOT NULL DEFAULT 0,
			group_chat_id BIGINT NOT NULL DEFAULT 0,
			group_message_id INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS work_links (
			id BIGSERIAL PRIMARY KEY,
			worker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			link TEXT NOT NULL,
			moderator_id BIGINT NOT NULL DEFAULT 0,
			register_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS cash_outs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			trc20 TEXT NOT NULL DEFAULT '',
			cost BIGINT NOT NULL DEFAULT 0,
			status INT NOT NULL DEFAULT 0,
			moderator_id BIGINT NOT NULL DEFAULT 0,
			reject_text TEXT NOT NULL DEFAULT '',
			register_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			group_chat_id BIGINT NOT NULL DEFAULT 0,
			group_message_id INT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_links_owner ON links (owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_links_status ON links (status)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests (status)`,
		`CREATE INDEX IF NOT EXISTS idx_cash_outs_status ON cash_outs (status)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
