package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the membership request table. The partial unique index keeps
// at most one non-denied request per user.
const schema = `
CREATE TABLE IF NOT EXISTS membership_requests (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	user_email      TEXT NOT NULL,
	github_username TEXT NOT NULL,
	note            TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	admin_notes     TEXT NOT NULL DEFAULT '',
	reviewed_by     TEXT NOT NULL DEFAULT '',
	invite_error    TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	reviewed_at     TIMESTAMPTZ,
	invite_sent_at  TIMESTAMPTZ,
	joined_at       TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS membership_requests_one_open_per_user
	ON membership_requests (user_id) WHERE status <> 'denied';
CREATE INDEX IF NOT EXISTS membership_requests_status_idx ON membership_requests (status);
`

// EnsureSchema applies the schema; every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
