package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Timestamps are stored as UTC.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'resident' CHECK (role IN ('admin', 'security', 'resident')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS images (
    id          TEXT PRIMARY KEY,
    data        BLOB NOT NULL,
    mime        TEXT NOT NULL,
    uploaded_by TEXT NOT NULL,
    created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id          TEXT PRIMARY KEY,
    kind        TEXT NOT NULL CHECK (kind IN ('lost', 'found')),
    category    TEXT NOT NULL CHECK (category IN ('electronics', 'documents', 'accessories', 'keys', 'clothing', 'other')),
    color       TEXT,
    description TEXT NOT NULL,
    location    TEXT NOT NULL,
    event_date  DATETIME NOT NULL,
    images      TEXT NOT NULL DEFAULT '[]',
    contact     TEXT,
    reporter_id TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'reported'
                CHECK (status IN ('reported', 'matched', 'under_review', 'returned', 'expired', 'archived')),
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_kind_category ON items(kind, category);

CREATE TABLE IF NOT EXISTS matches (
    id           TEXT PRIMARY KEY,
    lost_id      TEXT NOT NULL REFERENCES items(id),
    found_id     TEXT NOT NULL REFERENCES items(id),
    score        INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
    claim_status TEXT CHECK (claim_status IN ('under_review', 'approved')),
    claim_token  TEXT,
    created_by   TEXT NOT NULL,
    created_at   DATETIME NOT NULL,
    UNIQUE (lost_id, found_id)
);

CREATE INDEX IF NOT EXISTS idx_matches_found ON matches(found_id);

CREATE TABLE IF NOT EXISTS claims (
    id               TEXT PRIMARY KEY,
    match_id         TEXT REFERENCES matches(id),
    lost_id          TEXT NOT NULL REFERENCES items(id),
    found_id         TEXT REFERENCES items(id),
    claimant_id      TEXT NOT NULL,
    claimant_name    TEXT NOT NULL,
    security_answers TEXT NOT NULL,
    proof_image      TEXT,
    claimant_note    TEXT,
    confidence_score INTEGER NOT NULL,
    status           TEXT NOT NULL CHECK (status IN ('under_review', 'info_requested', 'approved', 'rejected')),
    admin_comment    TEXT,
    reject_reason    TEXT,
    decided_by       TEXT,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL,
    approved_at      DATETIME,
    rejected_at      DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_match_pending
    ON claims(match_id) WHERE match_id IS NOT NULL AND status IN ('under_review', 'info_requested');

CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);

CREATE TABLE IF NOT EXISTS pickup_tokens (
    id          TEXT PRIMARY KEY,
    claim_id    TEXT NOT NULL UNIQUE REFERENCES claims(id),
    created_at  DATETIME NOT NULL,
    expires_at  DATETIME NOT NULL,
    redeemed_at DATETIME,
    redeemed_by TEXT
);

CREATE TABLE IF NOT EXISTS audit_log (
    id         INTEGER PRIMARY KEY,
    action     TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    detail     TEXT,
    actor      TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_subject ON audit_log(subject_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
