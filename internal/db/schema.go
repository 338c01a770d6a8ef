package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'STUDENT' CHECK (role IN ('ADMIN', 'STAFF', 'STUDENT')),
    student_id    TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS hand_in_reports (
    id             INTEGER PRIMARY KEY,
    reference_code TEXT NOT NULL UNIQUE,
    finder_name    TEXT,
    finder_contact TEXT,
    category       TEXT NOT NULL DEFAULT 'OTHERS',
    name           TEXT NOT NULL,
    description    TEXT NOT NULL,
    color          TEXT NOT NULL,
    location       TEXT NOT NULL,
    reported_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    received       INTEGER NOT NULL DEFAULT 0,
    received_at    DATETIME
);

CREATE TABLE IF NOT EXISTS found_items (
    id            INTEGER PRIMARY KEY,
    category      TEXT NOT NULL,
    name          TEXT NOT NULL,
    description   TEXT,
    color         TEXT,
    date_found    DATE NOT NULL,
    location      TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK (status IN ('AVAILABLE', 'CLAIMED', 'DONATED')),
    registered_by INTEGER REFERENCES users(id),
    hand_in_id    INTEGER UNIQUE REFERENCES hand_in_reports(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_found_items_status ON found_items(status, date_found);

CREATE TABLE IF NOT EXISTS lost_tickets (
    id              INTEGER PRIMARY KEY,
    owner_id        INTEGER NOT NULL REFERENCES users(id),
    category        TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT,
    color           TEXT,
    date_lost       DATE NOT NULL,
    location        TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'SEARCHING'
                    CHECK (status IN ('SEARCHING', 'MATCH_FOUND', 'CLAIM_PENDING', 'CLOSED')),
    matched_item_id INTEGER REFERENCES found_items(id),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((status = 'SEARCHING') = (matched_item_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_lost_tickets_owner ON lost_tickets(owner_id, category, status);

CREATE TABLE IF NOT EXISTS claims (
    id               INTEGER PRIMARY KEY,
    ticket_id        INTEGER REFERENCES lost_tickets(id),
    found_item_id    INTEGER NOT NULL REFERENCES found_items(id),
    claimant_id      INTEGER NOT NULL REFERENCES users(id),
    proof            TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'PENDING'
                     CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED', 'COMPLETED')),
    reviewed_by      INTEGER REFERENCES users(id),
    rejection_reason TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claims_item_status ON claims(found_item_id, status);

CREATE TABLE IF NOT EXISTS audit_log (
    id           INTEGER PRIMARY KEY,
    actor_id     INTEGER REFERENCES users(id),
    action       TEXT NOT NULL,
    target_model TEXT NOT NULL,
    target_id    TEXT NOT NULL,
    timestamp    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    changes      TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
