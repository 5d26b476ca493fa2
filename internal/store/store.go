// Package store provides the SQLite-backed data layer: typed entity tables
// plus the polymorphic metadata tables (tags, props, attachments,
// embeddings, links) keyed by (entity_type, entity_id).
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"

	"github.com/starford/othala/internal/apperr"
)

func init() {
	sqlite_vec.Auto() // registers the vec0 virtual table with go-sqlite3
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	status      TEXT NOT NULL DEFAULT 'todo'
	            CHECK(status IN ('todo', 'doing', 'done', 'blocked', 'canceled')),
	priority    INTEGER NOT NULL DEFAULT 3,
	due_at      DATETIME,
	recurrence  TEXT,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	starts_at   DATETIME NOT NULL,
	ends_at     DATETIME NOT NULL,
	timezone    TEXT NOT NULL,
	location    TEXT,
	recurrence  TEXT,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at);

CREATE TABLE IF NOT EXISTS journal_entries (
	id         TEXT PRIMARY KEY,
	entry_date TEXT NOT NULL,
	body       TEXT,
	mood       INTEGER,
	energy     INTEGER,
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_entry_date ON journal_entries(entry_date);

CREATE TABLE IF NOT EXISTS files (
	id          TEXT PRIMARY KEY,
	driver      TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	filename    TEXT NOT NULL,
	mime_type   TEXT,
	size_bytes  INTEGER NOT NULL DEFAULT 0,
	checksum    TEXT,
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id         TEXT PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	label      TEXT NOT NULL,
	color      TEXT,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tag_map (
	id          TEXT PRIMARY KEY,
	tag_id      TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	UNIQUE(tag_id, entity_type, entity_id)
);

CREATE INDEX IF NOT EXISTS idx_tag_map_entity ON tag_map(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS props (
	id           TEXT PRIMARY KEY,
	entity_type  TEXT NOT NULL,
	entity_id    TEXT NOT NULL,
	name         TEXT NOT NULL,
	value_type   TEXT NOT NULL,
	value        TEXT NOT NULL,
	is_encrypted INTEGER NOT NULL DEFAULT 1,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	UNIQUE(entity_type, entity_id, name)
);

CREATE TABLE IF NOT EXISTS attachments (
	id          TEXT PRIMARY KEY,
	file_id     TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	title       TEXT,
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachments_entity ON attachments(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS embeddings (
	id          TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	provider    TEXT NOT NULL,
	model       TEXT NOT NULL,
	vector      BLOB NOT NULL,
	dimensions  INTEGER NOT NULL DEFAULT 1536,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL,
	UNIQUE(entity_type, entity_id, provider, model)
);

CREATE TABLE IF NOT EXISTS links (
	id         TEXT PRIMARY KEY,
	src_type   TEXT NOT NULL,
	src_id     TEXT NOT NULL,
	tgt_type   TEXT NOT NULL,
	tgt_id     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_links_src ON links(src_type, src_id);
CREATE INDEX IF NOT EXISTS idx_links_tgt ON links(tgt_type, tgt_id);
`

// DB wraps a sql.DB with the knowledge-base operations.
type DB struct {
	conn *sql.DB

	vecAvailable bool
	vecDim       int // dimension of the embeddings_vec index (0 = not yet created)
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}

	db := &DB{conn: conn}

	var vecVersion string
	if err := conn.QueryRow(`SELECT vec_version()`).Scan(&vecVersion); err != nil {
		slog.Debug("store: sqlite-vec not available, similarity search uses full scan",
			slog.String("error", err.Error()))
	} else {
		db.vecAvailable = true
		if err := db.initVecFromEmbeddings(); err != nil {
			slog.Warn("store: vec index init failed", slog.String("error", err.Error()))
		}
	}

	return db, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// now returns the current UTC time. All timestamps are written from Go, not
// from SQLite defaults, so update timestamps compare strictly.
func now() time.Time {
	return time.Now().UTC()
}

// translate maps low-level sqlite faults onto the apperr taxonomy.
// Constraint failures (unique, foreign key, check) become ErrConflict so the
// caller can decide to retry-as-upsert; everything else passes through.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("store: %s: %w: %v", op, apperr.ErrConflict, err)
	}
	return fmt.Errorf("store: %s: %w", op, err)
}
