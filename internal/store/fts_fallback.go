//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search uses a LIKE fallback on the notes table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error {
	// Title and body already live in the notes table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// SearchNotes performs a LIKE-based search (fallback when FTS5 is not
// compiled in).
func (db *DB) SearchNotes(query string, limit int) ([]NoteSearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, COALESCE(title, ''), substr(body, 1, 200)
		FROM notes
		WHERE title LIKE ? OR body LIKE ?
		ORDER BY created_at, id
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search notes: %w", err)
	}
	defer rows.Close()

	var out []NoteSearchResult
	for rows.Next() {
		var r NoteSearchResult
		if err := rows.Scan(&r.NoteID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
