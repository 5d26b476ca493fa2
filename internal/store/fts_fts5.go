//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			note_id UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, noteID, title, body string) error {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE note_id = ?`, noteID)
	_, err := tx.Exec(`INSERT INTO notes_fts (note_id, title, body) VALUES (?, ?, ?)`,
		noteID, title, body)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, noteID string) {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE note_id = ?`, noteID)
}

// SearchNotes performs an FTS5 full-text search over note titles and bodies
// and returns matches with highlighted snippets.
func (db *DB) SearchNotes(query string, limit int) ([]NoteSearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT note_id,
		       title,
		       snippet(notes_fts, 2, '<b>', '</b>', '...', 64)
		FROM notes_fts
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
