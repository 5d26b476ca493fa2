package store

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// NoteSearchResult is one full-text search hit.
type NoteSearchResult struct {
	NoteID  string `json:"note_id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// CreateNote inserts a new note and indexes it for full-text search.
func (db *DB) CreateNote(n models.NewNote) (*models.Note, error) {
	note := models.Note{
		ID:        uuid.NewString(),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: now(),
		UpdatedAt: now(),
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, translate("create note", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.ID, note.Title, note.Body, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return nil, translate("create note", err)
	}
	if err := ftsUpsert(tx, note.ID, derefOr(note.Title, ""), note.Body); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, translate("create note", err)
	}
	return &note, nil
}

// GetNote returns the note with the given id, or apperr.ErrNotFound.
func (db *DB) GetNote(id string) (*models.Note, error) {
	return scanNote(db.conn.QueryRow(`
		SELECT id, title, body, created_at, updated_at FROM notes WHERE id = ?
	`, id))
}

// FindNoteByTitle returns the oldest note with an exact title match, or
// apperr.ErrNotFound. Used for wikilink resolution.
func (db *DB) FindNoteByTitle(title string) (*models.Note, error) {
	return scanNote(db.conn.QueryRow(`
		SELECT id, title, body, created_at, updated_at
		FROM notes WHERE title = ?
		ORDER BY created_at, id LIMIT 1
	`, title))
}

// ListNotesByIDs returns the notes whose ids are in the given set, ordered
// by creation time. An empty set yields an empty slice without a query.
func (db *DB) ListNotesByIDs(ids []string) ([]models.Note, error) {
	if len(ids) == 0 {
		return []models.Note{}, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.conn.Query(`
		SELECT id, title, body, created_at, updated_at
		FROM notes WHERE id IN (`+placeholders+`)
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, translate("list notes", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// UpdateNote applies a partial patch and refreshes updated_at. An empty
// patch is a pure read: no write is issued and the timestamp is untouched.
func (db *DB) UpdateNote(id string, patch models.NotePatch) (*models.Note, error) {
	if patch.IsEmpty() {
		return db.GetNote(id)
	}

	set := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Body != nil {
		set = append(set, "body = ?")
		args = append(args, *patch.Body)
	}
	args = append(args, id)

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, translate("update note", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`UPDATE notes SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, translate("update note", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}

	note, err := scanNote(tx.QueryRow(`
		SELECT id, title, body, created_at, updated_at FROM notes WHERE id = ?
	`, id))
	if err != nil {
		return nil, err
	}
	if err := ftsUpsert(tx, note.ID, derefOr(note.Title, ""), note.Body); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, translate("update note", err)
	}
	return note, nil
}

// DeleteNote removes a note and returns the deleted row. Metadata rows
// referring to the note (props, tags, attachments, embeddings) are left in
// place: cleanup across entity kinds is the caller's responsibility.
func (db *DB) DeleteNote(id string) (*models.Note, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, translate("delete note", err)
	}
	defer tx.Rollback() //nolint:errcheck

	note, err := scanNote(tx.QueryRow(`
		SELECT id, title, body, created_at, updated_at FROM notes WHERE id = ?
	`, id))
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return nil, translate("delete note", err)
	}
	ftsDelete(tx, id)
	if err := tx.Commit(); err != nil {
		return nil, translate("delete note", err)
	}
	return note, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (*models.Note, error) {
	var n models.Note
	var title sql.NullString
	if err := r.Scan(&n.ID, &title, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, translate("scan note", err)
	}
	if title.Valid {
		n.Title = &title.String
	}
	return &n, nil
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
