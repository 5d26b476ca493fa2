package store

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// CreateJournalEntry inserts a new journal entry. One entry per date is a
// caller convention, not a constraint.
func (db *DB) CreateJournalEntry(j models.NewJournalEntry) (*models.JournalEntry, error) {
	entry := models.JournalEntry{
		ID:        uuid.NewString(),
		EntryDate: j.EntryDate,
		Body:      j.Body,
		Mood:      j.Mood,
		Energy:    j.Energy,
		Tags:      j.Tags,
		CreatedAt: now(),
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(entry.Tags)

	_, err := db.conn.Exec(`
		INSERT INTO journal_entries (id, entry_date, body, mood, energy, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.EntryDate, entry.Body, entry.Mood, entry.Energy,
		string(tagsJSON), entry.CreatedAt)
	if err != nil {
		return nil, translate("create journal entry", err)
	}
	return &entry, nil
}

// GetJournalEntry returns the entry with the given id, or apperr.ErrNotFound.
func (db *DB) GetJournalEntry(id string) (*models.JournalEntry, error) {
	return scanJournalEntry(db.conn.QueryRow(journalSelect+` WHERE id = ?`, id))
}

// ListJournalBetween returns entries whose date falls in [start, end], both
// bounds inclusive. Dates are YYYY-MM-DD strings, so lexical comparison is
// chronological.
func (db *DB) ListJournalBetween(start, end string) ([]models.JournalEntry, error) {
	rows, err := db.conn.Query(journalSelect+`
		WHERE entry_date BETWEEN ? AND ?
		ORDER BY entry_date, id
	`, start, end)
	if err != nil {
		return nil, translate("list journal entries", err)
	}
	defer rows.Close()

	out := []models.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpdateJournalEntry applies a partial patch. Journal entries carry no
// update timestamp, so nothing is bumped. An empty patch is a pure read.
func (db *DB) UpdateJournalEntry(id string, patch models.JournalPatch) (*models.JournalEntry, error) {
	if patch.IsEmpty() {
		return db.GetJournalEntry(id)
	}

	var set []string
	var args []any
	if patch.EntryDate != nil {
		set = append(set, "entry_date = ?")
		args = append(args, *patch.EntryDate)
	}
	if patch.Body != nil {
		set = append(set, "body = ?")
		args = append(args, *patch.Body)
	}
	if patch.Mood != nil {
		set = append(set, "mood = ?")
		args = append(args, *patch.Mood)
	}
	if patch.Energy != nil {
		set = append(set, "energy = ?")
		args = append(args, *patch.Energy)
	}
	if patch.Tags != nil {
		tagsJSON, _ := json.Marshal(*patch.Tags)
		set = append(set, "tags = ?")
		args = append(args, string(tagsJSON))
	}
	args = append(args, id)

	res, err := db.conn.Exec(`UPDATE journal_entries SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, translate("update journal entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.GetJournalEntry(id)
}

// DeleteJournalEntry removes an entry and returns the deleted row.
func (db *DB) DeleteJournalEntry(id string) (*models.JournalEntry, error) {
	entry, err := db.GetJournalEntry(id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM journal_entries WHERE id = ?`, id); err != nil {
		return nil, translate("delete journal entry", err)
	}
	return entry, nil
}

const journalSelect = `
	SELECT id, entry_date, body, mood, energy, tags, created_at
	FROM journal_entries`

func scanJournalEntry(r rowScanner) (*models.JournalEntry, error) {
	var e models.JournalEntry
	var body sql.NullString
	var mood, energy sql.NullInt64
	var tagsJSON string
	if err := r.Scan(&e.ID, &e.EntryDate, &body, &mood, &energy, &tagsJSON, &e.CreatedAt); err != nil {
		return nil, translate("scan journal entry", err)
	}
	if body.Valid {
		e.Body = &body.String
	}
	if mood.Valid {
		m := int(mood.Int64)
		e.Mood = &m
	}
	if energy.Valid {
		en := int(energy.Int64)
		e.Energy = &en
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil || e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}
