package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// CreateEvent inserts a new event. End-after-start is a caller contract
// checked at the service boundary, not here.
func (db *DB) CreateEvent(e models.NewEvent) (*models.Event, error) {
	ev := models.Event{
		ID:          uuid.NewString(),
		Title:       e.Title,
		Description: e.Description,
		StartsAt:    e.StartsAt.UTC(),
		EndsAt:      e.EndsAt.UTC(),
		Timezone:    e.Timezone,
		Location:    e.Location,
		Recurrence:  e.Recurrence,
		CreatedAt:   now(),
		UpdatedAt:   now(),
	}
	_, err := db.conn.Exec(`
		INSERT INTO events (id, title, description, starts_at, ends_at, timezone, location, recurrence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Title, ev.Description, ev.StartsAt, ev.EndsAt, ev.Timezone,
		ev.Location, ev.Recurrence, ev.CreatedAt, ev.UpdatedAt)
	if err != nil {
		return nil, translate("create event", err)
	}
	return &ev, nil
}

// GetEvent returns the event with the given id, or apperr.ErrNotFound.
func (db *DB) GetEvent(id string) (*models.Event, error) {
	return scanEvent(db.conn.QueryRow(eventSelect+` WHERE id = ?`, id))
}

// ListEventsBetween returns events fully contained in [start, end]:
// starts_at >= start AND ends_at <= end, both bounds inclusive.
func (db *DB) ListEventsBetween(start, end time.Time) ([]models.Event, error) {
	rows, err := db.conn.Query(eventSelect+`
		WHERE starts_at >= ? AND ends_at <= ?
		ORDER BY starts_at, id
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, translate("list events", err)
	}
	defer rows.Close()

	out := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpdateEvent applies a partial patch and refreshes updated_at. An empty
// patch is a pure read.
func (db *DB) UpdateEvent(id string, patch models.EventPatch) (*models.Event, error) {
	if patch.IsEmpty() {
		return db.GetEvent(id)
	}

	set := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.StartsAt != nil {
		set = append(set, "starts_at = ?")
		args = append(args, patch.StartsAt.UTC())
	}
	if patch.EndsAt != nil {
		set = append(set, "ends_at = ?")
		args = append(args, patch.EndsAt.UTC())
	}
	if patch.Timezone != nil {
		set = append(set, "timezone = ?")
		args = append(args, *patch.Timezone)
	}
	if patch.Location != nil {
		set = append(set, "location = ?")
		args = append(args, *patch.Location)
	}
	if patch.Recurrence != nil {
		set = append(set, "recurrence = ?")
		args = append(args, *patch.Recurrence)
	}
	args = append(args, id)

	res, err := db.conn.Exec(`UPDATE events SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, translate("update event", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.GetEvent(id)
}

// DeleteEvent removes an event and returns the deleted row.
func (db *DB) DeleteEvent(id string) (*models.Event, error) {
	ev, err := db.GetEvent(id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM events WHERE id = ?`, id); err != nil {
		return nil, translate("delete event", err)
	}
	return ev, nil
}

const eventSelect = `
	SELECT id, title, description, starts_at, ends_at, timezone, location, recurrence, created_at, updated_at
	FROM events`

func scanEvent(r rowScanner) (*models.Event, error) {
	var e models.Event
	var desc, loc, recur sql.NullString
	if err := r.Scan(&e.ID, &e.Title, &desc, &e.StartsAt, &e.EndsAt, &e.Timezone,
		&loc, &recur, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, translate("scan event", err)
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	if loc.Valid {
		e.Location = &loc.String
	}
	if recur.Valid {
		e.Recurrence = &recur.String
	}
	return &e, nil
}
