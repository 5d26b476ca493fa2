package store

import (
	"github.com/google/uuid"

	"github.com/starford/othala/internal/models"
)

// UpsertProp inserts or replaces the prop keyed by
// (entityType, entityId, name). Unlike the tag upsert this is an
// unconditional overwrite: value_type, value, and is_encrypted are replaced
// and updated_at is bumped even when the incoming values are identical, so
// callers must avoid unintended re-upserts. The write is a single atomic
// ON CONFLICT statement backed by the natural-key UNIQUE constraint.
func (db *DB) UpsertProp(p models.NewProp) (*models.Prop, error) {
	enc := true
	if p.IsEncrypted != nil {
		enc = *p.IsEncrypted
	}
	ts := now()
	_, err := db.conn.Exec(`
		INSERT INTO props (id, entity_type, entity_id, name, value_type, value, is_encrypted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, entity_id, name) DO UPDATE SET
			value_type   = excluded.value_type,
			value        = excluded.value,
			is_encrypted = excluded.is_encrypted,
			updated_at   = excluded.updated_at
	`, uuid.NewString(), string(p.EntityType), p.EntityID, p.Name,
		p.ValueType, p.Value, enc, ts, ts)
	if err != nil {
		return nil, translate("upsert prop", err)
	}
	return db.getProp(p.EntityType, p.EntityID, p.Name)
}

// ListProps returns all props of an entity, ordered by name.
func (db *DB) ListProps(entityType models.EntityType, entityID string) ([]models.Prop, error) {
	rows, err := db.conn.Query(propSelect+`
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY name
	`, string(entityType), entityID)
	if err != nil {
		return nil, translate("list props", err)
	}
	defer rows.Close()

	out := []models.Prop{}
	for rows.Next() {
		p, err := scanProp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetProp returns the prop row with the given id, or apperr.ErrNotFound.
func (db *DB) GetProp(id string) (*models.Prop, error) {
	return scanProp(db.conn.QueryRow(propSelect+` WHERE id = ?`, id))
}

func (db *DB) getProp(entityType models.EntityType, entityID, name string) (*models.Prop, error) {
	return scanProp(db.conn.QueryRow(propSelect+`
		WHERE entity_type = ? AND entity_id = ? AND name = ?
	`, string(entityType), entityID, name))
}

const propSelect = `
	SELECT id, entity_type, entity_id, name, value_type, value, is_encrypted, created_at, updated_at
	FROM props`

func scanProp(r rowScanner) (*models.Prop, error) {
	var p models.Prop
	var et string
	if err := r.Scan(&p.ID, &et, &p.EntityID, &p.Name, &p.ValueType, &p.Value,
		&p.IsEncrypted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, translate("scan prop", err)
	}
	p.EntityType = models.EntityType(et)
	return &p, nil
}
