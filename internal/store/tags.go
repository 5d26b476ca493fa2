package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// UpsertTag inserts or updates a tag keyed by its slug. When the slug is
// already registered it computes a minimal diff: label and color are applied
// only when provided and different from the stored row, and when the diff is
// empty the existing row is returned without issuing a write. A lost insert
// race surfaces as apperr.ErrConflict via the slug UNIQUE constraint; the
// caller may retry, at which point the lookup succeeds.
func (db *DB) UpsertTag(t models.NewTag) (*models.Tag, error) {
	existing, err := db.GetTagBySlug(t.Slug)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		var set []string
		var args []any
		if t.Label != "" && t.Label != existing.Label {
			set = append(set, "label = ?")
			args = append(args, t.Label)
		}
		if t.Color != nil && (existing.Color == nil || *t.Color != *existing.Color) {
			set = append(set, "color = ?")
			args = append(args, *t.Color)
		}
		if len(set) == 0 {
			return existing, nil
		}
		args = append(args, existing.ID)
		if _, err := db.conn.Exec(`UPDATE tags SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...); err != nil {
			return nil, translate("upsert tag", err)
		}
		return db.GetTagBySlug(t.Slug)
	}

	tag := models.Tag{
		ID:        uuid.NewString(),
		Slug:      t.Slug,
		Label:     t.Label,
		Color:     t.Color,
		CreatedAt: now(),
	}
	_, err = db.conn.Exec(`
		INSERT INTO tags (id, slug, label, color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, tag.ID, tag.Slug, tag.Label, tag.Color, tag.CreatedAt)
	if err != nil {
		return nil, translate("upsert tag", err)
	}
	return &tag, nil
}

// GetTag returns the tag with the given id, or apperr.ErrNotFound.
func (db *DB) GetTag(id string) (*models.Tag, error) {
	return scanTag(db.conn.QueryRow(tagSelect+` WHERE id = ?`, id))
}

// GetTagBySlug returns the tag registered under slug, or apperr.ErrNotFound.
func (db *DB) GetTagBySlug(slug string) (*models.Tag, error) {
	return scanTag(db.conn.QueryRow(tagSelect+` WHERE slug = ?`, slug))
}

// DeleteTag removes a tag and returns the deleted row. Its tag_map rows are
// cascade-deleted by the foreign key.
func (db *DB) DeleteTag(id string) (*models.Tag, error) {
	tag, err := db.GetTag(id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM tags WHERE id = ?`, id); err != nil {
		return nil, translate("delete tag", err)
	}
	return tag, nil
}

// AttachTag attaches a tag to an entity. The operation is idempotent: if the
// (tag, entityType, entityId) tuple is already mapped, the existing row is
// returned and no new row is inserted. INSERT OR IGNORE plus the composite
// UNIQUE constraint makes the check-then-write atomic under concurrency.
func (db *DB) AttachTag(tagID string, entityType models.EntityType, entityID string) (*models.TagMap, error) {
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO tag_map (id, tag_id, entity_type, entity_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), tagID, string(entityType), entityID, now())
	if err != nil {
		return nil, translate("attach tag", err)
	}
	return scanTagMap(db.conn.QueryRow(`
		SELECT id, tag_id, entity_type, entity_id, created_at
		FROM tag_map
		WHERE tag_id = ? AND entity_type = ? AND entity_id = ?
	`, tagID, string(entityType), entityID))
}

// DetachTag removes a tag/entity mapping and returns the removed row, or
// apperr.ErrNotFound when no mapping exists.
func (db *DB) DetachTag(tagID string, entityType models.EntityType, entityID string) (*models.TagMap, error) {
	tm, err := scanTagMap(db.conn.QueryRow(`
		SELECT id, tag_id, entity_type, entity_id, created_at
		FROM tag_map
		WHERE tag_id = ? AND entity_type = ? AND entity_id = ?
	`, tagID, string(entityType), entityID))
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM tag_map WHERE id = ?`, tm.ID); err != nil {
		return nil, translate("detach tag", err)
	}
	return tm, nil
}

// ListTagsForEntity returns the tags attached to an entity, projecting only
// tag fields, ordered by tag creation time for deterministic output.
func (db *DB) ListTagsForEntity(entityType models.EntityType, entityID string) ([]models.Tag, error) {
	rows, err := db.conn.Query(`
		SELECT t.id, t.slug, t.label, t.color, t.created_at
		FROM tag_map tm
		INNER JOIN tags t ON t.id = tm.tag_id
		WHERE tm.entity_type = ? AND tm.entity_id = ?
		ORDER BY t.created_at, t.id
	`, string(entityType), entityID)
	if err != nil {
		return nil, translate("list tags for entity", err)
	}
	defer rows.Close()

	out := []models.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

const tagSelect = `
	SELECT id, slug, label, color, created_at
	FROM tags`

func scanTag(r rowScanner) (*models.Tag, error) {
	var t models.Tag
	var color sql.NullString
	if err := r.Scan(&t.ID, &t.Slug, &t.Label, &color, &t.CreatedAt); err != nil {
		return nil, translate("scan tag", err)
	}
	if color.Valid {
		t.Color = &color.String
	}
	return &t, nil
}

func scanTagMap(r rowScanner) (*models.TagMap, error) {
	var tm models.TagMap
	var et string
	if err := r.Scan(&tm.ID, &tm.TagID, &et, &tm.EntityID, &tm.CreatedAt); err != nil {
		return nil, translate("scan tag map", err)
	}
	tm.EntityType = models.EntityType(et)
	return &tm, nil
}
