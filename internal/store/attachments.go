package store

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/starford/othala/internal/models"
)

// CreateAttachment links a file to an entity. The file id must reference an
// existing file row; a dangling id surfaces as apperr.ErrConflict through
// the foreign key. Attachments are immutable: there is no update operation,
// the association is changed by delete and recreate.
func (db *DB) CreateAttachment(a models.NewAttachment) (*models.Attachment, error) {
	att := models.Attachment{
		ID:         uuid.NewString(),
		FileID:     a.FileID,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Title:      a.Title,
		CreatedAt:  now(),
	}
	_, err := db.conn.Exec(`
		INSERT INTO attachments (id, file_id, entity_type, entity_id, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, att.ID, att.FileID, string(att.EntityType), att.EntityID, att.Title, att.CreatedAt)
	if err != nil {
		return nil, translate("create attachment", err)
	}
	return &att, nil
}

// GetAttachment returns the attachment with the given id, or
// apperr.ErrNotFound.
func (db *DB) GetAttachment(id string) (*models.Attachment, error) {
	return scanAttachment(db.conn.QueryRow(attachmentSelect+` WHERE id = ?`, id))
}

// DeleteAttachment removes an attachment and returns the deleted row. The
// referenced file row is untouched.
func (db *DB) DeleteAttachment(id string) (*models.Attachment, error) {
	att, err := db.GetAttachment(id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM attachments WHERE id = ?`, id); err != nil {
		return nil, translate("delete attachment", err)
	}
	return att, nil
}

// ListAttachmentsForEntity returns the attachments of an entity, ordered by
// creation time.
func (db *DB) ListAttachmentsForEntity(entityType models.EntityType, entityID string) ([]models.Attachment, error) {
	rows, err := db.conn.Query(attachmentSelect+`
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at, id
	`, string(entityType), entityID)
	if err != nil {
		return nil, translate("list attachments", err)
	}
	defer rows.Close()

	out := []models.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

const attachmentSelect = `
	SELECT id, file_id, entity_type, entity_id, title, created_at
	FROM attachments`

func scanAttachment(r rowScanner) (*models.Attachment, error) {
	var a models.Attachment
	var et string
	var title sql.NullString
	if err := r.Scan(&a.ID, &a.FileID, &et, &a.EntityID, &title, &a.CreatedAt); err != nil {
		return nil, translate("scan attachment", err)
	}
	a.EntityType = models.EntityType(et)
	if title.Valid {
		a.Title = &title.String
	}
	return &a, nil
}
