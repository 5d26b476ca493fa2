package store

import (
	"github.com/google/uuid"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// CreateLink appends a directed edge to the link log. There is no
// uniqueness constraint: duplicate edges are permitted and meaningful
// (e.g. repeated references), and the log supports no update or delete.
func (db *DB) CreateLink(l models.NewLink) (*models.Link, error) {
	link := models.Link{
		ID:        uuid.NewString(),
		SrcType:   l.SrcType,
		SrcID:     l.SrcID,
		TgtType:   l.TgtType,
		TgtID:     l.TgtID,
		CreatedAt: now(),
	}
	_, err := db.conn.Exec(`
		INSERT INTO links (id, src_type, src_id, tgt_type, tgt_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, link.ID, string(link.SrcType), link.SrcID, string(link.TgtType), link.TgtID, link.CreatedAt)
	if err != nil {
		return nil, translate("create link", err)
	}
	return &link, nil
}

// GetLink returns the edge with the given id, or apperr.ErrNotFound.
func (db *DB) GetLink(id string) (*models.Link, error) {
	links, err := db.listLinks(`WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &links[0], nil
}

// ListLinksFromSource returns all edges originating at the given entity,
// oldest first.
func (db *DB) ListLinksFromSource(srcType models.EntityType, srcID string) ([]models.Link, error) {
	return db.listLinks(`WHERE src_type = ? AND src_id = ?`, string(srcType), srcID)
}

// ListLinksToTarget returns all edges pointing at the given entity
// (backlinks), oldest first.
func (db *DB) ListLinksToTarget(tgtType models.EntityType, tgtID string) ([]models.Link, error) {
	return db.listLinks(`WHERE tgt_type = ? AND tgt_id = ?`, string(tgtType), tgtID)
}

func (db *DB) listLinks(where string, args ...any) ([]models.Link, error) {
	rows, err := db.conn.Query(`
		SELECT id, src_type, src_id, tgt_type, tgt_id, created_at
		FROM links `+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, translate("list links", err)
	}
	defer rows.Close()

	out := []models.Link{}
	for rows.Next() {
		var l models.Link
		var st, tt string
		if err := rows.Scan(&l.ID, &st, &l.SrcID, &tt, &l.TgtID, &l.CreatedAt); err != nil {
			return nil, translate("scan link", err)
		}
		l.SrcType = models.EntityType(st)
		l.TgtType = models.EntityType(tt)
		out = append(out, l)
	}
	return out, rows.Err()
}
