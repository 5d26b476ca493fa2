package store

import (
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"

	"github.com/starford/othala/internal/models"
)

// UpsertEmbedding inserts or replaces the vector keyed by
// (entityType, entityId, provider, model). On a natural-key match the
// vector and dimensions are replaced and updated_at is bumped; the write is
// a single atomic ON CONFLICT statement. Agreement between the declared
// dimensions and the actual vector length is a caller contract checked at
// the service boundary.
func (db *DB) UpsertEmbedding(e models.NewEmbedding) (*models.Embedding, error) {
	blob, err := sqlite_vec.SerializeFloat32(e.Vector)
	if err != nil {
		return nil, fmt.Errorf("store: serialize vector: %w", err)
	}

	ts := now()
	_, err = db.conn.Exec(`
		INSERT INTO embeddings (id, entity_type, entity_id, provider, model, vector, dimensions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, entity_id, provider, model) DO UPDATE SET
			vector     = excluded.vector,
			dimensions = excluded.dimensions,
			updated_at = excluded.updated_at
	`, uuid.NewString(), string(e.EntityType), e.EntityID, e.Provider, e.Model,
		blob, e.Dimensions, ts, ts)
	if err != nil {
		return nil, translate("upsert embedding", err)
	}

	emb, err := db.getEmbedding(e.EntityType, e.EntityID, e.Provider, e.Model)
	if err != nil {
		return nil, err
	}
	db.vecIndexUpsert(emb)
	return emb, nil
}

// ListEmbeddingsForEntity returns all embeddings of an entity. Multiple rows
// per entity are expected, one per provider/model pair, enabling
// side-by-side model comparison.
func (db *DB) ListEmbeddingsForEntity(entityType models.EntityType, entityID string) ([]models.Embedding, error) {
	rows, err := db.conn.Query(embeddingSelect+`
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY provider, model
	`, string(entityType), entityID)
	if err != nil {
		return nil, translate("list embeddings", err)
	}
	defer rows.Close()

	out := []models.Embedding{}
	for rows.Next() {
		e, err := scanEmbedding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// GetEmbedding returns the embedding row with the given id, or
// apperr.ErrNotFound.
func (db *DB) GetEmbedding(id string) (*models.Embedding, error) {
	return scanEmbedding(db.conn.QueryRow(embeddingSelect+` WHERE id = ?`, id))
}

func (db *DB) getEmbedding(entityType models.EntityType, entityID, provider, model string) (*models.Embedding, error) {
	return scanEmbedding(db.conn.QueryRow(embeddingSelect+`
		WHERE entity_type = ? AND entity_id = ? AND provider = ? AND model = ?
	`, string(entityType), entityID, provider, model))
}

const embeddingSelect = `
	SELECT id, entity_type, entity_id, provider, model, vector, dimensions, created_at, updated_at
	FROM embeddings`

func scanEmbedding(r rowScanner) (*models.Embedding, error) {
	var e models.Embedding
	var et string
	var blob []byte
	if err := r.Scan(&e.ID, &et, &e.EntityID, &e.Provider, &e.Model, &blob,
		&e.Dimensions, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, translate("scan embedding", err)
	}
	e.EntityType = models.EntityType(et)
	e.Vector = deserializeFloat32(blob)
	return &e, nil
}

// deserializeFloat32 decodes the little-endian float32 wire format produced
// by sqlite_vec.SerializeFloat32.
func deserializeFloat32(blob []byte) []float32 {
	n := len(blob) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out
}
