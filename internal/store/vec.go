package store

import (
	"fmt"
	"log/slog"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/starford/othala/internal/models"
)

// Similarity search over stored embeddings. When the sqlite-vec extension is
// loaded, a vec0 virtual table mirrors the embeddings table (rowid-keyed) and
// serves KNN queries; otherwise search falls back to a full cosine scan.
// The vec index holds one dimensionality at a time, fixed by the first vector
// indexed; embeddings of other widths are served by the fallback scan.

// EmbeddingMatch is one similarity search hit.
type EmbeddingMatch struct {
	Embedding  models.Embedding `json:"embedding"`
	Similarity float64          `json:"similarity"`
}

// SearchSimilar returns the embeddings for the given provider/model pair
// closest to query by cosine similarity, best first. Only rows whose
// dimensionality equals len(query) are considered.
func (db *DB) SearchSimilar(provider, model string, query []float32, limit int) ([]EmbeddingMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	if db.vecAvailable && db.vecDim == len(query) {
		matches, err := db.searchSimilarVec(provider, model, query, limit)
		if err == nil {
			return matches, nil
		}
		slog.Warn("store: vec search failed, falling back to scan", slog.String("error", err.Error()))
	}
	return db.searchSimilarScan(provider, model, query, limit)
}

// searchSimilarVec runs a KNN query against the vec0 index. Provider/model
// filtering happens after the KNN pass, so the candidate set is widened to
// compensate.
func (db *DB) searchSimilarVec(provider, model string, query []float32, limit int) ([]EmbeddingMatch, error) {
	qblob, err := sqlite_vec.SerializeFloat32(normalizeVec(query))
	if err != nil {
		return nil, fmt.Errorf("store: serialize query: %w", err)
	}

	k := limit * 8
	if k < 50 {
		k = 50
	}
	rows, err := db.conn.Query(`
		SELECT v.embedding_id, v.distance
		FROM embeddings_vec v
		WHERE v.vec MATCH ? AND k = ?
		ORDER BY v.distance
	`, qblob, k)
	if err != nil {
		return nil, fmt.Errorf("store: vec knn: %w", err)
	}
	defer rows.Close()

	type hit struct {
		id   string
		dist float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.dist); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := []EmbeddingMatch{}
	for _, h := range hits {
		emb, err := scanEmbedding(db.conn.QueryRow(embeddingSelect+` WHERE id = ?`, h.id))
		if err != nil {
			continue // index row outlived its embedding; skip
		}
		if emb.Provider != provider || emb.Model != model {
			continue
		}
		// L2 distance on unit vectors maps to cosine similarity.
		out = append(out, EmbeddingMatch{Embedding: *emb, Similarity: 1.0 - (h.dist*h.dist)/2.0})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// searchSimilarScan is the full-scan cosine fallback.
func (db *DB) searchSimilarScan(provider, model string, query []float32, limit int) ([]EmbeddingMatch, error) {
	rows, err := db.conn.Query(embeddingSelect+`
		WHERE provider = ? AND model = ? AND dimensions = ?
	`, provider, model, len(query))
	if err != nil {
		return nil, translate("similarity scan", err)
	}
	defer rows.Close()

	out := []EmbeddingMatch{}
	for rows.Next() {
		emb, err := scanEmbedding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, EmbeddingMatch{Embedding: *emb, Similarity: cosineSimilarity(query, emb.Vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Insertion sort by similarity descending; result sets are small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Similarity > out[j-1].Similarity; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// vecIndexUpsert mirrors an embedding into the vec0 index, best effort. The
// index is created lazily for the first dimensionality seen; vectors of
// other widths are skipped and served by the fallback scan.
func (db *DB) vecIndexUpsert(e *models.Embedding) {
	if !db.vecAvailable {
		return
	}
	if db.vecDim == 0 {
		if err := db.createVecTable(len(e.Vector)); err != nil {
			slog.Warn("store: create vec index failed", slog.String("error", err.Error()))
			return
		}
	}
	if db.vecDim != len(e.Vector) {
		return
	}

	var rowid int64
	if err := db.conn.QueryRow(`SELECT rowid FROM embeddings WHERE id = ?`, e.ID).Scan(&rowid); err != nil {
		return
	}
	blob, err := sqlite_vec.SerializeFloat32(normalizeVec(e.Vector))
	if err != nil {
		return
	}
	// vec0 does not reliably support INSERT OR REPLACE; use DELETE + INSERT.
	_, _ = db.conn.Exec(`DELETE FROM embeddings_vec WHERE rowid = ?`, rowid)
	if _, err := db.conn.Exec(`
		INSERT INTO embeddings_vec (rowid, vec, embedding_id) VALUES (?, ?, ?)
	`, rowid, blob, e.ID); err != nil {
		slog.Warn("store: vec index upsert failed", slog.String("id", e.ID), slog.String("error", err.Error()))
	}
}

func (db *DB) createVecTable(dim int) error {
	_, err := db.conn.Exec(fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS embeddings_vec USING vec0(
			vec float[%d],
			+embedding_id TEXT
		)
	`, dim))
	if err != nil {
		return err
	}
	db.vecDim = dim
	return nil
}

// initVecFromEmbeddings restores the vec index after a restart: it reads the
// dimensionality from an existing row, recreates the vec table, and
// backfills every stored vector of that width. No-ops on an empty table.
func (db *DB) initVecFromEmbeddings() error {
	var dim int
	err := db.conn.QueryRow(`SELECT dimensions FROM embeddings ORDER BY created_at, id LIMIT 1`).Scan(&dim)
	if err != nil {
		return nil // no embeddings yet; table is created on first upsert
	}
	if err := db.createVecTable(dim); err != nil {
		return err
	}

	rows, err := db.conn.Query(`SELECT rowid, id, vector FROM embeddings WHERE dimensions = ?`, dim)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rowid int64
		var id string
		var blob []byte
		if err := rows.Scan(&rowid, &id, &blob); err != nil {
			continue
		}
		norm, err := sqlite_vec.SerializeFloat32(normalizeVec(deserializeFloat32(blob)))
		if err != nil {
			continue
		}
		_, _ = db.conn.Exec(`DELETE FROM embeddings_vec WHERE rowid = ?`, rowid)
		_, _ = db.conn.Exec(`INSERT INTO embeddings_vec (rowid, vec, embedding_id) VALUES (?, ?, ?)`, rowid, norm, id)
	}
	return rows.Err()
}

// normalizeVec returns a unit-length copy so L2 distance in the vec index is
// equivalent to cosine distance.
func normalizeVec(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
