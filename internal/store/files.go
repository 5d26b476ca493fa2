package store

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/starford/othala/internal/models"
)

// CreateFile records an uploaded blob. File rows are immutable once created;
// there is no update operation.
func (db *DB) CreateFile(f models.NewFile) (*models.File, error) {
	file := models.File{
		ID:         uuid.NewString(),
		Driver:     f.Driver,
		StorageKey: f.StorageKey,
		Filename:   f.Filename,
		MimeType:   f.MimeType,
		SizeBytes:  f.SizeBytes,
		Checksum:   f.Checksum,
		CreatedAt:  now(),
	}
	_, err := db.conn.Exec(`
		INSERT INTO files (id, driver, storage_key, filename, mime_type, size_bytes, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, file.ID, file.Driver, file.StorageKey, file.Filename, file.MimeType,
		file.SizeBytes, file.Checksum, file.CreatedAt)
	if err != nil {
		return nil, translate("create file", err)
	}
	return &file, nil
}

// GetFile returns the file with the given id, or apperr.ErrNotFound.
func (db *DB) GetFile(id string) (*models.File, error) {
	return scanFile(db.conn.QueryRow(fileSelect+` WHERE id = ?`, id))
}

// DeleteFile removes a file record and returns the deleted row. Attachment
// rows referencing the file are cascade-deleted by the foreign key.
func (db *DB) DeleteFile(id string) (*models.File, error) {
	file, err := db.GetFile(id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM files WHERE id = ?`, id); err != nil {
		return nil, translate("delete file", err)
	}
	return file, nil
}

const fileSelect = `
	SELECT id, driver, storage_key, filename, mime_type, size_bytes, checksum, created_at
	FROM files`

func scanFile(r rowScanner) (*models.File, error) {
	var f models.File
	var mime, checksum sql.NullString
	if err := r.Scan(&f.ID, &f.Driver, &f.StorageKey, &f.Filename, &mime,
		&f.SizeBytes, &checksum, &f.CreatedAt); err != nil {
		return nil, translate("scan file", err)
	}
	if mime.Valid {
		f.MimeType = &mime.String
	}
	if checksum.Valid {
		f.Checksum = &checksum.String
	}
	return &f, nil
}
