package kb

import (
	"context"
	"log/slog"
	"path"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/models"
)

// UploadFile writes content to blob storage and records the file row. The
// storage key is derived from a fresh id so filenames never collide.
func (s *Service) UploadFile(_ context.Context, filename string, mimeType *string, content []byte) (*models.File, error) {
	if err := invalid("filename", validation.Validate(filename, validation.Required, validation.Length(1, 255))); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, apperr.Validation("content", "must not be empty")
	}

	key := path.Join("files", uuid.NewString(), path.Base(filename))
	if err := s.blobs.Write(key, content); err != nil {
		return nil, err
	}

	sum := checksum.Sum(content)
	file, err := s.db.CreateFile(models.NewFile{
		Driver:     s.blobs.Driver(),
		StorageKey: key,
		Filename:   path.Base(filename),
		MimeType:   mimeType,
		SizeBytes:  int64(len(content)),
		Checksum:   &sum,
	})
	if err != nil {
		// Roll the blob back so storage does not accumulate orphans.
		if delErr := s.blobs.Delete(key); delErr != nil {
			s.logger.Warn("kb: orphan blob cleanup failed", slog.String("key", key), slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	s.publish("created", models.EntityFile, file.ID)
	return file, nil
}

func (s *Service) GetFile(_ context.Context, id string) (*models.File, error) {
	return s.db.GetFile(id)
}

// ReadFileContent returns the file row together with its blob content.
func (s *Service) ReadFileContent(_ context.Context, id string) (*models.File, []byte, error) {
	file, err := s.db.GetFile(id)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.blobs.Read(file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	if file.Checksum != nil && !checksum.Matches(content, *file.Checksum) {
		s.logger.Warn("kb: blob checksum mismatch",
			slog.String("file_id", file.ID), slog.String("key", file.StorageKey))
	}
	return file, content, nil
}

// DeleteFile removes the file row (attachments cascade) and best-effort
// deletes the blob.
func (s *Service) DeleteFile(_ context.Context, id string) (*models.File, error) {
	file, err := s.db.DeleteFile(id)
	if err != nil {
		return nil, err
	}
	if delErr := s.blobs.Delete(file.StorageKey); delErr != nil {
		s.logger.Warn("kb: blob delete failed", slog.String("key", file.StorageKey), slog.String("error", delErr.Error()))
	}
	s.publish("deleted", models.EntityFile, id)
	return file, nil
}
