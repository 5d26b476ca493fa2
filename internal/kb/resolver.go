package kb

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// EntityExists reports whether the record addressed by (entityType, id) is
// present, dispatching the lookup to the typed repository for that kind.
// Polymorphic references are never backed by a cross-table foreign key, so
// this is the one place a caller can verify a reference before writing
// metadata against it.
func (s *Service) EntityExists(_ context.Context, entityType models.EntityType, id string) (bool, error) {
	if err := validEntityType("entityType", entityType); err != nil {
		return false, err
	}
	if err := invalid("id", validation.Validate(id, validation.Required)); err != nil {
		return false, err
	}

	var err error
	switch entityType {
	case models.EntityNote:
		_, err = s.db.GetNote(id)
	case models.EntityTask:
		_, err = s.db.GetTask(id)
	case models.EntityEvent:
		_, err = s.db.GetEvent(id)
	case models.EntityJournal:
		_, err = s.db.GetJournalEntry(id)
	case models.EntityFile:
		_, err = s.db.GetFile(id)
	case models.EntityTag:
		_, err = s.db.GetTag(id)
	case models.EntityAttachment:
		_, err = s.db.GetAttachment(id)
	case models.EntityProp:
		_, err = s.db.GetProp(id)
	case models.EntityEmbedding:
		_, err = s.db.GetEmbedding(id)
	case models.EntityLink:
		_, err = s.db.GetLink(id)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
