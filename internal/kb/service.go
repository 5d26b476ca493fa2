// Package kb is the domain service layer. It validates input, coordinates
// the relational store with blob storage, enriches note bodies with tag and
// link metadata, and publishes change events.
package kb

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/markdown"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/sse"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9/_-]*$`)

// Service coordinates store, blob storage, and event broadcasting.
type Service struct {
	db     *store.DB
	blobs  storage.Provider
	broker *sse.Broker
	logger *slog.Logger
}

// NewService creates a service. broker may be nil when no event stream is
// wanted (tests, CLI use).
func NewService(db *store.DB, blobs storage.Provider, broker *sse.Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, blobs: blobs, broker: broker, logger: logger}
}

func (s *Service) publish(action string, entityType models.EntityType, id string) {
	if s.broker != nil {
		s.broker.PublishEntityEvent(action, string(entityType), id)
	}
}

// invalid converts an ozzo rule failure into the shared validation error.
func invalid(field string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Validation(field, err.Error())
}

func validEntityType(field string, et models.EntityType) error {
	if !et.Valid() {
		return apperr.Validation(field, "unknown entity type "+string(et))
	}
	return nil
}

// NoteDetail is a note enriched with its tags and backlinks.
type NoteDetail struct {
	models.Note
	Tags      []models.Tag  `json:"tags"`
	Backlinks []models.Link `json:"backlinks"`
}

// CreateNote stores a note and enriches it from its body: inline #hashtags
// become attached tags and [[wikilinks]] that resolve to an existing note
// title become link edges.
func (s *Service) CreateNote(_ context.Context, n models.NewNote) (*NoteDetail, error) {
	if err := invalid("body", validation.Validate(n.Body, validation.Required)); err != nil {
		return nil, err
	}

	doc := markdown.Parse([]byte(n.Body))
	if n.Title == nil && doc.Title != "" {
		title := doc.Title
		n.Title = &title
	}

	note, err := s.db.CreateNote(n)
	if err != nil {
		return nil, err
	}

	s.enrichNote(note.ID, doc)
	s.publish("created", models.EntityNote, note.ID)
	return s.noteDetail(note)
}

// GetNote returns a note with its tags and backlinks.
func (s *Service) GetNote(_ context.Context, id string) (*NoteDetail, error) {
	note, err := s.db.GetNote(id)
	if err != nil {
		return nil, err
	}
	return s.noteDetail(note)
}

// UpdateNote applies a partial update. When the body changes the note is
// re-enriched; tags and links are additive, existing metadata is kept.
func (s *Service) UpdateNote(_ context.Context, id string, patch models.NotePatch) (*NoteDetail, error) {
	note, err := s.db.UpdateNote(id, patch)
	if err != nil {
		return nil, err
	}
	if patch.Body != nil {
		s.enrichNote(note.ID, markdown.Parse([]byte(*patch.Body)))
		s.publish("updated", models.EntityNote, note.ID)
	} else if !patch.IsEmpty() {
		s.publish("updated", models.EntityNote, note.ID)
	}
	return s.noteDetail(note)
}

// DeleteNote removes the note row. Metadata attached to the note is kept;
// rows keyed by entity reference have no cascade.
func (s *Service) DeleteNote(_ context.Context, id string) (*models.Note, error) {
	note, err := s.db.DeleteNote(id)
	if err != nil {
		return nil, err
	}
	s.publish("deleted", models.EntityNote, id)
	return note, nil
}

// SearchNotes runs full-text search over note titles and bodies.
func (s *Service) SearchNotes(_ context.Context, query string, limit int) ([]store.NoteSearchResult, error) {
	if err := invalid("query", validation.Validate(query, validation.Required)); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.db.SearchNotes(query, limit)
}

// Backlinks returns link edges pointing at the given note.
func (s *Service) Backlinks(_ context.Context, noteID string) ([]models.Link, error) {
	return s.db.ListLinksToTarget(models.EntityNote, noteID)
}

func (s *Service) noteDetail(note *models.Note) (*NoteDetail, error) {
	tags, err := s.db.ListTagsForEntity(models.EntityNote, note.ID)
	if err != nil {
		return nil, err
	}
	backlinks, err := s.db.ListLinksToTarget(models.EntityNote, note.ID)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{Note: *note, Tags: tags, Backlinks: backlinks}, nil
}

// enrichNote attaches hashtag tags and resolved wikilink edges. Failures
// are logged and skipped; enrichment never fails the write that caused it.
func (s *Service) enrichNote(noteID string, doc *markdown.Document) {
	for _, name := range doc.Tags {
		slug := markdown.Slugify(name)
		if slug == "" {
			continue
		}
		tag, err := s.db.UpsertTag(models.NewTag{Slug: slug, Label: name})
		if err != nil {
			s.logger.Warn("kb: tag upsert failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		if _, err := s.db.AttachTag(tag.ID, models.EntityNote, noteID); err != nil {
			s.logger.Warn("kb: tag attach failed", slog.String("slug", slug), slog.String("error", err.Error()))
		}
	}

	existing, err := s.db.ListLinksFromSource(models.EntityNote, noteID)
	if err != nil {
		s.logger.Warn("kb: list links failed", slog.String("note", noteID), slog.String("error", err.Error()))
		existing = nil
	}
	linked := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		if l.TgtType == models.EntityNote {
			linked[l.TgtID] = struct{}{}
		}
	}

	for _, target := range doc.Links {
		dst, err := s.db.FindNoteByTitle(target)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				s.logger.Warn("kb: resolve wikilink failed", slog.String("target", target), slog.String("error", err.Error()))
			}
			continue
		}
		if dst.ID == noteID {
			continue
		}
		if _, dup := linked[dst.ID]; dup {
			continue
		}
		link, err := s.db.CreateLink(models.NewLink{
			SrcType: models.EntityNote, SrcID: noteID,
			TgtType: models.EntityNote, TgtID: dst.ID,
		})
		if err != nil {
			s.logger.Warn("kb: link create failed", slog.String("target", target), slog.String("error", err.Error()))
			continue
		}
		linked[dst.ID] = struct{}{}
		s.publish("created", models.EntityLink, link.ID)
	}
}
