package kb

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/store"
)

// Property value types accepted by SetProp.
var propValueTypes = []any{"string", "number", "boolean", "date", "json"}

// UpsertTag creates or updates a tag by slug. Existing rows only change
// when the payload actually differs.
func (s *Service) UpsertTag(_ context.Context, t models.NewTag) (*models.Tag, error) {
	if err := invalid("slug", validation.Validate(t.Slug, validation.Required, validation.Match(slugRe))); err != nil {
		return nil, err
	}
	if t.Label == "" {
		t.Label = t.Slug
	}
	tag, err := s.db.UpsertTag(t)
	if err != nil {
		return nil, err
	}
	s.publish("updated", models.EntityTag, tag.ID)
	return tag, nil
}

func (s *Service) GetTag(_ context.Context, id string) (*models.Tag, error) {
	return s.db.GetTag(id)
}

func (s *Service) GetTagBySlug(_ context.Context, slug string) (*models.Tag, error) {
	return s.db.GetTagBySlug(slug)
}

// DeleteTag removes a tag and, through the schema cascade, all its
// assignments.
func (s *Service) DeleteTag(_ context.Context, id string) (*models.Tag, error) {
	tag, err := s.db.DeleteTag(id)
	if err != nil {
		return nil, err
	}
	s.publish("deleted", models.EntityTag, id)
	return tag, nil
}

// AttachTag assigns a tag to any entity. Repeating an assignment returns
// the existing row.
func (s *Service) AttachTag(_ context.Context, tagID string, entityType models.EntityType, entityID string) (*models.TagMap, error) {
	if err := validEntityType("entityType", entityType); err != nil {
		return nil, err
	}
	if err := invalid("entityId", validation.Validate(entityID, validation.Required)); err != nil {
		return nil, err
	}
	tm, err := s.db.AttachTag(tagID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	s.publish("updated", entityType, entityID)
	return tm, nil
}

// DetachTag removes a tag assignment, returning the removed row.
func (s *Service) DetachTag(_ context.Context, tagID string, entityType models.EntityType, entityID string) (*models.TagMap, error) {
	if err := validEntityType("entityType", entityType); err != nil {
		return nil, err
	}
	tm, err := s.db.DetachTag(tagID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	s.publish("updated", entityType, entityID)
	return tm, nil
}

func (s *Service) ListTagsForEntity(_ context.Context, entityType models.EntityType, entityID string) ([]models.Tag, error) {
	if err := validEntityType("entityType", entityType); err != nil {
		return nil, err
	}
	return s.db.ListTagsForEntity(entityType, entityID)
}

// SetProp writes a named property on an entity, overwriting any previous
// value under the same name.
func (s *Service) SetProp(_ context.Context, p models.NewProp) (*models.Prop, error) {
	if err := validEntityType("entityType", p.EntityType); err != nil {
		return nil, err
	}
	if err := invalid("entityId", validation.Validate(p.EntityID, validation.Required)); err != nil {
		return nil, err
	}
	if err := invalid("name", validation.Validate(p.Name, validation.Required, validation.Length(1, 200))); err != nil {
		return nil, err
	}
	if err := invalid("valueType", validation.Validate(p.ValueType, validation.Required, validation.In(propValueTypes...))); err != nil {
		return nil, err
	}
	prop, err := s.db.UpsertProp(p)
	if err != nil {
		return nil, err
	}
	s.publish("updated", p.EntityType, p.EntityID)
	return prop, nil
}

func (s *Service) ListProps(_ context.Context, entityType models.EntityType, entityID string) ([]models.Prop, error) {
	if err := validEntityType("entityType", entityType); err != nil {
		return nil, err
	}
	return s.db.ListProps(entityType, entityID)
}

// CreateAttachment binds an uploaded file to an entity.
func (s *Service) CreateAttachment(_ context.Context, a models.NewAttachment) (*models.Attachment, error) {
	if err := validEntityType("entityType", a.EntityType); err != nil {
		return nil, err
	}
	if err := invalid("fileId", validation.Validate(a.FileID, validation.Required)); err != nil {
		return nil, err
	}
	att, err := s.db.CreateAttachment(a)
	if err != nil {
		return nil, err
	}
	s.publish("updated", a.EntityType, a.EntityID)
	return att, nil
}

func (s *Service) ListAttachmentsForEntity(_ context.Context, entityType models.EntityType, entityID string) ([]models.Attachment, error) {
	if err := validEntityType("entityType", entityType); err != nil {
		return nil, err
	}
	return s.db.ListAttachmentsForEntity(entityType, entityID)
}

// DeleteAttachment removes the binding only; the file row and blob stay.
func (s *Service) DeleteAttachment(_ context.Context, id string) (*models.Attachment, error) {
	att, err := s.db.DeleteAttachment(id)
	if err != nil {
		return nil, err
	}
	s.publish("updated", att.EntityType, att.EntityID)
	return att, nil
}

// UpsertEmbedding stores a vector for an entity, replacing any previous
// vector from the same provider and model.
func (s *Service) UpsertEmbedding(_ context.Context, e models.NewEmbedding) (*models.Embedding, error) {
	if err := validEntityType("entityType", e.EntityType); err != nil {
		return nil, err
	}
	if err := invalid("entityId", validation.Validate(e.EntityID, validation.Required)); err != nil {
		return nil, err
	}
	if err := invalid("provider", validation.Validate(e.Provider, validation.Required)); err != nil {
		return nil, err
	}
	if err := invalid("model", validation.Validate(e.Model, validation.Required)); err != nil {
		return nil, err
	}
	if len(e.Vector) == 0 {
		return nil, apperr.Validation("vector", "must not be empty")
	}
	if e.Dimensions == 0 {
		e.Dimensions = len(e.Vector)
	}
	if e.Dimensions != len(e.Vector) {
		return nil, apperr.Validation("vector", "length does not match dimensions")
	}
	emb, err := s.db.UpsertEmbedding(e)
	if err != nil {
		return nil, err
	}
	s.publish("updated", e.EntityType, e.EntityID)
	return emb, nil
}

func (s *Service) ListEmbeddingsForEntity(_ context.Context, entityType models.EntityType, entityID string) ([]models.Embedding, error) {
	if err := validEntityType("entityType", entityType); err != nil {
		return nil, err
	}
	return s.db.ListEmbeddingsForEntity(entityType, entityID)
}

// SearchSimilar ranks stored embeddings from the given provider and model
// by cosine similarity to the query vector.
func (s *Service) SearchSimilar(_ context.Context, provider, model string, query []float32, limit int) ([]store.EmbeddingMatch, error) {
	if err := invalid("provider", validation.Validate(provider, validation.Required)); err != nil {
		return nil, err
	}
	if err := invalid("model", validation.Validate(model, validation.Required)); err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return nil, apperr.Validation("query", "must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.db.SearchSimilar(provider, model, query, limit)
}

// CreateLink appends a directed edge between two entities. Duplicate edges
// are allowed.
func (s *Service) CreateLink(_ context.Context, l models.NewLink) (*models.Link, error) {
	if err := validEntityType("srcType", l.SrcType); err != nil {
		return nil, err
	}
	if err := validEntityType("tgtType", l.TgtType); err != nil {
		return nil, err
	}
	if err := invalid("srcId", validation.Validate(l.SrcID, validation.Required)); err != nil {
		return nil, err
	}
	if err := invalid("tgtId", validation.Validate(l.TgtID, validation.Required)); err != nil {
		return nil, err
	}
	link, err := s.db.CreateLink(l)
	if err != nil {
		return nil, err
	}
	s.publish("created", models.EntityLink, link.ID)
	return link, nil
}

func (s *Service) ListLinksFromSource(_ context.Context, srcType models.EntityType, srcID string) ([]models.Link, error) {
	if err := validEntityType("srcType", srcType); err != nil {
		return nil, err
	}
	return s.db.ListLinksFromSource(srcType, srcID)
}

func (s *Service) ListLinksToTarget(_ context.Context, tgtType models.EntityType, tgtID string) ([]models.Link, error) {
	if err := validEntityType("tgtType", tgtType); err != nil {
		return nil, err
	}
	return s.db.ListLinksToTarget(tgtType, tgtID)
}
