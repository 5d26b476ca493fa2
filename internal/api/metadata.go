package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/models"
)

// UpsertTag handles PUT /api/tags.
//
//	@Summary		Create or update a tag by slug
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpsertTagRequest	true	"Tag payload"
//	@Success		200		{object}	models.Tag
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags [put]
func (h *Handler) UpsertTag(w http.ResponseWriter, r *http.Request) {
	var req UpsertTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := h.svc.UpsertTag(r.Context(), models.NewTag{Slug: req.Slug, Label: req.Label, Color: req.Color})
	if err != nil {
		respondError(w, "upsert tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.svc.GetTag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "get tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag removes a tag and all its assignments.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.svc.DeleteTag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "delete tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// AttachTag handles POST /api/tags/attach.
func (h *Handler) AttachTag(w http.ResponseWriter, r *http.Request) {
	var req TagAssignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tm, err := h.svc.AttachTag(r.Context(), req.TagID, models.EntityType(req.EntityType), req.EntityID)
	if err != nil {
		respondError(w, "attach tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tm)
}

// DetachTag handles POST /api/tags/detach.
func (h *Handler) DetachTag(w http.ResponseWriter, r *http.Request) {
	var req TagAssignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tm, err := h.svc.DetachTag(r.Context(), req.TagID, models.EntityType(req.EntityType), req.EntityID)
	if err != nil {
		respondError(w, "detach tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tm)
}

// EntityExists handles GET /api/entities/{type}/{id}. It routes the lookup
// to the typed repository for the kind; polymorphic metadata writes do not
// verify their target, so this is how a client checks a reference first.
func (h *Handler) EntityExists(w http.ResponseWriter, r *http.Request) {
	et, id := entityRef(r)
	exists, err := h.svc.EntityExists(r.Context(), et, id)
	if err != nil {
		respondError(w, "entity exists", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// EntityTags handles GET /api/entities/{type}/{id}/tags.
func (h *Handler) EntityTags(w http.ResponseWriter, r *http.Request) {
	et, id := entityRef(r)
	tags, err := h.svc.ListTagsForEntity(r.Context(), et, id)
	if err != nil {
		respondError(w, "entity tags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// SetProp handles PUT /api/props.
//
//	@Summary		Set a named property on an entity
//	@Tags			props
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetPropRequest	true	"Property payload"
//	@Success		200		{object}	models.Prop
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/props [put]
func (h *Handler) SetProp(w http.ResponseWriter, r *http.Request) {
	var req SetPropRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	prop, err := h.svc.SetProp(r.Context(), models.NewProp{
		EntityType:  models.EntityType(req.EntityType),
		EntityID:    req.EntityID,
		Name:        req.Name,
		ValueType:   req.ValueType,
		Value:       req.Value,
		IsEncrypted: req.IsEncrypted,
	})
	if err != nil {
		respondError(w, "set prop", err)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

// EntityProps handles GET /api/entities/{type}/{id}/props.
func (h *Handler) EntityProps(w http.ResponseWriter, r *http.Request) {
	et, id := entityRef(r)
	props, err := h.svc.ListProps(r.Context(), et, id)
	if err != nil {
		respondError(w, "entity props", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"props": props})
}

// UpsertEmbedding handles PUT /api/embeddings.
//
//	@Summary		Store an embedding vector for an entity
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpsertEmbeddingRequest	true	"Embedding payload"
//	@Success		200		{object}	models.Embedding
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/embeddings [put]
func (h *Handler) UpsertEmbedding(w http.ResponseWriter, r *http.Request) {
	var req UpsertEmbeddingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	emb, err := h.svc.UpsertEmbedding(r.Context(), models.NewEmbedding{
		EntityType: models.EntityType(req.EntityType),
		EntityID:   req.EntityID,
		Provider:   req.Provider,
		Model:      req.Model,
		Vector:     req.Vector,
		Dimensions: req.Dimensions,
	})
	if err != nil {
		respondError(w, "upsert embedding", err)
		return
	}
	writeJSON(w, http.StatusOK, emb)
}

// EntityEmbeddings handles GET /api/entities/{type}/{id}/embeddings.
func (h *Handler) EntityEmbeddings(w http.ResponseWriter, r *http.Request) {
	et, id := entityRef(r)
	embs, err := h.svc.ListEmbeddingsForEntity(r.Context(), et, id)
	if err != nil {
		respondError(w, "entity embeddings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"embeddings": embs})
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := h.svc.CreateLink(r.Context(), models.NewLink{
		SrcType: models.EntityType(req.SrcType),
		SrcID:   req.SrcID,
		TgtType: models.EntityType(req.TgtType),
		TgtID:   req.TgtID,
	})
	if err != nil {
		respondError(w, "create link", err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// LinksFrom handles GET /api/links/from/{type}/{id}.
func (h *Handler) LinksFrom(w http.ResponseWriter, r *http.Request) {
	et, id := entityRef(r)
	links, err := h.svc.ListLinksFromSource(r.Context(), et, id)
	if err != nil {
		respondError(w, "links from", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}

// LinksTo handles GET /api/links/to/{type}/{id}.
func (h *Handler) LinksTo(w http.ResponseWriter, r *http.Request) {
	et, id := entityRef(r)
	links, err := h.svc.ListLinksToTarget(r.Context(), et, id)
	if err != nil {
		respondError(w, "links to", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}
