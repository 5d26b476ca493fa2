package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/kb"
	"github.com/starford/othala/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *kb.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *kb.Service) *Handler {
	return &Handler{svc: svc}
}

// entityRef reads the {type}/{id} pair from entity-scoped routes.
func entityRef(r *http.Request) (models.EntityType, string) {
	return models.EntityType(chi.URLParam(r, "type")), chi.URLParam(r, "id")
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	kb.NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.svc.CreateNote(r.Context(), models.NewNote{Title: req.Title, Body: req.Body})
	if err != nil {
		respondError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a note with tags and backlinks
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	kb.NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
//
//	@Summary		Partially update a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		UpdateNoteRequest	true	"Fields to update"
//	@Success		200		{object}	kb.NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.svc.UpdateNote(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		respondError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// NoteBacklinks handles GET /api/notes/{id}/backlinks.
func (h *Handler) NoteBacklinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.Backlinks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "note backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backlinks": links})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.SearchNotes(r.Context(), q, limit)
	if err != nil {
		respondError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// SearchSimilar handles POST /api/search/similar.
//
//	@Summary		Rank stored embeddings by similarity to a query vector
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SimilarSearchRequest	true	"Query vector"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/similar [post]
func (h *Handler) SearchSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	matches, err := h.svc.SearchSimilar(r.Context(), req.Provider, req.Model, req.Vector, req.Limit)
	if err != nil {
		respondError(w, "similar search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}
