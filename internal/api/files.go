package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

// UploadFile handles POST /api/files (multipart/form-data, field "file").
//
//	@Summary		Upload a file blob
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File content"
//	@Success		201		{object}	models.File
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files [post]
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	var mimeType *string
	if ct := header.Header.Get("Content-Type"); ct != "" {
		mimeType = &ct
	}

	file, err := h.svc.UploadFile(r.Context(), header.Filename, mimeType, content)
	if err != nil {
		respondError(w, "upload file", err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

// GetFile handles GET /api/files/{id} and returns metadata only.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.svc.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "get file", err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// DownloadFile handles GET /api/files/{id}/content and streams the blob.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	file, content, err := h.svc.ReadFileContent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "download file", err)
		return
	}
	ct := "application/octet-stream"
	if file.MimeType != nil && *file.MimeType != "" {
		ct = *file.MimeType
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// DeleteFile handles DELETE /api/files/{id}. The blob and any attachments
// referencing the file go with it.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.svc.DeleteFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "delete file", err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// CreateAttachment handles POST /api/attachments.
func (h *Handler) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	var req CreateAttachmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	att, err := h.svc.CreateAttachment(r.Context(), models.NewAttachment{
		FileID:     req.FileID,
		EntityType: models.EntityType(req.EntityType),
		EntityID:   req.EntityID,
		Title:      req.Title,
	})
	if err != nil {
		respondError(w, "create attachment", err)
		return
	}
	writeJSON(w, http.StatusCreated, att)
}

// DeleteAttachment handles DELETE /api/attachments/{id}. The underlying
// file row stays.
func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	att, err := h.svc.DeleteAttachment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "delete attachment", err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

// EntityAttachments handles GET /api/entities/{type}/{id}/attachments.
func (h *Handler) EntityAttachments(w http.ResponseWriter, r *http.Request) {
	et, id := entityRef(r)
	atts, err := h.svc.ListAttachmentsForEntity(r.Context(), et, id)
	if err != nil {
		respondError(w, "entity attachments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attachments": atts})
}
