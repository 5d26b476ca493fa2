package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/kb"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(svc *kb.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Patch("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Get("/notes/{id}/backlinks", h.NoteBacklinks)

	// Tasks.
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Patch("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)

	// Calendar events.
	r.Post("/events", h.CreateEvent)
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)
	r.Patch("/events/{id}", h.UpdateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)

	// Journal.
	r.Post("/journal", h.CreateJournalEntry)
	r.Get("/journal", h.ListJournal)
	r.Get("/journal/{id}", h.GetJournalEntry)
	r.Patch("/journal/{id}", h.UpdateJournalEntry)
	r.Delete("/journal/{id}", h.DeleteJournalEntry)

	// Files and attachments.
	r.Post("/files", h.UploadFile)
	r.Get("/files/{id}", h.GetFile)
	r.Get("/files/{id}/content", h.DownloadFile)
	r.Delete("/files/{id}", h.DeleteFile)
	r.Post("/attachments", h.CreateAttachment)
	r.Delete("/attachments/{id}", h.DeleteAttachment)

	// Tags.
	r.Put("/tags", h.UpsertTag)
	r.Get("/tags/{id}", h.GetTag)
	r.Delete("/tags/{id}", h.DeleteTag)
	r.Post("/tags/attach", h.AttachTag)
	r.Post("/tags/detach", h.DetachTag)

	// Props and embeddings.
	r.Put("/props", h.SetProp)
	r.Put("/embeddings", h.UpsertEmbedding)

	// Links.
	r.Post("/links", h.CreateLink)
	r.Get("/links/from/{type}/{id}", h.LinksFrom)
	r.Get("/links/to/{type}/{id}", h.LinksTo)

	// Entity-scoped metadata reads.
	r.Route("/entities/{type}/{id}", func(r chi.Router) {
		r.Get("/", h.EntityExists)
		r.Get("/tags", h.EntityTags)
		r.Get("/props", h.EntityProps)
		r.Get("/attachments", h.EntityAttachments)
		r.Get("/embeddings", h.EntityEmbeddings)
	})

	// Search.
	r.Get("/search", h.Search)
	r.Post("/search/similar", h.SearchSimilar)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}
