package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// CreateTask handles POST /api/tasks.
//
//	@Summary		Create a task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTaskRequest	true	"Task to create"
//	@Success		201		{object}	models.Task
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.svc.CreateTask(r.Context(), models.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    req.Priority,
		DueAt:       req.DueAt,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		respondError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// ListTasks handles GET /api/tasks. The status query parameter takes a
// comma-separated status list; empty means all tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var statuses []models.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.TaskStatus(strings.TrimSpace(s)))
		}
	}
	tasks, err := h.svc.ListTasks(r.Context(), statuses)
	if err != nil {
		respondError(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "get task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		respondError(w, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "delete task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CreateEvent handles POST /api/events.
//
//	@Summary		Create a calendar event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateEventRequest	true	"Event to create"
//	@Success		201		{object}	models.Event
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	event, err := h.svc.CreateEvent(r.Context(), models.NewEvent{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Timezone:    req.Timezone,
		Location:    req.Location,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		respondError(w, "create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /api/events?start=...&end=... (RFC 3339). Only
// events fully contained in the window are returned.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		respondError(w, "list events", apperr.Validation("start", "must be RFC 3339"))
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		respondError(w, "list events", apperr.Validation("end", "must be RFC 3339"))
		return
	}
	events, err := h.svc.ListEventsBetween(r.Context(), start, end)
	if err != nil {
		respondError(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	event, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		respondError(w, "update event", err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "delete event", err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateJournalEntry handles POST /api/journal.
//
//	@Summary		Create a journal entry
//	@Tags			journal
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateJournalRequest	true	"Entry to create"
//	@Success		201		{object}	models.JournalEntry
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journal [post]
func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateJournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.CreateJournalEntry(r.Context(), models.NewJournalEntry{
		EntryDate: req.EntryDate,
		Body:      req.Body,
		Mood:      req.Mood,
		Energy:    req.Energy,
		Tags:      req.Tags,
	})
	if err != nil {
		respondError(w, "create journal entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ListJournal handles GET /api/journal?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.ListJournalBetween(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		respondError(w, "list journal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) GetJournalEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetJournalEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "get journal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) UpdateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req UpdateJournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.UpdateJournalEntry(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		respondError(w, "update journal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.DeleteJournalEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "delete journal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
