package api

import (
	"time"

	"github.com/starford/othala/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title *string `json:"title" example:"Reading list"`
	Body  string  `json:"body" example:"# Reading list\n- [[Deep Work]]" validate:"required"`
}

// UpdateNoteRequest is a partial note update; absent fields are untouched.
type UpdateNoteRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (r UpdateNoteRequest) patch() models.NotePatch {
	return models.NotePatch{Title: r.Title, Body: r.Body}
}

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title" example:"File taxes" validate:"required"`
	Description *string    `json:"description"`
	Status      string     `json:"status" example:"todo"`
	Priority    *int       `json:"priority" example:"3"`
	DueAt       *time.Time `json:"due_at"`
	Recurrence  *string    `json:"recurrence" example:"FREQ=YEARLY"`
}

// UpdateTaskRequest is a partial task update.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *int       `json:"priority"`
	DueAt       *time.Time `json:"due_at"`
	Recurrence  *string    `json:"recurrence"`
}

func (r UpdateTaskRequest) patch() models.TaskPatch {
	p := models.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		DueAt:       r.DueAt,
		Recurrence:  r.Recurrence,
	}
	if r.Status != nil {
		st := models.TaskStatus(*r.Status)
		p.Status = &st
	}
	return p
}

// CreateEventRequest is the request body for creating a calendar event.
type CreateEventRequest struct {
	Title       string    `json:"title" example:"Dentist" validate:"required"`
	Description *string   `json:"description"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	Timezone    string    `json:"timezone" example:"Europe/Berlin"`
	Location    *string   `json:"location"`
	Recurrence  *string   `json:"recurrence"`
}

// UpdateEventRequest is a partial event update.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Timezone    *string    `json:"timezone"`
	Location    *string    `json:"location"`
	Recurrence  *string    `json:"recurrence"`
}

func (r UpdateEventRequest) patch() models.EventPatch {
	return models.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
		Timezone:    r.Timezone,
		Location:    r.Location,
		Recurrence:  r.Recurrence,
	}
}

// CreateJournalRequest is the request body for creating a journal entry.
type CreateJournalRequest struct {
	EntryDate string   `json:"entry_date" example:"2026-03-01" validate:"required"`
	Body      *string  `json:"body"`
	Mood      *int     `json:"mood" example:"7"`
	Energy    *int     `json:"energy" example:"5"`
	Tags      []string `json:"tags"`
}

// UpdateJournalRequest is a partial journal entry update.
type UpdateJournalRequest struct {
	EntryDate *string   `json:"entry_date"`
	Body      *string   `json:"body"`
	Mood      *int      `json:"mood"`
	Energy    *int      `json:"energy"`
	Tags      *[]string `json:"tags"`
}

func (r UpdateJournalRequest) patch() models.JournalPatch {
	return models.JournalPatch{
		EntryDate: r.EntryDate,
		Body:      r.Body,
		Mood:      r.Mood,
		Energy:    r.Energy,
		Tags:      r.Tags,
	}
}

// UpsertTagRequest creates or updates a tag addressed by slug.
type UpsertTagRequest struct {
	Slug  string  `json:"slug" example:"deep-work" validate:"required"`
	Label string  `json:"label" example:"Deep Work"`
	Color *string `json:"color" example:"#7c3aed"`
}

// TagAssignmentRequest attaches or detaches a tag on an entity.
type TagAssignmentRequest struct {
	TagID      string `json:"tag_id" validate:"required"`
	EntityType string `json:"entity_type" example:"note" validate:"required"`
	EntityID   string `json:"entity_id" validate:"required"`
}

// SetPropRequest writes a named property on an entity.
type SetPropRequest struct {
	EntityType  string `json:"entity_type" example:"task" validate:"required"`
	EntityID    string `json:"entity_id" validate:"required"`
	Name        string `json:"name" example:"estimate" validate:"required"`
	ValueType   string `json:"value_type" example:"number" validate:"required"`
	Value       string `json:"value" example:"4"`
	IsEncrypted *bool  `json:"is_encrypted"`
}

// CreateAttachmentRequest binds an uploaded file to an entity.
type CreateAttachmentRequest struct {
	FileID     string  `json:"file_id" validate:"required"`
	EntityType string  `json:"entity_type" example:"journal" validate:"required"`
	EntityID   string  `json:"entity_id" validate:"required"`
	Title      *string `json:"title"`
}

// UpsertEmbeddingRequest stores a vector for an entity.
type UpsertEmbeddingRequest struct {
	EntityType string    `json:"entity_type" example:"note" validate:"required"`
	EntityID   string    `json:"entity_id" validate:"required"`
	Provider   string    `json:"provider" example:"openai" validate:"required"`
	Model      string    `json:"model" example:"text-embedding-3-small" validate:"required"`
	Vector     []float32 `json:"vector" validate:"required"`
	Dimensions int       `json:"dimensions"`
}

// SimilarSearchRequest ranks stored vectors against a query vector.
type SimilarSearchRequest struct {
	Provider string    `json:"provider" validate:"required"`
	Model    string    `json:"model" validate:"required"`
	Vector   []float32 `json:"vector" validate:"required"`
	Limit    int       `json:"limit" example:"10"`
}

// CreateLinkRequest appends a directed edge between two entities.
type CreateLinkRequest struct {
	SrcType string `json:"src_type" example:"note" validate:"required"`
	SrcID   string `json:"src_id" validate:"required"`
	TgtType string `json:"tgt_type" example:"task" validate:"required"`
	TgtID   string `json:"tgt_id" validate:"required"`
}

// FileUploadResponse is returned after a successful file upload.
type FileUploadResponse = models.File
