// Package models defines the domain types for Othala.
package models

import "time"

// DefaultDimensions is the vector dimensionality assumed when a caller does
// not declare one (OpenAI text-embedding-3-small and ada-002 width).
const DefaultDimensions = 1536

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

// Task statuses.
const (
	StatusTodo     TaskStatus = "todo"
	StatusDoing    TaskStatus = "doing"
	StatusDone     TaskStatus = "done"
	StatusBlocked  TaskStatus = "blocked"
	StatusCanceled TaskStatus = "canceled"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone, StatusBlocked, StatusCanceled:
		return true
	}
	return false
}

// Note is a Markdown document.
type Note struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task is an actionable item with a status and priority.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Recurrence  *string    `json:"recurrence,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Event is a scheduled block of time. EndsAt >= StartsAt is a caller
// contract checked at the service boundary, not by storage.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	Timezone    string     `json:"timezone"`
	Location    *string    `json:"location,omitempty"`
	Recurrence  *string    `json:"recurrence,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// JournalEntry is a dated entry. One entry per date is a caller convention,
// not a unique constraint. Tags here are denormalized free-text strings,
// independent of the Tag registry. JournalEntry carries no update timestamp.
type JournalEntry struct {
	ID        string    `json:"id"`
	EntryDate string    `json:"entry_date"` // YYYY-MM-DD
	Body      *string   `json:"body,omitempty"`
	Mood      *int      `json:"mood,omitempty"`
	Energy    *int      `json:"energy,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// File records an uploaded blob. Immutable once created.
type File struct {
	ID         string    `json:"id"`
	Driver     string    `json:"driver"`
	StorageKey string    `json:"storage_key"`
	Filename   string    `json:"filename"`
	MimeType   *string   `json:"mime_type,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	Checksum   *string   `json:"checksum,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Tag is a registry entry. Identity is the slug: two upserts with the same
// slug converge to one row regardless of the generated id.
type Tag struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Label     string    `json:"label"`
	Color     *string   `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TagMap attaches a Tag to an entity. At most one row per
// (tagId, entityType, entityId).
type TagMap struct {
	ID         string     `json:"id"`
	TagID      string     `json:"tag_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Prop is typed key/value metadata. At most one row per
// (entityType, entityId, name); values are encrypted by default.
type Prop struct {
	ID          string     `json:"id"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Name        string     `json:"name"`
	ValueType   string     `json:"value_type"`
	Value       string     `json:"value"`
	IsEncrypted bool       `json:"is_encrypted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Attachment links a File to an entity. Immutable: to change the
// association, delete and recreate.
type Attachment struct {
	ID         string     `json:"id"`
	FileID     string     `json:"file_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Title      *string    `json:"title,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Embedding stores one vector per (entityType, entityId, provider, model),
// so providers and models can be swapped without collision.
type Embedding struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	Vector     []float32  `json:"vector"`
	Dimensions int        `json:"dimensions"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Link is a directed edge between two entities. The edge log is
// append-only and duplicates are permitted.
type Link struct {
	ID        string     `json:"id"`
	SrcType   EntityType `json:"src_type"`
	SrcID     string     `json:"src_id"`
	TgtType   EntityType `json:"tgt_type"`
	TgtID     string     `json:"tgt_id"`
	CreatedAt time.Time  `json:"created_at"`
}
