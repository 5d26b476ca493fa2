package models

import "time"

// New* types are create payloads. Ids and timestamps are generated by the
// store; optional fields left nil take their column defaults.

// NewNote is the payload for creating a Note.
type NewNote struct {
	Title *string
	Body  string
}

// NewTask is the payload for creating a Task. A zero Status defaults to
// todo; a zero Priority defaults to 3.
type NewTask struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    *int
	DueAt       *time.Time
	Recurrence  *string
}

// NewEvent is the payload for creating an Event.
type NewEvent struct {
	Title       string
	Description *string
	StartsAt    time.Time
	EndsAt      time.Time
	Timezone    string
	Location    *string
	Recurrence  *string
}

// NewJournalEntry is the payload for creating a JournalEntry.
type NewJournalEntry struct {
	EntryDate string // YYYY-MM-DD
	Body      *string
	Mood      *int
	Energy    *int
	Tags      []string
}

// NewFile is the payload for recording an uploaded blob.
type NewFile struct {
	Driver     string
	StorageKey string
	Filename   string
	MimeType   *string
	SizeBytes  int64
	Checksum   *string
}

// NewTag is the payload for upserting a Tag. Label and Color are applied
// only when they are provided and differ from the stored row.
type NewTag struct {
	Slug  string
	Label string
	Color *string
}

// NewProp is the payload for upserting a Prop. A nil IsEncrypted
// defaults to true.
type NewProp struct {
	EntityType  EntityType
	EntityID    string
	Name        string
	ValueType   string
	Value       string
	IsEncrypted *bool
}

// NewEmbedding is the payload for upserting an Embedding.
type NewEmbedding struct {
	EntityType EntityType
	EntityID   string
	Provider   string
	Model      string
	Vector     []float32
	Dimensions int
}

// NewAttachment is the payload for creating an Attachment.
type NewAttachment struct {
	FileID     string
	EntityType EntityType
	EntityID   string
	Title      *string
}

// NewLink is the payload for appending a Link edge.
type NewLink struct {
	SrcType EntityType
	SrcID   string
	TgtType EntityType
	TgtID   string
}
