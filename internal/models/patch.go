package models

import "time"

// Patch types carry partial updates: a nil field is untouched, a non-nil
// field overwrites the stored value. An all-nil patch is defined as a pure
// read: no write is issued and no update timestamp is bumped.

// NotePatch is a partial update for a Note.
type NotePatch struct {
	Title *string
	Body  *string
}

// IsEmpty reports whether no field is set.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Body == nil
}

// TaskPatch is a partial update for a Task.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *int
	DueAt       *time.Time
	Recurrence  *string
}

// IsEmpty reports whether no field is set.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueAt == nil && p.Recurrence == nil
}

// EventPatch is a partial update for an Event.
type EventPatch struct {
	Title       *string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Timezone    *string
	Location    *string
	Recurrence  *string
}

// IsEmpty reports whether no field is set.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.StartsAt == nil &&
		p.EndsAt == nil && p.Timezone == nil && p.Location == nil &&
		p.Recurrence == nil
}

// JournalPatch is a partial update for a JournalEntry. Journal entries have
// no update timestamp, so applying a patch bumps nothing.
type JournalPatch struct {
	EntryDate *string
	Body      *string
	Mood      *int
	Energy    *int
	Tags      *[]string
}

// IsEmpty reports whether no field is set.
func (p JournalPatch) IsEmpty() bool {
	return p.EntryDate == nil && p.Body == nil && p.Mood == nil &&
		p.Energy == nil && p.Tags == nil
}
