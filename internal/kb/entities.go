package kb

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

const dateLayout = "2006-01-02"

// CreateTask stores a task. Status defaults to todo and priority to 3.
func (s *Service) CreateTask(_ context.Context, t models.NewTask) (*models.Task, error) {
	if err := invalid("title", validation.Validate(t.Title, validation.Required, validation.Length(1, 500))); err != nil {
		return nil, err
	}
	if t.Status != "" && !t.Status.Valid() {
		return nil, apperr.Validation("status", "unknown status "+string(t.Status))
	}
	if t.Priority != nil {
		if err := invalid("priority", validation.Validate(*t.Priority, validation.Min(1), validation.Max(5))); err != nil {
			return nil, err
		}
	}
	task, err := s.db.CreateTask(t)
	if err != nil {
		return nil, err
	}
	s.publish("created", models.EntityTask, task.ID)
	return task, nil
}

func (s *Service) GetTask(_ context.Context, id string) (*models.Task, error) {
	return s.db.GetTask(id)
}

// ListTasks returns tasks filtered by status. An empty filter returns all.
func (s *Service) ListTasks(_ context.Context, statuses []models.TaskStatus) ([]models.Task, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, apperr.Validation("status", "unknown status "+string(st))
		}
	}
	return s.db.ListTasksByStatus(statuses)
}

func (s *Service) UpdateTask(_ context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Validation("status", "unknown status "+string(*patch.Status))
	}
	if patch.Priority != nil {
		if err := invalid("priority", validation.Validate(*patch.Priority, validation.Min(1), validation.Max(5))); err != nil {
			return nil, err
		}
	}
	task, err := s.db.UpdateTask(id, patch)
	if err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		s.publish("updated", models.EntityTask, id)
	}
	return task, nil
}

func (s *Service) DeleteTask(_ context.Context, id string) (*models.Task, error) {
	task, err := s.db.DeleteTask(id)
	if err != nil {
		return nil, err
	}
	s.publish("deleted", models.EntityTask, id)
	return task, nil
}

// CreateEvent stores a calendar event. EndsAt must not precede StartsAt.
func (s *Service) CreateEvent(_ context.Context, e models.NewEvent) (*models.Event, error) {
	if err := invalid("title", validation.Validate(e.Title, validation.Required, validation.Length(1, 500))); err != nil {
		return nil, err
	}
	if e.StartsAt.IsZero() || e.EndsAt.IsZero() {
		return nil, apperr.Validation("startsAt", "startsAt and endsAt are required")
	}
	if e.EndsAt.Before(e.StartsAt) {
		return nil, apperr.Validation("endsAt", "must not precede startsAt")
	}
	if e.Timezone == "" {
		e.Timezone = "UTC"
	}
	event, err := s.db.CreateEvent(e)
	if err != nil {
		return nil, err
	}
	s.publish("created", models.EntityEvent, event.ID)
	return event, nil
}

func (s *Service) GetEvent(_ context.Context, id string) (*models.Event, error) {
	return s.db.GetEvent(id)
}

// ListEventsBetween returns events fully contained in [start, end].
func (s *Service) ListEventsBetween(_ context.Context, start, end time.Time) ([]models.Event, error) {
	if end.Before(start) {
		return nil, apperr.Validation("end", "must not precede start")
	}
	return s.db.ListEventsBetween(start, end)
}

// UpdateEvent applies a partial update, rejecting patches that would leave
// the event ending before it starts.
func (s *Service) UpdateEvent(_ context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	if patch.StartsAt != nil || patch.EndsAt != nil {
		current, err := s.db.GetEvent(id)
		if err != nil {
			return nil, err
		}
		starts, ends := current.StartsAt, current.EndsAt
		if patch.StartsAt != nil {
			starts = *patch.StartsAt
		}
		if patch.EndsAt != nil {
			ends = *patch.EndsAt
		}
		if ends.Before(starts) {
			return nil, apperr.Validation("endsAt", "must not precede startsAt")
		}
	}
	event, err := s.db.UpdateEvent(id, patch)
	if err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		s.publish("updated", models.EntityEvent, id)
	}
	return event, nil
}

func (s *Service) DeleteEvent(_ context.Context, id string) (*models.Event, error) {
	event, err := s.db.DeleteEvent(id)
	if err != nil {
		return nil, err
	}
	s.publish("deleted", models.EntityEvent, id)
	return event, nil
}

// CreateJournalEntry stores a dated journal entry. Multiple entries per
// date are allowed.
func (s *Service) CreateJournalEntry(_ context.Context, j models.NewJournalEntry) (*models.JournalEntry, error) {
	if err := invalid("entryDate", validation.Validate(j.EntryDate, validation.Required, validation.Date(dateLayout))); err != nil {
		return nil, err
	}
	if err := validateScale("mood", j.Mood); err != nil {
		return nil, err
	}
	if err := validateScale("energy", j.Energy); err != nil {
		return nil, err
	}
	entry, err := s.db.CreateJournalEntry(j)
	if err != nil {
		return nil, err
	}
	s.publish("created", models.EntityJournal, entry.ID)
	return entry, nil
}

func (s *Service) GetJournalEntry(_ context.Context, id string) (*models.JournalEntry, error) {
	return s.db.GetJournalEntry(id)
}

// ListJournalBetween returns entries with entryDate in [start, end].
func (s *Service) ListJournalBetween(_ context.Context, start, end string) ([]models.JournalEntry, error) {
	if err := invalid("start", validation.Validate(start, validation.Required, validation.Date(dateLayout))); err != nil {
		return nil, err
	}
	if err := invalid("end", validation.Validate(end, validation.Required, validation.Date(dateLayout))); err != nil {
		return nil, err
	}
	if end < start {
		return nil, apperr.Validation("end", "must not precede start")
	}
	return s.db.ListJournalBetween(start, end)
}

func (s *Service) UpdateJournalEntry(_ context.Context, id string, patch models.JournalPatch) (*models.JournalEntry, error) {
	if patch.EntryDate != nil {
		if err := invalid("entryDate", validation.Validate(*patch.EntryDate, validation.Required, validation.Date(dateLayout))); err != nil {
			return nil, err
		}
	}
	if err := validateScale("mood", patch.Mood); err != nil {
		return nil, err
	}
	if err := validateScale("energy", patch.Energy); err != nil {
		return nil, err
	}
	entry, err := s.db.UpdateJournalEntry(id, patch)
	if err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		s.publish("updated", models.EntityJournal, id)
	}
	return entry, nil
}

func (s *Service) DeleteJournalEntry(_ context.Context, id string) (*models.JournalEntry, error) {
	entry, err := s.db.DeleteJournalEntry(id)
	if err != nil {
		return nil, err
	}
	s.publish("deleted", models.EntityJournal, id)
	return entry, nil
}

// validateScale checks the 1..10 range shared by mood and energy.
func validateScale(field string, v *int) error {
	if v == nil {
		return nil
	}
	return invalid(field, validation.Validate(*v, validation.Min(1), validation.Max(10)))
}
