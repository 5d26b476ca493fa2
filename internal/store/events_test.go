package store

import (
	"testing"
	"time"

	"github.com/starford/othala/internal/models"
)

func mkEvent(t *testing.T, db *DB, title string, start, end time.Time) *models.Event {
	t.Helper()
	ev, err := db.CreateEvent(models.NewEvent{
		Title: title, StartsAt: start, EndsAt: end, Timezone: "Europe/Stockholm",
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return ev
}

func TestListEventsBetween_InclusiveContainment(t *testing.T) {
	db := testDB(t)
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	inside := mkEvent(t, db, "inside", day.Add(9*time.Hour), day.Add(10*time.Hour))
	exact := mkEvent(t, db, "exact", day, day.Add(24*time.Hour))
	mkEvent(t, db, "before", day.Add(-2*time.Hour), day.Add(-1*time.Hour))
	mkEvent(t, db, "overlapping", day.Add(23*time.Hour), day.Add(25*time.Hour))

	events, err := db.ListEventsBetween(day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListEventsBetween: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2 (contained events only): %+v", len(events), events)
	}
	// Ordered by starts_at: the exactly-bounded event starts first.
	if events[0].ID != exact.ID || events[1].ID != inside.ID {
		t.Errorf("order = [%s %s]", events[0].Title, events[1].Title)
	}
}

func TestUpdateEvent(t *testing.T) {
	db := testDB(t)
	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	ev := mkEvent(t, db, "standup", start, start.Add(time.Hour))

	loc := "room 2"
	got, err := db.UpdateEvent(ev.ID, models.EventPatch{Location: &loc})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if got.Location == nil || *got.Location != "room 2" {
		t.Errorf("location = %v", got.Location)
	}
	if !got.StartsAt.Equal(start) {
		t.Errorf("untouched starts_at changed: %v", got.StartsAt)
	}

	same, _ := db.UpdateEvent(ev.ID, models.EventPatch{})
	if !same.UpdatedAt.Equal(got.UpdatedAt) {
		t.Errorf("empty patch bumped updated_at")
	}
}

func TestDeleteEvent(t *testing.T) {
	db := testDB(t)
	start := time.Now().UTC()
	ev := mkEvent(t, db, "one-off", start, start.Add(time.Hour))

	deleted, err := db.DeleteEvent(ev.ID)
	if err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if deleted.Title != "one-off" {
		t.Errorf("deleted = %+v", deleted)
	}
	if n := rowCount(t, db, "events"); n != 0 {
		t.Errorf("events rows = %d, want 0", n)
	}
}
