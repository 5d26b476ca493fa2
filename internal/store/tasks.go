package store

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// CreateTask inserts a new task. A zero status defaults to todo and a nil
// priority defaults to 3.
func (db *DB) CreateTask(t models.NewTask) (*models.Task, error) {
	status := t.Status
	if status == "" {
		status = models.StatusTodo
	}
	priority := 3
	if t.Priority != nil {
		priority = *t.Priority
	}
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       t.Title,
		Description: t.Description,
		Status:      status,
		Priority:    priority,
		DueAt:       t.DueAt,
		Recurrence:  t.Recurrence,
		CreatedAt:   now(),
		UpdatedAt:   now(),
	}
	_, err := db.conn.Exec(`
		INSERT INTO tasks (id, title, description, status, priority, due_at, recurrence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Title, task.Description, string(task.Status), task.Priority,
		task.DueAt, task.Recurrence, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, translate("create task", err)
	}
	return &task, nil
}

// GetTask returns the task with the given id, or apperr.ErrNotFound.
func (db *DB) GetTask(id string) (*models.Task, error) {
	return scanTask(db.conn.QueryRow(taskSelect+` WHERE id = ?`, id))
}

// ListTasksByStatus returns tasks whose status is in the given set, ordered
// by creation time. An empty set returns every task.
func (db *DB) ListTasksByStatus(statuses []models.TaskStatus) ([]models.Task, error) {
	query := taskSelect + ` ORDER BY created_at, id`
	var args []any
	if len(statuses) > 0 {
		placeholders := strings.Repeat("?,", len(statuses)-1) + "?"
		query = taskSelect + ` WHERE status IN (` + placeholders + `) ORDER BY created_at, id`
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, translate("list tasks", err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateTask applies a partial patch and refreshes updated_at. An empty
// patch is a pure read.
func (db *DB) UpdateTask(id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.IsEmpty() {
		return db.GetTask(id)
	}

	set := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.DueAt != nil {
		set = append(set, "due_at = ?")
		args = append(args, *patch.DueAt)
	}
	if patch.Recurrence != nil {
		set = append(set, "recurrence = ?")
		args = append(args, *patch.Recurrence)
	}
	args = append(args, id)

	res, err := db.conn.Exec(`UPDATE tasks SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, translate("update task", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.GetTask(id)
}

// DeleteTask removes a task and returns the deleted row.
func (db *DB) DeleteTask(id string) (*models.Task, error) {
	task, err := db.GetTask(id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return nil, translate("delete task", err)
	}
	return task, nil
}

const taskSelect = `
	SELECT id, title, description, status, priority, due_at, recurrence, created_at, updated_at
	FROM tasks`

func scanTask(r rowScanner) (*models.Task, error) {
	var t models.Task
	var desc, recur sql.NullString
	var due sql.NullTime
	var status string
	if err := r.Scan(&t.ID, &t.Title, &desc, &status, &t.Priority, &due, &recur,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, translate("scan task", err)
	}
	t.Status = models.TaskStatus(status)
	if desc.Valid {
		t.Description = &desc.String
	}
	if due.Valid {
		t.DueAt = &due.Time
	}
	if recur.Valid {
		t.Recurrence = &recur.String
	}
	return &t, nil
}
