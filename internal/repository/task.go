package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasktracker/internal/models"
)

const taskColumns = "id, user_id, title, description, priority, deadline, status, created_at, updated_at"

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description, &task.Priority,
		&task.Deadline, &task.Status, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	task.Deadline = task.Deadline.UTC()
	return &task, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task %d: %w", id, err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, description, priority, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		task.UserID, task.Title, task.Description, task.Priority, task.Deadline, task.Status,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update overwrites every admin-editable field. There is no version check.
func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		SET title = $1, description = $2, priority = $3, deadline = $4, updated_at = NOW()
		WHERE id = $5`,
		task.Title, task.Description, task.Priority, task.Deadline, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	return expectOneRow(res, "task", task.ID)
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int, status models.Status) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of task %d: %w", id, err)
	}
	return expectOneRow(res, "task", id)
}

func (r *taskRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return expectOneRow(res, "task", id)
}
