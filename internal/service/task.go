package service

import (
	"context"
	"fmt"

	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
	"tasktracker/internal/policy"
	"tasktracker/internal/repository"
)

// TaskInput carries the admin-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	Priority    models.Priority
	Deadline    models.DeadlineParts
}

// TaskService is the task lifecycle controller. Status transitions are
// unconditional: any status may move to any other, including itself.
type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) CreateTask(ctx context.Context, p models.Principal, in TaskInput) (*models.Task, error) {
	if err := authorize(p, policy.ActionCreateTask); err != nil {
		return nil, err
	}
	deadline, err := in.Deadline.Date()
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      p.UserID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Deadline:    deadline,
		Status:      models.StatusTodo,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	metrics.TaskMutationsTotal.WithLabelValues("create").Inc()
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, p models.Principal, id int) (*models.Task, error) {
	if err := authorize(p, policy.ActionEditTask); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, id)
}

// EditTask overwrites title, description, priority and deadline. Status is kept.
func (s *TaskService) EditTask(ctx context.Context, p models.Principal, id int, in TaskInput) (*models.Task, error) {
	if err := authorize(p, policy.ActionEditTask); err != nil {
		return nil, err
	}
	deadline, err := in.Deadline.Date()
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Deadline:    deadline,
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	metrics.TaskMutationsTotal.WithLabelValues("edit").Inc()
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) DeleteTask(ctx context.Context, p models.Principal, id int) error {
	if err := authorize(p, policy.ActionDeleteTask); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	metrics.TaskMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

func (s *TaskService) MarkInProgress(ctx context.Context, p models.Principal, id int) error {
	if err := authorize(p, policy.ActionTransitionTask); err != nil {
		return err
	}
	return s.transition(ctx, id, models.StatusInProgress)
}

func (s *TaskService) MarkDone(ctx context.Context, p models.Principal, id int) error {
	if err := authorize(p, policy.ActionTransitionTask); err != nil {
		return err
	}
	return s.transition(ctx, id, models.StatusDone)
}

// ResetToTodo is the ungated reset behind /mark_todo: it succeeds for any caller,
// anonymous included.
func (s *TaskService) ResetToTodo(ctx context.Context, p models.Principal, id int) error {
	if err := authorize(p, policy.ActionResetUngated); err != nil {
		return err
	}
	return s.transition(ctx, id, models.StatusTodo)
}

// ResetOwnTask resets a task to To Do only when p owns it.
func (s *TaskService) ResetOwnTask(ctx context.Context, p models.Principal, id int) error {
	if err := authorize(p, policy.ActionResetOwnTask); err != nil {
		return err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOn(p, policy.ActionResetOwnTask, task.UserID); err != nil {
		return err
	}
	return s.transition(ctx, id, models.StatusTodo)
}

func (s *TaskService) transition(ctx context.Context, id int, status models.Status) error {
	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("transition to %s: %w", status, err)
	}
	metrics.TaskTransitionsTotal.WithLabelValues(string(status)).Inc()
	return nil
}

// ListTasks returns every task, not only the caller's, optionally sorted.
func (s *TaskService) ListTasks(ctx context.Context, p models.Principal, sortKey, sortOrder string) ([]models.Task, error) {
	if err := authorize(p, policy.ActionViewTasks); err != nil {
		return nil, err
	}
	if sortKey != "" && !IsSortKey(sortKey) {
		return nil, fmt.Errorf("%q: %w", sortKey, models.ErrInvalidSortKey)
	}

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	if sortKey != "" {
		if err := SortTasks(tasks, sortKey, sortOrder); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
