package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

func setupTaskService() (*TaskService, repository.TaskRepository) {
	tasks := repository.NewMemoryTaskRepository()
	return NewTaskService(tasks), tasks
}

func TestCreateTaskStartsTodo(t *testing.T) {
	svc, _ := setupTaskService()

	task, err := svc.CreateTask(context.Background(), admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))
	require.NoError(t, err)

	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, admin.UserID, task.UserID)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), task.Deadline)
}

func TestCreateTaskInvalidDate(t *testing.T) {
	svc, store := setupTaskService()
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 2, 30))
	assert.True(t, errors.Is(err, models.ErrInvalidDate), "got %v", err)

	all, _ := store.List(ctx)
	assert.Empty(t, all)
}

func TestCreateTaskForbiddenForNonAdmin(t *testing.T) {
	svc, store := setupTaskService()
	ctx := context.Background()

	for _, p := range []models.Principal{member, anonymous} {
		_, err := svc.CreateTask(ctx, p, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))
		assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)
	}

	all, _ := store.List(ctx)
	assert.Empty(t, all, "no task may be persisted")
}

func TestTransitionsAreUnconditional(t *testing.T) {
	svc, store := setupTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))
	require.NoError(t, err)

	require.NoError(t, svc.MarkDone(ctx, member, task.ID))
	require.NoError(t, svc.MarkInProgress(ctx, member, task.ID))

	got, _ := store.FindByID(ctx, task.ID)
	assert.Equal(t, models.StatusInProgress, got.Status)

	// Re-entering the same state and Done -> To Do are both allowed.
	require.NoError(t, svc.MarkInProgress(ctx, member, task.ID))
	require.NoError(t, svc.MarkDone(ctx, admin, task.ID))
	require.NoError(t, svc.ResetToTodo(ctx, member, task.ID))

	got, _ = store.FindByID(ctx, task.ID)
	assert.Equal(t, models.StatusTodo, got.Status)
}

func TestTransitionsRequireAuthentication(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()
	task, _ := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))

	assert.True(t, errors.Is(svc.MarkDone(ctx, anonymous, task.ID), models.ErrForbidden))
	assert.True(t, errors.Is(svc.MarkInProgress(ctx, anonymous, task.ID), models.ErrForbidden))
}

func TestTransitionUnknownTask(t *testing.T) {
	svc, _ := setupTaskService()

	err := svc.MarkDone(context.Background(), member, 404)
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)
}

func TestResetToTodoIsUngated(t *testing.T) {
	svc, store := setupTaskService()
	ctx := context.Background()

	task, _ := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))
	require.NoError(t, svc.MarkDone(ctx, admin, task.ID))

	require.NoError(t, svc.ResetToTodo(ctx, anonymous, task.ID))
	got, _ := store.FindByID(ctx, task.ID)
	assert.Equal(t, models.StatusTodo, got.Status)
}

func TestResetOwnTaskRequiresOwnership(t *testing.T) {
	svc, store := setupTaskService()
	ctx := context.Background()

	task, _ := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))
	require.NoError(t, svc.MarkDone(ctx, admin, task.ID))

	err := svc.ResetOwnTask(ctx, member, task.ID)
	assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)
	got, _ := store.FindByID(ctx, task.ID)
	assert.Equal(t, models.StatusDone, got.Status)

	err = svc.ResetOwnTask(ctx, anonymous, task.ID)
	assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)

	err = svc.ResetOwnTask(ctx, member, 404)
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)

	require.NoError(t, svc.ResetOwnTask(ctx, admin, task.ID))
	got, _ = store.FindByID(ctx, task.ID)
	assert.Equal(t, models.StatusTodo, got.Status)
}

func TestEditTaskOverwritesFieldsKeepsStatus(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()

	task, _ := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))
	require.NoError(t, svc.MarkInProgress(ctx, member, task.ID))

	edited, err := svc.EditTask(ctx, admin, task.ID, TaskInput{
		Title:       "Ship v2",
		Description: "rewritten",
		Priority:    models.PriorityLow,
		Deadline:    models.DeadlineParts{Year: 2026, Month: 1, Day: 15},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ship v2", edited.Title)
	assert.Equal(t, "rewritten", edited.Description)
	assert.Equal(t, models.PriorityLow, edited.Priority)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), edited.Deadline)
	assert.Equal(t, models.StatusInProgress, edited.Status)
	assert.Equal(t, admin.UserID, edited.UserID)
}

func TestEditTaskErrors(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()
	task, _ := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))

	_, err := svc.EditTask(ctx, member, task.ID, taskInput("x", models.PriorityLow, 2025, 3, 1))
	assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)

	_, err = svc.EditTask(ctx, admin, 404, taskInput("x", models.PriorityLow, 2025, 3, 1))
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)

	_, err = svc.EditTask(ctx, admin, task.ID, taskInput("x", models.PriorityLow, 2025, 4, 31))
	assert.True(t, errors.Is(err, models.ErrInvalidDate), "got %v", err)

	_, err = svc.GetTask(ctx, member, task.ID)
	assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)
}

func TestDeleteTask(t *testing.T) {
	svc, store := setupTaskService()
	ctx := context.Background()

	task, _ := svc.CreateTask(ctx, admin, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))

	err := svc.DeleteTask(ctx, member, task.ID)
	assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)

	err = svc.DeleteTask(ctx, admin, 404)
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)
	all, _ := store.List(ctx)
	assert.Len(t, all, 1, "store must be unchanged")

	require.NoError(t, svc.DeleteTask(ctx, admin, task.ID))
	all, _ = store.List(ctx)
	assert.Empty(t, all)
}

func seedSortFixture(t *testing.T, svc *TaskService) {
	t.Helper()
	ctx := context.Background()
	inputs := []TaskInput{
		taskInput("banana", models.PriorityMedium, 2025, 5, 1),
		taskInput("Apple", models.PriorityHigh, 2025, 3, 1),
		taskInput("cherry", models.PriorityLow, 2025, 4, 1),
		taskInput("apricot", models.PriorityHigh, 2025, 6, 1),
	}
	for _, in := range inputs {
		if _, err := svc.CreateTask(ctx, admin, in); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}
}

func ids(tasks []models.Task) []int {
	out := make([]int, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func TestListTasksSortByPriorityReverses(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()
	seedSortFixture(t, svc)

	asc, err := svc.ListTasks(ctx, member, "priority", "asc")
	require.NoError(t, err)
	desc, err := svc.ListTasks(ctx, member, "priority", "desc")
	require.NoError(t, err)

	assert.Equal(t, []int{3, 1, 2, 4}, ids(asc))
	reversed := ids(desc)
	slices.Reverse(reversed)
	assert.Equal(t, ids(asc), reversed)
}

func TestListTasksSortTitleCaseInsensitive(t *testing.T) {
	svc, _ := setupTaskService()
	seedSortFixture(t, svc)

	tasks, err := svc.ListTasks(context.Background(), member, "title", "")
	require.NoError(t, err)

	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"Apple", "apricot", "banana", "cherry"}, titles)
}

func TestListTasksSortDeadlineDescending(t *testing.T) {
	svc, _ := setupTaskService()
	seedSortFixture(t, svc)

	tasks, err := svc.ListTasks(context.Background(), member, "deadline", "desc")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 3, 2}, ids(tasks))
}

func TestListTasksUnsortedAndErrors(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()
	seedSortFixture(t, svc)

	tasks, err := svc.ListTasks(ctx, member, "", "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(tasks))

	_, err = svc.ListTasks(ctx, member, "password", "asc")
	assert.True(t, errors.Is(err, models.ErrInvalidSortKey), "got %v", err)

	_, err = svc.ListTasks(ctx, anonymous, "", "")
	assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)
}

func TestSortKeys(t *testing.T) {
	assert.Equal(t, []string{"deadline", "description", "id", "priority", "status", "title", "user_id"}, SortKeys())
	assert.True(t, IsSortKey("status"))
	assert.False(t, IsSortKey("__class__"))
}

func TestExampleScenario(t *testing.T) {
	auth, users, _ := setupAuthService()
	tasks, store := setupTaskService()
	ctx := context.Background()

	alice, err := auth.Register(ctx, anonymous, "alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, users.UpdateRole(ctx, alice.ID, models.RoleAdmin))

	p, err := auth.Authenticate(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)

	_, err = tasks.CreateTask(ctx, p, taskInput("Ship", models.PriorityHigh, 2025, 2, 30))
	assert.True(t, errors.Is(err, models.ErrInvalidDate), "got %v", err)

	task, err := tasks.CreateTask(ctx, p, taskInput("Ship", models.PriorityHigh, 2025, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, task.Status)

	all, _ := store.List(ctx)
	assert.Len(t, all, 1)
}
