package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/models"
)

// The same checks run against every driver so memory and postgres stay
// interchangeable.

func testUserRepository(t *testing.T, users UserRepository) {
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "hash", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, alice))
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	dupEmail := &models.User{Username: "other", Email: "alice@x.com", PasswordHash: "hash", Role: models.RoleUser}
	err := users.Create(ctx, dupEmail)
	assert.True(t, errors.Is(err, models.ErrDuplicateIdentity), "got %v", err)

	dupName := &models.User{Username: "alice", Email: "other@x.com", PasswordHash: "hash", Role: models.RoleUser}
	err = users.Create(ctx, dupName)
	assert.True(t, errors.Is(err, models.ErrDuplicateIdentity), "got %v", err)

	byEmail, err := users.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byName, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = users.FindByEmail(ctx, "nobody@x.com")
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)
	_, err = users.FindByID(ctx, alice.ID+1000)
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)

	require.NoError(t, users.UpdateRole(ctx, alice.ID, models.RoleAdmin))
	byID, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, byID.Role)

	err = users.UpdateRole(ctx, alice.ID+1000, models.RoleAdmin)
	assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)

	bob := &models.User{Username: "bob", Email: "bob@x.com", PasswordHash: "hash", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, bob))

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, alice.ID, list[0].ID)
	assert.Equal(t, bob.ID, list[1].ID)
}

func testTaskRepository(t *testing.T, users UserRepository, tasks TaskRepository) {
	ctx := context.Background()

	owner := &models.User{Username: "owner", Email: "owner@x.com", PasswordHash: "hash", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, owner))

	deadline := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		UserID:      owner.ID,
		Title:       "Ship",
		Description: "release",
		Priority:    models.PriorityHigh,
		Deadline:    deadline,
		Status:      models.StatusTodo,
	}
	require.NoError(t, tasks.Create(ctx, task))
	assert.NotZero(t, task.ID)

	got, err := tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship", got.Title)
	assert.Equal(t, owner.ID, got.UserID)
	assert.True(t, deadline.Equal(got.Deadline), "deadline %v", got.Deadline)
	assert.Equal(t, models.StatusTodo, got.Status)

	require.NoError(t, tasks.UpdateStatus(ctx, task.ID, models.StatusDone))
	require.NoError(t, tasks.Update(ctx, &models.Task{
		ID:          task.ID,
		Title:       "Ship v2",
		Description: "rewritten",
		Priority:    models.PriorityLow,
		Deadline:    deadline.AddDate(0, 1, 0),
	}))

	got, err = tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship v2", got.Title)
	assert.Equal(t, models.PriorityLow, got.Priority)
	assert.Equal(t, models.StatusDone, got.Status, "Update must not touch status")
	assert.Equal(t, owner.ID, got.UserID, "Update must not touch owner")
	assert.True(t, deadline.AddDate(0, 1, 0).Equal(got.Deadline))

	second := &models.Task{UserID: owner.ID, Title: "Two", Priority: models.PriorityMedium, Deadline: deadline, Status: models.StatusTodo}
	require.NoError(t, tasks.Create(ctx, second))

	list, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, task.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	missing := second.ID + 1000
	assert.True(t, errors.Is(tasks.UpdateStatus(ctx, missing, models.StatusDone), models.ErrNotFound))
	assert.True(t, errors.Is(tasks.Update(ctx, &models.Task{ID: missing, Deadline: deadline}), models.ErrNotFound))
	assert.True(t, errors.Is(tasks.Delete(ctx, missing), models.ErrNotFound))
	_, err = tasks.FindByID(ctx, missing)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	require.NoError(t, tasks.Delete(ctx, task.ID))
	list, err = tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestMemoryUserRepository(t *testing.T) {
	testUserRepository(t, NewMemoryUserRepository())
}

func TestMemoryTaskRepository(t *testing.T) {
	testTaskRepository(t, NewMemoryUserRepository(), NewMemoryTaskRepository())
}

func TestCreateAdminUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepository()

	require.NoError(t, CreateAdminUser(ctx, users, "root", "root@x.com", "secret1"))
	require.NoError(t, CreateAdminUser(ctx, users, "root", "root@x.com", "secret1"))

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RoleAdmin, list[0].Role)
	assert.NotEqual(t, "secret1", list[0].PasswordHash)
}

func TestCreateAdminUserSkipsTakenUsername(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepository()
	require.NoError(t, users.Create(ctx, &models.User{
		Username: "root", Email: "someone@x.com", PasswordHash: "hash", Role: models.RoleUser,
	}))

	require.NoError(t, CreateAdminUser(ctx, users, "root", "root@x.com", "secret1"))

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "someone@x.com", list[0].Email)
	assert.Equal(t, models.RoleUser, list[0].Role)
}
