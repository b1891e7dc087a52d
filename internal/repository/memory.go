package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tasktracker/internal/models"
)

// The in-memory stores back STORAGE_DRIVER=memory and the handler tests. They keep
// the same contract as the PostgreSQL stores, including duplicate and not-found errors.

type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]models.User
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{nextID: 1, users: make(map[int]models.User)}
}

func (r *memoryUserRepository) FindByID(_ context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user by id %d: %w", id, models.ErrNotFound)
	}
	return &user, nil
}

func (r *memoryUserRepository) find(match func(models.User) bool) (*models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if match(user) {
			return &user, true
		}
	}
	return nil, false
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := r.find(func(u models.User) bool { return u.Username == username })
	if !ok {
		return nil, fmt.Errorf("failed to find user by username %s: %w", username, models.ErrNotFound)
	}
	return user, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.find(func(u models.User) bool { return u.Email == email })
	if !ok {
		return nil, fmt.Errorf("failed to find user by email: %w", models.ErrNotFound)
	}
	return user, nil
}

func (r *memoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("failed to create user: %w", models.ErrDuplicateIdentity)
		}
	}
	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt, user.UpdatedAt = now, now
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) UpdateRole(_ context.Context, id int, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

type memoryTaskRepository struct {
	mu     sync.RWMutex
	nextID int
	tasks  map[int]models.Task
}

func NewMemoryTaskRepository() TaskRepository {
	return &memoryTaskRepository{nextID: 1, tasks: make(map[int]models.Task)}
}

func (r *memoryTaskRepository) FindByID(_ context.Context, id int) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return &task, nil
}

func (r *memoryTaskRepository) List(_ context.Context) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := make([]models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r *memoryTaskRepository) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	task.ID = r.nextID
	task.CreatedAt, task.UpdatedAt = now, now
	r.nextID++
	r.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) Update(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[task.ID]
	if !ok {
		return fmt.Errorf("task %d: %w", task.ID, models.ErrNotFound)
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.Priority = task.Priority
	existing.Deadline = task.Deadline
	existing.UpdatedAt = time.Now().UTC()
	r.tasks[task.ID] = existing
	return nil
}

func (r *memoryTaskRepository) UpdateStatus(_ context.Context, id int, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	task.Status = status
	task.UpdatedAt = time.Now().UTC()
	r.tasks[id] = task
	return nil
}

func (r *memoryTaskRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}
