// Package repository holds the Credential Store and Task Store.
package repository

import (
	"context"

	"tasktracker/internal/models"
)

// UserRepository is the Credential Store.
type UserRepository interface {
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id int, role models.Role) error
}

// TaskRepository is the Task Store. Writes are single-statement and last-write-wins.
type TaskRepository interface {
	FindByID(ctx context.Context, id int) (*models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int, status models.Status) error
	Delete(ctx context.Context, id int) error
}
