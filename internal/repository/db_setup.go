package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tasktracker/internal/models"
	"tasktracker/pkg/crypto"
	"tasktracker/pkg/logger"
)

// tasks.user_id carries no ON DELETE clause: user deletion is not exposed, so the
// cascade rule is left to the database default (NO ACTION).
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(255) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    role VARCHAR(16) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    user_id INT NOT NULL REFERENCES users (id),
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    priority VARCHAR(16) NOT NULL CHECK (priority IN ('Low', 'Medium', 'High')),
    deadline DATE NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'To Do' CHECK (status IN ('To Do', 'In Progress', 'Done')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func CreateTableIfNotExists(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}
	logger.SystemLogger.Info("Tables 'users', 'tasks' are ready")
	return nil
}

// CreateAdminUser seeds an admin account unless one with the same email exists.
// When another account already holds the username the seed is skipped.
func CreateAdminUser(ctx context.Context, users UserRepository, username, email, password string) error {
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if existing, err := users.FindByUsername(ctx, username); err == nil {
		logger.SystemLogger.Warn("Admin seed skipped, username belongs to another account",
			zap.String("username", username),
			zap.Int("user_id", existing.ID),
		)
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}
	admin := &models.User{Username: username, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("error inserting admin user: %w", err)
	}
	logger.SystemLogger.Info("Admin user is created", zap.String("username", username), zap.Int("user_id", admin.ID))
	return nil
}

func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS tasks; DROP TABLE IF EXISTS users;"); err != nil {
		return fmt.Errorf("error deleting tables: %w", err)
	}
	logger.SystemLogger.Info("Tables 'users', 'tasks' are deleted")
	return nil
}
