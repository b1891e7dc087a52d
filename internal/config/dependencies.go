// Package config wires the stores and clients the application runs on.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"tasktracker/configs"
	"tasktracker/internal/api/handlers"
	"tasktracker/internal/repository"
	"tasktracker/internal/session"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
)

// Dependencies is built once at startup and passed down explicitly.
type Dependencies struct {
	DB          *sql.DB // nil with the memory driver
	RedisClient *redis.Client
	Users       repository.UserRepository
	Tasks       repository.TaskRepository
	Sessions    *session.Store
}

// NewDependencies connects the configured stores, prepares the schema and seeds
// the admin account when one is configured.
func NewDependencies(ctx context.Context, cfg configs.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	switch cfg.StorageDriver {
	case "memory":
		deps.Users = repository.NewMemoryUserRepository()
		deps.Tasks = repository.NewMemoryTaskRepository()
		logger.SystemLogger.Info("Using in-memory stores")
	default:
		db, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.DB = db
		logger.SystemLogger.Info("Database Connected")

		if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
			deps.Close()
			return nil, err
		}
		deps.Users = repository.NewUserRepository(db)
		deps.Tasks = repository.NewTaskRepository(db)
	}

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.RedisClient = rdb
	deps.Sessions = session.NewStore(rdb, cfg.SessionSecret, cfg.SessionTTL)
	logger.SystemLogger.Info("Redis Connected")

	if cfg.AdminEmail != "" {
		if err := repository.CreateAdminUser(ctx, deps.Users, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to seed admin user: %w", err)
		}
	}
	return deps, nil
}

// Checks lists the readiness probes for the connected stores.
func (d *Dependencies) Checks() map[string]handlers.Check {
	checks := map[string]handlers.Check{
		"redis": d.Sessions.Ping,
	}
	if d.DB != nil {
		checks["postgres"] = d.DB.PingContext
	}
	return checks
}

func (d *Dependencies) Close() {
	var errs []error
	if d.RedisClient != nil {
		errs = append(errs, d.RedisClient.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.ErrorLogger.Error("Error closing dependencies", zap.Error(err))
	}
}
