package repository

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"tasktracker/internal/models"
)

// testDB is nil when Docker is unavailable or -short is set.
var testDB *sql.DB

func TestMain(m *testing.M) {
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	flag.Parse()
	if testing.Short() {
		return m.Run()
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("Docker unavailable, skipping postgres tests: %v", err)
		return m.Run()
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=tasktracker",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=tasktracker_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Printf("Could not start postgres container: %v", err)
		return m.Run()
	}
	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Printf("Could not purge postgres container: %v", err)
		}
	}()
	_ = resource.Expire(120)

	dsn := fmt.Sprintf("host=localhost port=%s user=tasktracker password=secret dbname=tasktracker_test sslmode=disable",
		resource.GetPort("5432/tcp"))
	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return err
		}
		testDB = db
		return nil
	})
	if err != nil {
		log.Printf("Could not connect to postgres: %v", err)
		return m.Run()
	}
	defer testDB.Close()

	return m.Run()
}

// resetSchema gives each test empty tables.
func resetSchema(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres not available")
	}
	ctx := context.Background()
	if err := DeleteAllTable(ctx, testDB); err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}
	if err := CreateTableIfNotExists(ctx, testDB); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
}

func TestPostgresUserRepository(t *testing.T) {
	resetSchema(t)
	testUserRepository(t, NewUserRepository(testDB))
}

func TestPostgresTaskRepository(t *testing.T) {
	resetSchema(t)
	testTaskRepository(t, NewUserRepository(testDB), NewTaskRepository(testDB))
}

func TestPostgresRejectsUnknownOwner(t *testing.T) {
	resetSchema(t)
	tasks := NewTaskRepository(testDB)

	err := tasks.Create(context.Background(), &models.Task{
		UserID:   4242,
		Title:    "orphan",
		Priority: models.PriorityLow,
		Deadline: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:   models.StatusTodo,
	})
	if err == nil {
		t.Fatal("Expected foreign key violation for unknown owner")
	}
}
