package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/internal/session"
	"tasktracker/pkg/crypto"
)

var (
	anonymous = models.Anonymous
	member    = models.Principal{UserID: 2, Username: "alice", Role: models.RoleUser}
	admin     = models.Principal{UserID: 1, Username: "root", Role: models.RoleAdmin}
)

// stubSessionStore keeps bindings in a map. A non-nil lookupErr fails every Lookup.
type stubSessionStore struct {
	next      int
	bindings  map[string]int
	lookupErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{bindings: make(map[string]int)}
}

func (s *stubSessionStore) Create(_ context.Context, userID int) (string, error) {
	s.next++
	token := fmt.Sprintf("token-%d", s.next)
	s.bindings[token] = userID
	return token, nil
}

func (s *stubSessionStore) Lookup(_ context.Context, token string) (int, error) {
	if s.lookupErr != nil {
		return 0, s.lookupErr
	}
	userID, ok := s.bindings[token]
	if !ok {
		return 0, session.ErrNoSession
	}
	return userID, nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	delete(s.bindings, token)
	return nil
}

// mockUserRepository lets a test replace single calls; unset calls fail.
type mockUserRepository struct {
	findByIDFunc       func(ctx context.Context, id int) (*models.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	findByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	createFunc         func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) List(context.Context) ([]models.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) UpdateRole(context.Context, int, models.Role) error {
	return errors.New("not implemented")
}

func seedUser(t *testing.T, users repository.UserRepository, username, email, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func taskInput(title string, priority models.Priority, y, m, d int) TaskInput {
	return TaskInput{
		Title:       title,
		Description: title + " description",
		Priority:    priority,
		Deadline:    models.DeadlineParts{Year: y, Month: m, Day: d},
	}
}
