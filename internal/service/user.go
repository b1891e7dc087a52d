package service

import (
	"context"

	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
	"tasktracker/internal/policy"
	"tasktracker/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ListUsers(ctx context.Context, p models.Principal) ([]models.User, error) {
	if err := authorize(p, policy.ActionViewDashboard); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserService) Promote(ctx context.Context, p models.Principal, userID int) (*models.User, error) {
	if err := authorize(p, policy.ActionPromoteUser); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, userID, models.RoleAdmin); err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		metrics.RoleChangesTotal.WithLabelValues(string(models.RoleAdmin)).Inc()
	}
	user.Role = models.RoleAdmin
	return user, nil
}

// Demote returns changed=false without touching the store when the target is not
// an admin.
func (s *UserService) Demote(ctx context.Context, p models.Principal, userID int) (user *models.User, changed bool, err error) {
	if err := authorize(p, policy.ActionDemoteUser); err != nil {
		return nil, false, err
	}
	user, err = s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !policy.DemoteApplies(user) {
		return user, false, nil
	}
	if err := s.users.UpdateRole(ctx, userID, models.RoleUser); err != nil {
		return nil, false, err
	}
	metrics.RoleChangesTotal.WithLabelValues(string(models.RoleUser)).Inc()
	user.Role = models.RoleUser
	return user, true, nil
}
