package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/middleware"
	"tasktracker/internal/service"
	"tasktracker/pkg/logger"
)

type UserHandler struct {
	base
	users *service.UserService
}

func NewUserHandler(users *service.UserService, cookies *middleware.CookieHelper) *UserHandler {
	return &UserHandler{base: base{cookies: cookies}, users: users}
}

func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.fail(c, err, "/")
	}
	return h.render(c, fiber.StatusOK, "dashboard", fiber.Map{"Users": users})
}

func (h *UserHandler) Promote(c *fiber.Ctx) error {
	id, err := paramID(c, "user_id")
	if err != nil {
		return h.fail(c, err, "/dashboard")
	}
	p := middleware.Principal(c)
	user, err := h.users.Promote(c.UserContext(), p, id)
	if err != nil {
		return h.fail(c, err, "/dashboard")
	}

	logger.AuditLogger.Info("User promoted",
		zap.Int("admin_id", p.UserID),
		zap.Int("user_id", user.ID),
	)
	return h.redirect(c, "/dashboard", middleware.NoticeSuccess,
		fmt.Sprintf("%s has been promoted to admin.", user.Username))
}

// Demote only reports a notice when a role actually changed.
func (h *UserHandler) Demote(c *fiber.Ctx) error {
	id, err := paramID(c, "user_id")
	if err != nil {
		return h.fail(c, err, "/dashboard")
	}
	p := middleware.Principal(c)
	user, changed, err := h.users.Demote(c.UserContext(), p, id)
	if err != nil {
		return h.fail(c, err, "/dashboard")
	}
	if !changed {
		return h.redirect(c, "/dashboard", "", "")
	}

	logger.AuditLogger.Info("User demoted",
		zap.Int("admin_id", p.UserID),
		zap.Int("user_id", user.ID),
	)
	return h.redirect(c, "/dashboard", middleware.NoticeSuccess,
		fmt.Sprintf("%s has been demoted to user.", user.Username))
}
