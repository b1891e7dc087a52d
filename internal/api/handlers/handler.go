package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
)

// base carries what every page handler needs: flash notices and redirects.
type base struct {
	cookies *middleware.CookieHelper
}

var pageTitles = map[string]string{
	"register":  "Register",
	"login":     "Login",
	"dashboard": "Dashboard",
	"task":      "Tasks",
	"edit_task": "Edit Task",
}

// render adds the current principal, notice and page title to bind before
// rendering name inside the layout.
func (b base) render(c *fiber.Ctx, status int, name string, bind fiber.Map) error {
	bind["Principal"] = middleware.Principal(c)
	bind["Title"] = pageTitles[name]
	if _, ok := bind["Notice"]; !ok {
		bind["Notice"] = middleware.CurrentNotice(c)
	}
	return c.Status(status).Render(name, bind)
}

func (b base) redirect(c *fiber.Ctx, to, category, message string) error {
	if message != "" {
		b.cookies.SetFlash(c, category, message)
	}
	return c.Redirect(to, fiber.StatusSeeOther)
}

// fail turns err into a notice and redirects to a safe page.
func (b base) fail(c *fiber.Ctx, err error, to string) error {
	category, message := resolveError(c, err)
	return b.redirect(c, to, category, message)
}

func resolveError(c *fiber.Ctx, err error) (string, string) {
	switch {
	case errors.Is(err, models.ErrForbidden):
		logger.SecurityLogger.Warn("Authorization denied",
			zap.Int("user_id", middleware.Principal(c).UserID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return middleware.NoticeDanger, "You do not have permission to perform this action."
	case errors.Is(err, models.ErrNotFound):
		return middleware.NoticeWarning, "The requested item was not found."
	case errors.Is(err, models.ErrInvalidDate):
		return middleware.NoticeDanger, "The deadline is not a valid calendar date."
	case errors.Is(err, models.ErrInvalidSortKey):
		return middleware.NoticeWarning, "Tasks cannot be sorted by that field."
	case errors.Is(err, models.ErrDuplicateIdentity):
		return middleware.NoticeDanger, "That username or email is already taken. Please choose a different one."
	case errors.Is(err, models.ErrInvalidCredentials):
		return middleware.NoticeDanger, "Wrong details, please try again."
	}

	logger.ErrorLogger.Error("Unhandled error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return middleware.NoticeDanger, "Something went wrong. Please try again."
}

// paramID reads a positive integer route parameter. Anything else is reported
// as not found.
func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q: %w", name, c.Params(name), models.ErrNotFound)
	}
	return id, nil
}
