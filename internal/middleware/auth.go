package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
)

const principalLocal = "principal"

// PrincipalResolver turns a session token into the principal it belongs to. An
// error means the session could not be checked, not that it is invalid.
type PrincipalResolver interface {
	CurrentPrincipal(ctx context.Context, token string) (models.Principal, error)
}

// LoadPrincipal resolves the session cookie on every request. A missing or stale
// session leaves the request anonymous and clears the cookie. When the session
// store fails the request is anonymous but the cookie is kept.
func LoadPrincipal(resolver PrincipalResolver, cookies *CookieHelper) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := models.Anonymous
		if token := cookies.SessionToken(c); token != "" {
			var err error
			p, err = resolver.CurrentPrincipal(c.UserContext(), token)
			switch {
			case err != nil:
				logger.ErrorLogger.Error("Failed to resolve session",
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			case !p.IsAuthenticated():
				logger.ContextLogger.Debug("Stale session cleared", zap.String("path", c.Path()))
				cookies.ClearSession(c)
			default:
				logger.ContextLogger.Debug("Session resolved",
					zap.Int("user_id", p.UserID),
					zap.String("role", string(p.Role)),
				)
			}
		}
		c.Locals(principalLocal, p)
		return c.Next()
	}
}

// Principal returns the principal LoadPrincipal attached, or Anonymous.
func Principal(c *fiber.Ctx) models.Principal {
	p, ok := c.Locals(principalLocal).(models.Principal)
	if !ok {
		return models.Anonymous
	}
	return p
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth(cookies *CookieHelper) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c).IsAuthenticated() {
			return c.Next()
		}
		logger.SecurityLogger.Warn("Anonymous access to protected page",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		cookies.SetFlash(c, NoticeWarning, "You need to log in to access this page.")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
}

// RequireAnonymous sends signed-in users to the dashboard.
func RequireAnonymous() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c).IsAuthenticated() {
			return c.Redirect("/dashboard", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
