package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/internal/service"
	"tasktracker/pkg/logger"
)

type AuthHandler struct {
	base
	auth       *service.AuthService
	sessionTTL time.Duration
}

func NewAuthHandler(auth *service.AuthService, cookies *middleware.CookieHelper, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{base: base{cookies: cookies}, auth: auth, sessionTTL: sessionTTL}
}

func (h *AuthHandler) Home(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "home", fiber.Map{})
}

func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "register", fiber.Map{"Form": RegisterForm{}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form RegisterForm
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return h.registerError(c, form, []string{"invalid form data"})
	}
	if errs := validateForm(form); errs != nil {
		return h.registerError(c, form, errs)
	}

	user, err := h.auth.Register(c.UserContext(), middleware.Principal(c), form.Username, form.Email, form.Password)
	if errors.Is(err, models.ErrDuplicateIdentity) {
		_, message := resolveError(c, err)
		return h.registerError(c, form, []string{message})
	}
	if err != nil {
		return h.fail(c, err, "/register")
	}

	logger.AuditLogger.Info("User registered",
		zap.Int("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return h.redirect(c, "/login", middleware.NoticeSuccess, "Registration successful! You can log in now.")
}

func (h *AuthHandler) registerError(c *fiber.Ctx, form RegisterForm, errs []string) error {
	form.Password, form.ConfirmPassword = "", ""
	return h.render(c, fiber.StatusUnprocessableEntity, "register", fiber.Map{"Form": form, "Errors": errs})
}

func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "login", fiber.Map{"Form": LoginForm{}})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form LoginForm
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return h.loginError(c, fiber.StatusUnprocessableEntity, form, fiber.Map{"Errors": []string{"invalid form data"}})
	}
	if errs := validateForm(form); errs != nil {
		return h.loginError(c, fiber.StatusUnprocessableEntity, form, fiber.Map{"Errors": errs})
	}

	ctx := c.UserContext()
	p, err := h.auth.Authenticate(ctx, form.Email, form.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		logger.SecurityLogger.Warn("Failed login attempt",
			zap.String("email", form.Email),
			zap.String("ip", c.IP()),
		)
		category, message := resolveError(c, err)
		return h.loginError(c, fiber.StatusUnauthorized, form, fiber.Map{
			"Notice": &middleware.Notice{Category: category, Message: message},
		})
	}
	if err != nil {
		return h.fail(c, err, "/login")
	}

	token, err := h.auth.EstablishSession(ctx, p)
	if err != nil {
		return h.fail(c, err, "/login")
	}
	h.cookies.SetSession(c, token, h.sessionTTL)

	logger.AuditLogger.Info("User logged in",
		zap.Int("user_id", p.UserID),
		zap.String("username", p.Username),
	)
	return h.redirect(c, "/dashboard", middleware.NoticeSuccess, "Login successful!")
}

func (h *AuthHandler) loginError(c *fiber.Ctx, status int, form LoginForm, bind fiber.Map) error {
	form.Password = ""
	bind["Form"] = form
	return h.render(c, status, "login", bind)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	p := middleware.Principal(c)
	if err := h.auth.EndSession(c.UserContext(), h.cookies.SessionToken(c)); err != nil {
		logger.ErrorLogger.Error("Failed to end session", zap.Int("user_id", p.UserID), zap.Error(err))
	}
	h.cookies.ClearSession(c)

	logger.AuditLogger.Info("User logged out", zap.Int("user_id", p.UserID))
	return h.redirect(c, "/login", middleware.NoticeSuccess, "You have been logged out.")
}
