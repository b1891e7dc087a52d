package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "session"
	FlashCookie   = "flash"
)

// expiredAt is sent with cleared cookies so browsers drop them immediately.
var expiredAt = time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)

// CookieHelper writes the session and flash cookies with shared attributes.
type CookieHelper struct {
	secure bool
}

func NewCookieHelper(secure bool) *CookieHelper {
	return &CookieHelper{secure: secure}
}

func (h *CookieHelper) SetSession(c *fiber.Ctx, token string, ttl time.Duration) {
	h.set(c, SessionCookie, token, int(ttl.Seconds()))
}

func (h *CookieHelper) ClearSession(c *fiber.Ctx) {
	h.clear(c, SessionCookie)
}

func (h *CookieHelper) SessionToken(c *fiber.Ctx) string {
	return c.Cookies(SessionCookie)
}

func (h *CookieHelper) set(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *CookieHelper) clear(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  expiredAt,
		Secure:   h.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
