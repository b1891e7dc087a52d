package middleware

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

const flashLocal = "flash"

// Notice categories follow the Bootstrap alert classes used by the templates.
const (
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeDanger  = "danger"
)

type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Flash moves a pending notice from its cookie into the request, so it is shown
// exactly once.
func (h *CookieHelper) Flash() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Cookies(FlashCookie); raw != "" {
			if notice, ok := decodeNotice(raw); ok {
				c.Locals(flashLocal, notice)
			}
			h.clear(c, FlashCookie)
		}
		return c.Next()
	}
}

// SetFlash stores a notice for the next request.
func (h *CookieHelper) SetFlash(c *fiber.Ctx, category, message string) {
	h.set(c, FlashCookie, encodeNotice(Notice{Category: category, Message: message}), 60)
}

// CurrentNotice returns the notice carried into this request, if any.
func CurrentNotice(c *fiber.Ctx) *Notice {
	notice, ok := c.Locals(flashLocal).(Notice)
	if !ok {
		return nil
	}
	return &notice
}

func encodeNotice(n Notice) string {
	b, _ := json.Marshal(n)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeNotice(raw string) (Notice, bool) {
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Notice{}, false
	}
	var n Notice
	if err := json.Unmarshal(b, &n); err != nil || n.Message == "" {
		return Notice{}, false
	}
	return n, true
}
