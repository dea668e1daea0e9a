package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	sidCookie   = "sid"
	langCookie  = "lang"
	themeCookie = "theme"
)

// ensureSID returns the browser session id, issuing a new one when the
// cookie is missing or not a uuid.
func ensureSID(c *fiber.Ctx) string {
	if sid := c.Cookies(sidCookie); sid != "" {
		if _, err := uuid.Parse(sid); err == nil {
			return sid
		}
	}
	sid := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	c.Locals(sidCookie, sid)
	return sid
}

// currentSID is ensureSID without issuing a cookie.
func currentSID(c *fiber.Ctx) (string, bool) {
	if sid, ok := c.Locals(sidCookie).(string); ok && sid != "" {
		return sid, true
	}
	sid := c.Cookies(sidCookie)
	if _, err := uuid.Parse(sid); err != nil {
		return "", false
	}
	return sid, true
}
