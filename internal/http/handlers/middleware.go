package handlers

import (
	"strings"
	"time"

	"storefront/internal/i18n"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// Locale picks the request locale from ?lang=, then the lang cookie, then
// Accept-Language. An explicit ?lang= choice is remembered in the cookie.
func Locale(bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		explicit := c.Cookies(langCookie)
		if q := c.Query("lang"); q != "" {
			if l, ok := validate.Locale(q); ok && bundle.Supported(l) {
				explicit = l
				c.Cookie(&fiber.Cookie{Name: langCookie, Value: l, Path: "/", SameSite: fiber.CookieSameSiteLaxMode})
			}
		}
		c.Locals("locale", bundle.Negotiate(explicit, c.Get(fiber.HeaderAcceptLanguage)))
		return c.Next()
	}
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme picks light or dark from ?theme=, then the theme cookie, defaulting
// to light. An explicit choice is remembered in the cookie.
func Theme() fiber.Handler {
	return func(c *fiber.Ctx) error {
		theme := c.Cookies(themeCookie)
		if q := c.Query("theme"); q == ThemeLight || q == ThemeDark {
			theme = q
			c.Cookie(&fiber.Cookie{
				Name:     themeCookie,
				Value:    q,
				Path:     "/",
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(365 * 24 * time.Hour),
			})
		}
		if theme != ThemeDark {
			theme = ThemeLight
		}
		c.Locals("theme", theme)
		return c.Next()
	}
}

// CartBadge puts the session's item count in Locals for the page header.
// Sessions without a cookie have an empty cart and cost no storage read.
func CartBadge(carts *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet || skipBadge(c.Path()) {
			return c.Next()
		}
		count := 0
		if sid, ok := currentSID(c); ok {
			count = carts.View(c.UserContext(), sid).TotalItems
		}
		c.Locals("cartCount", count)
		return c.Next()
	}
}

func skipBadge(path string) bool {
	for _, p := range []string{"/api/", "/static/", "/metrics", "/healthz", "/filters"} {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
