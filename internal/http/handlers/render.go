package handlers

import (
	"fmt"
	"strings"

	"storefront/internal/i18n"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	data["Locale"] = locale(c)
	data["Theme"] = ThemeLight
	if t, ok := c.Locals("theme").(string); ok && t != "" {
		data["Theme"] = t
	}
	if n, ok := c.Locals("cartCount").(int); ok {
		data["CartCount"] = n
	}
	if _, ok := data["Path"]; !ok {
		data["Path"] = c.OriginalURL()
	}
	return c.Render(tmpl, data)
}

// renderMessage shows the notfound page with a translated message.
func renderMessage(c *fiber.Ctx, status int, key string) error {
	return render(c.Status(status), "notfound", fiber.Map{"MessageKey": key})
}

func locale(c *fiber.Ctx) string {
	if l, ok := c.Locals("locale").(string); ok && l != "" {
		return l
	}
	return i18n.DefaultLocale
}

// TemplateFuncs are the helpers every page template can use.
func TemplateFuncs(bundle *i18n.Bundle) map[string]any {
	return map[string]any{
		// t "key" or t "key" "name" value ... for interpolation
		"t": func(loc, key string, kv ...any) string {
			var params map[string]any
			if len(kv) > 1 {
				params = make(map[string]any, len(kv)/2)
				for i := 0; i+1 < len(kv); i += 2 {
					params[fmt.Sprint(kv[i])] = kv[i+1]
				}
			}
			return bundle.T(loc, key, params)
		},
		"money": money,
		"inc":   func(n int) int { return n + 1 },
		"dec":   func(n int) int { return n - 1 },
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}

func money(v any) string {
	switch n := v.(type) {
	case decimal.Decimal:
		return "$" + n.StringFixed(2)
	case float64:
		return "$" + decimal.NewFromFloat(n).StringFixed(2)
	case int:
		return "$" + decimal.NewFromInt(int64(n)).StringFixed(2)
	}
	return fmt.Sprint(v)
}
