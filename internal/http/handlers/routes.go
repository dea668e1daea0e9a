package handlers

import (
	"time"

	"storefront/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Register mounts the storefront pages and the JSON API on app.
func Register(app fiber.Router, d *Deps) {
	app.Get("/", d.CatalogHandler.List)
	app.Get("/filters", d.FilterHandler.Apply)
	app.Get("/filters/clear", d.FilterHandler.Clear)

	app.Get("/product", func(c *fiber.Ctx) error {
		return renderMessage(c, fiber.StatusNotFound, "product_not_found_desc")
	})
	app.Get("/product/:id", d.ProductHandler.Detail)

	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/quantity", d.CartHandler.Quantity)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Post("/cart/clear", d.CartHandler.Clear)
	app.Get("/checkout", d.CartHandler.Checkout)

	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|api"
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Security(c, "rate.api.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	api.Get("/products", d.APIHandler.Products)
	api.Get("/cart", d.APIHandler.CartJSON)
}

// ErrorHandler logs err and answers with a friendly page that leaks nothing.
func ErrorHandler(c *fiber.Ctx, err error) error {
	log.Error(c, "server.error", err, nil)
	if rerr := renderMessage(c, fiber.StatusInternalServerError, "errors.generic"); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
	}
	return nil
}

// CSRFError answers a failed CSRF check.
func CSRFError(c *fiber.Ctx, err error) error {
	log.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
	return renderMessage(c, fiber.StatusForbidden, "errors.security")
}

// NotFound is the catch-all for unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return renderMessage(c, fiber.StatusNotFound, "errors.not_found")
}
