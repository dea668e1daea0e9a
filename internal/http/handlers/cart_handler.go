package handlers

import (
	"errors"
	"net/url"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	return render(c, "cart", fiber.Map{"Cart": h.Cart.View(c.UserContext(), sid)})
}

// Add puts one of the posted product into the cart and sends the shopper
// back to where the form was (field "return"), defaulting to the cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ProductID(c.FormValue("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid product id")
	}

	line, err := h.Cart.Add(c.UserContext(), sid, id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return renderMessage(c, fiber.StatusNotFound, "product_not_found_desc")
	case err != nil:
		log.Error(c, "cart.add.fail", err, map[string]any{"product_id": id})
		return renderMessage(c, fiber.StatusBadGateway, "errors.fetch")
	}
	log.Audit(c, "cart.add", map[string]any{"product_id": id, "quantity": line.Quantity})
	return c.Redirect(returnPath(c.FormValue("return"), "/cart"), fiber.StatusSeeOther)
}

// Quantity sets a line's quantity; zero or less removes the line.
func (h *CartHandler) Quantity(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, okID := validate.ProductID(c.FormValue("id"))
	qty, okQty := validate.Quantity(c.FormValue("quantity"))
	if !okID || !okQty {
		log.Security(c, "validation.fail", map[string]any{"field": "quantity"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}
	h.Cart.SetQuantity(c.UserContext(), sid, id, qty)
	log.Audit(c, "cart.quantity", map[string]any{"product_id": id, "quantity": qty})
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ProductID(c.FormValue("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid product id")
	}
	h.Cart.Remove(c.UserContext(), sid, id)
	log.Audit(c, "cart.remove", map[string]any{"product_id": id})
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	h.Cart.Clear(c.UserContext(), sid)
	log.Audit(c, "cart.clear", nil)
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// Checkout is a placeholder; the cart is shown but nothing is placed.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	return render(c, "checkout", fiber.Map{"Cart": h.Cart.View(c.UserContext(), sid)})
}

// returnPath accepts only local absolute paths. Control characters are
// rejected outright since browsers strip some of them before resolving.
func returnPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsRune(p, '\\') {
		return fallback
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 0x20 || p[i] == 0x7f {
			return fallback
		}
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return p
}
