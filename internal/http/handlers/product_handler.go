package handlers

import (
	"errors"

	"storefront/internal/catalog"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return renderMessage(c, fiber.StatusNotFound, "product_not_found_desc")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return renderMessage(c, fiber.StatusNotFound, "product_not_found_desc")
	case err != nil:
		log.Error(c, "catalog.product.fail", err, map[string]any{"product_id": id})
		return renderMessage(c, fiber.StatusBadGateway, "errors.fetch")
	}

	sid, _ := currentSID(c)
	data := fiber.Map{
		"P":     p,
		"Added": sid != "" && h.Cart.Acked(sid, p.ID),
	}
	if sid != "" {
		if line, ok := h.Cart.Open(c.UserContext(), sid).Line(p.ID); ok {
			data["InCart"] = line.Quantity
		}
	}
	return render(c, "product", data)
}
