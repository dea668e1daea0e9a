package handlers

import (
	"errors"

	"storefront/internal/catalog"
	"storefront/internal/log"
	"storefront/internal/querysync"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

type APIHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
}

func (h *APIHandler) Products(c *fiber.Ctx) error {
	listing, err := h.Catalog.Browse(c.UserContext(), querysync.Parse(queryValues(c)))
	if err != nil {
		log.Error(c, "api.products.fail", err, nil)
		status := fiber.StatusInternalServerError
		if errors.Is(err, catalog.ErrFetch) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{"error": "catalog unavailable, try again later"})
	}
	return c.JSON(fiber.Map{
		"items":         listing.Items,
		"totalMatching": listing.TotalMatching,
		"totalPages":    listing.TotalPages,
		"page":          listing.Page,
		"pageSize":      listing.PageSize,
		"categories":    listing.Categories,
	})
}

func (h *APIHandler) CartJSON(c *fiber.Ctx) error {
	sid, ok := currentSID(c)
	if !ok {
		return c.JSON(services.CartView{Lines: []services.CartLineView{}})
	}
	return c.JSON(h.Cart.View(c.UserContext(), sid))
}
