package handlers

import (
	"errors"
	"net/url"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/querysync"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
}

type productCard struct {
	domain.Product
	Added bool
}

type pageItem struct {
	catalog.PageLink
	Href string
}

type option struct {
	Value  string
	Label  string
	Active bool
}

var sortOptions = []struct {
	value domain.SortOrder
	label string
}{
	{domain.SortNone, "sort.none"},
	{domain.SortPriceAsc, "sort.price_asc"},
	{domain.SortPriceDesc, "sort.price_desc"},
	{domain.SortRating, "sort.rating"},
	{domain.SortTitle, "sort.title"},
}

// queryValues is the request's canonical query string.
func queryValues(c *fiber.Ctx) url.Values {
	v, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	return querysync.Canonical(v)
}

// List renders the product listing for the criteria in the query string.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	q := queryValues(c)
	criteria := querysync.Parse(q)

	listing, err := h.Catalog.Browse(c.UserContext(), criteria)
	if err != nil {
		log.Error(c, "catalog.browse.fail", err, nil)
		if errors.Is(err, catalog.ErrFetch) {
			return renderMessage(c, fiber.StatusBadGateway, "errors.fetch")
		}
		return err
	}

	sid, _ := currentSID(c)
	cards := make([]productCard, 0, len(listing.Items))
	for _, p := range listing.Items {
		cards = append(cards, productCard{Product: p, Added: sid != "" && h.Cart.Acked(sid, p.ID)})
	}

	pages := make([]pageItem, 0, len(listing.Pages))
	for _, l := range listing.Pages {
		item := pageItem{PageLink: l}
		if !l.Ellipsis {
			item.Href = querysync.Link("/", querysync.WithPage(q, l.Number))
		}
		pages = append(pages, item)
	}

	categories := []option{{Value: "", Label: "", Active: criteria.Category == ""}}
	for _, cat := range listing.Categories {
		categories = append(categories, option{Value: cat, Label: cat, Active: cat == criteria.Category})
	}
	sorts := make([]option, 0, len(sortOptions))
	for _, s := range sortOptions {
		sorts = append(sorts, option{Value: string(s.value), Label: s.label, Active: s.value == criteria.SortBy})
	}

	data := fiber.Map{
		"Listing":    listing,
		"Products":   cards,
		"Pages":      pages,
		"Categories": categories,
		"Sorts":      sorts,
		"Search":     q.Get(querysync.KeySearch),
		"MinPrice":   q.Get(querysync.KeyMinPrice),
		"MaxPrice":   q.Get(querysync.KeyMaxPrice),
		"From":       querysync.String(q),
		"Filtered":   len(q) > 0,
		"Path":       querysync.Link("/", q),
	}
	if listing.HasPrev() {
		data["PrevHref"] = querysync.Link("/", querysync.WithPage(q, listing.Page-1))
	}
	if listing.HasNext() {
		data["NextHref"] = querysync.Link("/", querysync.WithPage(q, listing.Page+1))
	}
	return render(c, "home", data)
}
