// Package catalog fetches the product catalog and derives the visible page of
// it from a set of criteria.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/domain"
)

// DefaultPageSize is used whenever a caller passes a page size below 1.
const DefaultPageSize = 10

// Result is one page of the filtered and sorted catalog.
type Result struct {
	Items         []domain.Product
	TotalMatching int
	TotalPages    int
	Page          int
	PageSize      int
}

// Apply filters all by c, sorts the matches and returns the requested page.
// all is never reordered. A page past the end yields no items; TotalPages
// is 0 when nothing matches.
func Apply(all []domain.Product, c domain.Criteria, pageSize int) Result {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	matched := filter(all, c)
	sortProducts(matched, c.SortBy)

	page := c.CurrentPage()
	res := Result{
		TotalMatching: len(matched),
		TotalPages:    (len(matched) + pageSize - 1) / pageSize,
		Page:          page,
		PageSize:      pageSize,
		Items:         []domain.Product{},
	}

	if page > res.TotalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(matched))
	res.Items = matched[start:end]
	return res
}

func filter(all []domain.Product, c domain.Criteria) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		if c.Category != "" && p.Category != c.Category {
			continue
		}
		if c.MinPrice != nil && p.Price < *c.MinPrice {
			continue
		}
		if c.MaxPrice != nil && p.Price > *c.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortProducts(ps []domain.Product, by domain.SortOrder) {
	switch by {
	case domain.SortPriceAsc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price < ps[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price > ps[j].Price })
	case domain.SortRating:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Rating.Rate > ps[j].Rating.Rate })
	case domain.SortTitle:
		// collators keep scratch buffers, so one per sort
		col := collate.New(language.English)
		sort.SliceStable(ps, func(i, j int) bool {
			return col.CompareString(ps[i].Title, ps[j].Title) < 0
		})
	}
}
