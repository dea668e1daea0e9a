package domain

// Product is read-only catalog data owned by the external product API.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortRating    SortOrder = "rating"
	SortTitle     SortOrder = "title"
)

// Valid reports whether s is one of the known sort orders (SortNone included).
func (s SortOrder) Valid() bool {
	switch s {
	case SortNone, SortPriceAsc, SortPriceDesc, SortRating, SortTitle:
		return true
	}
	return false
}

// Criteria is the parsed set of active search/filter/sort/page parameters.
// It is rebuilt from the URL query string on every request and never stored.
type Criteria struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	SortBy   SortOrder
	Page     int // 0 means absent (page 1)
}

// CurrentPage returns the 1-based page the criteria point at.
func (c Criteria) CurrentPage() int {
	if c.Page < 1 {
		return 1
	}
	return c.Page
}
