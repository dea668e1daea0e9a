// Package querysync keeps filter, sort and page state in the URL query
// string. The query string is the only place that state lives; everything
// here parses it, rewrites it canonically, or debounces edits into it.
package querysync

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

const (
	KeySearch   = "search"
	KeyCategory = "category"
	KeyMinPrice = "minPrice"
	KeyMaxPrice = "maxPrice"
	KeySortBy   = "sortBy"
	KeyPage     = "page"
)

// Keys lists the recognised query keys in canonical order.
var Keys = []string{KeySearch, KeyCategory, KeyMinPrice, KeyMaxPrice, KeySortBy, KeyPage}

func known(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Parse derives criteria from query values. Values that do not parse are
// treated as absent rather than rejected.
func Parse(v url.Values) domain.Criteria {
	c := domain.Criteria{
		Search:   strings.TrimSpace(v.Get(KeySearch)),
		Category: strings.TrimSpace(v.Get(KeyCategory)),
	}
	c.MinPrice = parsePrice(v.Get(KeyMinPrice))
	c.MaxPrice = parsePrice(v.Get(KeyMaxPrice))
	if s := domain.SortOrder(strings.TrimSpace(v.Get(KeySortBy))); s.Valid() {
		c.SortBy = s
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(KeyPage))); err == nil && n >= 1 {
		c.Page = n
	}
	return c
}

// ParseQuery is Parse for a raw query string (with or without a leading '?').
func ParseQuery(raw string) domain.Criteria {
	v, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Parse(v)
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}

// FormatPrice renders a price bound the way it is written into the URL.
func FormatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Encode is the inverse of Parse: absent or default fields produce no key.
func Encode(c domain.Criteria) url.Values {
	v := url.Values{}
	if c.Search != "" {
		v.Set(KeySearch, c.Search)
	}
	if c.Category != "" {
		v.Set(KeyCategory, c.Category)
	}
	if c.MinPrice != nil {
		v.Set(KeyMinPrice, FormatPrice(*c.MinPrice))
	}
	if c.MaxPrice != nil {
		v.Set(KeyMaxPrice, FormatPrice(*c.MaxPrice))
	}
	if c.SortBy != domain.SortNone {
		v.Set(KeySortBy, string(c.SortBy))
	}
	if c.Page > 1 {
		v.Set(KeyPage, strconv.Itoa(c.Page))
	}
	return v
}

// String renders values in canonical key order, so the same criteria always
// produce the same query string.
func String(v url.Values) string {
	var b strings.Builder
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool { return keyRank(keys[i]) < keyRank(keys[j]) })
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}

func keyRank(k string) int {
	for i, key := range Keys {
		if key == k {
			return i
		}
	}
	return len(Keys)
}
