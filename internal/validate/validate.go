package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"
)

const (
	maxSearchLen   = 50
	maxCategoryLen = 64
	maxQuantity    = 99
)

var (
	reID     = regexp.MustCompile(`^[0-9]{1,9}$`)
	rePrice  = regexp.MustCompile(`^[0-9]{1,7}(\.[0-9]{1,2})?$`)
	reLocale = regexp.MustCompile(`^[a-z]{2}$`)
)

// Search trims the query and cuts it to a sane length. Control characters
// make it invalid.
func Search(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > maxSearchLen {
		s = string([]rune(s)[:maxSearchLen])
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return "", false
		}
	}
	return s, true
}

// Category accepts any printable category name the catalog might use.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxCategoryLen || strings.ContainsAny(s, "<>\x00") {
		return "", false
	}
	return s, true
}

// Price validates a non-negative price bound with at most two decimals.
func Price(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && rePrice.MatchString(s)
}

func Sort(s string) (domain.SortOrder, bool) {
	o := domain.SortOrder(strings.TrimSpace(s))
	return o, o != domain.SortNone && o.Valid()
}

// ProductID validates a catalog product id.
func ProductID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil && n > 0
}

// Quantity parses a requested line quantity. Zero and negatives are valid
// and mean removal; large values are clamped.
func Quantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	if n > maxQuantity {
		n = maxQuantity
	}
	return n, true
}

// Locale validates a two-letter language code.
func Locale(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reLocale.MatchString(s)
}
