package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
	"storefront/internal/validate"
)

func TestSearch(t *testing.T) {
	s, ok := validate.Search("  Men's Casual Slim Fit  ")
	assert.True(t, ok)
	assert.Equal(t, "Men's Casual Slim Fit", s)

	s, ok = validate.Search(strings.Repeat("é", 80))
	assert.True(t, ok)
	assert.Equal(t, 50, len([]rune(s)))

	_, ok = validate.Search("   ")
	assert.False(t, ok)
	_, ok = validate.Search("bad\x00query")
	assert.False(t, ok)
}

func TestCategory(t *testing.T) {
	c, ok := validate.Category(" men's clothing ")
	assert.True(t, ok)
	assert.Equal(t, "men's clothing", c)

	_, ok = validate.Category("<script>")
	assert.False(t, ok)
	_, ok = validate.Category(strings.Repeat("x", 65))
	assert.False(t, ok)
}

func TestPrice(t *testing.T) {
	for _, good := range []string{"0", "10", "9.5", "109.95"} {
		_, ok := validate.Price(good)
		assert.True(t, ok, good)
	}
	for _, bad := range []string{"", "-1", "1e3", "abc", "1.999", "12345678"} {
		_, ok := validate.Price(bad)
		assert.False(t, ok, bad)
	}
}

func TestSort(t *testing.T) {
	o, ok := validate.Sort("price-desc")
	assert.True(t, ok)
	assert.Equal(t, domain.SortPriceDesc, o)

	_, ok = validate.Sort("")
	assert.False(t, ok)
	_, ok = validate.Sort("random")
	assert.False(t, ok)
}

func TestProductID(t *testing.T) {
	id, ok := validate.ProductID("17")
	assert.True(t, ok)
	assert.Equal(t, 17, id)

	for _, bad := range []string{"0", "-3", "1.5", "abc", "", "1234567890"} {
		_, ok := validate.ProductID(bad)
		assert.False(t, ok, bad)
	}
}

func TestQuantity(t *testing.T) {
	n, ok := validate.Quantity("3")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = validate.Quantity("0")
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = validate.Quantity("-2")
	assert.True(t, ok)
	assert.Equal(t, -2, n)

	n, _ = validate.Quantity("1000")
	assert.Equal(t, 99, n)

	_, ok = validate.Quantity("two")
	assert.False(t, ok)
}

func TestLocale(t *testing.T) {
	l, ok := validate.Locale("TR")
	assert.True(t, ok)
	assert.Equal(t, "tr", l)
	_, ok = validate.Locale("english")
	assert.False(t, ok)
}
