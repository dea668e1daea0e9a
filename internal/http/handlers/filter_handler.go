package handlers

import (
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/querysync"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type FilterHandler struct {
	Metrics  *metrics.Metrics
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Apply submits a filter form against the query it was rendered from
// (hidden field "from") and redirects to the resulting canonical URL.
// Only fields whose value changed are committed, so resubmitting an
// unchanged form keeps the page.
func (h *FilterHandler) Apply(c *fiber.Ctx) error {
	form := url.Values{}
	for _, key := range querysync.Keys {
		if key == querysync.KeyPage {
			continue
		}
		raw, present := formValue(c, key)
		if !present {
			continue
		}
		form.Set(key, h.sanitize(c, key, raw))
	}

	var committed []string
	qs := querysync.NewSynchronizer(c.Query("from"), nil,
		querysync.WithDebounce(h.Debounce),
		querysync.WithLogger(h.Logger),
		querysync.OnCommit(func(key string) {
			committed = append(committed, key)
			if h.Metrics != nil {
				h.Metrics.FilterCommit(key)
			}
		}),
	)
	defer qs.Close()
	qs.Submit(form)

	target := "/"
	if q := qs.Query(); q != "" {
		target += "?" + q
	}
	if len(committed) > 0 {
		log.Audit(c, "filters.commit", map[string]any{"keys": committed, "query": qs.Query()})
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

// Clear drops every filter, sort and page parameter.
func (h *FilterHandler) Clear(c *fiber.Ctx) error {
	log.Audit(c, "filters.clear", nil)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func formValue(c *fiber.Ctx, key string) (string, bool) {
	args := c.Request().URI().QueryArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}

// sanitize turns an invalid value into "" so the key is cleared rather
// than written into the URL.
func (h *FilterHandler) sanitize(c *fiber.Ctx, key, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	var (
		v  string
		ok bool
	)
	switch key {
	case querysync.KeySearch:
		v, ok = validate.Search(raw)
	case querysync.KeyCategory:
		v, ok = validate.Category(raw)
	case querysync.KeyMinPrice, querysync.KeyMaxPrice:
		v, ok = validate.Price(raw)
	case querysync.KeySortBy:
		var so domain.SortOrder
		so, ok = validate.Sort(raw)
		v = string(so)
	}
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": key})
		return ""
	}
	return v
}
