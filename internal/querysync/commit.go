package querysync

import (
	"net/url"
	"strconv"
	"strings"
)

// Canonical drops unknown keys, empty values and duplicate values, keeping
// the first value of each key.
func Canonical(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		if !known(k) {
			continue
		}
		for _, val := range vals {
			if val = strings.TrimSpace(val); val != "" {
				out.Set(k, val)
				break
			}
		}
	}
	return out
}

// Commit returns a copy of v with key set to value, or removed when value is
// empty. Any key other than page also removes page.
func Commit(v url.Values, key, value string) url.Values {
	out := Canonical(v)
	value = strings.TrimSpace(value)
	if value == "" {
		out.Del(key)
	} else {
		out.Set(key, value)
	}
	if key != KeyPage {
		out.Del(KeyPage)
	}
	return out
}

// WithPage sets the page without touching other keys. Page 1 is implicit.
func WithPage(v url.Values, page int) url.Values {
	if page <= 1 {
		return Commit(v, KeyPage, "")
	}
	return Commit(v, KeyPage, strconv.Itoa(page))
}

// Changed reports whether committing value to key would alter v.
func Changed(v url.Values, key, value string) bool {
	return strings.TrimSpace(Canonical(v).Get(key)) != strings.TrimSpace(value)
}

// Link renders a path plus the canonical query string.
func Link(path string, v url.Values) string {
	q := String(Canonical(v))
	if q == "" {
		return path
	}
	return path + "?" + q
}

// ApplyForm commits every field of a submitted filter form that differs from
// the current query, in canonical key order. Unchanged fields are left alone
// so resubmitting a form keeps the current page.
func ApplyForm(current, form url.Values) url.Values {
	out := Canonical(current)
	for _, key := range Keys {
		if key == KeyPage {
			continue
		}
		vals, present := form[key]
		if !present {
			continue
		}
		value := ""
		if len(vals) > 0 {
			value = vals[0]
		}
		if Changed(out, key, value) {
			out = Commit(out, key, value)
		}
	}
	return out
}

// ChangedKeys lists, in canonical order, the keys whose value differs
// between before and after.
func ChangedKeys(before, after url.Values) []string {
	b, a := Canonical(before), Canonical(after)
	var out []string
	for _, k := range Keys {
		if b.Get(k) != a.Get(k) {
			out = append(out, k)
		}
	}
	return out
}
