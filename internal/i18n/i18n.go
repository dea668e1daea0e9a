// Package i18n looks up UI strings from YAML message catalogs, one file per
// locale, and negotiates which locale a request gets.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is the fallback for unknown locales and missing keys.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var embedded embed.FS

// Bundle holds flattened messages per locale. Nested YAML keys are joined
// with dots, so `sort: {title: ...}` is looked up as "sort.title".
type Bundle struct {
	messages map[string]map[string]string
	fallback string
	tags     []language.Tag
	names    []string
	matcher  language.Matcher
}

// Load reads the catalogs compiled into the binary.
func Load(fallback string) (*Bundle, error) {
	return LoadFS(embedded, "locales", fallback)
}

// LoadFS reads every <locale>.yaml file in dir.
func LoadFS(fsys fs.FS, dir, fallback string) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed reading locales dir %s with error=%w", dir, err)
	}

	b := &Bundle{messages: map[string]map[string]string{}}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		locale := strings.TrimSuffix(name, ".yaml")
		if _, err := language.Parse(locale); err != nil {
			return nil, fmt.Errorf("failed parsing locale %q with error=%w", locale, err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed reading %s with error=%w", name, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("failed decoding %s with error=%w", name, err)
		}
		flat := map[string]string{}
		flatten("", tree, flat)
		b.messages[locale] = flat
		b.names = append(b.names, locale)
	}
	if len(b.names) == 0 {
		return nil, fmt.Errorf("no locale catalogs found in %s", dir)
	}
	sort.Strings(b.names)

	if fallback == "" {
		fallback = DefaultLocale
	}
	if _, ok := b.messages[fallback]; !ok {
		fallback = b.names[0]
	}
	b.fallback = fallback

	// the fallback goes first so it wins when nothing matches
	b.tags = append(b.tags, language.MustParse(fallback))
	for _, n := range b.names {
		if n != fallback {
			b.tags = append(b.tags, language.MustParse(n))
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Locales lists the available locales, sorted.
func (b *Bundle) Locales() []string { return append([]string(nil), b.names...) }

func (b *Bundle) Fallback() string { return b.fallback }

// Supported reports whether there is a catalog for locale.
func (b *Bundle) Supported(locale string) bool {
	_, ok := b.messages[locale]
	return ok
}

// T returns the message for key in locale, then in the fallback locale,
// then the key itself. {name} placeholders are replaced from params.
func (b *Bundle) T(locale, key string, params map[string]any) string {
	msg, ok := b.messages[locale][key]
	if !ok {
		msg, ok = b.messages[b.fallback][key]
	}
	if !ok {
		return key
	}
	if len(params) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Negotiate picks the locale for a request: an explicit supported choice
// wins, then the best Accept-Language match, then the fallback.
func (b *Bundle) Negotiate(explicit, acceptLanguage string) string {
	if explicit = strings.ToLower(strings.TrimSpace(explicit)); b.Supported(explicit) {
		return explicit
	}
	if acceptLanguage == "" {
		return b.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	base, _ := b.tags[idx].Base()
	if b.Supported(base.String()) {
		return base.String()
	}
	return b.fallback
}
