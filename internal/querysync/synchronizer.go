package querysync

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"storefront/internal/debounce"
	"storefront/internal/domain"
)

// DefaultDebounce is the quiescence window for free-text and price fields.
const DefaultDebounce = 400 * time.Millisecond

// Navigator pushes a new canonical query string (without '?') as the current URL.
type Navigator func(query string)

// Debounced reports whether edits to key wait for the quiescence window.
func Debounced(key string) bool {
	switch key {
	case KeySearch, KeyMinPrice, KeyMaxPrice:
		return true
	}
	return false
}

type Option func(*Synchronizer)

func WithClock(c clock.Clock) Option { return func(s *Synchronizer) { s.clock = c } }

func WithDebounce(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option { return func(s *Synchronizer) { s.logger = l } }

// OnCommit is called with the key of every committed change, after navigation.
func OnCommit(fn func(key string)) Option { return func(s *Synchronizer) { s.onCommit = fn } }

// Synchronizer binds editable filter fields to the URL query string. Local
// values of debounced fields change on every keystroke; the URL changes once
// the field has been quiet for the window.
type Synchronizer struct {
	mu       sync.Mutex
	query    url.Values
	local    map[string]string
	navigate Navigator
	pending  *debounce.Group
	clock    clock.Clock
	window   time.Duration
	logger   zerolog.Logger
	onCommit func(key string)
	closed   bool
}

func NewSynchronizer(query string, navigate Navigator, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		navigate: navigate,
		clock:    clock.New(),
		window:   DefaultDebounce,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.navigate == nil {
		s.navigate = func(string) {}
	}
	s.logger = s.logger.With().Str("tag", "querysync.Synchronizer").Logger()
	s.pending = debounce.NewGroup(s.clock, s.window)
	s.query = parseRaw(query)
	s.local = localsFrom(s.query)
	return s
}

func parseRaw(raw string) url.Values {
	v, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Canonical(v)
}

func localsFrom(v url.Values) map[string]string {
	local := make(map[string]string)
	for _, k := range Keys {
		if Debounced(k) {
			local[k] = v.Get(k)
		}
	}
	return local
}

// Edit records user input for key. Debounced fields update their local
// value now and commit after the window; other fields commit immediately.
func (s *Synchronizer) Edit(key, value string) {
	if !Debounced(key) {
		s.Commit(key, value)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.local[key] = value
	s.mu.Unlock()

	s.pending.Schedule(key, func() { s.Commit(key, value) })
}

// Commit writes value for key into the URL. Empty values delete the key,
// and every key but page also resets the page. Committing the value the URL
// already holds does nothing.
func (s *Synchronizer) Commit(key, value string) {
	s.mu.Lock()
	if s.closed || !known(key) {
		s.mu.Unlock()
		return
	}
	if Debounced(key) {
		s.local[key] = value
	}
	if !Changed(s.query, key, value) {
		s.mu.Unlock()
		s.logger.Trace().Str("key", key).Msg("value unchanged, skipping navigation")
		return
	}
	s.query = Commit(s.query, key, value)
	q := String(s.query)
	s.mu.Unlock()

	s.logger.Debug().Str("key", key).Str("query", q).Msg("committed filter")
	s.navigate(q)
	if s.onCommit != nil {
		s.onCommit(key)
	}
}

// SetPage moves to page n; other keys are kept.
func (s *Synchronizer) SetPage(n int) {
	if n <= 1 {
		s.Commit(KeyPage, "")
		return
	}
	s.Commit(KeyPage, strconv.Itoa(n))
}

// Submit applies a whole filter form in one navigation, the way an Apply
// button settles every field at once. Pending edits of the submitted fields
// are dropped; fields absent from form are left alone, and only fields that
// differ from the URL are committed.
func (s *Synchronizer) Submit(form url.Values) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for k := range s.local {
		if _, ok := form[k]; ok {
			s.pending.Cancel(k)
		}
	}
	next := ApplyForm(s.query, form)
	changed := ChangedKeys(s.query, next)
	s.query = next
	for k := range s.local {
		s.local[k] = next.Get(k)
	}
	q := String(next)
	s.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	s.logger.Debug().Strs("keys", changed).Str("query", q).Msg("submitted filter form")
	s.navigate(q)
	if s.onCommit == nil {
		return
	}
	for _, k := range changed {
		if k != KeyPage {
			s.onCommit(k)
		}
	}
}

// ClearAll drops every parameter and any pending commit.
func (s *Synchronizer) ClearAll() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for k := range s.local {
		s.pending.Cancel(k)
		s.local[k] = ""
	}
	changed := len(s.query) > 0
	s.query = url.Values{}
	s.mu.Unlock()

	if changed {
		s.navigate("")
	}
}

// Sync reports the URL after a navigation this synchronizer did not make
// (back/forward, a followed link). Local values follow the URL and their
// pending commits are dropped; nothing is committed back.
func (s *Synchronizer) Sync(query string) {
	next := parseRaw(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || String(next) == String(s.query) {
		return
	}
	s.query = next
	for k := range s.local {
		if v := next.Get(k); v != s.local[k] || s.pending.Pending(k) {
			s.pending.Cancel(k)
			s.local[k] = v
		}
	}
	s.logger.Debug().Str("query", String(next)).Msg("resynced from external navigation")
}

// Criteria parses the committed query.
func (s *Synchronizer) Criteria() domain.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Parse(s.query)
}

// Query returns the committed canonical query string.
func (s *Synchronizer) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return String(s.query)
}

// Local returns the value shown in the input for key, committed or not.
func (s *Synchronizer) Local(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.local[key]; ok {
		return v
	}
	return s.query.Get(key)
}

// Pending reports whether key has an uncommitted edit waiting.
func (s *Synchronizer) Pending(key string) bool { return s.pending.Pending(key) }

// Close cancels outstanding commits. Later edits are ignored.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.pending.Stop()
}
