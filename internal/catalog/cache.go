package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/kv"
)

// DefaultTTL is how long fetched catalog data is served before refetching.
const DefaultTTL = time.Hour

const (
	keyProducts   = "catalog:products"
	keyCategories = "catalog:categories"
	keyProduct    = "catalog:product:"
)

type envelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

type CacheOption func(*CachedSource)

func WithTTL(ttl time.Duration) CacheOption {
	return func(s *CachedSource) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithCacheClock(c clock.Clock) CacheOption { return func(s *CachedSource) { s.clock = c } }

func WithCacheLogger(l zerolog.Logger) CacheOption { return func(s *CachedSource) { s.logger = l } }

// CachedSource serves catalog reads from a kv.Store and falls through to the
// wrapped Source when an entry is missing, stale or unreadable. Failures to
// fill the cache are logged and never surface to callers.
type CachedSource struct {
	source Source
	store  kv.Store
	ttl    time.Duration
	clock  clock.Clock
	logger zerolog.Logger
}

var _ Source = (*CachedSource)(nil)

func NewCachedSource(source Source, store kv.Store, opts ...CacheOption) *CachedSource {
	if store == nil {
		store = kv.Nop{}
	}
	s := &CachedSource{
		source: source,
		store:  store,
		ttl:    DefaultTTL,
		clock:  clock.New(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("tag", "catalog.CachedSource").Logger()
	return s
}

func (s *CachedSource) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, s, keyProducts, s.source.FetchAllProducts)
}

func (s *CachedSource) FetchCategories(ctx context.Context) ([]string, error) {
	return cached(ctx, s, keyCategories, s.source.FetchCategories)
}

func (s *CachedSource) FetchProductByID(ctx context.Context, id int) (domain.Product, error) {
	return cached(ctx, s, keyProduct+strconv.Itoa(id), func(ctx context.Context) (domain.Product, error) {
		return s.source.FetchProductByID(ctx, id)
	})
}

func cached[T any](ctx context.Context, s *CachedSource, key string, fetch func(context.Context) (T, error)) (T, error) {
	logger := s.logger.With().Str("key", key).Logger()

	if v, ok := lookup[T](ctx, s, logger, key); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	s.fill(ctx, logger, key, v)
	return v, nil
}

func lookup[T any](ctx context.Context, s *CachedSource, logger zerolog.Logger, key string) (T, bool) {
	var zero T
	raw, ok, err := s.store.Read(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Bool("unavailable", errors.Is(err, kv.ErrUnavailable)).Msg("catalog cache read failed")
		return zero, false
	}
	if !ok {
		return zero, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		logger.Warn().Err(err).Msg("discarding unreadable catalog cache entry")
		return zero, false
	}
	if age := s.clock.Since(env.FetchedAt); age >= s.ttl || age < 0 {
		logger.Debug().Dur("age", age).Msg("catalog cache entry stale")
		return zero, false
	}
	var v T
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		logger.Warn().Err(err).Msg("discarding unreadable catalog cache payload")
		return zero, false
	}
	logger.Trace().Msg("catalog cache hit")
	return v, true
}

func (s *CachedSource) fill(ctx context.Context, logger zerolog.Logger, key string, v any) {
	payload, err := json.Marshal(v)
	if err == nil {
		var raw []byte
		raw, err = json.Marshal(envelope{FetchedAt: s.clock.Now().UTC(), Payload: payload})
		if err == nil {
			err = s.store.Write(ctx, key, string(raw))
		}
	}
	if err != nil {
		logger.Warn().Err(err).Msg("catalog cache write failed")
	}
}
