package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/kv"
)

type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	fail  error
}

func (s *countingSource) hit(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[op]++
	return s.fail
}

func (s *countingSource) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *countingSource) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	if err := s.hit("products"); err != nil {
		return nil, err
	}
	return fixture(), nil
}

func (s *countingSource) FetchCategories(ctx context.Context) ([]string, error) {
	if err := s.hit("categories"); err != nil {
		return nil, err
	}
	return []string{"electronics", "jewelery"}, nil
}

func (s *countingSource) FetchProductByID(ctx context.Context, id int) (domain.Product, error) {
	if err := s.hit(fmt.Sprint("product:", id)); err != nil {
		return domain.Product{}, err
	}
	for _, p := range fixture() {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, catalog.ErrNotFound
}

type brokenStore struct{}

func (brokenStore) Read(context.Context, string) (string, bool, error) {
	return "", false, kv.ErrUnavailable
}

func (brokenStore) Write(context.Context, string, string) error { return kv.ErrUnavailable }

func TestCachedSource_ServesFromCacheUntilStale(t *testing.T) {
	src := &countingSource{}
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	c := catalog.NewCachedSource(src, kv.NewMemory(), catalog.WithCacheClock(mock), catalog.WithTTL(time.Hour))
	ctx := context.Background()

	for range 3 {
		ps, err := c.FetchAllProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, ps, 5)
	}
	assert.Equal(t, 1, src.count("products"))

	mock.Add(59 * time.Minute)
	_, err := c.FetchAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.count("products"))

	mock.Add(time.Minute)
	_, err = c.FetchAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.count("products"))
}

func TestCachedSource_KeysAreSeparate(t *testing.T) {
	src := &countingSource{}
	c := catalog.NewCachedSource(src, kv.NewMemory())
	ctx := context.Background()

	cats, err := c.FetchCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "jewelery"}, cats)

	p, err := c.FetchProductByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Banana Ring", p.Title)
	p, err = c.FetchProductByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 120.0, p.Price)

	_, err = c.FetchProductByID(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, src.count("categories"))
	assert.Equal(t, 1, src.count("product:3"))
	assert.Equal(t, 1, src.count("product:4"))
	assert.Equal(t, 0, src.count("products"))
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{fail: fmt.Errorf("%w: upstream down", catalog.ErrFetch)}
	c := catalog.NewCachedSource(src, kv.NewMemory())
	ctx := context.Background()

	_, err := c.FetchAllProducts(ctx)
	assert.ErrorIs(t, err, catalog.ErrFetch)

	src.fail = nil
	ps, err := c.FetchAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, ps, 5)
	assert.Equal(t, 2, src.count("products"))

	_, err = c.FetchProductByID(ctx, 42)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
	_, err = c.FetchProductByID(ctx, 42)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
	assert.Equal(t, 2, src.count("product:42"))
}

func TestCachedSource_UnreadableEntryRefetches(t *testing.T) {
	src := &countingSource{}
	store := kv.NewMemory()
	require.NoError(t, store.Write(context.Background(), "catalog:categories", "{not json"))

	cats, err := catalog.NewCachedSource(src, store).FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 2)
	assert.Equal(t, 1, src.count("categories"))
}

func TestCachedSource_BrokenStoreFallsThrough(t *testing.T) {
	src := &countingSource{}
	c := catalog.NewCachedSource(src, brokenStore{})

	for range 2 {
		ps, err := c.FetchAllProducts(context.Background())
		require.NoError(t, err)
		assert.Len(t, ps, 5)
	}
	assert.Equal(t, 2, src.count("products"))
}
