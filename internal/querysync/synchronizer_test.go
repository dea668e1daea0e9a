package querysync_test

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/querysync"
)

const window = 400 * time.Millisecond

type navLog struct {
	mu      sync.Mutex
	queries []string
}

func (n *navLog) push(q string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queries = append(n.queries, q)
}

func (n *navLog) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.queries...)
}

func newSync(t *testing.T, query string, opts ...querysync.Option) (*querysync.Synchronizer, *clock.Mock, *navLog) {
	t.Helper()
	mock := clock.NewMock()
	nav := &navLog{}
	opts = append([]querysync.Option{querysync.WithClock(mock), querysync.WithDebounce(window)}, opts...)
	s := querysync.NewSynchronizer(query, nav.push, opts...)
	t.Cleanup(s.Close)
	return s, mock, nav
}

func eventuallyNavigated(t *testing.T, nav *navLog, want ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		got := nav.all()
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond, "navigations: %v", nav.all())
}

func TestSynchronizer_SearchDebounceCoalesces(t *testing.T) {
	s, mock, nav := newSync(t, "")

	s.Edit(querysync.KeySearch, "f")
	mock.Add(100 * time.Millisecond)
	s.Edit(querysync.KeySearch, "fo")
	mock.Add(100 * time.Millisecond)
	s.Edit(querysync.KeySearch, "foo")

	assert.Equal(t, "foo", s.Local(querysync.KeySearch))
	assert.True(t, s.Pending(querysync.KeySearch))
	assert.Equal(t, "", s.Query())

	mock.Add(window - time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, nav.all(), "committed before the window elapsed")

	mock.Add(time.Millisecond)
	eventuallyNavigated(t, nav, "search=foo")
	assert.Equal(t, "search=foo", s.Query())
	assert.Equal(t, "foo", s.Criteria().Search)
}

func TestSynchronizer_CategoryResetsPage(t *testing.T) {
	s, _, nav := newSync(t, "search=a&page=3")

	s.Edit(querysync.KeyCategory, "X")

	eventuallyNavigated(t, nav, "search=a&category=X")
	assert.Equal(t, 1, s.Criteria().CurrentPage())
}

func TestSynchronizer_SetPageKeepsFilters(t *testing.T) {
	s, _, nav := newSync(t, "search=a&sortBy=title")

	s.SetPage(2)
	s.SetPage(1)

	eventuallyNavigated(t, nav, "search=a&sortBy=title&page=2", "search=a&sortBy=title")
}

func TestSynchronizer_PriceFieldsDebounceIndependently(t *testing.T) {
	s, mock, nav := newSync(t, "")

	s.Edit(querysync.KeyMinPrice, "10")
	mock.Add(300 * time.Millisecond)
	s.Edit(querysync.KeyMaxPrice, "50")
	mock.Add(100 * time.Millisecond)

	// min fires on its own window; max is still waiting
	eventuallyNavigated(t, nav, "minPrice=10")
	assert.True(t, s.Pending(querysync.KeyMaxPrice))

	mock.Add(300 * time.Millisecond)
	eventuallyNavigated(t, nav, "minPrice=10", "minPrice=10&maxPrice=50")
}

func TestSynchronizer_UnchangedValueDoesNotNavigate(t *testing.T) {
	s, mock, nav := newSync(t, "search=shoes&category=men")

	s.Edit(querysync.KeyCategory, "men")
	s.Edit(querysync.KeySearch, "shoe")
	mock.Add(100 * time.Millisecond)
	s.Edit(querysync.KeySearch, "shoes")
	mock.Add(window)

	require.Eventually(t, func() bool { return !s.Pending(querysync.KeySearch) }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, nav.all())
}

func TestSynchronizer_ClearAll(t *testing.T) {
	s, mock, nav := newSync(t, "search=a&category=b&page=2")

	s.Edit(querysync.KeySearch, "ab")
	s.ClearAll()
	mock.Add(window)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, []string{""}, nav.all())
	assert.Equal(t, "", s.Local(querysync.KeySearch))
	assert.Equal(t, "", s.Query())

	// already empty: nothing to do
	s.ClearAll()
	assert.Equal(t, []string{""}, nav.all())
}

func TestSynchronizer_SyncFromExternalNavigation(t *testing.T) {
	s, mock, nav := newSync(t, "search=old")

	s.Edit(querysync.KeySearch, "olde")
	s.Sync("?search=new&minPrice=5")

	assert.Equal(t, "new", s.Local(querysync.KeySearch))
	assert.Equal(t, "5", s.Local(querysync.KeyMinPrice))
	assert.False(t, s.Pending(querysync.KeySearch))
	assert.Equal(t, "search=new&minPrice=5", s.Query())

	mock.Add(window)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, nav.all(), "sync must not commit back to the URL")
}

func TestSynchronizer_OnCommit(t *testing.T) {
	var mu sync.Mutex
	var keys []string
	s, _, _ := newSync(t, "", querysync.OnCommit(func(key string) {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, key)
	}))

	s.Edit(querysync.KeySortBy, "rating")
	s.Edit(querysync.KeySortBy, "rating")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{querysync.KeySortBy}, keys)
}

func TestSynchronizer_CloseDropsPending(t *testing.T) {
	s, mock, nav := newSync(t, "")

	s.Edit(querysync.KeySearch, "late")
	s.Close()
	mock.Add(window)
	s.Edit(querysync.KeyCategory, "x")
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, nav.all())
}

func TestSynchronizer_SubmitSettlesFormInOneNavigation(t *testing.T) {
	var keys []string
	s, mock, nav := newSync(t, "search=a&page=3", querysync.OnCommit(func(k string) { keys = append(keys, k) }))

	s.Edit(querysync.KeyMinPrice, "9")
	s.Submit(url.Values{"search": {"a"}, "category": {"X"}, "minPrice": {"5"}})
	assert.Equal(t, []string{"search=a&category=X&minPrice=5"}, nav.all())
	assert.Equal(t, []string{querysync.KeyCategory, querysync.KeyMinPrice}, keys)
	assert.False(t, s.Pending(querysync.KeyMinPrice))
	assert.Equal(t, "5", s.Local(querysync.KeyMinPrice))

	// the dropped edit never fires
	mock.Add(window)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, nav.all(), 1)

	s.Submit(url.Values{"search": {"a"}, "category": {"X"}})
	assert.Len(t, nav.all(), 1, "unchanged form must not navigate")
}
