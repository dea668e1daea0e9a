package cart

import (
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"storefront/internal/debounce"
)

// DefaultAckWindow is how long an "added to cart" acknowledgement stays visible.
const DefaultAckWindow = 1500 * time.Millisecond

// Acknowledger remembers which products a session just added so the next
// render can show "Added!" instead of "Add to cart". Adding the same product
// again restarts its window.
type Acknowledger struct {
	mu     sync.Mutex
	acked  map[string]struct{}
	timers *debounce.Group
}

func NewAcknowledger(clk clock.Clock, window time.Duration) *Acknowledger {
	if window <= 0 {
		window = DefaultAckWindow
	}
	return &Acknowledger{
		acked:  make(map[string]struct{}),
		timers: debounce.NewGroup(clk, window),
	}
}

func ackKey(sessionID string, productID int) string {
	return sessionID + "/" + strconv.Itoa(productID)
}

func (a *Acknowledger) Mark(sessionID string, productID int) {
	key := ackKey(sessionID, productID)
	a.mu.Lock()
	a.acked[key] = struct{}{}
	a.mu.Unlock()

	forget := func() {
		a.mu.Lock()
		delete(a.acked, key)
		a.mu.Unlock()
	}
	if !a.timers.Schedule(key, forget) {
		forget()
	}
}

func (a *Acknowledger) Acked(sessionID string, productID int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.acked[ackKey(sessionID, productID)]
	return ok
}

// Stop cancels outstanding timers and forgets every acknowledgement.
func (a *Acknowledger) Stop() {
	a.timers.Stop()
	a.mu.Lock()
	a.acked = make(map[string]struct{})
	a.mu.Unlock()
}
