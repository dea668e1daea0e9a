package debounce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Group keeps one Slot per key. Slots of different keys never cancel each
// other. A slot is released once its callback has run and nothing new is pending.
type Group struct {
	mu      sync.Mutex
	clock   clock.Clock
	window  time.Duration
	slots   map[string]*Slot
	stopped bool
}

func NewGroup(clk clock.Clock, window time.Duration) *Group {
	if clk == nil {
		clk = clock.New()
	}
	return &Group{clock: clk, window: window, slots: make(map[string]*Slot)}
}

// Schedule (re)starts the slot for key. It returns false after Stop.
func (g *Group) Schedule(key string, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return false
	}
	s, ok := g.slots[key]
	if !ok {
		s = NewSlot(g.clock, g.window)
		g.slots[key] = s
	}
	return s.Schedule(func() {
		fn()
		g.release(key, s)
	})
}

func (g *Group) release(key string, s *Slot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.slots[key]; ok && cur == s && !s.Pending() {
		delete(g.slots, key)
	}
}

func (g *Group) Cancel(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[key]
	if !ok {
		return false
	}
	delete(g.slots, key)
	return s.Cancel()
}

func (g *Group) Pending(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[key]
	return ok && s.Pending()
}

// Len returns the number of live slots.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

// Stop cancels every pending callback. Later schedules are ignored.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	for key, s := range g.slots {
		s.Close()
		delete(g.slots, key)
	}
}
