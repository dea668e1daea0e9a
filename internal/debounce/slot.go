// Package debounce provides cancel-and-restart single-slot timers.
//
// A Slot holds at most one pending callback. Scheduling again cancels the
// pending one, so a burst of schedules inside the window runs only the last
// callback. Each schedule bumps a generation counter and a callback checks it
// before running, which drops fires that raced with a later Schedule or Cancel.
package debounce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type Slot struct {
	mu     sync.Mutex
	clock  clock.Clock
	window time.Duration
	timer  *clock.Timer
	gen    uint64
	closed bool
}

func NewSlot(clk clock.Clock, window time.Duration) *Slot {
	if clk == nil {
		clk = clock.New()
	}
	return &Slot{clock: clk, window: window}
}

// Schedule runs fn after the window unless another Schedule or Cancel comes first.
// It returns false if the slot was closed.
func (s *Slot) Schedule(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.window, func() {
		s.mu.Lock()
		if s.gen != gen || s.closed {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
	return true
}

// Cancel drops the pending callback, reporting whether one was pending.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Pending reports whether a callback is waiting to run.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Close cancels the pending callback and rejects later schedules.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
}

func (s *Slot) stopLocked() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}
