// Package cart owns the shopping-cart state machine, its derived totals and
// the write-through synchronization with a kv.Store.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/kv"
)

// Recorder receives cart events for metrics.
type Recorder interface {
	CartAction(action string)
	StorageFailure(op string)
}

type nopRecorder struct{}

func (nopRecorder) CartAction(string)     {}
func (nopRecorder) StorageFailure(string) {}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.logger = l } }

func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithKey overrides StorageKey.
func WithKey(key string) Option { return func(s *Store) { s.key = key } }

// Store is the authoritative cart. The in-memory lines win over whatever is
// in storage; storage only ever receives snapshots of them.
type Store struct {
	mu       sync.Mutex
	storage  kv.Store
	key      string
	lines    []Line
	loaded   bool
	logger   zerolog.Logger
	recorder Recorder
}

func NewStore(storage kv.Store, opts ...Option) *Store {
	if storage == nil {
		storage = kv.Nop{}
	}
	s := &Store{
		storage:  storage,
		key:      StorageKey,
		lines:    []Line{},
		logger:   zerolog.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("tag", "cart.Store").Logger()
	return s
}

// Rehydrate reads the snapshot once. Later calls do nothing. Whatever happens
// the store ends up loaded; a missing key is an empty cart, and a malformed
// snapshot or a failing storage read is an empty cart plus the returned
// diagnostic (ErrMalformedSnapshot or ErrStorageUnavailable).
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rehydrateLocked(ctx)
}

func (s *Store) rehydrateLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	s.loaded = true

	logger := s.logger.With().Str("process", "rehydrating cart").Str("key", s.key).Logger()
	raw, ok, err := s.storage.Read(ctx, s.key)
	if err != nil {
		err = fmt.Errorf("%w: failed reading snapshot with error=%w", ErrStorageUnavailable, err)
		s.recorder.StorageFailure("read")
		logger.Error().Err(err).Msg("cart storage read failed, starting empty")
		return err
	}
	if !ok {
		logger.Debug().Msg("no cart snapshot stored")
		return nil
	}
	lines, err := Decode(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("discarding malformed cart snapshot")
		return err
	}
	s.lines = Reduce(s.lines, Load{Lines: lines})
	logger.Debug().Int("lines", len(lines)).Msg("rehydrated cart")
	return nil
}

// Dispatch applies a and writes the new snapshot through to storage. A
// dispatch before Rehydrate rehydrates first so a stored cart is not
// clobbered. Storage write failures are logged and swallowed. Load is
// reserved for Rehydrate and is ignored here.
func (s *Store) Dispatch(ctx context.Context, a Action) {
	if _, isLoad := a.(Load); isLoad {
		s.logger.Warn().Str("process", "dispatching cart action").Msg("load is only applied by rehydrate, ignoring")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.rehydrateLocked(ctx)
	s.lines = Reduce(s.lines, a)
	s.recorder.CartAction(Kind(a))
	s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	raw, err := Encode(s.lines)
	if err == nil {
		err = s.storage.Write(ctx, s.key, raw)
	}
	if err != nil {
		s.recorder.StorageFailure("write")
		s.logger.Error().
			Err(err).
			Str("process", "persisting cart").
			Bool("unavailable", errors.Is(err, kv.ErrUnavailable)).
			Msg("cart kept in memory only")
	}
}

func (s *Store) Add(ctx context.Context, p domain.Product) { s.Dispatch(ctx, Add{Product: p}) }

func (s *Store) Remove(ctx context.Context, id int) { s.Dispatch(ctx, Remove{ID: id}) }

func (s *Store) SetQuantity(ctx context.Context, id, quantity int) {
	s.Dispatch(ctx, SetQuantity{ID: id, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) { s.Dispatch(ctx, Clear{}) }

// Loaded distinguishes "not read from storage yet" from "genuinely empty".
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.lines)
}

// Line returns the line for id, if any.
func (s *Store) Line(id int) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalItemCount(s.lines)
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPrice(s.lines)
}

// Snapshot returns the serialized form of the current lines.
func (s *Store) Snapshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Encode(s.lines)
}
