package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/kv"
)

// CartService opens the cart of a browser session. Every session gets its
// own key space in Storage, so the cart snapshot always lives under the
// same fixed key.
type CartService struct {
	Storage  kv.Store
	Catalog  catalog.Source
	Ack      *cart.Acknowledger
	Recorder cart.Recorder
	logger   zerolog.Logger
}

func NewCartService(storage kv.Store, source catalog.Source, ack *cart.Acknowledger, rec cart.Recorder, logger zerolog.Logger) *CartService {
	return &CartService{
		Storage:  storage,
		Catalog:  source,
		Ack:      ack,
		Recorder: rec,
		logger:   logger.With().Str("tag", "services.CartService").Logger(),
	}
}

// Open returns the session's cart, rehydrated. A missing, malformed or
// unreadable snapshot gives an empty cart; the diagnostic is only logged.
func (s *CartService) Open(ctx context.Context, sessionID string) *cart.Store {
	st := cart.NewStore(
		kv.NewScoped(s.Storage, sessionID),
		cart.WithLogger(s.logger),
		cart.WithRecorder(s.Recorder),
	)
	if err := st.Rehydrate(ctx); err != nil {
		s.logger.Warn().
			Err(err).
			Str("process", "opening cart").
			Bool("malformed", errors.Is(err, cart.ErrMalformedSnapshot)).
			Msg("starting from an empty cart")
	}
	return st
}

// Add puts one more of productID into the cart and starts its
// added-to-cart acknowledgement.
func (s *CartService) Add(ctx context.Context, sessionID string, productID int) (cart.Line, error) {
	p, err := s.Catalog.FetchProductByID(ctx, productID)
	if err != nil {
		return cart.Line{}, fmt.Errorf("failed adding product %d with error=%w", productID, err)
	}
	st := s.Open(ctx, sessionID)
	st.Add(ctx, p)
	if s.Ack != nil {
		s.Ack.Mark(sessionID, productID)
	}
	line, _ := st.Line(productID)
	return line, nil
}

func (s *CartService) SetQuantity(ctx context.Context, sessionID string, productID, quantity int) CartView {
	st := s.Open(ctx, sessionID)
	st.SetQuantity(ctx, productID, quantity)
	return viewOf(st)
}

func (s *CartService) Remove(ctx context.Context, sessionID string, productID int) CartView {
	st := s.Open(ctx, sessionID)
	st.Remove(ctx, productID)
	return viewOf(st)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) CartView {
	st := s.Open(ctx, sessionID)
	st.Clear(ctx)
	return viewOf(st)
}

func (s *CartService) View(ctx context.Context, sessionID string) CartView {
	return viewOf(s.Open(ctx, sessionID))
}

// Acked reports whether productID was added by this session within the
// acknowledgement window.
func (s *CartService) Acked(sessionID string, productID int) bool {
	return s.Ack != nil && s.Ack.Acked(sessionID, productID)
}

type CartLineView struct {
	cart.Line
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Lines      []CartLineView  `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (v CartView) Empty() bool { return len(v.Lines) == 0 }

func viewOf(st *cart.Store) CartView {
	lines := st.Lines()
	out := CartView{
		Lines:      make([]CartLineView, 0, len(lines)),
		TotalItems: cart.TotalItemCount(lines),
		TotalPrice: cart.TotalPrice(lines),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, CartLineView{Line: l, Subtotal: l.Subtotal()})
	}
	return out
}
