package cart

import "storefront/internal/domain"

// Action is one transition of the cart state machine.
type Action interface {
	kind() string
}

type Add struct{ Product domain.Product }

type Remove struct{ ID int }

// SetQuantity sets a line's quantity exactly. Quantity <= 0 removes the line.
type SetQuantity struct {
	ID       int
	Quantity int
}

type Clear struct{}

// Load replaces the whole cart with a rehydrated snapshot.
type Load struct{ Lines []Line }

func (Add) kind() string         { return "add" }
func (Remove) kind() string      { return "remove" }
func (SetQuantity) kind() string { return "set_quantity" }
func (Clear) kind() string       { return "clear" }
func (Load) kind() string        { return "load" }

// Kind names the action for logs and metrics.
func Kind(a Action) string { return a.kind() }
