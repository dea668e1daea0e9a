package cart

import "github.com/shopspring/decimal"

// Line is one product's entry in the cart.
type Line struct {
	ID       int     `json:"id"       validate:"gt=0"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"    validate:"gte=0"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" validate:"gte=1"`
}

// Subtotal is price × quantity.
func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Reduce applies a to lines and returns the next state. The input slice is
// never modified; unknown ids and unknown actions leave the state as it was.
func Reduce(lines []Line, a Action) []Line {
	switch a := a.(type) {
	case Add:
		next := clone(lines)
		for i := range next {
			if next[i].ID == a.Product.ID {
				next[i].Quantity++
				return next
			}
		}
		return append(next, Line{
			ID:       a.Product.ID,
			Title:    a.Product.Title,
			Price:    a.Product.Price,
			Image:    a.Product.Image,
			Quantity: 1,
		})

	case Remove:
		next := make([]Line, 0, len(lines))
		for _, l := range lines {
			if l.ID != a.ID {
				next = append(next, l)
			}
		}
		return next

	case SetQuantity:
		if a.Quantity <= 0 {
			return Reduce(lines, Remove{ID: a.ID})
		}
		next := clone(lines)
		for i := range next {
			if next[i].ID == a.ID {
				next[i].Quantity = a.Quantity
			}
		}
		return next

	case Clear:
		return []Line{}

	case Load:
		return clone(a.Lines)
	}
	return lines
}

func TotalItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func TotalPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func clone(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
