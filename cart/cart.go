package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned for remove/checkout against an empty cart.
var ErrEmpty = errors.New("cart: empty")

// Line is one resolved cart entry. The price is captured at add time;
// later catalog edits do not retroactively change a cart.
type Line struct {
	Name      string
	UnitPrice decimal.Decimal
}

// Cart is one user's ordered line list. It is owned by exactly one session
// and serialized by the session's mutation lock; no locking here.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add appends a line and returns it for the confirmation echo.
func (c *Cart) Add(name string, unitPrice decimal.Decimal) Line {
	l := Line{Name: name, UnitPrice: unitPrice}
	c.lines = append(c.lines, l)
	return l
}

// RemoveLast pops the most recent line.
func (c *Cart) RemoveLast() (Line, error) {
	if len(c.lines) == 0 {
		return Line{}, ErrEmpty
	}
	l := c.lines[len(c.lines)-1]
	c.lines = c.lines[:len(c.lines)-1]
	return l, nil
}

// Total sums unit prices exactly. Rounding to 2 decimals happens only at
// the point of display, never here, so many small lines cannot compound
// rounding error.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.UnitPrice)
	}
	return total
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Clear() {
	c.lines = nil
}
