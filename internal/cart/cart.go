// Package cart is the client-session cart: an explicit state container with
// read snapshots and a small set of mutations, no persistence. A cart lost
// with its session is accepted behavior.
package cart

import (
	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

// Line is one cart entry. Lines are keyed by (ProductID, Size): adding the
// same size of the same product again merges quantities, while two sizes of
// one product stay separate lines.
type Line struct {
	ProductID string
	Name      string
	Price     float64
	Image     string
	Size      domain.Size
	Quantity  int
}

type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of the product in the given size into the cart,
// merging into an existing (product, size) line if present.
func (c *Cart) Add(p domain.Product, size domain.Size) {
	c.AddQuantity(p, size, 1)
}

// AddQuantity merges qty units into the matching line. Non-positive
// quantities are ignored.
func (c *Cart) AddQuantity(p domain.Product, size domain.Size, qty int) {
	if qty <= 0 {
		return
	}
	for i := range c.lines {
		if c.lines[i].ProductID == p.ProductID && c.lines[i].Size == size {
			c.lines[i].Quantity += qty
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ProductID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Size:      size,
		Quantity:  qty,
	})
}

// Remove drops the (productID, size) line entirely.
func (c *Cart) Remove(productID string, size domain.Size) {
	kept := c.lines[:0]
	for _, line := range c.lines {
		if line.ProductID == productID && line.Size == size {
			continue
		}
		kept = append(kept, line)
	}
	c.lines = kept
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the displayed cart total, from the prices snapshotted at Add.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, line := range c.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// CheckoutItems converts the cart into checkout request lines.
func (c *Cart) CheckoutItems() []domain.CartLine {
	items := make([]domain.CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, domain.CartLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		})
	}
	return items
}
