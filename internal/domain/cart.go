package domain

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrEmptyCart = &Error{Code: EINVALID, Message: "Cart is empty"}
)

// CartLine is one line of a cart: a product id plus the quantity the
// customer wants. Name and UnitPriceCents are snapshots captured when the
// line was added. Price is immutable so the snapshot stays correct, but
// stock is deliberately NOT captured; only the Store is authoritative for
// stock and checkout revalidates against it.
type CartLine struct {
	ProductID      int64
	Name           string
	Category       string
	UnitPriceCents int32
	Quantity       int32
}

// LineTotalCents returns quantity times unit price for the line.
func (l CartLine) LineTotalCents() int64 {
	return int64(l.UnitPriceCents) * int64(l.Quantity)
}

// Cart accumulates a single session's intended purchases. Lines are keyed
// by product id and keep insertion order for display. A Cart never touches
// the Store; it is owned by exactly one session and is not safe for
// concurrent use.
type Cart struct {
	lines []CartLine
	index map[int64]int
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{index: make(map[int64]int)}
}

// Add merges qty units of the product into the cart. Adding the same
// product twice sums the quantities on one line. qty must be positive.
func (c *Cart) Add(p Product, qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if i, ok := c.index[p.ID]; ok {
		c.lines[i].Quantity += qty
		return nil
	}
	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, CartLine{
		ProductID:      p.ID,
		Name:           p.Name,
		Category:       p.Category,
		UnitPriceCents: p.PriceCents,
		Quantity:       qty,
	})
	return nil
}

// Adjust changes an existing line's quantity by delta. A result of zero
// or less removes the line. When the product has no line yet, a positive
// delta behaves like Add and a non-positive delta is a no-op.
func (c *Cart) Adjust(p Product, delta int32) error {
	i, ok := c.index[p.ID]
	if !ok {
		if delta > 0 {
			return c.Add(p, delta)
		}
		return nil
	}
	next := c.lines[i].Quantity + delta
	if next <= 0 {
		c.Remove(p.ID)
		return nil
	}
	c.lines[i].Quantity = next
	return nil
}

// Remove deletes the line for the product id. No-op when absent.
func (c *Cart) Remove(productID int64) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
}

// Quantity returns the quantity for the product id, zero when absent.
func (c *Cart) Quantity(productID int64) int32 {
	if i, ok := c.index[productID]; ok {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// SubtotalCents sums price times quantity across all lines using the
// captured unit prices.
func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.LineTotalCents()
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Clear removes all lines.
func (c *Cart) Clear() {
	c.lines = c.lines[:0]
	clear(c.index)
}
