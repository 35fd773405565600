package cart

import (
	"github.com/coqui-pos/api/internal/catalog"
	"github.com/shopspring/decimal"
)

// LineItem is one menu item plus its ordered quantity.
type LineItem struct {
	Item     catalog.MenuItem `json:"item"`
	Quantity int              `json:"quantity"`
}

// LineTotal is unit price times quantity, unrounded.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.Item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one LineItem per menu item ID, in insertion order.
// A Cart is not safe for concurrent use; the owning order session guards it.
type Cart struct {
	items []LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem increments the quantity of an existing line or appends a new one
// with quantity 1.
func (c *Cart) AddItem(item catalog.MenuItem) {
	if i := c.index(item.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, LineItem{Item: item, Quantity: 1})
}

// UpdateQuantity sets the quantity of itemID to exactly quantity.
// A quantity <= 0 removes the line. Unknown IDs are ignored.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return
	}
	if i := c.index(itemID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

// RemoveItem deletes the line for itemID if present.
func (c *Cart) RemoveItem(itemID string) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Subtotal is the sum of unit price times quantity over all lines.
// It is never rounded here; rounding happens only for display.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.items {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Items returns a copy of the lines so callers cannot alias cart state.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Quantity returns the ordered quantity of itemID, or 0.
func (c *Cart) Quantity(itemID string) int {
	if i := c.index(itemID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c *Cart) index(itemID string) int {
	for i, l := range c.items {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}
