package cart

import (
	"github.com/angelmondragon/shopoverlay/internal/catalog"
	"github.com/shopspring/decimal"
)

// Line is one cart entry. Name is captured at add time so a line can still be
// described after its catalog item disappears.
type Line struct {
	ItemID   int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`

	// contribution of this line to the cart aggregates
	value  decimal.Decimal
	weight int64
	// units grouped by the price and weight they were added at, oldest first
	lots []lot
}

type lot struct {
	price    decimal.Decimal
	weight   int64
	quantity int
}

func (l *Line) push(price decimal.Decimal, weight int64, quantity int) {
	if n := len(l.lots); n > 0 && l.lots[n-1].price.Equal(price) && l.lots[n-1].weight == weight {
		l.lots[n-1].quantity += quantity
		return
	}
	l.lots = append(l.lots, lot{price: price, weight: weight, quantity: quantity})
}

// pop takes quantity units off the newest lots and returns their value and
// weight at the prices they were added at.
func (l *Line) pop(quantity int) (decimal.Decimal, int64) {
	value := decimal.Zero
	var weight int64
	for quantity > 0 && len(l.lots) > 0 {
		last := &l.lots[len(l.lots)-1]
		take := min(quantity, last.quantity)
		value = value.Add(last.price.Mul(decimal.NewFromInt(int64(take))))
		weight += last.weight * int64(take)
		last.quantity -= take
		quantity -= take
		if last.quantity == 0 {
			l.lots = l.lots[:len(l.lots)-1]
		}
	}
	return value, weight
}

// Lookup resolves a catalog item by id.
type Lookup func(id int64) (catalog.Item, bool)

// Cart keeps lines plus incrementally maintained aggregates. The aggregates
// are the source of truth for eligibility; display totals may be recomputed
// from live catalog prices with Recompute but are never written back.
type Cart struct {
	lines        []Line
	value        decimal.Decimal
	weight       int64
	tracksWeight bool
}

// NewBuy returns an empty buy-cart, which tracks carried weight.
func NewBuy() *Cart {
	return &Cart{tracksWeight: true}
}

// NewSell returns an empty sell-cart. Selling does not touch weight.
func NewSell() *Cart {
	return &Cart{}
}

// TracksWeight reports whether the cart aggregates item weight.
func (c *Cart) TracksWeight() bool {
	return c.tracksWeight
}

// Add increments the line for item by quantity or appends a new line.
// A quantity below one counts as one. No eligibility check happens here.
func (c *Cart) Add(item catalog.Item, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	var unitWeight int64
	if c.tracksWeight {
		unitWeight = item.Weight
	}
	value := item.Price.Mul(decimal.NewFromInt(int64(quantity)))
	weight := unitWeight * int64(quantity)

	pos := c.find(item.ID)
	if pos < 0 {
		c.lines = append(c.lines, Line{ItemID: item.ID, Name: item.Name})
		pos = len(c.lines) - 1
	}
	line := &c.lines[pos]
	line.Quantity += quantity
	line.value = line.value.Add(value)
	line.weight += weight
	line.push(item.Price, unitWeight, quantity)

	c.value = c.value.Add(value)
	c.weight += weight
	c.settle()
}

// Remove takes quantity units off the line for itemID, newest units first at
// the price they were added at. When removeAll is set or the quantity would
// reach zero the line is deleted and its whole contribution subtracted. A missing line is a no-op; the return value tells
// whether anything changed.
func (c *Cart) Remove(itemID int64, quantity int, removeAll bool) bool {
	pos := c.find(itemID)
	if pos < 0 {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	line := &c.lines[pos]

	if removeAll || line.Quantity-quantity <= 0 {
		c.value = c.value.Sub(line.value)
		c.weight -= line.weight
		c.lines = append(c.lines[:pos], c.lines[pos+1:]...)
		c.settle()
		return true
	}

	valueShare, weightShare := line.pop(quantity)

	line.Quantity -= quantity
	line.value = line.value.Sub(valueShare)
	line.weight -= weightShare
	c.value = c.value.Sub(valueShare)
	c.weight -= weightShare
	c.settle()
	return true
}

// Clear drops every line and zeroes the aggregates.
func (c *Cart) Clear() {
	c.lines = nil
	c.value = decimal.Zero
	c.weight = 0
}

// settle enforces the structural invariants after each mutation: aggregates
// never go negative and an empty cart carries no residue.
func (c *Cart) settle() {
	if len(c.lines) == 0 {
		c.value = decimal.Zero
		c.weight = 0
		return
	}
	if c.value.IsNegative() {
		c.value = decimal.Zero
	}
	if c.weight < 0 {
		c.weight = 0
	}
}

func (c *Cart) find(itemID int64) int {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// Value is the running aggregate value.
func (c *Cart) Value() decimal.Decimal {
	return c.value
}

// Weight is the running aggregate weight in grams.
func (c *Cart) Weight() int64 {
	return c.weight
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Quantity returns how many units of itemID are in the cart.
func (c *Cart) Quantity(itemID int64) int {
	if pos := c.find(itemID); pos >= 0 {
		return c.lines[pos].Quantity
	}
	return 0
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	for i := range out {
		out[i].lots = append([]lot(nil), out[i].lots...)
	}
	return out
}

// Quantities maps item ids to cart quantities.
func (c *Cart) Quantities() map[int64]int {
	out := make(map[int64]int, len(c.lines))
	for _, line := range c.lines {
		out[line.ItemID] += line.Quantity
	}
	return out
}

// Recompute derives value and weight from live catalog data. Lines whose
// item vanished contribute nothing.
func (c *Cart) Recompute(lookup Lookup) (decimal.Decimal, int64) {
	value := decimal.Zero
	var weight int64
	for _, line := range c.lines {
		item, ok := lookup(line.ItemID)
		if !ok {
			continue
		}
		value = value.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		if c.tracksWeight {
			weight += item.Weight * int64(line.Quantity)
		}
	}
	return value, weight
}
