// Package cart owns the kiosk cart: lines keyed by configuration, merged on
// add, edited in place and rescaled when their quantity changes.
package cart

import (
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
)

// Errors returned by cart operations.
var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
)

// Line is one purchasable configuration in the cart.
type Line struct {
	ID         string          `json:"id"`
	Key        string          `json:"key"`
	Item       catalog.Item    `json:"item"`
	Quantity   int             `json:"quantity"`
	Category   string          `json:"category"`
	Selections selection.State `json:"selections"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (l Line) clone() Line {
	l.Selections = l.Selections.Clone()
	return l
}

// Cart is an ordered list of lines. Insertion order is kept; edits replace a
// line in place. A Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
	newID func() string
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{newID: uuid.NewString}
}

// FromLines restores a cart from persisted lines.
func FromLines(lines []Line) *Cart {
	c := New()
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if l.ID == "" {
			l.ID = c.newID()
		}
		if l.Key == "" {
			l.Key = Key(l.Item.ID, l.Selections)
		}
		c.lines = append(c.lines, l.clone())
	}
	return c
}

func (c *Cart) index(lineID string) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ID == lineID })
}

func (c *Cart) indexByKey(key string, skip int) int {
	for i, l := range c.lines {
		if i != skip && l.Key == key {
			return i
		}
	}
	return -1
}

func newLine(id string, item catalog.Item, quantity int, sel selection.State, category string) Line {
	sel = sel.Clone()
	return Line{
		ID:         id,
		Key:        Key(item.ID, sel),
		Item:       item,
		Quantity:   quantity,
		Category:   category,
		Selections: sel,
		TotalPrice: selection.Price(item, quantity, sel),
	}
}

// absorb folds other into l: quantities, prices and selection counts add.
// l keeps its ID, key and position.
func (l *Line) absorb(other Line) {
	l.Quantity += other.Quantity
	l.TotalPrice = l.TotalPrice.Add(other.TotalPrice)
	l.Selections = l.Selections.Merge(other.Selections)
}

// Add puts a confirmed configuration in the cart. When a line with the same
// key exists its quantity and total grow by the new contribution; otherwise a
// new line is appended. The resulting line is returned.
func (c *Cart) Add(item catalog.Item, quantity int, sel selection.State, category string) (Line, error) {
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	line := newLine("", item, quantity, sel, category)
	if i := c.indexByKey(line.Key, -1); i >= 0 {
		c.lines[i].absorb(line)
		return c.lines[i].clone(), nil
	}
	line.ID = c.newID()
	c.lines = append(c.lines, line)
	return line.clone(), nil
}

// Edit replaces the line lineID with a new configuration, keeping its ID and
// position. If the new configuration matches another line, that line is
// folded into the edited one and removed.
func (c *Cart) Edit(lineID string, item catalog.Item, quantity int, sel selection.State, category string) (Line, error) {
	i := c.index(lineID)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	line := newLine(lineID, item, quantity, sel, category)
	j := c.indexByKey(line.Key, i)
	if j >= 0 {
		line.absorb(c.lines[j])
	}
	c.lines[i] = line
	if j >= 0 {
		c.lines = slices.Delete(c.lines, j, j+1)
	}
	return line.clone(), nil
}

// UpdateQuantity sets the quantity of lineID, rescaling its selections and
// price. A quantity of zero or less removes the line and reports removed.
func (c *Cart) UpdateQuantity(lineID string, quantity int) (line Line, removed bool, err error) {
	i := c.index(lineID)
	if i < 0 {
		return Line{}, false, ErrLineNotFound
	}
	if quantity <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		return Line{}, true, nil
	}
	c.lines[i] = Rescale(c.lines[i], quantity)
	return c.lines[i].clone(), false, nil
}

// Remove deletes lineID and reports whether it was present.
func (c *Cart) Remove(lineID string) bool {
	i := c.index(lineID)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// Line returns a copy of lineID.
func (c *Cart) Line(lineID string) (Line, bool) {
	i := c.index(lineID)
	if i < 0 {
		return Line{}, false
	}
	return c.lines[i].clone(), true
}

// Lines returns a copy of every line in order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.clone()
	}
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

// ItemCount sums the quantity of every line.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice sums the total of every line.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.TotalPrice)
	}
	return total
}

func (c *Cart) Clear() { c.lines = nil }
