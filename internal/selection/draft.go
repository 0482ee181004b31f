package selection

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
)

// Draft is the item currently being configured on the kiosk. It is created
// empty for a fresh pick or from a cart line being edited.
type Draft struct {
	LineID   string       `json:"line_id,omitempty"`
	Item     catalog.Item `json:"item"`
	Category string       `json:"category"`
	Quantity int          `json:"quantity"`
	State    State        `json:"selections"`

	options  catalog.OptionGroups
	doneness []string
	drinks   []string
	addons   []catalog.Item
}

// GroupProgress is the selected and required totals of one enabled group.
type GroupProgress struct {
	Group    string               `json:"group"`
	Title    string               `json:"title,omitempty"`
	Selected int                  `json:"selected"`
	Required int                  `json:"required"`
	Options  []catalog.OptionItem `json:"options"`
}

// NewDraft starts configuring item with quantity 1 and nothing selected.
// Option lists are taken from cat.
func NewDraft(item catalog.Item, category string, cat *catalog.Catalog) *Draft {
	return &Draft{
		Item:     item,
		Category: category,
		Quantity: 1,
		options:  cat.Options,
		doneness: cat.Doneness,
		drinks:   cat.Drinks,
		addons:   cat.Addons,
	}
}

// EditDraft starts editing an existing configuration.
func EditDraft(lineID string, item catalog.Item, category string, quantity int, s State, cat *catalog.Catalog) *Draft {
	d := NewDraft(item, category, cat)
	d.LineID = lineID
	d.Quantity = max(1, quantity)
	d.State = s.Clone()
	return d
}

func (d *Draft) rules() *catalog.CustomizationRules { return d.Item.Customizations }

// SetQuantity sets the unit count, never below 1. Selections are left as
// they are; a lower quantity can leave groups over their target until the
// customer removes choices.
func (d *Draft) SetQuantity(q int) {
	d.Quantity = max(1, q)
}

func (d *Draft) SetNotes(notes string) { d.State.Notes = notes }

// SetSingleChoiceAddon selects or clears the item's flat-price addon. It is a
// no-op for items without one.
func (d *Draft) SetSingleChoiceAddon(on bool) {
	r := d.rules()
	if r == nil || r.SingleChoiceAddon == nil {
		d.State.SingleChoiceAddon = false
		return
	}
	d.State.SingleChoiceAddon = on
}

// Options returns the choices offered by group, with availability.
func (d *Draft) Options(group string) []catalog.OptionItem {
	r := d.rules()
	switch group {
	case enum.GroupDoneness:
		return allAvailable(d.doneness)
	case enum.GroupDrink:
		return allAvailable(d.drinks)
	case enum.GroupSauce:
		return d.options.Sauces
	case enum.GroupDessertA:
		return d.options.DessertsA
	case enum.GroupDessertB:
		return d.options.DessertsB
	case enum.GroupPastaA:
		return d.options.PastasA
	case enum.GroupPastaB:
		return d.options.PastasB
	case enum.GroupComponent:
		if r != nil && r.ComponentChoice != nil {
			return allAvailable(r.ComponentChoice.Options)
		}
	case enum.GroupSide:
		if r != nil && r.SideChoice != nil {
			return allAvailable(r.SideChoice.Options)
		}
	case enum.GroupMulti:
		if r != nil {
			return catalog.MultiChoiceOptions(r.MultiChoice, d.options)
		}
	case enum.GroupAddon:
		out := make([]catalog.OptionItem, len(d.addons))
		for i, a := range d.addons {
			out[i] = catalog.OptionItem{Name: a.ID, IsAvailable: a.IsAvailable}
		}
		return out
	}
	return nil
}

func allAvailable(names []string) []catalog.OptionItem {
	out := make([]catalog.OptionItem, len(names))
	for i, n := range names {
		out[i] = catalog.OptionItem{Name: n, IsAvailable: true}
	}
	return out
}

// offered reports whether option is listed and available in group.
func (d *Draft) offered(group, option string) bool {
	for _, o := range d.Options(group) {
		if o.Name == option {
			return o.IsAvailable
		}
	}
	return false
}

// Capacity returns the required total of group at the current quantity.
func (d *Draft) Capacity(group string) int {
	return Capacity(d.rules(), group, d.Quantity)
}

// Selected returns the current total of group.
func (d *Draft) Selected(group string) int {
	return Selected(d.State, group, d.options)
}

// Adjust changes the count of option in group by delta and reports whether
// anything changed. An increment that would push the group past its capacity,
// or that names an option not offered or marked unavailable, is ignored.
// Decrements always apply and drop options that reach zero. For the addon
// group option is the addon ID and there is no capacity.
func (d *Draft) Adjust(group, option string, delta int) (bool, error) {
	if group == enum.GroupAddon {
		return d.adjustAddon(option, delta)
	}
	if !slices.Contains(ValidationOrder, group) {
		return false, ErrUnknownGroup
	}
	if !Enabled(d.rules(), group) {
		return false, ErrGroupDisabled
	}
	if delta == 0 {
		return false, nil
	}

	allowed := d.offered(group, option)
	limit := d.Capacity(group)
	s := &d.State

	switch group {
	case enum.GroupDoneness:
		return adjustCounts(&s.Donenesses, option, delta, limit, allowed), nil
	case enum.GroupDrink:
		return adjustCounts(&s.Drinks, option, delta, limit, allowed), nil
	case enum.GroupComponent:
		return adjustCounts(&s.Components, option, delta, limit, allowed), nil
	case enum.GroupSide:
		return adjustCounts(&s.SideChoices, option, delta, limit, allowed), nil
	case enum.GroupMulti:
		return adjustCounts(&s.MultiChoice, option, delta, limit, allowed), nil
	case enum.GroupSauce:
		return adjustPortions(&s.Sauces, option, delta, limit, nil, allowed), nil
	case enum.GroupDessertA, enum.GroupDessertB:
		return adjustPortions(&s.Desserts, option, delta, limit, catalog.Names(d.Options(group)), allowed), nil
	case enum.GroupPastaA, enum.GroupPastaB:
		return adjustPortions(&s.Pastas, option, delta, limit, catalog.Names(d.Options(group)), allowed), nil
	}
	return false, ErrUnknownGroup
}

func adjustCounts(c *Counts, option string, delta, limit int, allowed bool) bool {
	cur := (*c)[option]
	next := max(0, cur+delta)
	if next == cur {
		return false
	}
	if delta > 0 && (!allowed || c.Total()-cur+next > limit) {
		return false
	}
	out := c.Clone()
	if out == nil {
		out = make(Counts)
	}
	if next == 0 {
		delete(out, option)
	} else {
		out[option] = next
	}
	if len(out) == 0 {
		out = nil
	}
	*c = out
	return true
}

func adjustPortions(ps *[]Portion, option string, delta, limit int, members []string, allowed bool) bool {
	i := slices.IndexFunc(*ps, func(p Portion) bool { return p.Name == option })
	cur := 0
	if i >= 0 {
		cur = (*ps)[i].Quantity
	}
	if delta > 0 && (!allowed || portionTotal(*ps, members)+delta > limit) {
		return false
	}
	if i < 0 && delta < 0 {
		return false
	}

	next := cur + delta
	out := slices.Clone(*ps)
	switch {
	case next <= 0:
		out = slices.Delete(out, i, i+1)
	case i >= 0:
		out[i].Quantity = next
	default:
		out = append(out, Portion{Name: option, Quantity: next})
	}
	if len(out) == 0 {
		out = nil
	}
	*ps = out
	return true
}

func (d *Draft) adjustAddon(id string, delta int) (bool, error) {
	ai := slices.IndexFunc(d.addons, func(a catalog.Item) bool { return a.ID == id })
	si := slices.IndexFunc(d.State.Addons, func(a AddonSelection) bool { return a.ID == id })
	if ai < 0 && si < 0 {
		return false, ErrUnknownAddon
	}
	if delta == 0 {
		return false, nil
	}
	if delta > 0 && (ai < 0 || !d.addons[ai].IsAvailable) {
		return false, nil
	}
	if si < 0 && delta < 0 {
		return false, nil
	}

	out := slices.Clone(d.State.Addons)
	switch {
	case si < 0:
		a := d.addons[ai]
		out = append(out, AddonSelection{ID: a.ID, Name: a.Name, PrintName: a.PrintName, Price: a.Price, Quantity: delta})
	case out[si].Quantity+delta <= 0:
		out = slices.Delete(out, si, si+1)
	default:
		out[si].Quantity += delta
	}
	if len(out) == 0 {
		out = nil
	}
	d.State.Addons = out
	return true, nil
}

// Price returns the total of the draft as configured.
func (d *Draft) Price() decimal.Decimal {
	return Price(d.Item, d.Quantity, d.State)
}

// Validate checks every enabled group against its required total.
func (d *Draft) Validate() error {
	return Validate(d.rules(), d.Quantity, d.State, d.options)
}

// Progress lists the enabled groups in validation order with their totals.
func (d *Draft) Progress() []GroupProgress {
	var out []GroupProgress
	for _, group := range ValidationOrder {
		if !Enabled(d.rules(), group) {
			continue
		}
		out = append(out, GroupProgress{
			Group:    group,
			Title:    groupTitle(d.rules(), group),
			Selected: d.Selected(group),
			Required: d.Capacity(group),
			Options:  d.Options(group),
		})
	}
	return out
}
