package selection

import (
	"errors"
	"fmt"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
)

// ErrInvalidOption reports a selection entry naming an option the group does
// not offer, one marked unavailable, or a count below 1.
var ErrInvalidOption = errors.New("invalid option")

// Rebuild replays sel onto a fresh draft of item at quantity and returns the
// resulting state. Every entry goes through Draft.Adjust, so only offered,
// available options within capacity are accepted, and addon names and prices
// are taken from cat rather than from sel. The rebuilt state must then pass
// Validate.
func Rebuild(item catalog.Item, category string, quantity int, sel State, cat *catalog.Catalog) (State, error) {
	d := NewDraft(item, category, cat)
	d.SetQuantity(quantity)

	counts := []struct {
		group string
		c     Counts
	}{
		{enum.GroupDoneness, sel.Donenesses},
		{enum.GroupDrink, sel.Drinks},
		{enum.GroupComponent, sel.Components},
		{enum.GroupSide, sel.SideChoices},
		{enum.GroupMulti, sel.MultiChoice},
	}
	for _, g := range counts {
		for _, name := range g.c.SortedKeys() {
			if err := d.replay(sel, g.group, name, g.c[name]); err != nil {
				return State{}, err
			}
		}
	}
	for _, p := range sel.Sauces {
		if err := d.replay(sel, enum.GroupSauce, p.Name, p.Quantity); err != nil {
			return State{}, err
		}
	}
	for _, p := range sel.Desserts {
		group := d.subgroup(enum.GroupDessertA, enum.GroupDessertB, p.Name)
		if err := d.replay(sel, group, p.Name, p.Quantity); err != nil {
			return State{}, err
		}
	}
	for _, p := range sel.Pastas {
		group := d.subgroup(enum.GroupPastaA, enum.GroupPastaB, p.Name)
		if err := d.replay(sel, group, p.Name, p.Quantity); err != nil {
			return State{}, err
		}
	}

	for _, a := range sel.Addons {
		if a.Quantity <= 0 {
			return State{}, fmt.Errorf("%w: addon %q count %d", ErrInvalidOption, a.ID, a.Quantity)
		}
		changed, err := d.Adjust(enum.GroupAddon, a.ID, a.Quantity)
		if err != nil {
			return State{}, fmt.Errorf("addon %q: %w", a.ID, err)
		}
		if !changed {
			return State{}, fmt.Errorf("%w: addon %q is unavailable", ErrInvalidOption, a.ID)
		}
	}

	if sel.SingleChoiceAddon {
		if r := d.rules(); r == nil || r.SingleChoiceAddon == nil {
			return State{}, fmt.Errorf("single choice addon: %w", ErrGroupDisabled)
		}
		d.SetSingleChoiceAddon(true)
	}
	d.SetNotes(sel.Notes)

	if err := d.Validate(); err != nil {
		return State{}, err
	}
	return d.State, nil
}

// replay adds n of option to group. An increment the draft refuses is an
// unknown or unavailable option, or one that overfills the group.
func (d *Draft) replay(sel State, group, option string, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %s %q count %d", ErrInvalidOption, group, option, n)
	}
	changed, err := d.Adjust(group, option, n)
	if err != nil {
		return fmt.Errorf("%s: %w", group, err)
	}
	if changed {
		return nil
	}
	if !d.offered(group, option) {
		return fmt.Errorf("%w: %s %q", ErrInvalidOption, group, option)
	}
	return &MismatchError{
		Group:    group,
		Title:    groupTitle(d.rules(), group),
		Required: d.Capacity(group),
		Selected: Selected(sel, group, d.options),
	}
}

// subgroup returns the split group that lists option, defaulting to a.
func (d *Draft) subgroup(a, b, option string) string {
	for _, o := range d.Options(b) {
		if o.Name == option {
			return b
		}
	}
	return a
}
