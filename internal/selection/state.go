// Package selection holds the in-progress choices for one menu item: the
// per-group selection state, clamped adjustments and confirm-time validation.
package selection

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// Counts maps option name to selected count for count-style groups.
type Counts map[string]int

// Total sums every count.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Clone returns a copy with zero and negative entries dropped. A nil or empty
// map clones to nil.
func (c Counts) Clone() Counts {
	var out Counts
	for k, v := range c {
		if v <= 0 {
			continue
		}
		if out == nil {
			out = make(Counts, len(c))
		}
		out[k] = v
	}
	return out
}

// SortedKeys returns the option names in lexical order.
func (c Counts) SortedKeys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Portion is a named quantity in an array-style group.
type Portion struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// AddonSelection is an addon picked for an item, with the unit price at the
// time it was chosen.
type AddonSelection struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	PrintName string          `json:"print_name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// State is the full set of choices for one configured item. Only the groups
// enabled on the item's customization rules are ever populated.
type State struct {
	Donenesses        Counts           `json:"donenesses,omitempty"`
	Drinks            Counts           `json:"drinks,omitempty"`
	Components        Counts           `json:"components,omitempty"`
	SideChoices       Counts           `json:"side_choices,omitempty"`
	MultiChoice       Counts           `json:"multi_choice,omitempty"`
	Sauces            []Portion        `json:"sauces,omitempty"`
	Desserts          []Portion        `json:"desserts,omitempty"`
	Pastas            []Portion        `json:"pastas,omitempty"`
	Addons            []AddonSelection `json:"addons,omitempty"`
	SingleChoiceAddon bool             `json:"single_choice_addon,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Donenesses:        s.Donenesses.Clone(),
		Drinks:            s.Drinks.Clone(),
		Components:        s.Components.Clone(),
		SideChoices:       s.SideChoices.Clone(),
		MultiChoice:       s.MultiChoice.Clone(),
		Sauces:            slices.Clone(s.Sauces),
		Desserts:          slices.Clone(s.Desserts),
		Pastas:            slices.Clone(s.Pastas),
		Addons:            slices.Clone(s.Addons),
		SingleChoiceAddon: s.SingleChoiceAddon,
		Notes:             s.Notes,
	}
}

// Merge returns s with every count, portion and addon quantity of o added.
// Notes and the single-choice addon flag are kept from s.
func (s State) Merge(o State) State {
	out := s.Clone()
	out.Donenesses = mergeCounts(out.Donenesses, o.Donenesses)
	out.Drinks = mergeCounts(out.Drinks, o.Drinks)
	out.Components = mergeCounts(out.Components, o.Components)
	out.SideChoices = mergeCounts(out.SideChoices, o.SideChoices)
	out.MultiChoice = mergeCounts(out.MultiChoice, o.MultiChoice)
	out.Sauces = mergePortions(out.Sauces, o.Sauces)
	out.Desserts = mergePortions(out.Desserts, o.Desserts)
	out.Pastas = mergePortions(out.Pastas, o.Pastas)

	for _, add := range o.Addons {
		i := slices.IndexFunc(out.Addons, func(a AddonSelection) bool { return a.ID == add.ID })
		if i < 0 {
			out.Addons = append(out.Addons, add)
			continue
		}
		out.Addons[i].Quantity += add.Quantity
	}
	return out
}

func mergeCounts(a, b Counts) Counts {
	if len(b) == 0 {
		return a
	}
	out := a.Clone()
	if out == nil {
		out = make(Counts, len(b))
	}
	for k, v := range b {
		if v > 0 {
			out[k] += v
		}
	}
	return out
}

func mergePortions(a, b []Portion) []Portion {
	out := slices.Clone(a)
	for _, p := range b {
		i := slices.IndexFunc(out, func(q Portion) bool { return q.Name == p.Name })
		if i < 0 {
			out = append(out, p)
			continue
		}
		out[i].Quantity += p.Quantity
	}
	return out
}

// portionTotal sums the portions whose name is in members, or every portion
// when members is nil.
func portionTotal(ps []Portion, members []string) int {
	n := 0
	for _, p := range ps {
		if members == nil || slices.Contains(members, p.Name) {
			n += p.Quantity
		}
	}
	return n
}
