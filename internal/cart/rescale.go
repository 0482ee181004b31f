package cart

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
)

// Rescale returns line at newQuantity with every enabled option group scaled
// in proportion. Count groups are apportioned by largest remainder so their
// totals land exactly on the new targets; array groups scale entry by entry
// and keep at least one of each. The total price scales linearly and is
// rounded to cents, so repeated rescales can drift by a cent. The key is
// left as it was assigned on add or edit.
func Rescale(line Line, newQuantity int) Line {
	oldQuantity := line.Quantity
	if newQuantity == oldQuantity || oldQuantity <= 0 || newQuantity <= 0 {
		return line.clone()
	}
	scale := float64(newQuantity) / float64(oldQuantity)
	rules := line.Item.Customizations
	s := line.Selections.Clone()

	if rules != nil {
		if rules.Doneness {
			s.Donenesses = apportion(s.Donenesses, scale, newQuantity)
		}
		if rules.DrinkChoice {
			s.Drinks = apportion(s.Drinks, scale, newQuantity)
		}
		if rules.ComponentChoice != nil {
			s.Components = apportion(s.Components, scale, newQuantity)
		}
		if rules.MultiChoice != nil {
			s.MultiChoice = apportion(s.MultiChoice, scale, newQuantity)
		}
		if rules.SideChoice != nil {
			s.SideChoices = apportion(s.SideChoices, scale, selection.Capacity(rules, enum.GroupSide, newQuantity))
		}
		if rules.SauceChoice {
			s.Sauces = scalePortions(s.Sauces, scale)
		}
		if rules.DessertChoice {
			s.Desserts = scalePortions(s.Desserts, scale)
		}
		if rules.PastaChoice {
			s.Pastas = scalePortions(s.Pastas, scale)
		}
	}
	s.Addons = scaleAddons(s.Addons, scale)

	line.Quantity = newQuantity
	line.Selections = s
	line.TotalPrice = line.TotalPrice.
		Mul(decimal.NewFromInt(int64(newQuantity))).
		Div(decimal.NewFromInt(int64(oldQuantity))).
		Round(2)
	return line
}

// apportion scales every count by scale and distributes rounding error so the
// result sums to target. Remainders are recomputed after every step; ties go
// to the first option in sorted order. When the sum must shrink and no option
// is left above zero the result stays short of target. An empty map is
// returned unchanged.
func apportion(c selection.Counts, scale float64, target int) selection.Counts {
	if len(c) == 0 {
		return c
	}
	keys := c.SortedKeys()
	raw := make([]float64, len(keys))
	rounded := make([]int, len(keys))
	sum := 0
	for i, k := range keys {
		raw[i] = float64(c[k]) * scale
		rounded[i] = int(math.Round(raw[i]))
		sum += rounded[i]
	}

	for diff := target - sum; diff != 0; {
		best := -1
		if diff > 0 {
			for i := range keys {
				if best < 0 || raw[i]-float64(rounded[i]) > raw[best]-float64(rounded[best]) {
					best = i
				}
			}
			rounded[best]++
			diff--
			continue
		}
		for i := range keys {
			if rounded[i] <= 0 {
				continue
			}
			if best < 0 || raw[i]-float64(rounded[i]) < raw[best]-float64(rounded[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		rounded[best]--
		diff++
	}

	out := make(selection.Counts, len(keys))
	for i, k := range keys {
		if rounded[i] > 0 {
			out[k] = rounded[i]
		}
	}
	return out
}

func scaleQuantity(q int, scale float64) int {
	return max(1, int(math.Round(float64(q)*scale)))
}

func scalePortions(ps []selection.Portion, scale float64) []selection.Portion {
	if len(ps) == 0 {
		return ps
	}
	out := make([]selection.Portion, 0, len(ps))
	for _, p := range ps {
		if q := scaleQuantity(p.Quantity, scale); q > 0 {
			out = append(out, selection.Portion{Name: p.Name, Quantity: q})
		}
	}
	return out
}

func scaleAddons(as []selection.AddonSelection, scale float64) []selection.AddonSelection {
	if len(as) == 0 {
		return as
	}
	out := make([]selection.AddonSelection, 0, len(as))
	for _, a := range as {
		if q := scaleQuantity(a.Quantity, scale); q > 0 {
			a.Quantity = q
			out = append(out, a)
		}
	}
	return out
}
