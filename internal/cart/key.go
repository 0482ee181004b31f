package cart

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
)

// Key derives the merge key of a configuration. Two configurations share a
// key exactly when they are interchangeable on an order.
//
// The key is a JSON array with a fixed field order. Count groups encode as
// objects (encoding/json sorts map keys), array groups as sorted
// "name×quantity" tokens and drinks as sorted [name, count] pairs. JSON string
// quoting keeps free-text notes from bleeding into neighbouring fields.
func Key(itemID string, s selection.State) string {
	fields := []any{
		itemID,
		countsField(s.Donenesses),
		countsField(s.Components),
		countsField(s.MultiChoice),
		countsField(s.SideChoices),
		s.SingleChoiceAddon,
		s.Notes,
		portionTokens(s.Sauces),
		drinkPairs(s.Drinks),
		portionTokens(s.Desserts),
		portionTokens(s.Pastas),
		addonTokens(s.Addons),
	}
	// Only strings, ints and bools are encoded, so Marshal cannot fail.
	b, _ := json.Marshal(fields)
	return string(b)
}

func countsField(c selection.Counts) map[string]int {
	out := make(map[string]int, len(c))
	for k, v := range c {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

func drinkPairs(c selection.Counts) [][2]any {
	pairs := make([][2]any, 0, len(c))
	for _, k := range c.SortedKeys() {
		if c[k] > 0 {
			pairs = append(pairs, [2]any{k, c[k]})
		}
	}
	return pairs
}

func portionTokens(ps []selection.Portion) []string {
	totals := make(map[string]int, len(ps))
	for _, p := range ps {
		totals[p.Name] += p.Quantity
	}
	return tokens(totals)
}

func addonTokens(as []selection.AddonSelection) []string {
	totals := make(map[string]int, len(as))
	for _, a := range as {
		totals[a.ID] += a.Quantity
	}
	return tokens(totals)
}

func tokens(totals map[string]int) []string {
	out := make([]string, 0, len(totals))
	for name, q := range totals {
		if q > 0 {
			out = append(out, name+"×"+strconv.Itoa(q))
		}
	}
	sort.Strings(out)
	return out
}
