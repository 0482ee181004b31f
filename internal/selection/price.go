package selection

import (
	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
)

// Price returns the total for quantity units of item configured as s:
// (unit price + single-choice addon price when selected) × quantity plus
// each addon's unit price × its own quantity.
func Price(item catalog.Item, quantity int, s State) decimal.Decimal {
	unit := item.Price
	if s.SingleChoiceAddon && item.Customizations != nil && item.Customizations.SingleChoiceAddon != nil {
		unit = unit.Add(item.Customizations.SingleChoiceAddon.Price)
	}
	total := unit.Mul(decimal.NewFromInt(int64(quantity)))
	for _, a := range s.Addons {
		total = total.Add(a.Price.Mul(decimal.NewFromInt(int64(a.Quantity))))
	}
	return total
}
