package selection

import (
	"errors"
	"fmt"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
)

// Errors returned by selection.
var (
	ErrSelectionMismatch = errors.New("selection does not match the required count")
	ErrUnknownGroup      = errors.New("unknown option group")
	ErrGroupDisabled     = errors.New("option group not offered for this item")
	ErrUnknownAddon      = errors.New("unknown addon")
)

// MismatchError names the group whose selected total differs from the
// required total. It matches ErrSelectionMismatch with errors.Is.
type MismatchError struct {
	Group    string `json:"group"`
	Title    string `json:"title,omitempty"`
	Required int    `json:"required"`
	Selected int    `json:"selected"`
}

func (e *MismatchError) Error() string {
	label := e.Group
	if e.Title != "" {
		label = e.Title
	}
	return fmt.Sprintf("%s requires %d, selected %d", label, e.Required, e.Selected)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrSelectionMismatch
}

// Capacity returns the required total of group for quantity units, or 0 when
// the group is not enabled by rules.
func Capacity(rules *catalog.CustomizationRules, group string, quantity int) int {
	if rules == nil {
		return 0
	}
	switch group {
	case enum.GroupDoneness:
		if rules.Doneness {
			return quantity
		}
	case enum.GroupSauce:
		if rules.SauceChoice {
			return quantity * rules.SaucesPerUnit()
		}
	case enum.GroupDrink:
		if rules.DrinkChoice {
			return quantity
		}
	case enum.GroupDessertA, enum.GroupDessertB:
		if rules.DessertChoice {
			return quantity
		}
	case enum.GroupPastaA, enum.GroupPastaB:
		if rules.PastaChoice {
			return quantity
		}
	case enum.GroupComponent:
		if rules.ComponentChoice != nil {
			return quantity
		}
	case enum.GroupSide:
		if rules.SideChoice != nil {
			return quantity * rules.SideChoice.Choices
		}
	case enum.GroupMulti:
		if rules.MultiChoice != nil {
			return quantity
		}
	}
	return 0
}

// Enabled reports whether rules offer group.
func Enabled(rules *catalog.CustomizationRules, group string) bool {
	if rules == nil {
		return false
	}
	switch group {
	case enum.GroupDoneness:
		return rules.Doneness
	case enum.GroupSauce:
		return rules.SauceChoice
	case enum.GroupDrink:
		return rules.DrinkChoice
	case enum.GroupDessertA, enum.GroupDessertB:
		return rules.DessertChoice
	case enum.GroupPastaA, enum.GroupPastaB:
		return rules.PastaChoice
	case enum.GroupComponent:
		return rules.ComponentChoice != nil
	case enum.GroupSide:
		return rules.SideChoice != nil
	case enum.GroupMulti:
		return rules.MultiChoice != nil
	}
	return false
}

// Selected returns the current total of group in s. Dessert and pasta
// sub-groups count only names listed in the matching shared option list.
func Selected(s State, group string, options catalog.OptionGroups) int {
	switch group {
	case enum.GroupDoneness:
		return s.Donenesses.Total()
	case enum.GroupSauce:
		return portionTotal(s.Sauces, nil)
	case enum.GroupDrink:
		return s.Drinks.Total()
	case enum.GroupDessertA:
		return portionTotal(s.Desserts, catalog.Names(options.DessertsA))
	case enum.GroupDessertB:
		return portionTotal(s.Desserts, catalog.Names(options.DessertsB))
	case enum.GroupPastaA:
		return portionTotal(s.Pastas, catalog.Names(options.PastasA))
	case enum.GroupPastaB:
		return portionTotal(s.Pastas, catalog.Names(options.PastasB))
	case enum.GroupComponent:
		return s.Components.Total()
	case enum.GroupSide:
		return s.SideChoices.Total()
	case enum.GroupMulti:
		return s.MultiChoice.Total()
	}
	return 0
}

// ValidationOrder is the order groups are checked on confirm.
var ValidationOrder = []string{
	enum.GroupDoneness,
	enum.GroupSauce,
	enum.GroupDrink,
	enum.GroupDessertA,
	enum.GroupDessertB,
	enum.GroupPastaA,
	enum.GroupPastaB,
	enum.GroupComponent,
	enum.GroupSide,
	enum.GroupMulti,
}

// Validate checks that every enabled group of rules totals exactly its
// required count for quantity. The first mismatching group is reported as a
// *MismatchError. Notes, addons and the single-choice addon are unconstrained.
func Validate(rules *catalog.CustomizationRules, quantity int, s State, options catalog.OptionGroups) error {
	for _, group := range ValidationOrder {
		if !Enabled(rules, group) {
			continue
		}
		required := Capacity(rules, group, quantity)
		selected := Selected(s, group, options)
		if selected != required {
			return &MismatchError{
				Group:    group,
				Title:    groupTitle(rules, group),
				Required: required,
				Selected: selected,
			}
		}
	}
	return nil
}

func groupTitle(rules *catalog.CustomizationRules, group string) string {
	switch group {
	case enum.GroupComponent:
		return rules.ComponentChoice.Title
	case enum.GroupSide:
		return rules.SideChoice.Title
	case enum.GroupMulti:
		return rules.MultiChoice.Title
	}
	return ""
}
