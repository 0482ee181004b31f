// Package catalog holds the menu model and merges stored admin overrides with
// the static bilingual menu definitions.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
)

// Item is a menu item or an addon.
type Item struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	ItemShortName  string              `json:"item_short_name,omitempty"`
	PrintShortName string              `json:"print_short_name,omitempty"`
	PrintName      string              `json:"print_name,omitempty"`
	Weight         string              `json:"weight,omitempty"`
	Price          decimal.Decimal     `json:"price"`
	Description    string              `json:"description,omitempty"`
	Image          string              `json:"image,omitempty"`
	Category       string              `json:"category,omitempty"`
	IsAvailable    bool                `json:"is_available"`
	Customizations *CustomizationRules `json:"customizations,omitempty"`
	IsAddon        bool                `json:"is_addon,omitempty"`
}

// CustomizationRules lists the option groups enabled for an item. A nil
// pointer or false flag means the group is not offered.
type CustomizationRules struct {
	Doneness          bool               `json:"doneness,omitempty"`
	SauceChoice       bool               `json:"sauce_choice,omitempty"`
	SaucesPerItem     int                `json:"sauces_per_item,omitempty"`
	DrinkChoice       bool               `json:"drink_choice,omitempty"`
	Notes             bool               `json:"notes,omitempty"`
	ComponentChoice   *NamedChoice       `json:"component_choice,omitempty"`
	MultiChoice       *NamedChoice       `json:"multi_choice,omitempty"`
	SideChoice        *SideChoice        `json:"side_choice,omitempty"`
	DessertChoice     bool               `json:"dessert_choice,omitempty"`
	PastaChoice       bool               `json:"pasta_choice,omitempty"`
	SingleChoiceAddon *SingleChoiceAddon `json:"single_choice_addon,omitempty"`
}

// SaucesPerUnit returns the sauce multiplier, treating an unset value as 1.
func (r *CustomizationRules) SaucesPerUnit() int {
	if r == nil || r.SaucesPerItem <= 0 {
		return 1
	}
	return r.SaucesPerItem
}

type NamedChoice struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

type SideChoice struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
	Choices int      `json:"choices"`
}

type SingleChoiceAddon struct {
	Price decimal.Decimal `json:"price"`
}

type Category struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// OptionItem is one entry of a shared option list.
type OptionItem struct {
	Name        string `json:"name"`
	IsAvailable bool   `json:"is_available"`
}

// OptionGroups are the shared option lists referenced by dessert, pasta,
// sauce and multi-choice groups.
type OptionGroups struct {
	Sauces      []OptionItem `json:"sauces"`
	DessertsA   []OptionItem `json:"desserts_a"`
	DessertsB   []OptionItem `json:"desserts_b"`
	PastasA     []OptionItem `json:"pastas_a"`
	PastasB     []OptionItem `json:"pastas_b"`
	ColdNoodles []OptionItem `json:"cold_noodles"`
	SimpleMeals []OptionItem `json:"simple_meals"`
}

// Group returns the list stored under one of the enum.Options* keys.
func (o *OptionGroups) Group(name string) ([]OptionItem, bool) {
	switch name {
	case enum.OptionsSauces:
		return o.Sauces, true
	case enum.OptionsDessertsA:
		return o.DessertsA, true
	case enum.OptionsDessertsB:
		return o.DessertsB, true
	case enum.OptionsPastasA:
		return o.PastasA, true
	case enum.OptionsPastasB:
		return o.PastasB, true
	case enum.OptionsColdNoodles:
		return o.ColdNoodles, true
	case enum.OptionsSimpleMeals:
		return o.SimpleMeals, true
	}
	return nil, false
}

func (o *OptionGroups) setGroup(name string, items []OptionItem) {
	switch name {
	case enum.OptionsSauces:
		o.Sauces = items
	case enum.OptionsDessertsA:
		o.DessertsA = items
	case enum.OptionsDessertsB:
		o.DessertsB = items
	case enum.OptionsPastasA:
		o.PastasA = items
	case enum.OptionsPastasB:
		o.PastasB = items
	case enum.OptionsColdNoodles:
		o.ColdNoodles = items
	case enum.OptionsSimpleMeals:
		o.SimpleMeals = items
	}
}

// OptionGroupNames lists the shared option lists in display order.
var OptionGroupNames = []string{
	enum.OptionsSauces,
	enum.OptionsDessertsA,
	enum.OptionsDessertsB,
	enum.OptionsPastasA,
	enum.OptionsPastasB,
	enum.OptionsColdNoodles,
	enum.OptionsSimpleMeals,
}

// Catalog is the merged, language-specific view served to the kiosk.
type Catalog struct {
	Language     string       `json:"language"`
	Categories   []Category   `json:"categories"`
	Addons       []Item       `json:"addons"`
	Options      OptionGroups `json:"options"`
	Doneness     []string     `json:"doneness"`
	Drinks       []string     `json:"drinks"`
	IsQuietHours bool         `json:"is_quiet_hours"`
}

// FindItem looks an item up by ID and reports the title of its category.
func (c *Catalog) FindItem(id string) (Item, string, bool) {
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if it.ID == id {
				return it, cat.Title, true
			}
		}
	}
	return Item{}, "", false
}

func (c *Catalog) FindAddon(id string) (Item, bool) {
	for _, a := range c.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return Item{}, false
}

// MultiChoiceOptions resolves the option list of a multi-choice group. Titles
// naming cold noodles or a main-course pick draw from the shared lists so the
// admin availability toggles apply; any other title uses its own options.
func (c *Catalog) MultiChoiceOptions(choice *NamedChoice) []OptionItem {
	return MultiChoiceOptions(choice, c.Options)
}

func MultiChoiceOptions(choice *NamedChoice, options OptionGroups) []OptionItem {
	if choice == nil {
		return nil
	}
	switch {
	case strings.Contains(choice.Title, "涼麵") || strings.Contains(choice.Title, "Flavor"):
		return options.ColdNoodles
	case strings.Contains(choice.Title, "主餐選擇") || strings.Contains(choice.Title, "Select Main"):
		return options.SimpleMeals
	}
	out := make([]OptionItem, len(choice.Options))
	for i, name := range choice.Options {
		out[i] = OptionItem{Name: name, IsAvailable: true}
	}
	return out
}

// Names returns the option names in order.
func Names(items []OptionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}
