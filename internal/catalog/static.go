package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
)

// Static definitions. Item IDs are shared across languages; only display text
// differs. Option lists are matched by position when stored availability is
// merged, so both languages must keep the same order and length.

var (
	donenessZH = []string{"3分熟", "5分熟", "7分熟", "全熟"}
	donenessEN = []string{"Medium Rare", "Medium", "Medium Well", "Well Done"}

	drinksZH = []string{"無糖紅茶", "冰涼可樂"}
	drinksEN = []string{"Black Tea", "Cola"}

	saucesZH = []string{"黑胡椒醬", "蘑菇醬", "生蒜片", "巴薩米克醋", "BBQ醬", "椒鹽"}
	saucesEN = []string{"Black Pepper", "Mushroom", "Garlic Slices", "Balsamic", "BBQ", "Pepper Salt"}

	dessertsAZH = []string{"焦糖布蕾", "融岩巧克力"}
	dessertsAEN = []string{"Crème Brûlée", "Chocolate Lava"}
	dessertsBZH = []string{"波士頓派", "提拉米蘇"}
	dessertsBEN = []string{"Boston Pie", "Tiramisu"}

	pastasAZH = []string{"義大利直麵", "筆管麵"}
	pastasAEN = []string{"Spaghetti", "Penne"}
	pastasBZH = []string{"白醬", "紅醬", "青醬"}
	pastasBEN = []string{"Cream Sauce", "Tomato Sauce", "Pesto"}

	coldNoodlesZH = []string{"麻醬涼麵", "和風涼麵", "泰式涼麵"}
	coldNoodlesEN = []string{"Sesame", "Japanese Style", "Thai Style"}

	simpleMealsZH = []string{"脆皮炸雞", "香煎魚排", "厚切豬排"}
	simpleMealsEN = []string{"Crispy Chicken", "Pan-fried Fish", "Pork Chop"}
)

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func staticMenuZH() []Category {
	steak := &CustomizationRules{Doneness: true, SauceChoice: true, DrinkChoice: true, Notes: true}
	return []Category{
		{Title: "牛排套餐", Items: []Item{
			{ID: "set-1", Name: "板腱牛排3oz+炸物4oz半套餐", Weight: "7oz", Price: price(298), IsAvailable: true,
				Description: "板腱牛排搭配脆皮炸雞或香煎魚排",
				Customizations: &CustomizationRules{Doneness: true, SauceChoice: true, DrinkChoice: true, Notes: true,
					ComponentChoice: &NamedChoice{Title: "炸物選擇", Options: []string{"脆皮炸雞", "香煎魚排"}}}},
			{ID: "set-2", Name: "板腱牛排6oz+炸物4oz半套餐", Weight: "10oz", Price: price(388), IsAvailable: true,
				Description: "板腱牛排搭配脆皮炸雞或香煎魚排",
				Customizations: &CustomizationRules{Doneness: true, SauceChoice: true, DrinkChoice: true, Notes: true,
					ComponentChoice: &NamedChoice{Title: "炸物選擇", Options: []string{"脆皮炸雞", "香煎魚排"}}}},
			{ID: "set-6", Name: "板腱牛排12oz", ItemShortName: "板腱12oz", PrintShortName: "板12", Weight: "12oz",
				Price: price(488), IsAvailable: true, Description: "附兩份醬料",
				Customizations: &CustomizationRules{Doneness: true, SauceChoice: true, SaucesPerItem: 2, DrinkChoice: true, Notes: true}},
			{ID: "set-7", Name: "沙朗蓋牛排12oz", ItemShortName: "蓋12oz", PrintShortName: "蓋12", Weight: "12oz",
				Price: price(528), IsAvailable: true, Customizations: steak},
		}},
		{Title: "經典主餐", Items: []Item{
			{ID: "set-8", Name: "香煎鴨胸", PrintShortName: "鴨胸", Price: price(328), IsAvailable: true,
				Customizations: &CustomizationRules{SauceChoice: true, DrinkChoice: true, Notes: true}},
			{ID: "set-10", Name: "酥烤雞腿排", PrintShortName: "雞腿", Price: price(268), IsAvailable: true,
				Customizations: &CustomizationRules{SauceChoice: true, DrinkChoice: true, Notes: true,
					SingleChoiceAddon: &SingleChoiceAddon{Price: price(40)}}},
			{ID: "set-11", Name: "厚切豬排", PrintShortName: "豬排", Price: price(258), IsAvailable: true,
				Customizations: &CustomizationRules{SauceChoice: true, DrinkChoice: true, Notes: true,
					SingleChoiceAddon: &SingleChoiceAddon{Price: price(40)}}},
		}},
		{Title: "組合餐", Items: []Item{
			{ID: "combo-1", Name: "雙拼組合餐", PrintShortName: "雙拼組合餐", Price: price(458), IsAvailable: true,
				Description: "任選兩樣主餐",
				Customizations: &CustomizationRules{DrinkChoice: true, Notes: true,
					SideChoice: &SideChoice{Title: "主菜任選兩樣", Options: []string{"板腱牛排", "香煎鴨胸", "酥烤雞腿", "厚切豬排"}, Choices: 2}}},
			{ID: "combo-2", Name: "超值簡餐", Price: price(198), IsAvailable: true,
				Customizations: &CustomizationRules{DrinkChoice: true,
					MultiChoice: &NamedChoice{Title: "主餐選擇"}}},
		}},
		{Title: "義大利麵", Items: []Item{
			{ID: "pasta-1", Name: "自選義大利麵", ItemShortName: "義大利麵", Price: price(220), IsAvailable: true,
				Customizations: &CustomizationRules{PastaChoice: true, Notes: true}},
			{ID: "noodle-1", Name: "夏日涼麵", Price: price(120), IsAvailable: true,
				Customizations: &CustomizationRules{MultiChoice: &NamedChoice{Title: "涼麵口味"}}},
		}},
		{Title: "甜點", Items: []Item{
			{ID: "dessert-choice-set", Name: "甜點雙享", Price: price(150), IsAvailable: true,
				Customizations: &CustomizationRules{DessertChoice: true}},
		}},
	}
}

func staticMenuEN() []Category {
	steak := &CustomizationRules{Doneness: true, SauceChoice: true, DrinkChoice: true, Notes: true}
	return []Category{
		{Title: "Steak Sets", Items: []Item{
			{ID: "set-1", Name: "Top Blade 3oz + Fried 4oz Set", Weight: "7oz", Price: price(298), IsAvailable: true,
				Description: "Top blade steak with crispy chicken or pan-fried fish",
				Customizations: &CustomizationRules{Doneness: true, SauceChoice: true, DrinkChoice: true, Notes: true,
					ComponentChoice: &NamedChoice{Title: "Choose Side", Options: []string{"Crispy Chicken", "Pan-fried Fish"}}}},
			{ID: "set-2", Name: "Top Blade 6oz + Fried 4oz Set", Weight: "10oz", Price: price(388), IsAvailable: true,
				Description: "Top blade steak with crispy chicken or pan-fried fish",
				Customizations: &CustomizationRules{Doneness: true, SauceChoice: true, DrinkChoice: true, Notes: true,
					ComponentChoice: &NamedChoice{Title: "Choose Side", Options: []string{"Crispy Chicken", "Pan-fried Fish"}}}},
			{ID: "set-6", Name: "Top Blade Steak 12oz", ItemShortName: "Top Blade 12oz", PrintShortName: "板12", Weight: "12oz",
				Price: price(488), IsAvailable: true, Description: "Comes with two sauces",
				Customizations: &CustomizationRules{Doneness: true, SauceChoice: true, SaucesPerItem: 2, DrinkChoice: true, Notes: true}},
			{ID: "set-7", Name: "Sirloin Cap Steak 12oz", ItemShortName: "Sirloin Cap 12oz", PrintShortName: "蓋12", Weight: "12oz",
				Price: price(528), IsAvailable: true, Customizations: steak},
		}},
		{Title: "Classic Mains", Items: []Item{
			{ID: "set-8", Name: "Pan-seared Duck Breast", PrintShortName: "鴨胸", Price: price(328), IsAvailable: true,
				Customizations: &CustomizationRules{SauceChoice: true, DrinkChoice: true, Notes: true}},
			{ID: "set-10", Name: "Roasted Chicken Leg", PrintShortName: "雞腿", Price: price(268), IsAvailable: true,
				Customizations: &CustomizationRules{SauceChoice: true, DrinkChoice: true, Notes: true,
					SingleChoiceAddon: &SingleChoiceAddon{Price: price(40)}}},
			{ID: "set-11", Name: "Thick-cut Pork Chop", PrintShortName: "豬排", Price: price(258), IsAvailable: true,
				Customizations: &CustomizationRules{SauceChoice: true, DrinkChoice: true, Notes: true,
					SingleChoiceAddon: &SingleChoiceAddon{Price: price(40)}}},
		}},
		{Title: "Combos", Items: []Item{
			{ID: "combo-1", Name: "Double Combo", PrintShortName: "雙拼組合餐", Price: price(458), IsAvailable: true,
				Description: "Pick any two mains",
				Customizations: &CustomizationRules{DrinkChoice: true, Notes: true,
					SideChoice: &SideChoice{Title: "Pick Two Mains", Options: []string{"Top Blade Steak", "Duck Breast", "Chicken Leg", "Pork Chop"}, Choices: 2}}},
			{ID: "combo-2", Name: "Value Meal", Price: price(198), IsAvailable: true,
				Customizations: &CustomizationRules{DrinkChoice: true,
					MultiChoice: &NamedChoice{Title: "Select Main"}}},
		}},
		{Title: "Pasta & Noodles", Items: []Item{
			{ID: "pasta-1", Name: "Build Your Pasta", ItemShortName: "Pasta", Price: price(220), IsAvailable: true,
				Customizations: &CustomizationRules{PastaChoice: true, Notes: true}},
			{ID: "noodle-1", Name: "Summer Cold Noodles", Price: price(120), IsAvailable: true,
				Customizations: &CustomizationRules{MultiChoice: &NamedChoice{Title: "Noodle Flavor"}}},
		}},
		{Title: "Desserts", Items: []Item{
			{ID: "dessert-choice-set", Name: "Dessert Duo", Price: price(150), IsAvailable: true,
				Customizations: &CustomizationRules{DessertChoice: true}},
		}},
	}
}

func staticAddonsZH() []Item {
	return []Item{
		{ID: "addon-1", Name: "加點炸雞", PrintName: "炸雞", Price: price(80), IsAvailable: true, IsAddon: true},
		{ID: "addon-2", Name: "加點薯條", PrintName: "薯條", Price: price(50), IsAvailable: true, IsAddon: true},
		{ID: "addon-3", Name: "加蛋", PrintName: "蛋", Price: price(20), IsAvailable: true, IsAddon: true},
		{ID: "addon-4", Name: "加麵", PrintName: "麵", Price: price(30), IsAvailable: true, IsAddon: true},
	}
}

func staticAddonsEN() []Item {
	return []Item{
		{ID: "addon-1", Name: "Extra Fried Chicken", PrintName: "炸雞", Price: price(80), IsAvailable: true, IsAddon: true},
		{ID: "addon-2", Name: "Extra Fries", PrintName: "薯條", Price: price(50), IsAvailable: true, IsAddon: true},
		{ID: "addon-3", Name: "Add Egg", PrintName: "蛋", Price: price(20), IsAvailable: true, IsAddon: true},
		{ID: "addon-4", Name: "Extra Noodles", PrintName: "麵", Price: price(30), IsAvailable: true, IsAddon: true},
	}
}

// StaticMenu returns a fresh copy of the built-in menu for lang.
func StaticMenu(lang string) []Category {
	if lang == enum.LanguageEN {
		return staticMenuEN()
	}
	return staticMenuZH()
}

// StaticAddons returns a fresh copy of the built-in addon list for lang.
func StaticAddons(lang string) []Item {
	if lang == enum.LanguageEN {
		return staticAddonsEN()
	}
	return staticAddonsZH()
}

// staticOptionNames returns the option names of every shared list for lang.
func staticOptionNames(lang string) map[string][]string {
	if lang == enum.LanguageEN {
		return map[string][]string{
			enum.OptionsSauces:      saucesEN,
			enum.OptionsDessertsA:   dessertsAEN,
			enum.OptionsDessertsB:   dessertsBEN,
			enum.OptionsPastasA:     pastasAEN,
			enum.OptionsPastasB:     pastasBEN,
			enum.OptionsColdNoodles: coldNoodlesEN,
			enum.OptionsSimpleMeals: simpleMealsEN,
		}
	}
	return map[string][]string{
		enum.OptionsSauces:      saucesZH,
		enum.OptionsDessertsA:   dessertsAZH,
		enum.OptionsDessertsB:   dessertsBZH,
		enum.OptionsPastasA:     pastasAZH,
		enum.OptionsPastasB:     pastasBZH,
		enum.OptionsColdNoodles: coldNoodlesZH,
		enum.OptionsSimpleMeals: simpleMealsZH,
	}
}

// StaticOptions returns every shared option list for lang, all available.
func StaticOptions(lang string) OptionGroups {
	var out OptionGroups
	names := staticOptionNames(lang)
	for _, group := range OptionGroupNames {
		items := make([]OptionItem, len(names[group]))
		for i, n := range names[group] {
			items[i] = OptionItem{Name: n, IsAvailable: true}
		}
		out.setGroup(group, items)
	}
	return out
}

// DonenessLevels returns the doneness labels for lang.
func DonenessLevels(lang string) []string {
	if lang == enum.LanguageEN {
		return append([]string(nil), donenessEN...)
	}
	return append([]string(nil), donenessZH...)
}

// DrinkOptions returns the two drink choices for lang.
func DrinkOptions(lang string) []string {
	if lang == enum.LanguageEN {
		return append([]string(nil), drinksEN...)
	}
	return append([]string(nil), drinksZH...)
}

// zhNames maps every English static option name to its Chinese counterpart
// at the same position.
var zhNames = func() map[string]string {
	m := map[string]string{}
	pair := func(en, zh []string) {
		for i := range en {
			m[en[i]] = zh[i]
		}
	}
	pair(donenessEN, donenessZH)
	pair(drinksEN, drinksZH)
	en, zh := staticOptionNames(enum.LanguageEN), staticOptionNames(enum.LanguageZH)
	for _, group := range OptionGroupNames {
		pair(en[group], zh[group])
	}
	return m
}()

// KitchenName returns the Chinese name of a static option so tickets read
// the same whatever language the order was placed in. Unknown names are
// returned unchanged.
func KitchenName(name string) string {
	if zh, ok := zhNames[name]; ok {
		return zh
	}
	return name
}
