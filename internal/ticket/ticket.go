// Package ticket renders the plain-text kitchen ticket printed for an order.
package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/cart"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
)

// addonPrefix marks catalog addons ordered as standalone lines.
const addonPrefix = "addon-"

var orderTypeLabels = map[string]string{
	enum.OrderTypeDineIn:   "內用",
	enum.OrderTypeTakeaway: "外帶",
}

// tally counts quantities by name and remembers first-seen order.
type tally struct {
	names  []string
	counts map[string]int
}

func (t *tally) add(name string, q int) {
	if t.counts == nil {
		t.counts = map[string]int{}
	}
	if _, ok := t.counts[name]; !ok {
		t.names = append(t.names, name)
	}
	t.counts[name] += q
}

func (t *tally) format(sep string) string {
	parts := make([]string, len(t.names))
	for i, n := range t.names {
		parts[i] = fmt.Sprintf("%sx%d", n, t.counts[n])
	}
	return strings.Join(parts, sep)
}

type meal struct {
	name     string
	price    decimal.Decimal
	quantity int
	doneness tally
	choices  tally
	notes    []string
}

type priced struct {
	name     string
	price    decimal.Decimal
	quantity int
}

type ticket struct {
	meals     []*meal
	mealIndex map[string]*meal
	addons    []*priced
	addonIdx  map[string]*priced
	drinks    tally
	sauces    tally
}

func pricedKey(name string, price decimal.Decimal) string {
	return name + "-" + price.String()
}

func (t *ticket) meal(name string, price decimal.Decimal) *meal {
	key := pricedKey(name, price)
	if m, ok := t.mealIndex[key]; ok {
		return m
	}
	m := &meal{name: name, price: price}
	t.mealIndex[key] = m
	t.meals = append(t.meals, m)
	return m
}

func (t *ticket) addon(name string, price decimal.Decimal, q int) {
	key := pricedKey(name, price)
	a, ok := t.addonIdx[key]
	if !ok {
		a = &priced{name: name, price: price}
		t.addonIdx[key] = a
		t.addons = append(t.addons, a)
	}
	a.quantity += q
}

// PrintName is the short name used on tickets.
func PrintName(item catalog.Item) string {
	switch {
	case item.PrintShortName != "":
		return item.PrintShortName
	case item.ItemShortName != "":
		return item.ItemShortName
	}
	return item.Name
}

func addonName(item catalog.Item) string {
	switch {
	case item.PrintShortName != "":
		return item.PrintShortName
	case item.PrintName != "":
		return item.PrintName
	}
	return item.Name
}

// donenessLabel shortens "5分熟" to "5分"; 全熟 is kept.
func donenessLabel(name string) string {
	return strings.Replace(catalog.KitchenName(name), "分熟", "分", 1)
}

func tallyCounts(t *tally, c selection.Counts, label func(string) string) {
	for _, k := range c.SortedKeys() {
		t.add(label(k), c[k])
	}
}

func (t *ticket) addLine(l cart.Line) {
	if strings.HasPrefix(l.Item.ID, addonPrefix) {
		t.addon(addonName(l.Item), l.Item.Price, l.Quantity)
	} else {
		m := t.meal(PrintName(l.Item), l.Item.Price)
		m.quantity += l.Quantity
		tallyCounts(&m.doneness, l.Selections.Donenesses, donenessLabel)
		tallyCounts(&m.choices, l.Selections.Components, catalog.KitchenName)
		tallyCounts(&m.choices, l.Selections.SideChoices, catalog.KitchenName)
		tallyCounts(&m.choices, l.Selections.MultiChoice, catalog.KitchenName)
		for _, p := range l.Selections.Desserts {
			m.choices.add(catalog.KitchenName(p.Name), p.Quantity)
		}
		for _, p := range l.Selections.Pastas {
			m.choices.add(catalog.KitchenName(p.Name), p.Quantity)
		}
		if l.Selections.Notes != "" {
			m.notes = append(m.notes, l.Selections.Notes)
		}
	}

	for _, a := range l.Selections.Addons {
		name := a.PrintName
		if name == "" {
			name = a.Name
		}
		t.addon(name, a.Price, a.Quantity)
	}
	tallyCounts(&t.drinks, l.Selections.Drinks, catalog.KitchenName)
	for _, s := range l.Selections.Sauces {
		t.sauces.add(catalog.KitchenName(s.Name), s.Quantity)
	}
}

// Render returns the ticket for o with times shown in loc. Meals are grouped
// by print name and unit price; addons, drinks and sauces are tallied across
// the whole order.
func Render(o service.Order, loc *time.Location) string {
	t := &ticket{mealIndex: map[string]*meal{}, addonIdx: map[string]*priced{}}
	for _, l := range o.Items {
		t.addLine(l)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#%s\n", o.ID)
	fmt.Fprintf(&b, "%s\n", o.CreatedAt.In(loc).Format("2006/01/02 15:04"))

	header := orderTypeLabels[o.OrderType]
	if header == "" {
		header = o.OrderType
	}
	if o.CustomerInfo.TableNumber != "" {
		header += " 桌" + o.CustomerInfo.TableNumber
	}
	b.WriteString(header + "\n")
	if who := strings.TrimSpace(o.CustomerInfo.Name + " " + o.CustomerInfo.Phone); who != "" {
		b.WriteString(who + "\n")
	}

	if o.GuestCount > 0 {
		fmt.Fprintf(&b, "人數x %d   ", o.GuestCount)
	}
	fmt.Fprintf(&b, "總計$%s\n", o.TotalPrice.String())

	if len(t.meals) > 0 {
		b.WriteString("(餐點)\n")
		for _, m := range t.meals {
			fmt.Fprintf(&b, "%s($%s)x%d\n", m.name, m.price.String(), m.quantity)
			if s := m.doneness.format("."); s != "" {
				b.WriteString(s + "\n")
			}
			if s := m.choices.format("."); s != "" {
				b.WriteString(s + "\n")
			}
			for _, n := range m.notes {
				fmt.Fprintf(&b, "*備註: %s\n", n)
			}
		}
	}
	if len(t.addons) > 0 {
		b.WriteString("(加購)\n")
		for _, a := range t.addons {
			fmt.Fprintf(&b, "%s($%s) x%d\n", a.name, a.price.String(), a.quantity)
		}
	}
	writeTally(&b, "(飲料)", &t.drinks)
	writeTally(&b, "(沾醬)", &t.sauces)
	return b.String()
}

func writeTally(b *strings.Builder, title string, t *tally) {
	if len(t.names) == 0 {
		return
	}
	b.WriteString(title + "\n")
	for _, n := range t.names {
		fmt.Fprintf(b, "%s x%d\n", n, t.counts[n])
	}
}
