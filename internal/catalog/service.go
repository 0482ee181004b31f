package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
)

// Errors returned by the catalog service.
var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrItemNotFound    = errors.New("item not found")
	ErrUnknownGroup    = errors.New("unknown option group")
	ErrOptionNotFound  = errors.New("option not found")
)

// Settings are the kiosk-wide switches edited from the admin panel.
type Settings struct {
	IsQuietHours bool `json:"is_quiet_hours"`
}

// MenuConfig is the editable menu as persisted: the category list, the addon
// list and per-option availability.
type MenuConfig struct {
	Menu    []Category   `json:"menu"`
	Addons  []Item       `json:"addons"`
	Options OptionGroups `json:"options"`
}

// Service reads and edits the catalog through the key-value store.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a new catalog Service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// GetCatalog returns the merged catalog for lang. Stored edits (price,
// availability, image, added or removed items) win over the static menu;
// display text, customizations and print names always come from the static
// definitions of the requested language when the item is known there.
func (s *Service) GetCatalog(ctx context.Context, lang string) (*Catalog, error) {
	if !enum.IsValidLanguage(lang) {
		return nil, ErrUnknownLanguage
	}

	storedMenu, err := store.LoadOr[[]Category](ctx, s.store, store.KeyMenu, nil)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	storedAddons, err := store.LoadOr[[]Item](ctx, s.store, store.KeyAddons, nil)
	if err != nil {
		return nil, fmt.Errorf("load addons: %w", err)
	}
	storedOptions, err := store.LoadOr(ctx, s.store, store.KeyOptions, OptionGroups{})
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	return &Catalog{
		Language:     lang,
		Categories:   mergeMenu(storedMenu, lang),
		Addons:       mergeAddons(storedAddons, lang),
		Options:      mergeOptions(storedOptions, lang),
		Doneness:     DonenessLevels(lang),
		Drinks:       DrinkOptions(lang),
		IsQuietHours: settings.IsQuietHours,
	}, nil
}

func mergeMenu(stored []Category, lang string) []Category {
	static := StaticMenu(lang)
	base := stored
	if len(base) == 0 {
		base = static
	}

	staticItems := make(map[string]Item)
	for _, cat := range static {
		for _, it := range cat.Items {
			staticItems[it.ID] = it
		}
	}
	// Category titles are matched through their first item.
	enTitles := make(map[string]string)
	if lang == enum.LanguageEN {
		for _, cat := range staticMenuEN() {
			if len(cat.Items) > 0 {
				enTitles[cat.Items[0].ID] = cat.Title
			}
		}
	}

	out := make([]Category, 0, len(base))
	for _, cat := range base {
		merged := Category{Title: cat.Title, Items: make([]Item, 0, len(cat.Items))}
		if len(cat.Items) > 0 {
			if t, ok := enTitles[cat.Items[0].ID]; ok {
				merged.Title = t
			}
		}
		for _, it := range cat.Items {
			if st, ok := staticItems[it.ID]; ok {
				it.Weight = st.Weight
				it.Customizations = st.Customizations
				it.ItemShortName = st.ItemShortName
				it.PrintShortName = st.PrintShortName
				if lang == enum.LanguageEN {
					it.Name = st.Name
					it.Description = st.Description
				}
				if it.Image == "" {
					it.Image = st.Image
				}
			}
			it.Category = merged.Title
			merged.Items = append(merged.Items, it)
		}
		out = append(out, merged)
	}
	return out
}

func mergeAddons(stored []Item, lang string) []Item {
	static := StaticAddons(lang)
	base := stored
	if len(base) == 0 {
		base = static
	}
	byID := make(map[string]Item, len(static))
	for _, a := range static {
		byID[a.ID] = a
	}

	out := make([]Item, 0, len(base))
	for _, a := range base {
		if st, ok := byID[a.ID]; ok {
			if lang == enum.LanguageEN {
				a.Name = st.Name
			}
			a.PrintName = st.PrintName
		}
		a.IsAddon = true
		out = append(out, a)
	}
	return out
}

// mergeOptions takes names from the static lists of lang and availability
// from the stored lists by position, so a toggle made in one language applies
// to both.
func mergeOptions(stored OptionGroups, lang string) OptionGroups {
	var out OptionGroups
	names := staticOptionNames(lang)
	for _, group := range OptionGroupNames {
		storedGroup, _ := stored.Group(group)
		items := make([]OptionItem, len(names[group]))
		for i, n := range names[group] {
			available := true
			if i < len(storedGroup) {
				available = storedGroup[i].IsAvailable
			}
			items[i] = OptionItem{Name: n, IsAvailable: available}
		}
		out.setGroup(group, items)
	}
	return out
}

// MenuConfig returns the editable menu: the stored lists, or the static
// Chinese definitions for lists never saved.
func (s *Service) MenuConfig(ctx context.Context) (*MenuConfig, error) {
	menu, err := store.LoadOr[[]Category](ctx, s.store, store.KeyMenu, nil)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	if len(menu) == 0 {
		menu = StaticMenu(enum.LanguageZH)
	}
	addons, err := store.LoadOr[[]Item](ctx, s.store, store.KeyAddons, nil)
	if err != nil {
		return nil, fmt.Errorf("load addons: %w", err)
	}
	if len(addons) == 0 {
		addons = StaticAddons(enum.LanguageZH)
	}
	options, err := store.LoadOr(ctx, s.store, store.KeyOptions, OptionGroups{})
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	return &MenuConfig{Menu: menu, Addons: addons, Options: mergeOptions(options, enum.LanguageZH)}, nil
}

// SaveMenuConfig overwrites the stored menu, addons and option availability.
func (s *Service) SaveMenuConfig(ctx context.Context, cfg MenuConfig) error {
	if err := store.PutJSON(ctx, s.store, store.KeyMenu, cfg.Menu); err != nil {
		return fmt.Errorf("save menu: %w", err)
	}
	if err := store.PutJSON(ctx, s.store, store.KeyAddons, cfg.Addons); err != nil {
		return fmt.Errorf("save addons: %w", err)
	}
	if err := store.PutJSON(ctx, s.store, store.KeyOptions, cfg.Options); err != nil {
		return fmt.Errorf("save options: %w", err)
	}
	s.logger.Info("menu config saved",
		zap.Int("categories", len(cfg.Menu)),
		zap.Int("addons", len(cfg.Addons)))
	return nil
}

// SetItemAvailability toggles a menu item or addon on or off.
func (s *Service) SetItemAvailability(ctx context.Context, itemID string, available bool) error {
	return s.updateItem(ctx, itemID, func(it *Item) { it.IsAvailable = available })
}

// SetItemImage records the image URL of a menu item or addon.
func (s *Service) SetItemImage(ctx context.Context, itemID, url string) error {
	return s.updateItem(ctx, itemID, func(it *Item) { it.Image = url })
}

func (s *Service) updateItem(ctx context.Context, itemID string, apply func(*Item)) error {
	cfg, err := s.MenuConfig(ctx)
	if err != nil {
		return err
	}

	found := false
	for ci := range cfg.Menu {
		for ii := range cfg.Menu[ci].Items {
			if cfg.Menu[ci].Items[ii].ID == itemID {
				apply(&cfg.Menu[ci].Items[ii])
				found = true
			}
		}
	}
	for ai := range cfg.Addons {
		if cfg.Addons[ai].ID == itemID {
			apply(&cfg.Addons[ai])
			found = true
		}
	}
	if !found {
		return ErrItemNotFound
	}
	return s.SaveMenuConfig(ctx, *cfg)
}

// SetOptionAvailability toggles one entry of a shared option list. The entry
// may be named in either language.
func (s *Service) SetOptionAvailability(ctx context.Context, group, name string, available bool) error {
	zh := staticOptionNames(enum.LanguageZH)
	names, ok := zh[group]
	if !ok {
		return ErrUnknownGroup
	}
	en := staticOptionNames(enum.LanguageEN)[group]

	index := -1
	for i := range names {
		if names[i] == name || (i < len(en) && en[i] == name) {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrOptionNotFound
	}

	stored, err := store.LoadOr(ctx, s.store, store.KeyOptions, OptionGroups{})
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}
	merged := mergeOptions(stored, enum.LanguageZH)
	items, _ := merged.Group(group)
	items[index].IsAvailable = available

	if err := store.PutJSON(ctx, s.store, store.KeyOptions, merged); err != nil {
		return fmt.Errorf("save options: %w", err)
	}
	s.logger.Info("option availability changed",
		zap.String("group", group),
		zap.String("option", names[index]),
		zap.Bool("available", available))
	return nil
}

// Settings returns the stored settings, defaulting to quiet hours off.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	settings, err := store.LoadOr(ctx, s.store, store.KeySettings, Settings{})
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// SetQuietHours turns order acceptance off (true) or back on (false).
func (s *Service) SetQuietHours(ctx context.Context, quiet bool) error {
	if err := store.PutJSON(ctx, s.store, store.KeySettings, Settings{IsQuietHours: quiet}); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info("quiet hours changed", zap.Bool("quiet", quiet))
	return nil
}

// Seed writes the static menu, addons, options, an empty order list and the
// default settings. Existing keys are kept unless force is set. It returns the
// keys written.
func (s *Service) Seed(ctx context.Context, force bool) ([]string, error) {
	values := []struct {
		key   string
		value any
	}{
		{store.KeyMenu, StaticMenu(enum.LanguageZH)},
		{store.KeyAddons, StaticAddons(enum.LanguageZH)},
		{store.KeyOptions, StaticOptions(enum.LanguageZH)},
		{store.KeyOrders, []any{}},
		{store.KeySettings, Settings{}},
	}

	var written []string
	for _, v := range values {
		if !force {
			exists, err := store.Exists(ctx, s.store, v.key)
			if err != nil {
				return written, fmt.Errorf("check %s: %w", v.key, err)
			}
			if exists {
				continue
			}
		}
		if err := store.PutJSON(ctx, s.store, v.key, v.value); err != nil {
			return written, fmt.Errorf("seed %s: %w", v.key, err)
		}
		written = append(written, v.key)
	}
	return written, nil
}
