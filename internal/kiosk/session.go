// Package kiosk holds the state of the one ordering session running on the
// kiosk: display language, guest count, the cart and the item being
// configured.
package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/cart"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
)

// Errors returned by the session.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrQuietHours      = errors.New("ordering is paused")
	ErrSubmitInFlight  = errors.New("an order is already being submitted")
	ErrNoDraft         = errors.New("no item is being configured")
	ErrItemUnavailable = errors.New("item is not available")
	ErrInvalidGuests   = errors.New("guest count must be at least 1")
)

// Catalogs provides the merged menu. Satisfied by *catalog.Service.
type Catalogs interface {
	GetCatalog(ctx context.Context, lang string) (*catalog.Catalog, error)
}

// OrderSubmitter persists orders. Satisfied by *service.OrderService.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req service.SubmitOrderRequest) (*service.Order, error)
}

// Snapshot is a point-in-time copy of the session for display.
type Snapshot struct {
	Language   string          `json:"language"`
	GuestCount int             `json:"guest_count"`
	Lines      []cart.Line     `json:"lines"`
	ItemCount  int             `json:"item_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Submitting bool            `json:"submitting"`
	HasDraft   bool            `json:"has_draft"`
}

// DraftView is the open draft with its running price and per-group progress.
type DraftView struct {
	*selection.Draft
	Price    decimal.Decimal           `json:"price"`
	Progress []selection.GroupProgress `json:"progress"`
}

// Session serializes every mutation behind mu. Submit releases mu while the
// order is stored; the submitting flag keeps a second submit and any cart
// edit out until it returns.
type Session struct {
	store    store.Store
	catalogs Catalogs
	orders   OrderSubmitter
	logger   *zap.Logger

	mu         sync.Mutex
	cart       *cart.Cart
	draft      *selection.Draft
	language   string
	guestCount int
	submitting bool
}

func NewSession(s store.Store, catalogs Catalogs, orders OrderSubmitter, logger *zap.Logger) *Session {
	return &Session{
		store:      s,
		catalogs:   catalogs,
		orders:     orders,
		logger:     logger,
		cart:       cart.New(),
		language:   enum.LanguageZH,
		guestCount: 1,
	}
}

// Load restores the persisted cart. A cart that cannot be decoded is
// discarded and its key deleted.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, store.KeyCart)
	if errors.Is(err, store.ErrNotFound) {
		s.cart = cart.New()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Warn("discarding unreadable cart", zap.Error(err))
		s.cart = cart.New()
		if err := s.store.Delete(ctx, store.KeyCart); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	}
	s.cart = cart.FromLines(lines)
	return nil
}

// persist must be called with mu held.
func (s *Session) persist(ctx context.Context) error {
	if s.cart.Len() == 0 {
		if err := s.store.Delete(ctx, store.KeyCart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		return nil
	}
	if err := store.PutJSON(ctx, s.store, store.KeyCart, s.cart.Lines()); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// commit persists the cart. When the write fails the cart is put back to
// prev so memory never runs ahead of the store. It must be called with mu held.
func (s *Session) commit(ctx context.Context, prev []cart.Line) error {
	if err := s.persist(ctx); err != nil {
		s.cart = cart.FromLines(prev)
		return err
	}
	return nil
}

// snapshot must be called with mu held.
func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Language:   s.language,
		GuestCount: s.guestCount,
		Lines:      s.cart.Lines(),
		ItemCount:  s.cart.ItemCount(),
		TotalPrice: s.cart.TotalPrice(),
		Submitting: s.submitting,
		HasDraft:   s.draft != nil,
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage switches the display language. Cart lines carry display text
// of the old language, so a change empties the cart and drops the draft.
func (s *Session) SetLanguage(ctx context.Context, lang string) (Snapshot, error) {
	if !enum.IsValidLanguage(lang) {
		return Snapshot{}, catalog.ErrUnknownLanguage
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return s.snapshot(), ErrSubmitInFlight
	}
	if lang != s.language {
		s.language = lang
		s.draft = nil
		s.cart.Clear()
		if err := s.persist(ctx); err != nil {
			return s.snapshot(), err
		}
	}
	return s.snapshot(), nil
}

func (s *Session) SetGuestCount(n int) (Snapshot, error) {
	if n < 1 {
		return Snapshot{}, ErrInvalidGuests
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guestCount = n
	return s.snapshot(), nil
}

// catalog must be called with mu held.
func (s *Session) catalog(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := s.catalogs.GetCatalog(ctx, s.language)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// orderable loads the catalog and looks up an item that can be ordered now.
// It must be called with mu held.
func (s *Session) orderable(ctx context.Context, itemID string) (*catalog.Catalog, catalog.Item, string, error) {
	cat, err := s.catalog(ctx)
	if err != nil {
		return nil, catalog.Item{}, "", err
	}
	if cat.IsQuietHours {
		return nil, catalog.Item{}, "", ErrQuietHours
	}
	item, category, ok := cat.FindItem(itemID)
	if !ok {
		return nil, catalog.Item{}, "", catalog.ErrItemNotFound
	}
	if !item.IsAvailable {
		return nil, catalog.Item{}, "", ErrItemUnavailable
	}
	return cat, item, category, nil
}

// ===== Draft =====

// draftView must be called with mu held and a draft open.
func (s *Session) draftView() *DraftView {
	return &DraftView{Draft: s.draft, Price: s.draft.Price(), Progress: s.draft.Progress()}
}

// OpenItem starts configuring a new line for itemID, replacing any open draft.
func (s *Session) OpenItem(ctx context.Context, itemID string) (*DraftView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, item, category, err := s.orderable(ctx, itemID)
	if err != nil {
		return nil, err
	}
	s.draft = selection.NewDraft(item, category, cat)
	return s.draftView(), nil
}

// EditLine opens a draft seeded from an existing cart line.
func (s *Session) EditLine(ctx context.Context, lineID string) (*DraftView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.cart.Line(lineID)
	if !ok {
		return nil, cart.ErrLineNotFound
	}
	cat, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	s.draft = selection.EditDraft(line.ID, line.Item, line.Category, line.Quantity, line.Selections, cat)
	return s.draftView(), nil
}

func (s *Session) Draft() (*DraftView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil, ErrNoDraft
	}
	return s.draftView(), nil
}

// withDraft runs fn on the open draft under mu.
func (s *Session) withDraft(fn func(d *selection.Draft) error) (*DraftView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil, ErrNoDraft
	}
	if err := fn(s.draft); err != nil {
		return s.draftView(), err
	}
	return s.draftView(), nil
}

// Adjust changes one option of the draft by delta. Increments past the
// group's capacity are ignored; the returned bool reports whether anything changed.
func (s *Session) Adjust(group, option string, delta int) (*DraftView, bool, error) {
	var changed bool
	view, err := s.withDraft(func(d *selection.Draft) error {
		var err error
		changed, err = d.Adjust(group, option, delta)
		return err
	})
	return view, changed, err
}

func (s *Session) SetDraftQuantity(q int) (*DraftView, error) {
	return s.withDraft(func(d *selection.Draft) error {
		d.SetQuantity(q)
		return nil
	})
}

func (s *Session) SetNotes(notes string) (*DraftView, error) {
	return s.withDraft(func(d *selection.Draft) error {
		d.SetNotes(notes)
		return nil
	})
}

func (s *Session) SetSingleChoiceAddon(on bool) (*DraftView, error) {
	return s.withDraft(func(d *selection.Draft) error {
		d.SetSingleChoiceAddon(on)
		return nil
	})
}

// Confirm validates the draft and adds it to the cart, or replaces the line
// it was opened from. On a validation or storage error the draft stays open
// and the cart is unchanged.
func (s *Session) Confirm(ctx context.Context) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		return cart.Line{}, ErrNoDraft
	}
	if s.submitting {
		return cart.Line{}, ErrSubmitInFlight
	}
	d := s.draft
	if err := d.Validate(); err != nil {
		return cart.Line{}, err
	}

	var (
		line cart.Line
		err  error
	)
	prev := s.cart.Lines()
	if d.LineID != "" {
		line, err = s.cart.Edit(d.LineID, d.Item, d.Quantity, d.State, d.Category)
	} else {
		line, err = s.cart.Add(d.Item, d.Quantity, d.State, d.Category)
	}
	if err != nil {
		return cart.Line{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return cart.Line{}, err
	}
	s.draft = nil
	return line, nil
}

func (s *Session) CloseDraft() {
	s.mu.Lock()
	s.draft = nil
	s.mu.Unlock()
}

// ===== Cart =====

// AddLine adds a configuration to the cart without going through a draft.
// sel is rebuilt against the catalog first, so addon prices and names come
// from the menu and unknown, unavailable or overfilled options are rejected.
func (s *Session) AddLine(ctx context.Context, itemID string, quantity int, sel selection.State) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return cart.Line{}, ErrSubmitInFlight
	}
	cat, item, category, err := s.orderable(ctx, itemID)
	if err != nil {
		return cart.Line{}, err
	}
	if quantity <= 0 {
		return cart.Line{}, cart.ErrInvalidQuantity
	}
	state, err := selection.Rebuild(item, category, quantity, sel, cat)
	if err != nil {
		return cart.Line{}, err
	}
	prev := s.cart.Lines()
	line, err := s.cart.Add(item, quantity, state, category)
	if err != nil {
		return cart.Line{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return cart.Line{}, err
	}
	return line, nil
}

// UpdateLine replaces the configuration of a line, rebuilding sel against
// the catalog as AddLine does. When the result matches another line, the two
// are merged into this one.
func (s *Session) UpdateLine(ctx context.Context, lineID string, quantity int, sel selection.State) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return cart.Line{}, ErrSubmitInFlight
	}
	line, ok := s.cart.Line(lineID)
	if !ok {
		return cart.Line{}, cart.ErrLineNotFound
	}
	if quantity <= 0 {
		return cart.Line{}, cart.ErrInvalidQuantity
	}
	cat, err := s.catalog(ctx)
	if err != nil {
		return cart.Line{}, err
	}
	state, err := selection.Rebuild(line.Item, line.Category, quantity, sel, cat)
	if err != nil {
		return cart.Line{}, err
	}
	prev := s.cart.Lines()
	updated, err := s.cart.Edit(lineID, line.Item, quantity, state, line.Category)
	if err != nil {
		return cart.Line{}, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return cart.Line{}, err
	}
	return updated, nil
}

// UpdateQuantity rescales a line to quantity, removing it when quantity <= 0.
func (s *Session) UpdateQuantity(ctx context.Context, lineID string, quantity int) (cart.Line, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return cart.Line{}, false, ErrSubmitInFlight
	}
	prev := s.cart.Lines()
	line, removed, err := s.cart.UpdateQuantity(lineID, quantity)
	if err != nil {
		return cart.Line{}, false, err
	}
	if err := s.commit(ctx, prev); err != nil {
		return cart.Line{}, false, err
	}
	return line, removed, nil
}

// RemoveLine reports whether a line was removed.
func (s *Session) RemoveLine(ctx context.Context, lineID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return false, ErrSubmitInFlight
	}
	prev := s.cart.Lines()
	if !s.cart.Remove(lineID) {
		return false, nil
	}
	if err := s.commit(ctx, prev); err != nil {
		return false, err
	}
	return true, nil
}

// ===== Checkout =====

// Submit places the cart as an order. The session lock is released while
// the order is stored; a concurrent Submit fails with ErrSubmitInFlight. On
// success the cart is emptied and the guest count reset; on failure the
// cart is kept and the guard is released so the customer can retry.
func (s *Session) Submit(ctx context.Context, info service.CustomerInfo, orderType string) (*service.Order, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if s.cart.Len() == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}
	cat, err := s.catalog(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if cat.IsQuietHours {
		s.mu.Unlock()
		return nil, ErrQuietHours
	}
	req := service.SubmitOrderRequest{
		Items:        s.cart.Lines(),
		TotalPrice:   s.cart.TotalPrice(),
		GuestCount:   s.guestCount,
		CustomerInfo: info,
		OrderType:    orderType,
	}
	s.submitting = true
	s.mu.Unlock()

	order, err := s.orders.SubmitOrder(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.logger.Warn("order submission failed", zap.Error(err))
		return nil, err
	}

	s.cart.Clear()
	s.draft = nil
	s.guestCount = 1
	if err := s.persist(ctx); err != nil {
		// The order is stored; a stale cart copy only matters after a restart.
		s.logger.Error("clear cart after submit", zap.String("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

// SoftReset returns the kiosk to its welcome state without changing the
// language. It fails with ErrSubmitInFlight while an order is being stored;
// that submit clears the cart itself when it succeeds.
func (s *Session) SoftReset(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return s.snapshot(), ErrSubmitInFlight
	}
	s.cart.Clear()
	s.draft = nil
	s.guestCount = 1
	return s.snapshot(), s.persist(ctx)
}
