package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/cart"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/ws"
)

const (
	maxOrderIDRetries = 3
	recentOrdersLimit = 5
)

// Errors returned by the order service.
var (
	ErrEmptyItems       = errors.New("items are required")
	ErrInvalidOrderType = errors.New("invalid order_type")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderIDConflict  = errors.New("could not allocate a unique order id")
)

// Notifier pushes order events to live listeners. Satisfied by *ws.Hub.
type Notifier interface {
	Publish(eventType string, payload any, rooms ...string) error
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any, ...string) error { return nil }

type CustomerInfo struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	TableNumber string `json:"table_number"`
}

// Order is a submitted cart as persisted under store.KeyOrders.
type Order struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Status       string          `json:"status"`
	Items        []cart.Line     `json:"items"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	GuestCount   int             `json:"guest_count"`
	CustomerInfo CustomerInfo    `json:"customer_info"`
	OrderType    string          `json:"order_type"`
}

// SubmitOrderRequest is the input for creating an order. A zero TotalPrice
// is replaced by the sum of the line totals; GuestCount below 1 becomes 1
// and an empty OrderType becomes TAKEAWAY.
type SubmitOrderRequest struct {
	Items        []cart.Line
	TotalPrice   decimal.Decimal
	GuestCount   int
	CustomerInfo CustomerInfo
	OrderType    string
}

// OrderSummary is one row of a customer order search.
type OrderSummary struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Timestamp    time.Time       `json:"timestamp"`
}

// SearchFilter narrows SearchOrders. Name and Phone match exactly. The date
// range applies only when both ends are set and covers whole days in the
// service's location.
type SearchFilter struct {
	Name      string
	Phone     string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// OrderService handles order business logic on top of the key-value store.
// The orders list is a single value, so every read-modify-write holds mu.
type OrderService struct {
	store    store.Store
	notifier Notifier
	logger   *zap.Logger
	loc      *time.Location

	mu    sync.Mutex
	now   func() time.Time
	randN func(n int) int
}

// NewOrderService creates a new OrderService. A nil notifier disables live
// events; a nil loc means UTC.
func NewOrderService(s store.Store, n Notifier, logger *zap.Logger, loc *time.Location) *OrderService {
	if n == nil {
		n = nopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{
		store:    s,
		notifier: n,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
		randN:    rand.IntN,
	}
}

// Location is the time zone used for dates in searches and reports.
func (s *OrderService) Location() *time.Location { return s.loc }

func (s *OrderService) loadOrders(ctx context.Context) ([]Order, error) {
	orders, err := store.LoadOr[[]Order](ctx, s.store, store.KeyOrders, nil)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) saveOrders(ctx context.Context, orders []Order) error {
	if orders == nil {
		orders = []Order{}
	}
	if err := store.PutJSON(ctx, s.store, store.KeyOrders, orders); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

func (s *OrderService) newOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), s.randN(1000))
}

// SubmitOrder validates req, assigns an ID and persists the order with status
// AWAITING_CONFIRMATION. The order is also pushed to the front of the recent
// orders list, which keeps the last five IDs.
func (s *OrderService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = enum.OrderTypeTakeaway
	}
	if !enum.IsValidOrderType(orderType) {
		return nil, ErrInvalidOrderType
	}
	guests := max(req.GuestCount, 1)

	total := req.TotalPrice
	if total.IsZero() {
		for _, l := range req.Items {
			total = total.Add(l.TotalPrice)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var id string
	for attempt := 0; attempt < maxOrderIDRetries; attempt++ {
		candidate := s.newOrderID(now)
		if !slices.ContainsFunc(orders, func(o Order) bool { return o.ID == candidate }) {
			id = candidate
			break
		}
	}
	if id == "" {
		return nil, ErrOrderIDConflict
	}

	order := Order{
		ID:           id,
		CreatedAt:    now,
		Status:       enum.OrderStatusAwaitingConfirmation,
		Items:        slices.Clone(req.Items),
		TotalPrice:   total,
		GuestCount:   guests,
		CustomerInfo: req.CustomerInfo,
		OrderType:    orderType,
	}
	if err := s.saveOrders(ctx, append(orders, order)); err != nil {
		return nil, err
	}

	recent, err := store.LoadOr[[]string](ctx, s.store, store.KeyRecentOrders, nil)
	if err == nil {
		recent = append([]string{order.ID}, recent...)
		if len(recent) > recentOrdersLimit {
			recent = recent[:recentOrdersLimit]
		}
		err = store.PutJSON(ctx, s.store, store.KeyRecentOrders, recent)
	}
	if err != nil {
		// The order itself is stored; a stale recent list is not worth failing the submit.
		s.logger.Warn("update recent orders", zap.String("order_id", order.ID), zap.Error(err))
	}

	s.logger.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.TotalPrice.StringFixed(2)),
	)
	s.publish(ws.EventOrderCreated, order, ws.RoomOrders)
	return &order, nil
}

func (s *OrderService) publish(eventType string, payload any, rooms ...string) {
	if err := s.notifier.Publish(eventType, payload, rooms...); err != nil {
		s.logger.Warn("publish order event", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*Order, error) {
	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// SearchOrders returns summaries of the orders matching f, newest first.
func (s *OrderService) SearchOrders(ctx context.Context, f SearchFilter) ([]OrderSummary, error) {
	var from, to time.Time
	dated := f.StartDate != "" && f.EndDate != ""
	if dated {
		var err error
		if from, err = time.ParseInLocation(time.DateOnly, f.StartDate, s.loc); err != nil {
			return nil, fmt.Errorf("%w: start_date %q", ErrInvalidDate, f.StartDate)
		}
		if to, err = time.ParseInLocation(time.DateOnly, f.EndDate, s.loc); err != nil {
			return nil, fmt.Errorf("%w: end_date %q", ErrInvalidDate, f.EndDate)
		}
		to = to.AddDate(0, 0, 1)
	}

	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	summaries := []OrderSummary{}
	for _, o := range orders {
		if f.Name != "" && o.CustomerInfo.Name != f.Name {
			continue
		}
		if f.Phone != "" && o.CustomerInfo.Phone != f.Phone {
			continue
		}
		if dated && (o.CreatedAt.Before(from) || !o.CreatedAt.Before(to)) {
			continue
		}
		summaries = append(summaries, OrderSummary{
			ID:           o.ID,
			CustomerName: o.CustomerInfo.Name,
			TotalAmount:  o.TotalPrice,
			Timestamp:    o.CreatedAt,
		})
	}
	slices.SortStableFunc(summaries, func(a, b OrderSummary) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return summaries, nil
}

// filterStatuses maps an admin list tab to the statuses it shows.
var filterStatuses = map[string][]string{
	enum.OrderFilterPending:   {enum.OrderStatusAwaitingConfirmation, enum.OrderStatusPending},
	enum.OrderFilterActive:    {enum.OrderStatusPreparing, enum.OrderStatusReady},
	enum.OrderFilterCompleted: {enum.OrderStatusCompleted},
}

// ListOrders returns every order for the admin list, newest first. filter is
// one of all, pending, active or completed (empty means all). search matches
// case-insensitively against the order ID and customer name, and as a
// substring of the phone number.
func (s *OrderService) ListOrders(ctx context.Context, filter, search string) ([]Order, error) {
	if filter == "" {
		filter = enum.OrderFilterAll
	}
	statuses, ok := filterStatuses[filter]
	if !ok && filter != enum.OrderFilterAll {
		return nil, ErrInvalidFilter
	}

	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(search)
	out := []Order{}
	for _, o := range orders {
		if ok && !slices.Contains(statuses, o.Status) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.ID), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerInfo.Name), needle) &&
			!strings.Contains(o.CustomerInfo.Phone, search) {
			continue
		}
		out = append(out, o)
	}
	slices.SortStableFunc(out, func(a, b Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// UpdateOrderStatus sets the status of order id and notifies both the admin
// feed and the order's own room.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	if !enum.IsValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(orders, func(o Order) bool { return o.ID == id })
	if idx < 0 {
		return nil, ErrOrderNotFound
	}
	prev := orders[idx].Status
	orders[idx].Status = status
	if err := s.saveOrders(ctx, orders); err != nil {
		return nil, err
	}

	order := orders[idx]
	s.logger.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", prev),
		zap.String("to", status),
	)
	s.publish(ws.EventOrderStatusChanged, order, ws.RoomOrders, ws.OrderRoom(id))
	return &order, nil
}

// RecentOrders returns the most recently submitted orders, newest first.
// IDs whose order no longer exists are skipped.
func (s *OrderService) RecentOrders(ctx context.Context) ([]Order, error) {
	ids, err := store.LoadOr[[]string](ctx, s.store, store.KeyRecentOrders, nil)
	if err != nil {
		return nil, fmt.Errorf("load recent orders: %w", err)
	}
	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	out := []Order{}
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// ClearOrders deletes every order and the recent orders list. Menu and
// settings are kept.
func (s *OrderService) ClearOrders(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveOrders(ctx, nil); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.KeyRecentOrders); err != nil {
		return fmt.Errorf("delete recent orders: %w", err)
	}
	s.logger.Info("orders cleared")
	s.publish(ws.EventOrdersCleared, struct{}{}, ws.RoomOrders)
	return nil
}
