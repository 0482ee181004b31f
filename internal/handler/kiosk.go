package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
)

// CatalogReader serves the merged menu. Satisfied by *catalog.Service.
type CatalogReader interface {
	GetCatalog(ctx context.Context, lang string) (*catalog.Catalog, error)
}

// OrderLookup defines the order reads open to the kiosk.
// Satisfied by *service.OrderService.
type OrderLookup interface {
	GetOrder(ctx context.Context, id string) (*service.Order, error)
	SearchOrders(ctx context.Context, f service.SearchFilter) ([]service.OrderSummary, error)
	RecentOrders(ctx context.Context) ([]service.Order, error)
}

// KioskHandler serves the ordering screens: catalog, session, draft, cart
// and checkout.
type KioskHandler struct {
	session *kiosk.Session
	catalog CatalogReader
	orders  OrderLookup
	logger  *zap.Logger
}

// NewKioskHandler creates a new KioskHandler.
func NewKioskHandler(session *kiosk.Session, cat CatalogReader, orders OrderLookup, logger *zap.Logger) *KioskHandler {
	return &KioskHandler{session: session, catalog: cat, orders: orders, logger: logger}
}

// RegisterRoutes registers kiosk endpoints on the given Chi router.
func (h *KioskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.Catalog)

	r.Get("/session", h.GetSession)
	r.Put("/session", h.UpdateSession)
	r.Post("/session/reset", h.ResetSession)

	r.Get("/cart", h.GetSession)
	r.Post("/cart/lines", h.AddLine)
	r.Put("/cart/lines/{id}", h.UpdateLine)
	r.Patch("/cart/lines/{id}/quantity", h.UpdateQuantity)
	r.Delete("/cart/lines/{id}", h.RemoveLine)

	r.Post("/draft", h.OpenDraft)
	r.Get("/draft", h.GetDraft)
	r.Post("/draft/adjust", h.AdjustDraft)
	r.Put("/draft/quantity", h.SetDraftQuantity)
	r.Put("/draft/notes", h.SetDraftNotes)
	r.Put("/draft/single-choice-addon", h.SetDraftSingleChoiceAddon)
	r.Post("/draft/confirm", h.ConfirmDraft)
	r.Delete("/draft", h.CloseDraft)

	r.Post("/checkout", h.Checkout)
	r.Get("/orders/recent", h.RecentOrders)
	r.Get("/orders/search", h.SearchOrders)
	r.Get("/orders/{id}", h.GetOrder)
}

// --- Request / Response types ---

type updateSessionRequest struct {
	Language   *string `json:"language"`
	GuestCount *int    `json:"guest_count"`
}

type addLineRequest struct {
	ItemID     string          `json:"item_id"`
	Quantity   int             `json:"quantity"`
	Selections selection.State `json:"selections"`
}

type updateLineRequest struct {
	Quantity   int             `json:"quantity"`
	Selections selection.State `json:"selections"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type updateQuantityResponse struct {
	Line    interface{} `json:"line,omitempty"`
	Removed bool        `json:"removed"`
}

type openDraftRequest struct {
	ItemID string `json:"item_id"`
	LineID string `json:"line_id"`
}

type adjustRequest struct {
	Group  string `json:"group"`
	Option string `json:"option"`
	Delta  int    `json:"delta"`
}

type adjustResponse struct {
	Draft   *kiosk.DraftView `json:"draft"`
	Changed bool             `json:"changed"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type singleChoiceAddonRequest struct {
	Enabled bool `json:"enabled"`
}

type checkoutRequest struct {
	CustomerInfo service.CustomerInfo `json:"customer_info"`
	OrderType    string               `json:"order_type"`
}

// --- Catalog & session ---

// Catalog returns the menu in ?lang=, or in the session language.
func (h *KioskHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = h.session.Language()
	}
	cat, err := h.catalog.GetCatalog(r.Context(), lang)
	if err != nil {
		writeError(w, h.logger, "get catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *KioskHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// UpdateSession sets the language and/or the guest count. A language change
// empties the cart.
func (h *KioskHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Language == nil && req.GuestCount == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "language or guest_count is required"})
		return
	}

	snap := h.session.Snapshot()
	var err error
	if req.GuestCount != nil {
		if snap, err = h.session.SetGuestCount(*req.GuestCount); err != nil {
			writeError(w, h.logger, "set guest count", err)
			return
		}
	}
	if req.Language != nil {
		if snap, err = h.session.SetLanguage(r.Context(), *req.Language); err != nil {
			writeError(w, h.logger, "set language", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *KioskHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.SoftReset(r.Context())
	if err != nil {
		writeError(w, h.logger, "reset session", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// --- Cart ---

func (h *KioskHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}
	line, err := h.session.AddLine(r.Context(), req.ItemID, req.Quantity, req.Selections)
	if err != nil {
		writeError(w, h.logger, "add cart line", err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *KioskHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req updateLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	line, err := h.session.UpdateLine(r.Context(), chi.URLParam(r, "id"), req.Quantity, req.Selections)
	if err != nil {
		writeError(w, h.logger, "update cart line", err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// UpdateQuantity rescales a line. A quantity of 0 removes it.
func (h *KioskHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	line, removed, err := h.session.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeError(w, h.logger, "update cart quantity", err)
		return
	}
	resp := updateQuantityResponse{Removed: removed}
	if !removed {
		resp.Line = line
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *KioskHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	removed, err := h.session.RemoveLine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, "remove cart line", err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart line not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Draft ---

// OpenDraft starts configuring item_id, or edits line_id when given.
func (h *KioskHandler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	var req openDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var (
		view *kiosk.DraftView
		err  error
	)
	switch {
	case req.LineID != "":
		view, err = h.session.EditLine(r.Context(), req.LineID)
	case req.ItemID != "":
		view, err = h.session.OpenItem(r.Context(), req.ItemID)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id or line_id is required"})
		return
	}
	if err != nil {
		writeError(w, h.logger, "open draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *KioskHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Draft()
	if err != nil {
		writeError(w, h.logger, "get draft", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AdjustDraft applies a +/- step to one option. An increment past the
// group's capacity is ignored and reported with changed=false.
func (h *KioskHandler) AdjustDraft(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Group == "" || req.Option == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group and option are required"})
		return
	}
	view, changed, err := h.session.Adjust(req.Group, req.Option, req.Delta)
	if err != nil {
		writeError(w, h.logger, "adjust draft", err)
		return
	}
	writeJSON(w, http.StatusOK, adjustResponse{Draft: view, Changed: changed})
}

func (h *KioskHandler) SetDraftQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.respondDraft(w, "set draft quantity")(h.session.SetDraftQuantity(req.Quantity))
}

func (h *KioskHandler) SetDraftNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.respondDraft(w, "set draft notes")(h.session.SetNotes(req.Notes))
}

func (h *KioskHandler) SetDraftSingleChoiceAddon(w http.ResponseWriter, r *http.Request) {
	var req singleChoiceAddonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.respondDraft(w, "set single choice addon")(h.session.SetSingleChoiceAddon(req.Enabled))
}

func (h *KioskHandler) respondDraft(w http.ResponseWriter, op string) func(*kiosk.DraftView, error) {
	return func(view *kiosk.DraftView, err error) {
		if err != nil {
			writeError(w, h.logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// ConfirmDraft validates the draft and puts it in the cart. A 422 names the
// first group that is not complete; the draft stays open.
func (h *KioskHandler) ConfirmDraft(w http.ResponseWriter, r *http.Request) {
	line, err := h.session.Confirm(r.Context())
	if err != nil {
		writeError(w, h.logger, "confirm draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *KioskHandler) CloseDraft(w http.ResponseWriter, r *http.Request) {
	h.session.CloseDraft()
	w.WriteHeader(http.StatusNoContent)
}

// --- Checkout & orders ---

func (h *KioskHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	order, err := h.session.Submit(r.Context(), req.CustomerInfo, req.OrderType)
	if err != nil {
		writeError(w, h.logger, "submit order", err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *KioskHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.RecentOrders(r.Context())
	if err != nil {
		writeError(w, h.logger, "recent orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// SearchOrders looks orders up by ?name=, ?phone= and a
// ?start_date=&end_date= range (YYYY-MM-DD).
func (h *KioskHandler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.orders.SearchOrders(r.Context(), service.SearchFilter{
		Name:      q.Get("name"),
		Phone:     q.Get("phone"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		writeError(w, h.logger, "search orders", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *KioskHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
