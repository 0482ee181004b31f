package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/ticket"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/ws"
)

const maxImageSize = 5 << 20

// AdminOrders defines the order, report and backup operations of the admin
// panel. Satisfied by *service.OrderService.
type AdminOrders interface {
	ListOrders(ctx context.Context, filter, search string) ([]service.Order, error)
	GetOrder(ctx context.Context, id string) (*service.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*service.Order, error)
	ClearOrders(ctx context.Context) error
	WriteOrdersCSV(w io.Writer, orders []service.Order) error

	SalesStatistics(ctx context.Context) (*service.SalesStats, error)
	DailySales(ctx context.Context, date string) (*service.DailySales, error)
	MonthlySales(ctx context.Context, month string) (*service.MonthlySales, error)
	Dashboard(ctx context.Context) (*service.DashboardSummary, error)

	Backup(ctx context.Context) (*service.Backup, error)
	Restore(ctx context.Context, b service.Backup) ([]string, error)

	Location() *time.Location
}

// MenuManager defines the menu edits of the admin panel.
// Satisfied by *catalog.Service.
type MenuManager interface {
	MenuConfig(ctx context.Context) (*catalog.MenuConfig, error)
	SaveMenuConfig(ctx context.Context, cfg catalog.MenuConfig) error
	SetItemAvailability(ctx context.Context, itemID string, available bool) error
	SetOptionAvailability(ctx context.Context, group, name string, available bool) error
	SetItemImage(ctx context.Context, itemID, url string) error
	SetQuietHours(ctx context.Context, quiet bool) error
	Settings(ctx context.Context) (catalog.Settings, error)
}

// ImageUploader stores a menu image and returns its public URL.
// Satisfied by *storage.R2Client.
type ImageUploader interface {
	UploadImage(ctx context.Context, itemID string, body io.Reader, contentType string) (string, error)
}

// AdminHandler serves the admin panel. It is mounted behind the admin
// authentication middleware.
type AdminHandler struct {
	orders   AdminOrders
	menu     MenuManager
	uploader ImageUploader
	notifier service.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewAdminHandler creates a new AdminHandler. uploader may be nil, in which
// case image uploads answer 503.
func NewAdminHandler(orders AdminOrders, menu MenuManager, uploader ImageUploader, notifier service.Notifier, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		orders:   orders,
		menu:     menu,
		uploader: uploader,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterRoutes registers admin endpoints on the given Chi router.
// Expected to be mounted at /admin.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/export", h.ExportOrders)
	r.Delete("/orders", h.ClearOrders)
	r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
	r.Get("/orders/{id}/ticket", h.Ticket)

	r.Get("/menu", h.GetMenu)
	r.Put("/menu", h.SaveMenu)
	r.Patch("/menu/items/{id}/availability", h.SetItemAvailability)
	r.Patch("/menu/options/{group}/availability", h.SetOptionAvailability)
	r.Post("/menu/items/{id}/image", h.UploadImage)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings/quiet-hours", h.SetQuietHours)

	r.Get("/reports/stats", h.SalesStatistics)
	r.Get("/reports/daily", h.DailySales)
	r.Get("/reports/monthly", h.MonthlySales)
	r.Get("/reports/dashboard", h.Dashboard)

	r.Get("/backup", h.Backup)
	r.Post("/restore", h.Restore)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

type optionAvailabilityRequest struct {
	Name      string `json:"name"`
	Available *bool  `json:"available"`
}

type quietHoursRequest struct {
	Quiet *bool `json:"quiet"`
}

type imageResponse struct {
	URL string `json:"url"`
}

type restoreResponse struct {
	Restored []string `json:"restored"`
}

func (h *AdminHandler) today() time.Time {
	return h.now().In(h.orders.Location())
}

func (h *AdminHandler) menuChanged() {
	if err := h.notifier.Publish(ws.EventMenuUpdated, struct{}{}, ws.RoomOrders); err != nil {
		h.logger.Warn("publish menu update", zap.Error(err))
	}
}

// --- Orders ---

// ListOrders filters by ?filter=all|pending|active|completed and ?search=.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.orders.ListOrders(r.Context(), q.Get("filter"), q.Get("search"))
	if err != nil {
		writeError(w, h.logger, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// ExportOrders downloads the filtered order list as CSV.
func (h *AdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.orders.ListOrders(r.Context(), q.Get("filter"), q.Get("search"))
	if err != nil {
		writeError(w, h.logger, "export orders", err)
		return
	}

	filename := fmt.Sprintf("orders_%s.csv", h.today().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if err := h.orders.WriteOrdersCSV(w, orders); err != nil {
		h.logger.Error("write orders csv", zap.Error(err))
	}
}

// ClearOrders deletes every order and the recent list. The menu is kept.
func (h *AdminHandler) ClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.ClearOrders(r.Context()); err != nil {
		writeError(w, h.logger, "clear orders", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	order, err := h.orders.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, h.logger, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Ticket renders the kitchen ticket of an order as plain text.
func (h *AdminHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, "get order for ticket", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, ticket.Render(*order, h.orders.Location()))
}

// --- Menu ---

func (h *AdminHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.menu.MenuConfig(r.Context())
	if err != nil {
		writeError(w, h.logger, "get menu config", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *AdminHandler) SaveMenu(w http.ResponseWriter, r *http.Request) {
	var cfg catalog.MenuConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(cfg.Menu) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu is required"})
		return
	}
	if err := h.menu.SaveMenuConfig(r.Context(), cfg); err != nil {
		writeError(w, h.logger, "save menu config", err)
		return
	}
	h.menuChanged()
	writeJSON(w, http.StatusOK, cfg)
}

func (h *AdminHandler) SetItemAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil || req.Available == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "available is required"})
		return
	}
	if err := h.menu.SetItemAvailability(r.Context(), chi.URLParam(r, "id"), *req.Available); err != nil {
		writeError(w, h.logger, "set item availability", err)
		return
	}
	h.menuChanged()
	w.WriteHeader(http.StatusNoContent)
}

// SetOptionAvailability toggles one entry of a shared option list, named in
// either language.
func (h *AdminHandler) SetOptionAvailability(w http.ResponseWriter, r *http.Request) {
	var req optionAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" || req.Available == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and available are required"})
		return
	}
	err := h.menu.SetOptionAvailability(r.Context(), chi.URLParam(r, "group"), req.Name, *req.Available)
	if err != nil {
		writeError(w, h.logger, "set option availability", err)
		return
	}
	h.menuChanged()
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores the multipart "image" field and records its URL on the item.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "image storage is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image must be a multipart upload under 5MB"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image is required"})
		return
	}
	defer file.Close()

	itemID := chi.URLParam(r, "id")
	url, err := h.uploader.UploadImage(r.Context(), itemID, file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, h.logger, "upload image", err)
		return
	}
	if err := h.menu.SetItemImage(r.Context(), itemID, url); err != nil {
		writeError(w, h.logger, "set item image", err)
		return
	}
	h.menuChanged()
	writeJSON(w, http.StatusOK, imageResponse{URL: url})
}

// --- Settings ---

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.menu.Settings(r.Context())
	if err != nil {
		writeError(w, h.logger, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) SetQuietHours(w http.ResponseWriter, r *http.Request) {
	var req quietHoursRequest
	if err := decodeJSON(r, &req); err != nil || req.Quiet == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quiet is required"})
		return
	}
	if err := h.menu.SetQuietHours(r.Context(), *req.Quiet); err != nil {
		writeError(w, h.logger, "set quiet hours", err)
		return
	}
	h.menuChanged()
	writeJSON(w, http.StatusOK, catalog.Settings{IsQuietHours: *req.Quiet})
}

// --- Reports ---

func (h *AdminHandler) SalesStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.SalesStatistics(r.Context())
	if err != nil {
		writeError(w, h.logger, "sales statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// DailySales reports ?date=YYYY-MM-DD, defaulting to today.
func (h *AdminHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.today().Format(time.DateOnly)
	}
	report, err := h.orders.DailySales(r.Context(), date)
	if err != nil {
		writeError(w, h.logger, "daily sales", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// MonthlySales reports ?month=YYYY-MM, defaulting to the current month.
func (h *AdminHandler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.today().Format("2006-01")
	}
	report, err := h.orders.MonthlySales(r.Context(), month)
	if err != nil {
		writeError(w, h.logger, "monthly sales", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orders.Dashboard(r.Context())
	if err != nil {
		writeError(w, h.logger, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Backup ---

func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	b, err := h.orders.Backup(r.Context())
	if err != nil {
		writeError(w, h.logger, "backup", err)
		return
	}
	filename := fmt.Sprintf("steakhouse_backup_%s.json", h.today().Format("20060102"))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	writeJSON(w, http.StatusOK, b)
}

// Restore overwrites the sections present in the uploaded backup. Nothing is
// written when any section fails to decode.
func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var b service.Backup
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid backup document"})
		return
	}
	restored, err := h.orders.Restore(r.Context(), b)
	if err != nil {
		writeError(w, h.logger, "restore", err)
		return
	}
	h.menuChanged()
	writeJSON(w, http.StatusOK, restoreResponse{Restored: restored})
}
