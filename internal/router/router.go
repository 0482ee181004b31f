package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/config"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/handler"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	mw "github.com/anonymousbeefsteak-cloud/pkshow/internal/middleware"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/ws"
)

// Deps are the services the routes are wired to. Uploader is nil when image
// storage is not configured.
type Deps struct {
	Catalog  *catalog.Service
	Orders   *service.OrderService
	Session  *kiosk.Session
	Hub      *ws.Hub
	Uploader handler.ImageUploader
	Logger   *zap.Logger
}

// New creates a Chi router with all application routes wired up.
// Kiosk routes are public; admin routes require an ADMIN bearer token.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	kioskHandler := handler.NewKioskHandler(d.Session, d.Catalog, d.Orders, d.Logger)
	kioskHandler.RegisterRoutes(r)

	authHandler := handler.NewAuthHandler(cfg.AdminPassphraseHash, cfg.AdminPassphrase, cfg.JWTSecret, d.Logger)
	authHandler.RegisterRoutes(r)

	// WebSocket routes. The admin feed checks ?token= itself; the per-order
	// feed is keyed by the order ID the customer already holds.
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeAdmin(d.Hub, cfg.JWTSecret, w, r)
	})
	r.Get("/ws/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeOrder(d.Hub, chi.URLParam(r, "id"), w, r)
	})

	// Admin routes
	adminHandler := handler.NewAdminHandler(d.Orders, d.Catalog, d.Uploader, d.Hub, d.Logger)
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole(enum.RoleAdmin))
		adminHandler.RegisterRoutes(r)
	})

	d.Logger.Info("router initialized", zap.Bool("image_uploads", d.Uploader != nil))
	return r
}
