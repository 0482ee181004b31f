package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/auth"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/config"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/router"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/ws"
)

const secret = "router-secret"

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := zap.NewNop()
	mem := store.NewMemory()
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	cats := catalog.NewService(mem, logger)
	orders := service.NewOrderService(mem, hub, logger, time.UTC)
	cfg := &config.Config{JWTSecret: secret, AllowedOrigins: []string{"http://localhost:5173"}}
	return router.New(cfg, router.Deps{
		Catalog: cats,
		Orders:  orders,
		Session: kiosk.NewSession(mem, cats, orders, logger),
		Hub:     hub,
		Logger:  logger,
	})
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := serve(newRouter(t), "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestKioskRoutesArePublic(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/catalog", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/cart", "").Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	r := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/admin/orders", "").Code)

	other, err := auth.GenerateToken(secret, "KIOSK", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/admin/orders", other).Code)

	admin, err := auth.GenerateToken(secret, enum.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/admin/orders", admin).Code)
}

func TestAdminFeedRequiresToken(t *testing.T) {
	rr := serve(newRouter(t), "GET", "/ws/orders", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest("OPTIONS", "/catalog", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}
