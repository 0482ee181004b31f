//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/websocket"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/config"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/router"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/ws"
)

// TestIntegrationFlow runs a kiosk order from draft to kitchen ticket through
// the full router against a real PostgreSQL store.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start PostgreSQL container
	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	// Run migrations
	runMigrations(t, connStr)

	pool, err := store.ConnectPostgres(ctx, connStr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Initialize dependencies
	cfg := &config.Config{
		Port:            "8081",
		JWTSecret:       "integration-test-secret",
		AdminPassphrase: "integration-pass",
		AllowedOrigins:  []string{"http://localhost:5173"},
	}
	kv := store.NewPostgres(pool)
	logger := zap.NewNop()
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	catalogs := catalog.NewService(kv, logger)
	if _, err := catalogs.Seed(ctx, false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	orders := service.NewOrderService(kv, hub, logger, time.FixedZone("Asia/Taipei", 8*3600))
	session := kiosk.NewSession(kv, catalogs, orders, logger)
	if err := session.Load(ctx); err != nil {
		t.Fatalf("load session: %v", err)
	}

	// Build router
	r := router.New(cfg, router.Deps{Catalog: catalogs, Orders: orders, Session: session, Hub: hub, Logger: logger})
	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Login as admin and open the order feed ---
	token := login(t, server, "integration-pass")
	feed := dialFeed(t, server, token)
	defer feed.Close()

	// --- 2. Configure a steak through the draft ---
	call(t, server, "PUT", "/session", "", map[string]interface{}{"language": "en", "guest_count": 2}, http.StatusOK)
	call(t, server, "POST", "/draft", "", map[string]string{"item_id": "set-7"}, http.StatusCreated)
	call(t, server, "PUT", "/draft/quantity", "", map[string]int{"quantity": 2}, http.StatusOK)
	for _, step := range []map[string]interface{}{
		{"group": "doneness", "option": "Medium", "delta": 2},
		{"group": "sauce", "option": "Black Pepper", "delta": 2},
		{"group": "drink", "option": "Cola", "delta": 1},
		{"group": "drink", "option": "Black Tea", "delta": 1},
	} {
		call(t, server, "POST", "/draft/adjust", "", step, http.StatusOK)
	}
	call(t, server, "POST", "/draft/confirm", "", nil, http.StatusCreated)

	// --- 3. The cart survives a restart of the session ---
	restored := kiosk.NewSession(kv, catalogs, orders, logger)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if got := restored.Snapshot().ItemCount; got != 2 {
		t.Fatalf("restored item count: got %d, want 2", got)
	}

	// --- 4. Checkout ---
	order := call(t, server, "POST", "/checkout", "", map[string]interface{}{
		"order_type":    enum.OrderTypeDineIn,
		"customer_info": map[string]string{"name": "Lin", "table_number": "7"},
	}, http.StatusCreated)
	orderID := order["id"].(string)
	if order["total_price"] != "1056" {
		t.Fatalf("order total_price: got %v, want 1056", order["total_price"])
	}

	var event ws.Event
	feed.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := feed.ReadJSON(&event); err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if event.Type != ws.EventOrderCreated {
		t.Fatalf("event type: got %q, want %q", event.Type, ws.EventOrderCreated)
	}

	// --- 5. Admin moves the order to the kitchen and prints the ticket ---
	call(t, server, "PATCH", "/admin/orders/"+orderID+"/status", token,
		map[string]string{"status": enum.OrderStatusPreparing}, http.StatusOK)
	ticket := rawCall(t, server, "GET", "/admin/orders/"+orderID+"/ticket", token, http.StatusOK)
	if !bytes.Contains(ticket, []byte("#"+orderID)) {
		t.Fatalf("ticket missing order id: %s", ticket)
	}

	// --- 6. Reports see the order ---
	dash := call(t, server, "GET", "/admin/reports/dashboard", token, nil, http.StatusOK)
	if dash["today_orders"].(float64) != 1 {
		t.Fatalf("dashboard today_orders: got %v, want 1", dash["today_orders"])
	}

	// --- 7. Admin routes reject missing tokens ---
	call(t, server, "GET", "/admin/orders", "", nil, http.StatusUnauthorized)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("kiosk_test"),
		tcpostgres.WithUsername("kiosk"),
		tcpostgres.WithPassword("kiosk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	// Connect with stdlib for migrate
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Go test sets cwd to the package directory.
	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

// --- HTTP helpers ---

func rawCall(t *testing.T, server *httptest.Server, method, path, token string, wantStatus int) []byte {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+path, nil)
	if err != nil {
		t.Fatalf("%s %s: build request: %v", method, path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: got %d, want %d; body: %s", method, path, resp.StatusCode, wantStatus, buf.String())
	}
	return buf.Bytes()
}

func call(t *testing.T, server *httptest.Server, method, path, token string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("%s %s: build request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: got %d, want %d; body: %v", method, path, resp.StatusCode, wantStatus, result)
	}
	return result
}

func login(t *testing.T, server *httptest.Server, passphrase string) string {
	t.Helper()
	resp := call(t, server, "POST", "/admin/login", "", map[string]string{"passphrase": passphrase}, http.StatusOK)
	return resp["access_token"].(string)
}

func dialFeed(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + server.URL[len("http"):] + "/ws/orders?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial order feed: %v", err)
	}
	return conn
}
