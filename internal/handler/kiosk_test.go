package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/handler"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

type kioskFixture struct {
	router  *chi.Mux
	store   *store.Memory
	catalog *catalog.Service
	orders  *service.OrderService
	session *kiosk.Session
}

func setupKioskRouter(t *testing.T) *kioskFixture {
	t.Helper()
	mem := store.NewMemory()
	cats := catalog.NewService(mem, zap.NewNop())
	orders := service.NewOrderService(mem, nil, zap.NewNop(), taipei)
	session := kiosk.NewSession(mem, cats, orders, zap.NewNop())

	h := handler.NewKioskHandler(session, cats, orders, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rr := doRequest(t, r, "PUT", "/session", map[string]string{"language": enum.LanguageEN})
	if rr.Code != http.StatusOK {
		t.Fatalf("set language: got %d; body: %s", rr.Code, rr.Body.String())
	}
	return &kioskFixture{router: r, store: mem, catalog: cats, orders: orders, session: session}
}

// duckLine is a valid set-8 line: one sauce and one drink per unit.
func duckLine(qty int) map[string]interface{} {
	return map[string]interface{}{
		"item_id":  "set-8",
		"quantity": qty,
		"selections": map[string]interface{}{
			"sauces": []map[string]interface{}{{"name": "BBQ", "quantity": qty}},
			"drinks": map[string]int{"Cola": qty},
		},
	}
}

// --- Catalog & session ---

func TestKioskCatalog_SessionLanguage(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "GET", "/catalog", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var cat catalog.Catalog
	decodeInto(t, rr, &cat)
	if cat.Language != enum.LanguageEN {
		t.Errorf("language: got %q, want %q", cat.Language, enum.LanguageEN)
	}
	if len(cat.Categories) == 0 {
		t.Error("expected categories")
	}

	rr = doRequest(t, f.router, "GET", "/catalog?lang=zh", nil)
	decodeInto(t, rr, &cat)
	if cat.Language != enum.LanguageZH {
		t.Errorf("explicit lang: got %q", cat.Language)
	}

	rr = doRequest(t, f.router, "GET", "/catalog?lang=fr", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown lang: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestKioskSession_Update(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "PUT", "/session", map[string]int{"guest_count": 4})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["guest_count"] != float64(4) {
		t.Errorf("guest_count: got %v", resp["guest_count"])
	}

	rr = doRequest(t, f.router, "PUT", "/session", map[string]int{"guest_count": 0})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("zero guests: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, f.router, "PUT", "/session", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty update: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, f.router, "PUT", "/session", map[string]string{"colour": "red"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown field: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestKioskSession_LanguageChangeEmptiesCart(t *testing.T) {
	f := setupKioskRouter(t)

	if rr := doRequest(t, f.router, "POST", "/cart/lines", duckLine(1)); rr.Code != http.StatusCreated {
		t.Fatalf("add line: got %d; body: %s", rr.Code, rr.Body.String())
	}
	rr := doRequest(t, f.router, "PUT", "/session", map[string]string{"language": enum.LanguageZH})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var snap kiosk.Snapshot
	decodeInto(t, rr, &snap)
	if len(snap.Lines) != 0 {
		t.Errorf("lines after language change: got %d, want 0", len(snap.Lines))
	}
}

// --- Draft ---

func TestKioskDraft_Flow(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "POST", "/draft", map[string]string{"item_id": "set-8"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("open: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, f.router, "POST", "/draft/confirm", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("confirm incomplete: got %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if resp := decodeResponse(t, rr); resp["group"] != enum.GroupSauce {
		t.Errorf("first incomplete group: got %v, want %v", resp["group"], enum.GroupSauce)
	}

	rr = doRequest(t, f.router, "POST", "/draft/adjust", map[string]interface{}{"group": "sauce", "option": "BBQ", "delta": 1})
	if rr.Code != http.StatusOK {
		t.Fatalf("adjust: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["changed"] != true {
		t.Errorf("changed: got %v, want true", resp["changed"])
	}

	rr = doRequest(t, f.router, "POST", "/draft/adjust", map[string]interface{}{"group": "sauce", "option": "Mushroom", "delta": 1})
	if resp := decodeResponse(t, rr); resp["changed"] != false {
		t.Errorf("over capacity changed: got %v, want false", resp["changed"])
	}

	doRequest(t, f.router, "POST", "/draft/adjust", map[string]interface{}{"group": "drink", "option": "Cola", "delta": 1})
	rr = doRequest(t, f.router, "PUT", "/draft/notes", map[string]string{"notes": "sauce on the side"})
	if rr.Code != http.StatusOK {
		t.Fatalf("notes: got %d", rr.Code)
	}

	rr = doRequest(t, f.router, "POST", "/draft/confirm", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("confirm: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, f.router, "GET", "/draft", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("draft after confirm: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doRequest(t, f.router, "GET", "/cart", nil)
	var snap kiosk.Snapshot
	decodeInto(t, rr, &snap)
	if snap.ItemCount != 1 || snap.Lines[0].Selections.Notes != "sauce on the side" {
		t.Errorf("cart: got %+v", snap)
	}
}

func TestKioskDraft_Errors(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "POST", "/draft", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing ids: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, f.router, "POST", "/draft", map[string]string{"item_id": "ghost"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown item: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doRequest(t, f.router, "PUT", "/draft/quantity", map[string]int{"quantity": 2})
	if rr.Code != http.StatusNotFound {
		t.Errorf("no draft: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	doRequest(t, f.router, "POST", "/draft", map[string]string{"item_id": "set-8"})
	rr = doRequest(t, f.router, "POST", "/draft/adjust", map[string]interface{}{"group": "pasta_a", "option": "Penne", "delta": 1})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("disabled group: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, f.router, "DELETE", "/draft", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("close: got %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestKioskDraft_QuietHours(t *testing.T) {
	f := setupKioskRouter(t)
	if err := f.catalog.SetQuietHours(context.Background(), true); err != nil {
		t.Fatalf("set quiet hours: %v", err)
	}

	rr := doRequest(t, f.router, "POST", "/draft", map[string]string{"item_id": "set-8"})
	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

// --- Cart ---

func TestKioskCart_LineLifecycle(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "POST", "/cart/lines", duckLine(2))
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: got %d; body: %s", rr.Code, rr.Body.String())
	}
	line := decodeResponse(t, rr)
	id := line["id"].(string)
	if line["total_price"] != "656" {
		t.Errorf("total_price: got %v, want 656", line["total_price"])
	}

	rr = doRequest(t, f.router, "PATCH", "/cart/lines/"+id+"/quantity", map[string]int{"quantity": 3})
	if rr.Code != http.StatusOK {
		t.Fatalf("quantity: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["removed"] != false {
		t.Errorf("removed: got %v", resp["removed"])
	}

	rr = doRequest(t, f.router, "PUT", "/cart/lines/"+id, map[string]interface{}{
		"quantity":   1,
		"selections": duckLine(1)["selections"],
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, f.router, "DELETE", "/cart/lines/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
	rr = doRequest(t, f.router, "DELETE", "/cart/lines/"+id, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete again: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestKioskCart_InvalidSelection(t *testing.T) {
	f := setupKioskRouter(t)

	body := duckLine(1)
	body["quantity"] = 2
	rr := doRequest(t, f.router, "POST", "/cart/lines", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}

	rr = doRequest(t, f.router, "POST", "/cart/lines", map[string]int{"quantity": 1})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing item: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestKioskCart_ForgedSelections(t *testing.T) {
	f := setupKioskRouter(t)

	body := duckLine(1)
	body["selections"].(map[string]interface{})["addons"] = []map[string]interface{}{
		{"id": "addon-1", "name": "Free", "price": "-500", "quantity": 1},
	}
	rr := doRequest(t, f.router, "POST", "/cart/lines", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if line := decodeResponse(t, rr); line["total_price"] != "408" {
		t.Errorf("total_price: got %v, want 408 (addon priced from the menu)", line["total_price"])
	}

	body = duckLine(1)
	body["selections"].(map[string]interface{})["drinks"] = map[string]int{"Free Beer": 1}
	if rr := doRequest(t, f.router, "POST", "/cart/lines", body); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown drink: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	body = duckLine(1)
	body["selections"].(map[string]interface{})["addons"] = []map[string]interface{}{{"id": "addon-99", "quantity": 1}}
	if rr := doRequest(t, f.router, "POST", "/cart/lines", body); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown addon: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestKioskCart_RemoveByZeroQuantity(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "POST", "/cart/lines", duckLine(1))
	id := decodeResponse(t, rr)["id"].(string)

	rr = doRequest(t, f.router, "PATCH", "/cart/lines/"+id+"/quantity", map[string]int{"quantity": 0})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["removed"] != true {
		t.Errorf("removed: got %v", resp["removed"])
	}
	if _, ok := resp["line"]; ok {
		t.Error("removed line should not be returned")
	}
}

// --- Checkout & orders ---

func TestKioskCheckout(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "POST", "/checkout", map[string]interface{}{"order_type": enum.OrderTypeTakeaway})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty cart: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	doRequest(t, f.router, "POST", "/cart/lines", duckLine(1))
	rr = doRequest(t, f.router, "POST", "/checkout", map[string]interface{}{
		"order_type":    enum.OrderTypeDineIn,
		"customer_info": map[string]string{"name": "Lin", "phone": "0912", "table_number": "3"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("checkout: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var order service.Order
	decodeInto(t, rr, &order)
	if order.Status != enum.OrderStatusAwaitingConfirmation {
		t.Errorf("status: got %q", order.Status)
	}

	rr = doRequest(t, f.router, "GET", "/orders/"+order.ID, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("get order: got %d", rr.Code)
	}

	rr = doRequest(t, f.router, "GET", "/orders/recent", nil)
	var recent []service.Order
	decodeInto(t, rr, &recent)
	if len(recent) != 1 || recent[0].ID != order.ID {
		t.Errorf("recent: got %+v", recent)
	}

	rr = doRequest(t, f.router, "GET", "/orders/search?name=Lin", nil)
	var found []service.OrderSummary
	decodeInto(t, rr, &found)
	if len(found) != 1 {
		t.Errorf("search: got %d results, want 1", len(found))
	}

	rr = doRequest(t, f.router, "GET", "/cart", nil)
	var snap kiosk.Snapshot
	decodeInto(t, rr, &snap)
	if len(snap.Lines) != 0 {
		t.Errorf("cart after checkout: got %d lines", len(snap.Lines))
	}
}

func TestKioskOrders_Errors(t *testing.T) {
	f := setupKioskRouter(t)

	rr := doRequest(t, f.router, "GET", "/orders/ORD-0-0", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing order: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doRequest(t, f.router, "GET", "/orders/search?start_date=2026-13-01&end_date=2026-10-14", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad date: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestKioskSession_Reset(t *testing.T) {
	f := setupKioskRouter(t)
	doRequest(t, f.router, "POST", "/cart/lines", duckLine(1))
	doRequest(t, f.router, "PUT", "/session", map[string]int{"guest_count": 3})

	rr := doRequest(t, f.router, "POST", "/session/reset", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var snap kiosk.Snapshot
	decodeInto(t, rr, &snap)
	if len(snap.Lines) != 0 || snap.GuestCount != 1 || snap.Language != enum.LanguageEN {
		t.Errorf("snapshot: got %+v", snap)
	}
}
