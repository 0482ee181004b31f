package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/auth"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/handler"
)

const testSecret = "test-secret"

// --- Helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func setupAuthRouter(hash, plain string) *chi.Mux {
	h := handler.NewAuthHandler(hash, plain, testSecret, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Login tests ---

func TestLogin_ValidPassphrase(t *testing.T) {
	hash, err := auth.HashPassphrase("steak night")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	router := setupAuthRouter(hash, "")

	rr := doRequest(t, router, "POST", "/admin/login", map[string]string{"passphrase": "steak night"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatal("expected non-empty access_token")
	}
	claims, err := auth.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Role != enum.RoleAdmin {
		t.Errorf("role: got %q, want %q", claims.Role, enum.RoleAdmin)
	}
	if resp["expires_in"] != float64(auth.AdminTokenTTL.Seconds()) {
		t.Errorf("expires_in: got %v", resp["expires_in"])
	}
}

func TestLogin_PlainPassphrase(t *testing.T) {
	router := setupAuthRouter("", "letmein")

	rr := doRequest(t, router, "POST", "/admin/login", map[string]string{"passphrase": "letmein"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestLogin_WrongPassphrase(t *testing.T) {
	router := setupAuthRouter("", "letmein")

	rr := doRequest(t, router, "POST", "/admin/login", map[string]string{"passphrase": "nope"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if resp := decodeResponse(t, rr); resp["error"] != "invalid credentials" {
		t.Errorf("error: got %v", resp["error"])
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	router := setupAuthRouter("", "")

	rr := doRequest(t, router, "POST", "/admin/login", map[string]string{"passphrase": "anything"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestLogin_BadRequests(t *testing.T) {
	router := setupAuthRouter("", "letmein")

	rr := doRequest(t, router, "POST", "/admin/login", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty passphrase: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	req := httptest.NewRequest("POST", "/admin/login", bytes.NewReader([]byte("{")))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
