package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/cart"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"mismatch", &selection.MismatchError{Group: enum.GroupDoneness, Required: 2, Selected: 1}, http.StatusUnprocessableEntity},
		{"quiet hours", kiosk.ErrQuietHours, http.StatusForbidden},
		{"line not found", cart.ErrLineNotFound, http.StatusNotFound},
		{"wrapped order not found", fmt.Errorf("lookup: %w", service.ErrOrderNotFound), http.StatusNotFound},
		{"no draft", kiosk.ErrNoDraft, http.StatusNotFound},
		{"empty cart", kiosk.ErrEmptyCart, http.StatusBadRequest},
		{"invalid date", service.ErrInvalidDate, http.StatusBadRequest},
		{"in flight", kiosk.ErrSubmitInFlight, http.StatusConflict},
		{"unavailable", kiosk.ErrItemUnavailable, http.StatusConflict},
		{"store failure", errors.New("disk full"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, zap.NewNop(), "op", tt.err)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestWriteError_MismatchBody(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, zap.NewNop(), "confirm", &selection.MismatchError{Group: enum.GroupSauce, Required: 2, Selected: 1})

	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["group"] != enum.GroupSauce {
		t.Errorf("group: got %v", body["group"])
	}
	if body["required"] != float64(2) || body["selected"] != float64(1) {
		t.Errorf("counts: got %v/%v", body["selected"], body["required"])
	}
}

func TestWriteError_StoreFailureHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, zap.NewNop(), "save", errors.New("open /var/data: permission denied"))

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "storage unavailable" {
		t.Errorf("error: got %q", body["error"])
	}
}
