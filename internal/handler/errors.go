package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/cart"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/kiosk"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/selection"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/service"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/storage"
)

var notFoundErrors = []error{
	cart.ErrLineNotFound,
	catalog.ErrItemNotFound,
	catalog.ErrOptionNotFound,
	service.ErrOrderNotFound,
	kiosk.ErrNoDraft,
}

var badRequestErrors = []error{
	cart.ErrInvalidQuantity,
	catalog.ErrUnknownLanguage,
	catalog.ErrUnknownGroup,
	selection.ErrUnknownGroup,
	selection.ErrGroupDisabled,
	selection.ErrUnknownAddon,
	selection.ErrInvalidOption,
	kiosk.ErrEmptyCart,
	kiosk.ErrInvalidGuests,
	service.ErrEmptyItems,
	service.ErrInvalidOrderType,
	service.ErrInvalidStatus,
	service.ErrInvalidFilter,
	service.ErrInvalidDate,
	service.ErrInvalidBackup,
	storage.ErrUnsupportedImage,
}

var conflictErrors = []error{
	kiosk.ErrSubmitInFlight,
	kiosk.ErrItemUnavailable,
	service.ErrOrderIDConflict,
}

func matches(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps a domain error to its status code. Anything unrecognised
// comes from the store and is reported as 502.
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	var mismatch *selection.MismatchError
	switch {
	case errors.As(err, &mismatch):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    mismatch.Error(),
			"group":    mismatch.Group,
			"required": mismatch.Required,
			"selected": mismatch.Selected,
		})
	case errors.Is(err, kiosk.ErrQuietHours):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case matches(err, notFoundErrors):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case matches(err, badRequestErrors):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case matches(err, conflictErrors):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		logger.Error(op, zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "storage unavailable"})
	}
}
