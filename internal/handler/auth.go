package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/auth"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
)

// AuthHandler handles the admin panel login.
type AuthHandler struct {
	passphraseHash string
	passphrase     string
	jwtSecret      string
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. passphraseHash is a bcrypt hash
// and wins over the plain passphrase when both are set.
func NewAuthHandler(passphraseHash, passphrase, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		passphraseHash: passphraseHash,
		passphrase:     passphrase,
		jwtSecret:      jwtSecret,
		logger:         logger,
	}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/login", h.Login)
}

// --- Request / Response types ---

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

// --- Handlers ---

// Login exchanges the admin passphrase for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	if err := auth.CheckPassphrase(h.passphraseHash, h.passphrase, req.Passphrase); err != nil {
		if errors.Is(err, auth.ErrNoPassphrase) {
			h.logger.Error("admin login attempted but no passphrase is configured")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "admin login is not configured"})
			return
		}
		h.logger.Warn("admin login rejected", zap.String("remote", r.RemoteAddr))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, enum.RoleAdmin, auth.AdminTokenTTL)
	if err != nil {
		h.logger.Error("sign admin token", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		ExpiresIn:   int(auth.AdminTokenTTL.Seconds()),
		Role:        enum.RoleAdmin,
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode JSON response", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
