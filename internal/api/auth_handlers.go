package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/socialpulse/socialpulse/internal/auth"
	"github.com/socialpulse/socialpulse/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	config auth.Config
	logger *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(config auth.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		config: config,
		logger: logger,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Error     bool      `json:"error"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, models.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	if !h.config.CheckAdminPassword(req.Password) {
		h.logger.Warn("failed login attempt", "ip", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: true, Description: "Invalid credentials"}, h.logger)
		return
	}

	token, err := auth.GenerateToken("admin", h.config.JWTSecret, h.config.TokenDuration)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("successful login", "ip", r.RemoteAddr)

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.config.TokenDuration),
	}, h.logger)
}

// ValidateToken handles GET /api/auth/validate. The auth middleware has
// already accepted the token when this runs.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":  false,
		"valid":  true,
		"userID": userID,
	}, h.logger)
}
