package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/sheets"
)

var errOAuthDisabled = errors.New("google oauth flow is not configured")

// GoogleHandler drives the consent flow that authorizes the Sheets source.
type GoogleHandler struct {
	oauth  *sheets.OAuth
	logger *slog.Logger
}

// NewGoogleHandler creates the handler. oauth may be nil when the source
// does not use the consent flow.
func NewGoogleHandler(oauth *sheets.OAuth, logger *slog.Logger) *GoogleHandler {
	return &GoogleHandler{oauth: oauth, logger: logger}
}

// AuthURL handles GET /api/google/auth
func (h *GoogleHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, r, h.logger, errOAuthDisabled)
		return
	}
	writeJSON(w, http.StatusOK, AuthURLResponse{URL: h.oauth.AuthURL()}, h.logger)
}

// Status handles GET /api/google/status
func (h *GoogleHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, r, h.logger, errOAuthDisabled)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"error":      false,
		"authorized": h.oauth.Authorized(r.Context()),
	}, h.logger)
}

// Callback handles GET /api/google/callback
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, r, h.logger, errOAuthDisabled)
		return
	}

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		writeError(w, r, h.logger, models.ValidationError{Field: "consent", Message: reason})
		return
	}
	if q.Get("code") == "" {
		writeError(w, r, h.logger, models.ValidationError{Field: "code", Message: "missing authorization code"})
		return
	}

	if err := h.oauth.Exchange(r.Context(), q.Get("state"), q.Get("code")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("google sheets access authorized")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
