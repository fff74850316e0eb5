package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/socialpulse/socialpulse/internal/charts"
	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/query"
	"github.com/socialpulse/socialpulse/internal/sheets"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error       bool   `json:"error"`
	Description string `json:"description"`
}

// NetworkInfo describes one supported network.
type NetworkInfo struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Metrics []string `json:"metrics"`
}

// NetworksResponse is returned by GET /api/networks.
type NetworksResponse struct {
	Error    bool          `json:"error"`
	Networks []NetworkInfo `json:"networks"`
}

// AccountsResponse is returned by GET /api/{network}/accounts.
type AccountsResponse struct {
	Error    bool                   `json:"error"`
	Accounts []query.AccountSummary `json:"accounts"`
}

// AccountResponse is returned by GET /api/{network}/accounts/{id}.
type AccountResponse struct {
	Error   bool                 `json:"error"`
	Account *query.AccountDetail `json:"account"`
}

// LatestResponse is returned by GET /api/{network}/accounts/{id}/latest.
type LatestResponse struct {
	Error  bool             `json:"error"`
	Latest map[string]int64 `json:"latest"`
}

// ImportsResponse is returned by GET /api/{network}/imports.
type ImportsResponse struct {
	Error   bool               `json:"error"`
	Imports []models.ImportRun `json:"imports"`
}

// AuthURLResponse is returned by GET /api/google/auth.
type AuthURLResponse struct {
	Error bool   `json:"error"`
	URL   string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writePNG(w http.ResponseWriter, png []byte, logger *slog.Logger) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logger.Error("failed to write chart", "error", err)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		validation models.ValidationError
		notFound   *models.MetricNotFoundError
		upstream   *models.UpstreamFetchError
	)

	switch {
	case errors.As(err, &validation), errors.Is(err, sheets.ErrInvalidState):
		return http.StatusBadRequest
	case errors.As(err, &notFound),
		errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrUnknownNetwork),
		errors.Is(err, charts.ErrEmptyDataset),
		errors.Is(err, errOAuthDisabled):
		return http.StatusNotFound
	case errors.Is(err, sheets.ErrNotAuthorized):
		return http.StatusConflict
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err with the request context and writes the error body.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, attrs ...any) {
	status := statusFor(err)

	attrs = append(attrs, "error", err, "method", r.Method, "path", r.URL.Path, "status", status)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	writeJSON(w, status, ErrorResponse{Error: true, Description: err.Error()}, logger)
}
