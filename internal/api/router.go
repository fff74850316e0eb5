package api

import (
	"log/slog"
	"net/http"

	"github.com/socialpulse/socialpulse/internal/auth"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, handler *Handler, google *GoogleHandler, authConfig auth.Config, logger *slog.Logger) {
	authHandler := NewAuthHandler(authConfig, logger)
	protected := auth.AuthMiddleware(authConfig)

	// Authentication routes
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/validate", protected(http.HandlerFunc(authHandler.ValidateToken)))

	// Google consent flow; the callback is guarded by the single-use state
	mux.Handle("GET /api/google/auth", protected(http.HandlerFunc(google.AuthURL)))
	mux.Handle("GET /api/google/status", protected(http.HandlerFunc(google.Status)))
	mux.HandleFunc("GET /api/google/callback", google.Callback)

	// Read API (public)
	mux.HandleFunc("GET /api/networks", handler.ListNetworks)
	mux.HandleFunc("GET /api/{network}/accounts", handler.ListAccounts)
	mux.HandleFunc("GET /api/{network}/accounts/{id}", handler.GetAccount)
	mux.HandleFunc("GET /api/{network}/accounts/{id}/latest", handler.GetLatest)
	mux.HandleFunc("GET /api/{network}/accounts/{id}/charts/{metric}", handler.AccountChart)
	mux.HandleFunc("GET /api/{network}/charts/{metric}", handler.CompareChart)
	mux.HandleFunc("GET /api/{network}/charts/{metric}/pie", handler.PieChart)

	// Import (admin only)
	mux.Handle("POST /api/{network}/import", protected(http.HandlerFunc(handler.Import)))
	mux.Handle("GET /api/{network}/imports", protected(http.HandlerFunc(handler.ListImports)))

	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// CORS sets the cross-origin headers on every response and answers
// preflight requests before they reach method-restricted routes.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
