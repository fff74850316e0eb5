package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/socialpulse/socialpulse/internal/charts"
	"github.com/socialpulse/socialpulse/internal/ingestion"
	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/network"
	"github.com/socialpulse/socialpulse/internal/query"
	"github.com/socialpulse/socialpulse/internal/store"
)

// Importer runs the spreadsheet import of one network.
type Importer interface {
	Run(ctx context.Context, network string) (*ingestion.ImportResult, error)
}

// Handler serves the account, chart and import endpoints.
type Handler struct {
	query    *query.Service
	importer Importer
	runs     store.ImportRunRepository
	renderer *charts.Renderer
	ping     func(context.Context) error
	logger   *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(q *query.Service, importer Importer, runs store.ImportRunRepository, renderer *charts.Renderer, ping func(context.Context) error, logger *slog.Logger) *Handler {
	return &Handler{
		query:    q,
		importer: importer,
		runs:     runs,
		renderer: renderer,
		ping:     ping,
		logger:   logger,
	}
}

// ListNetworks handles GET /api/networks
func (h *Handler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	resp := NetworksResponse{}
	for _, d := range network.All() {
		resp.Networks = append(resp.Networks, NetworkInfo{
			Name:    string(d.Network),
			Title:   d.Title,
			Metrics: d.Metrics,
		})
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// ListAccounts handles GET /api/{network}/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	networkName := r.PathValue("network")

	accounts, err := h.query.ListAccounts(r.Context(), networkName)
	if err != nil {
		writeError(w, r, h.logger, err, "network", networkName)
		return
	}
	writeJSON(w, http.StatusOK, AccountsResponse{Accounts: accounts}, h.logger)
}

// GetAccount handles GET /api/{network}/accounts/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	networkName, id := r.PathValue("network"), r.PathValue("id")

	account, err := h.query.GetAccount(r.Context(), networkName, id)
	if err != nil {
		writeError(w, r, h.logger, err, "network", networkName, "account_id", id)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Account: account}, h.logger)
}

// GetLatest handles GET /api/{network}/accounts/{id}/latest
func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	networkName, id := r.PathValue("network"), r.PathValue("id")

	latest, err := h.query.Latest(r.Context(), networkName, id)
	if err != nil {
		writeError(w, r, h.logger, err, "network", networkName, "account_id", id)
		return
	}
	writeJSON(w, http.StatusOK, LatestResponse{Latest: latest}, h.logger)
}

// AccountChart handles GET /api/{network}/accounts/{id}/charts/{metric}
func (h *Handler) AccountChart(w http.ResponseWriter, r *http.Request) {
	networkName, id, metric := r.PathValue("network"), r.PathValue("id"), r.PathValue("metric")
	attrs := []any{"network", networkName, "account_id", id, "metric", metric}

	if _, err := requireMetric(networkName, metric); err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return
	}

	desc, account, err := h.query.Account(r.Context(), networkName, id)
	if err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return
	}

	title := fmt.Sprintf("%s %s: %s", desc.Title, metric, account.Name)
	cfg, err := charts.BuildLineConfig(title, []charts.Series{charts.BuildSeries(account, metric)})
	if err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return
	}
	h.render(w, r, cfg, attrs)
}

// CompareChart handles GET /api/{network}/charts/{metric}?actors=id1,id2
func (h *Handler) CompareChart(w http.ResponseWriter, r *http.Request) {
	networkName, metric := r.PathValue("network"), r.PathValue("metric")
	attrs := []any{"network", networkName, "metric", metric}

	desc, accounts, ok := h.loadActors(w, r, networkName, metric, attrs)
	if !ok {
		return
	}

	series := make([]charts.Series, 0, len(accounts))
	for _, a := range accounts {
		series = append(series, charts.BuildSeries(a, metric))
	}

	cfg, err := charts.BuildLineConfig(fmt.Sprintf("%s %s", desc.Title, metric), series)
	if err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return
	}
	h.render(w, r, cfg, attrs)
}

// PieChart handles GET /api/{network}/charts/{metric}/pie?actors=id1,id2
func (h *Handler) PieChart(w http.ResponseWriter, r *http.Request) {
	networkName, metric := r.PathValue("network"), r.PathValue("metric")
	attrs := []any{"network", networkName, "metric", metric}

	desc, accounts, ok := h.loadActors(w, r, networkName, metric, attrs)
	if !ok {
		return
	}

	slices := make([]charts.Slice, 0, len(accounts))
	for _, a := range accounts {
		if v, ok := query.LatestSample(a.History, desc)[metric]; ok {
			slices = append(slices, charts.Slice{Label: a.Name, Value: float64(v)})
		}
	}

	cfg, err := charts.BuildPieConfig(fmt.Sprintf("%s %s", desc.Title, metric), slices)
	if err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return
	}
	h.render(w, r, cfg, attrs)
}

func (h *Handler) loadActors(w http.ResponseWriter, r *http.Request, networkName, metric string, attrs []any) (network.Descriptor, []*models.Account, bool) {
	if _, err := requireMetric(networkName, metric); err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return network.Descriptor{}, nil, false
	}

	ids, err := ParseActors(r.URL.Query().Get("actors"))
	if err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return network.Descriptor{}, nil, false
	}

	desc, accounts, err := h.query.Accounts(r.Context(), networkName, ids)
	if err != nil {
		writeError(w, r, h.logger, err, append(attrs, "actors", ids)...)
		return network.Descriptor{}, nil, false
	}
	return desc, accounts, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, cfg charts.ChartConfig, attrs []any) {
	png, err := h.renderer.Render(cfg)
	if err != nil {
		writeError(w, r, h.logger, err, attrs...)
		return
	}
	writePNG(w, png, h.logger)
}

func requireMetric(networkName, metric string) (network.Descriptor, error) {
	desc, err := network.Lookup(networkName)
	if err != nil {
		return network.Descriptor{}, err
	}
	return desc, desc.RequireMetric(metric)
}

// Import handles POST /api/{network}/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	networkName := r.PathValue("network")

	if _, err := network.Lookup(networkName); err != nil {
		writeError(w, r, h.logger, err, "network", networkName)
		return
	}

	result, err := h.importer.Run(r.Context(), networkName)
	if err != nil {
		var persistence *models.PersistenceError
		attrs := []any{"network", networkName}
		if errors.As(err, &persistence) {
			attrs = append(attrs, "failed_saves", persistence.Failed)
		}
		writeError(w, r, h.logger, err, attrs...)
		return
	}

	h.logger.Info("import finished via api",
		"network", networkName,
		"run_id", result.Run.ID,
		"accounts", result.Run.Accounts,
	)
	http.Redirect(w, r, "/"+networkName, http.StatusSeeOther)
}

// ListImports handles GET /api/{network}/imports
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	networkName := r.PathValue("network")

	desc, err := network.Lookup(networkName)
	if err != nil {
		writeError(w, r, h.logger, err, "network", networkName)
		return
	}
	limit, err := ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, h.logger, err, "network", networkName)
		return
	}

	runs, err := h.runs.List(r.Context(), desc.Network, limit)
	if err != nil {
		writeError(w, r, h.logger, err, "network", networkName)
		return
	}
	writeJSON(w, http.StatusOK, ImportsResponse{Imports: runs}, h.logger)
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, h.logger)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}
