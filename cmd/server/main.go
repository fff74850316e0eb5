package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/socialpulse/socialpulse/internal/api"
	"github.com/socialpulse/socialpulse/internal/auth"
	"github.com/socialpulse/socialpulse/internal/backend"
	"github.com/socialpulse/socialpulse/internal/charts"
	"github.com/socialpulse/socialpulse/internal/config"
	"github.com/socialpulse/socialpulse/internal/ingestion"
	"github.com/socialpulse/socialpulse/internal/logging"
	"github.com/socialpulse/socialpulse/internal/metrics"
	"github.com/socialpulse/socialpulse/internal/query"
	"github.com/socialpulse/socialpulse/internal/scheduler"
	"github.com/socialpulse/socialpulse/internal/server"
	"github.com/socialpulse/socialpulse/internal/sheets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting socialpulse", "store", cfg.Store.Driver, "sheets", cfg.Sheets.Source)

	authConfig := auth.LoadConfigFromEnv()
	if authConfig.JWTSecret == "change-this-secret" {
		logger.Warn("ADMIN_JWT_SECRET is not set; using the insecure default")
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := backend.Open(startCtx, cfg.Store, "./migrations", logger)
	cancel()
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	layout, err := config.LoadSheets(cfg.Sheets.LayoutPath)
	if err != nil {
		logger.Error("failed to load sheets layout", "error", err)
		os.Exit(1)
	}

	sources, err := sheets.Open(cfg.Sheets)
	if err != nil {
		logger.Error("failed to open sheets source", "error", err)
		os.Exit(1)
	}
	if sources.OAuth != nil {
		logger.Info("google sheets uses the consent flow; authorize via /api/google/auth",
			"authorized", sources.OAuth.Authorized(context.Background()))
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	importer := ingestion.NewImporter(
		sources.Source,
		layout,
		st.Accounts,
		st.Runs,
		collector,
		logger,
		ingestion.ImporterConfig{SaveConcurrency: cfg.Import.SaveConcurrency},
	)

	if cfg.Import.Interval > 0 {
		networks := make([]string, 0, len(layout.Networks))
		for name := range layout.Networks {
			networks = append(networks, name)
		}
		sort.Strings(networks)

		importScheduler := scheduler.NewImportScheduler(importer, networks, cfg.Import.Interval, logger)
		go importScheduler.Start(context.Background())
		defer importScheduler.Stop()
	}

	handler := api.NewHandler(
		query.NewService(st.Accounts, logger),
		importer,
		st.Runs,
		charts.NewRenderer(),
		st.Ping,
		logger,
	)

	mux := http.NewServeMux()
	api.SetupRoutes(mux, handler, api.NewGoogleHandler(sources.OAuth, logger), authConfig, logger)
	mux.Handle("GET /metrics", collector.Handler())

	root := collector.InstrumentHandler(api.CORS(server.SPAMiddleware(mux, cfg.WebDir)))
	srv := server.New(cfg.Server, logger, root)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForSignal(logger)

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
}
