package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/socialpulse/socialpulse/internal/config"
	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/network"
	"github.com/socialpulse/socialpulse/internal/store"
)

// Importer rebuilds every account of a network from its spreadsheet tabs.
type Importer struct {
	source   Source
	layout   *config.SheetsLayout
	accounts store.AccountRepository
	runs     store.ImportRunRepository
	observer Observer
	logger   *slog.Logger
	config   ImporterConfig
}

// ImporterConfig holds configuration for the importer.
type ImporterConfig struct {
	// SaveConcurrency bounds the number of in-flight account saves.
	SaveConcurrency int
}

// DefaultImporterConfig returns sensible defaults.
func DefaultImporterConfig() ImporterConfig {
	return ImporterConfig{SaveConcurrency: 8}
}

// ImportResult is the outcome of a completed import.
type ImportResult struct {
	Run      models.ImportRun
	Accounts []*models.Account
}

// NewImporter creates an importer. runs and observer may be nil.
func NewImporter(
	source Source,
	layout *config.SheetsLayout,
	accounts store.AccountRepository,
	runs store.ImportRunRepository,
	observer Observer,
	logger *slog.Logger,
	cfg ImporterConfig,
) *Importer {
	if observer == nil {
		observer = noopObserver{}
	}
	if cfg.SaveConcurrency < 1 {
		cfg.SaveConcurrency = DefaultImporterConfig().SaveConcurrency
	}
	return &Importer{
		source:   source,
		layout:   layout,
		accounts: accounts,
		runs:     runs,
		observer: observer,
		logger:   logger,
		config:   cfg,
	}
}

// Run imports one network. Tabs are fetched concurrently but their rows are
// folded in the configured tab order, so the carry-forward date and first
// sighting of each account follow sheet order. Nothing is persisted unless
// every tab was fetched.
func (i *Importer) Run(ctx context.Context, name string) (*ImportResult, error) {
	start := time.Now()
	run := models.ImportRun{
		ID:        uuid.New().String(),
		Network:   models.Network(name),
		StartedAt: start.UTC(),
	}

	logger := i.logger.With("network", name, "run_id", run.ID, "source", i.source.Name())

	desc, layout, err := i.resolve(name)
	if err != nil {
		i.finish(ctx, logger, &run, start, err)
		return nil, err
	}
	run.Tabs = layout.Tabs
	logger.Info("import started", "tabs", layout.Tabs)

	state, err := i.collect(ctx, desc, layout)
	if err == nil {
		run.Rows = state.Rows()
		run.Samples = state.Samples()
		run.Accounts = len(state.Accounts())
		err = i.persist(ctx, name, state.Accounts())
	}

	i.finish(ctx, logger, &run, start, err)
	if err != nil {
		return nil, err
	}

	logger.Info("import completed",
		"rows", run.Rows,
		"accounts", run.Accounts,
		"samples", run.Samples,
		"duration_ms", run.DurationMs,
	)
	return &ImportResult{Run: run, Accounts: state.Accounts()}, nil
}

func (i *Importer) resolve(name string) (network.Descriptor, config.NetworkLayout, error) {
	desc, err := network.Lookup(name)
	if err != nil {
		return network.Descriptor{}, config.NetworkLayout{}, err
	}

	layout, ok := i.layout.Network(name)
	if !ok {
		return network.Descriptor{}, config.NetworkLayout{}, fmt.Errorf("no sheets layout configured for %s", name)
	}

	desc, err = desc.WithColumns(layout.Columns)
	if err != nil {
		return network.Descriptor{}, config.NetworkLayout{}, fmt.Errorf("sheets layout for %s: %w", name, err)
	}
	return desc, layout, nil
}

// collect fetches all tabs and folds their rows into a fresh run state.
func (i *Importer) collect(ctx context.Context, desc network.Descriptor, layout config.NetworkLayout) (*RunState, error) {
	tabs := make([][][]string, len(layout.Tabs))

	g, gctx := errgroup.WithContext(ctx)
	for idx, label := range layout.Tabs {
		g.Go(func() error {
			rows, err := i.source.Fetch(gctx, layout.SpreadsheetID, label)
			if err == nil && len(rows) == 0 {
				err = models.ErrEmptyRange
			}
			if err != nil {
				var upstream *models.UpstreamFetchError
				if errors.As(err, &upstream) {
					return err
				}
				return &models.UpstreamFetchError{Source: i.source.Name(), Range: label, Err: err}
			}
			tabs[idx] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := NewRunState(desc)
	for idx, rows := range tabs {
		classified := ClassifyRows(rows, layout.Categories, desc.Columns.Name)
		i.logger.Debug("tab classified",
			"network", desc.Network,
			"tab", layout.Tabs[idx],
			"rows", len(rows),
			"data_rows", len(classified),
		)
		for _, row := range classified {
			state.Observe(row)
		}
	}
	return state, nil
}

// persist saves every account with bounded concurrency. The first failure
// cancels saves that have not started; saves already committed stay
// committed. Any failure fails the run.
func (i *Importer) persist(ctx context.Context, name string, accounts []*models.Account) error {
	var (
		mu     sync.Mutex
		failed []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.config.SaveConcurrency)
	for _, account := range accounts {
		g.Go(func() error {
			err := i.accounts.Save(gctx, account)
			if err != nil {
				mu.Lock()
				failed = append(failed, fmt.Errorf("save %q: %w", account.Name, err))
				mu.Unlock()
			}
			return err
		})
	}
	_ = g.Wait()

	i.observer.ObserveSaveFailures(name, len(failed))
	if len(failed) > 0 {
		return &models.PersistenceError{Failed: len(failed), Err: errors.Join(failed...)}
	}
	return nil
}

// finish stamps the outcome on run, reports it and records it, whether the
// import failed before fetching or after.
func (i *Importer) finish(ctx context.Context, logger *slog.Logger, run *models.ImportRun, start time.Time, err error) {
	finished := time.Now()
	run.FinishedAt = finished.UTC()
	run.DurationMs = finished.Sub(start).Milliseconds()
	run.Status = models.ImportStatusCompleted
	if err != nil {
		run.Status = models.ImportStatusFailed
		run.Error = err.Error()
		logger.Error("import failed", "error", err, "duration_ms", run.DurationMs)
	}

	i.observer.ObserveImport(string(run.Network), string(run.Status), run.Rows, run.Samples, finished.Sub(start))
	i.logRun(ctx, logger, *run)
}

func (i *Importer) logRun(ctx context.Context, logger *slog.Logger, run models.ImportRun) {
	if i.runs == nil {
		return
	}
	if err := i.runs.Log(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record import run", "error", err)
	}
}
