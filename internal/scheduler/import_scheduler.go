package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/socialpulse/socialpulse/internal/ingestion"
)

// Runner imports one network.
type Runner interface {
	Run(ctx context.Context, network string) (*ingestion.ImportResult, error)
}

// ImportScheduler re-imports a fixed set of networks on an interval.
type ImportScheduler struct {
	runner   Runner
	networks []string
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewImportScheduler creates a scheduler for networks.
func NewImportScheduler(runner Runner, networks []string, interval time.Duration, logger *slog.Logger) *ImportScheduler {
	return &ImportScheduler{
		runner:   runner,
		networks: networks,
		interval: interval,
		logger:   logger.With("component", "import_scheduler"),
		stopChan: make(chan struct{}),
	}
}

// Start runs the scheduler loop until Stop is called or ctx ends. The first
// round starts one interval after Start.
func (s *ImportScheduler) Start(ctx context.Context) {
	s.logger.Info("starting import scheduler", "interval", s.interval, "networks", s.networks)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runAll(ctx)
		case <-s.stopChan:
			s.logger.Info("import scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("import scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (s *ImportScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// runAll imports every network in order; one failure does not stop the rest.
func (s *ImportScheduler) runAll(ctx context.Context) {
	for _, network := range s.networks {
		if ctx.Err() != nil {
			return
		}

		result, err := s.runner.Run(ctx, network)
		if err != nil {
			s.logger.Error("scheduled import failed", "network", network, "error", err)
			continue
		}
		s.logger.Info("scheduled import completed",
			"network", network,
			"run_id", result.Run.ID,
			"accounts", result.Run.Accounts,
		)
	}
}
