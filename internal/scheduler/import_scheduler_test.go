package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/socialpulse/socialpulse/internal/ingestion"
)

type countingRunner struct {
	mu    sync.Mutex
	calls map[string]int
	fail  string
}

func (r *countingRunner) Run(ctx context.Context, network string) (*ingestion.ImportResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[network]++
	if network == r.fail {
		return nil, errors.New("sheet unavailable")
	}
	return &ingestion.ImportResult{}, nil
}

func (r *countingRunner) count(network string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[network]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestImportSchedulerRunsEveryNetwork(t *testing.T) {
	runner := &countingRunner{calls: map[string]int{}, fail: "facebook"}
	s := NewImportScheduler(runner, []string{"facebook", "youtube"}, 10*time.Millisecond, testLogger())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runner.count("youtube") < 2 {
		select {
		case <-deadline:
			t.Fatalf("scheduler did not run twice, youtube calls: %d", runner.count("youtube"))
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()
	s.Stop()
	<-done

	if runner.count("facebook") < 2 {
		t.Errorf("failing network should still be retried each round, got %d", runner.count("facebook"))
	}
}

func TestImportSchedulerStopsOnContextCancel(t *testing.T) {
	runner := &countingRunner{calls: map[string]int{}}
	s := NewImportScheduler(runner, []string{"twitter"}, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	if runner.count("twitter") != 0 {
		t.Error("no import should run before the first tick")
	}
}
