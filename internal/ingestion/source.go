package ingestion

import (
	"context"
	"time"
)

// Source reads the raw cell grid of one spreadsheet range.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Fetch returns the rows of rangeLabel in sheet order. Cells are the
	// displayed text of the sheet. An empty range is an error.
	Fetch(ctx context.Context, spreadsheetID, rangeLabel string) ([][]string, error)
}

// Observer receives import outcomes. metrics.Collector implements it.
type Observer interface {
	ObserveImport(network, status string, rows, samples int, duration time.Duration)
	ObserveSaveFailures(network string, n int)
}

type noopObserver struct{}

func (noopObserver) ObserveImport(string, string, int, int, time.Duration) {}
func (noopObserver) ObserveSaveFailures(string, int)                       {}
