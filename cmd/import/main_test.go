package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/socialpulse/socialpulse/internal/config"
	"github.com/socialpulse/socialpulse/internal/ingestion"
	"github.com/socialpulse/socialpulse/internal/logging"
	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/sheets"
)

type scriptedRunner struct {
	errs  map[string]error
	calls []string
}

func (r *scriptedRunner) Run(ctx context.Context, network string) (*ingestion.ImportResult, error) {
	r.calls = append(r.calls, network)
	if err := r.errs[network]; err != nil {
		return nil, err
	}
	return &ingestion.ImportResult{Run: models.ImportRun{
		Network:  models.Network(network),
		Status:   models.ImportStatusCompleted,
		Tabs:     []string{"2019", "2020"},
		Rows:     10,
		Accounts: 4,
		Samples:  8,
	}}, nil
}

func TestSelectNetworks(t *testing.T) {
	layout := &config.SheetsLayout{Networks: map[string]config.NetworkLayout{
		"youtube":  {Tabs: []string{"a"}, Categories: []string{"h"}},
		"facebook": {Tabs: []string{"a"}, Categories: []string{"h"}},
	}}

	got, err := selectNetworks(nil, layout)
	if err != nil {
		t.Fatalf("selectNetworks returned error: %v", err)
	}
	if strings.Join(got, ",") != "facebook,youtube" {
		t.Fatalf("expected sorted configured networks, got %v", got)
	}

	if _, err := selectNetworks([]string{"twitter"}, layout); err == nil {
		t.Fatal("expected error for a network without layout")
	}
	if _, err := selectNetworks([]string{"myspace"}, layout); !errors.Is(err, models.ErrUnknownNetwork) {
		t.Fatalf("expected ErrUnknownNetwork, got %v", err)
	}
}

func TestImportAllPrintsSummary(t *testing.T) {
	runner := &scriptedRunner{errs: map[string]error{"instagram": errors.New("boom")}}
	var out bytes.Buffer

	err := importAll(context.Background(), runner, []string{"facebook", "instagram", "youtube"}, &out, logging.Discard())
	if err == nil || !strings.Contains(err.Error(), "instagram: boom") {
		t.Fatalf("expected joined instagram error, got %v", err)
	}
	if len(runner.calls) != 3 {
		t.Fatalf("a failed network must not stop the others, calls: %v", runner.calls)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %q", out.String())
	}
	if !strings.Contains(lines[1], "completed") || !strings.Contains(lines[2], "failed") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}

func TestImportAllStopsWhenUnauthorized(t *testing.T) {
	runner := &scriptedRunner{errs: map[string]error{"facebook": sheets.ErrNotAuthorized}}

	err := importAll(context.Background(), runner, []string{"facebook", "youtube"}, &bytes.Buffer{}, logging.Discard())
	if !errors.Is(err, sheets.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected imports to stop, calls: %v", runner.calls)
	}
}
