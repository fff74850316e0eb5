package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/socialpulse/socialpulse/internal/config"
	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/store"
)

type fakeSource struct {
	tabs   map[string][][]string
	errs   map[string]error
	delays map[string]time.Duration

	mu      sync.Mutex
	fetched []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context, spreadsheetID, rangeLabel string) ([][]string, error) {
	if d := f.delays[rangeLabel]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.fetched = append(f.fetched, rangeLabel)
	f.mu.Unlock()
	if err := f.errs[rangeLabel]; err != nil {
		return nil, err
	}
	return f.tabs[rangeLabel], nil
}

type failingRepo struct {
	*store.MemoryAccountRepository
	failNames map[string]bool
}

func (r *failingRepo) Save(ctx context.Context, a *models.Account) error {
	if r.failNames[a.Name] {
		return fmt.Errorf("disk full")
	}
	return r.MemoryAccountRepository.Save(ctx, a)
}

type recordingObserver struct {
	status   string
	rows     int
	samples  int
	failures int
}

func (o *recordingObserver) ObserveImport(network, status string, rows, samples int, d time.Duration) {
	o.status, o.rows, o.samples = status, rows, samples
}

func (o *recordingObserver) ObserveSaveFailures(network string, n int) { o.failures += n }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twitterLayout() *config.SheetsLayout {
	return &config.SheetsLayout{Networks: map[string]config.NetworkLayout{
		"twitter": {
			SpreadsheetID: "sheet-1",
			Tabs:          []string{"2019", "2020"},
			Categories:    []string{"Nombre", "Politicos"},
		},
	}}
}

func twitterTabs() map[string][][]string {
	return map[string][][]string{
		"2019": {
			{"Nombre", "Perfil", "Tweets", "Siguiendo", "Seguidores", "Me gusta", "Momentos", "Fecha"},
			{"Diario", "https://twitter.com/diario", "100", "10", "1.000", "5", "0", "15/12/2019"},
			{"Politicos"},
			{"Senadora", "https://twitter.com/senadora", "50", "S", "2,000", "-", "1", ""},
		},
		"2020": {
			{"Nombre", "Perfil", "Tweets", "Siguiendo", "Seguidores", "Me gusta", "Momentos", "Fecha"},
			{"Diario", "https://twitter.com/diario", "120", "10", "1.100", "6", "0", ""},
			{"Politicos"},
			{"Senadora", "https://twitter.com/senadora", "55", "3", "2,100", "2", "1", "10/01/2020"},
		},
	}
}

func TestImporterRun(t *testing.T) {
	// The first tab is slower so completion order differs from tab order.
	source := &fakeSource{tabs: twitterTabs(), delays: map[string]time.Duration{"2019": 20 * time.Millisecond}}
	st := store.NewMemory()
	observer := &recordingObserver{}

	importer := NewImporter(source, twitterLayout(), st.Accounts, st.Runs, observer, testLogger(), DefaultImporterConfig())

	result, err := importer.Run(context.Background(), "twitter")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Run.Status != models.ImportStatusCompleted || result.Run.Accounts != 2 || result.Run.Samples != 4 || result.Run.Rows != 4 {
		t.Fatalf("unexpected run %+v", result.Run)
	}
	if observer.status != "completed" || observer.samples != 4 {
		t.Errorf("observer not notified: %+v", observer)
	}

	accounts, err := st.Accounts.List(context.Background(), models.NetworkTwitter)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 stored accounts, got %d", len(accounts))
	}

	var diario, senadora *models.Account
	for _, a := range result.Accounts {
		switch a.Name {
		case "Diario":
			diario = a
		case "Senadora":
			senadora = a
		}
	}
	if diario == nil || senadora == nil {
		t.Fatal("expected Diario and Senadora")
	}
	if senadora.Category != "Politicos" || diario.Category != "Nombre" {
		t.Errorf("unexpected categories %q %q", diario.Category, senadora.Category)
	}

	dec15 := time.Date(2019, 12, 15, 0, 0, 0, 0, time.UTC)
	if d := senadora.History[0].Date; d == nil || !d.Equal(dec15) {
		t.Errorf("senadora 2019 sample should carry 15/12/2019, got %v", d)
	}
	// Carry-forward crosses tab boundaries.
	if d := diario.History[1].Date; d == nil || !d.Equal(dec15) {
		t.Errorf("diario 2020 sample should carry 15/12/2019, got %v", d)
	}
	if diario.History[1].Metrics["followers"] != 1100 {
		t.Errorf("unexpected followers %v", diario.History[1].Metrics)
	}
	if _, ok := senadora.History[0].Metrics["following"]; ok {
		t.Error("placeholder S should leave following absent")
	}

	runs, _ := st.Runs.List(context.Background(), models.NetworkTwitter, 10)
	if len(runs) != 1 || runs[0].Status != models.ImportStatusCompleted {
		t.Fatalf("expected one completed run, got %+v", runs)
	}
}

func TestImporterRerunReplacesHistory(t *testing.T) {
	source := &fakeSource{tabs: twitterTabs()}
	st := store.NewMemory()
	importer := NewImporter(source, twitterLayout(), st.Accounts, st.Runs, nil, testLogger(), DefaultImporterConfig())

	first, err := importer.Run(context.Background(), "twitter")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := importer.Run(context.Background(), "twitter")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Accounts[0].ID != second.Accounts[0].ID {
		t.Error("re-import should keep account ids")
	}
	got, err := st.Accounts.Get(context.Background(), models.NetworkTwitter, second.Accounts[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.History) != 2 {
		t.Errorf("history should be rebuilt, not appended: %d samples", len(got.History))
	}
}

func TestImporterFetchFailures(t *testing.T) {
	tests := map[string]*fakeSource{
		"source error": {tabs: twitterTabs(), errs: map[string]error{"2020": errors.New("quota exceeded")}},
		"empty range":  {tabs: map[string][][]string{"2019": twitterTabs()["2019"]}},
	}

	for name, source := range tests {
		t.Run(name, func(t *testing.T) {
			st := store.NewMemory()
			importer := NewImporter(source, twitterLayout(), st.Accounts, st.Runs, nil, testLogger(), DefaultImporterConfig())

			_, err := importer.Run(context.Background(), "twitter")
			var upstream *models.UpstreamFetchError
			if !errors.As(err, &upstream) {
				t.Fatalf("expected UpstreamFetchError, got %v", err)
			}
			if upstream.Range != "2020" || upstream.Source != "fake" {
				t.Errorf("unexpected error fields %+v", upstream)
			}
			if st.Accounts.(*store.MemoryAccountRepository).Count() != 0 {
				t.Error("nothing should be persisted after a failed fetch")
			}

			runs, _ := st.Runs.List(context.Background(), models.NetworkTwitter, 10)
			if len(runs) != 1 || runs[0].Status != models.ImportStatusFailed || runs[0].Error == "" {
				t.Fatalf("expected one failed run, got %+v", runs)
			}
		})
	}
}

func TestImporterPersistenceFailure(t *testing.T) {
	repo := &failingRepo{
		MemoryAccountRepository: store.NewMemoryAccountRepository(),
		failNames:               map[string]bool{"Senadora": true},
	}
	observer := &recordingObserver{}
	runs := store.NewMemoryImportRunRepository()
	importer := NewImporter(&fakeSource{tabs: twitterTabs()}, twitterLayout(), repo, runs, observer, testLogger(),
		ImporterConfig{SaveConcurrency: 1})

	_, err := importer.Run(context.Background(), "twitter")
	var persistence *models.PersistenceError
	if !errors.As(err, &persistence) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if persistence.Failed != 1 || observer.failures != 1 || observer.status != "failed" {
		t.Errorf("unexpected failure accounting: err=%+v observer=%+v", persistence, observer)
	}
	// Records saved before the failure stay saved.
	if repo.Count() != 1 {
		t.Errorf("expected the healthy account to be saved, count=%d", repo.Count())
	}
}

func TestImporterRejectsUnconfiguredNetworks(t *testing.T) {
	st := store.NewMemory()
	observer := &recordingObserver{}
	importer := NewImporter(&fakeSource{}, twitterLayout(), st.Accounts, st.Runs, observer, testLogger(), DefaultImporterConfig())

	if _, err := importer.Run(context.Background(), "myspace"); !errors.Is(err, models.ErrUnknownNetwork) {
		t.Fatalf("expected ErrUnknownNetwork, got %v", err)
	}
	if _, err := importer.Run(context.Background(), "youtube"); err == nil {
		t.Fatal("expected error for a network without layout")
	}
	if observer.status != "failed" {
		t.Errorf("configuration failures should be observed as failed runs, got %q", observer.status)
	}

	runs, err := st.Runs.List(context.Background(), models.NetworkYouTube, 10)
	if err != nil {
		t.Fatalf("List runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != models.ImportStatusFailed || runs[0].Error == "" {
		t.Fatalf("expected one failed youtube run, got %+v", runs)
	}
	if runs[0].FinishedAt.IsZero() {
		t.Error("failed run should be stamped as finished")
	}
}
