package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialpulse/socialpulse/internal/models"
)

func TestMemoryAccountRepository_SaveUpsertsByName(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	first := &models.Account{
		Network: models.NetworkTwitter,
		Name:    "Diario Uno",
		History: []models.Sample{{Metrics: map[string]int64{"followers": 10}}},
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	again := &models.Account{
		Network: models.NetworkTwitter,
		Name:    "Diario Uno",
		History: []models.Sample{{Metrics: map[string]int64{"followers": 11}}, {Metrics: map[string]int64{"followers": 12}}},
	}
	if err := repo.Save(ctx, again); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("re-import should keep id %s, got %s", first.ID, again.ID)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected 1 account, got %d", repo.Count())
	}

	other := &models.Account{Network: models.NetworkFacebook, Name: "Diario Uno"}
	if err := repo.Save(ctx, other); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("same name on another network must be a different account")
	}

	got, err := repo.Get(ctx, models.NetworkTwitter, first.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got.History) != 2 {
		t.Errorf("expected replaced history of 2 samples, got %d", len(got.History))
	}
}

func TestMemoryAccountRepository_GetAndList(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alfa"} {
		a := &models.Account{Network: models.NetworkYouTube, Name: name, History: []models.Sample{{}}}
		if err := repo.Save(ctx, a); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	list, err := repo.List(ctx, models.NetworkYouTube)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alfa" || list[1].Name != "Zeta" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[0].History != nil {
		t.Error("List must not include history")
	}

	if _, err := repo.Get(ctx, models.NetworkYouTube, "missing"); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, models.NetworkTwitter, list[0].ID); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("account of another network should not be found, got %v", err)
	}
}

func TestMemoryAccountRepository_SaveHonoursCancellation(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Save(ctx, &models.Account{Network: models.NetworkFacebook, Name: "x"}); err == nil {
		t.Fatal("expected cancelled context error")
	}
}

func TestMemoryImportRunRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryImportRunRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := models.ImportRun{Network: models.NetworkInstagram, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Log(ctx, run); err != nil {
			t.Fatalf("Log returned error: %v", err)
		}
	}
	_ = repo.Log(ctx, models.ImportRun{Network: models.NetworkTwitter})

	runs, err := repo.List(ctx, models.NetworkInstagram, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Error("runs should be newest first")
	}
	if runs[0].ID == "" {
		t.Error("Log should assign an id")
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{0: 50, -3: 50, 10: 10, 501: 500}
	for in, want := range tests {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
