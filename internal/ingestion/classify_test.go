package ingestion

import (
	"testing"
)

func TestClassifyRows(t *testing.T) {
	rows := [][]string{
		{"Nombre", "Perfil"},
		{"Diario A", "https://facebook.com/a"},
		{""},
		{"Politicos"},
		{"Medios", "https://facebook.com/m"},
		{"Candidato B", "https://facebook.com/b"},
		{"Medios"},
		{"Radio C", "-"},
	}
	categories := []string{"Nombre", "Politicos", "Medios"}

	got := ClassifyRows(rows, categories, 0)

	want := []struct {
		index    int
		name     string
		category string
	}{
		{1, "Diario A", "Nombre"},
		{5, "Candidato B", "Medios"},
		{6, "Medios", "Medios"},
		{7, "Radio C", "Medios"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Index != w.index || got[i].Cells[0] != w.name || got[i].Category != w.category {
			t.Errorf("row %d = {%d %q %q}, want {%d %q %q}",
				i, got[i].Index, got[i].Cells[0], got[i].Category, w.index, w.name, w.category)
		}
	}
}

func TestClassifyRowsMarkersAdvanceInOrder(t *testing.T) {
	rows := [][]string{{"Header"}, {"A"}, {"x"}, {"B"}, {"y"}}

	got := ClassifyRows(rows, []string{"Header", "A", "B"}, 0)

	if len(got) != 2 {
		t.Fatalf("expected 2 data rows, got %+v", got)
	}
	if got[0].Cells[0] != "x" || got[0].Category != "A" || got[0].Index != 2 {
		t.Errorf("x should be tagged A, got %+v", got[0])
	}
	if got[1].Cells[0] != "y" || got[1].Category != "B" || got[1].Index != 4 {
		t.Errorf("y should be tagged B, got %+v", got[1])
	}
}

func TestClassifyRowsEdgeCases(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		if got := ClassifyRows([][]string{{"Nombre"}}, []string{"Nombre"}, 0); len(got) != 0 {
			t.Fatalf("expected no rows, got %+v", got)
		}
	})

	t.Run("no categories", func(t *testing.T) {
		got := ClassifyRows([][]string{{"h"}, {"a"}}, nil, 0)
		if len(got) != 1 || got[0].Category != "" {
			t.Fatalf("unexpected rows %+v", got)
		}
	})

	t.Run("markers exhausted", func(t *testing.T) {
		got := ClassifyRows([][]string{{"h"}, {"B"}, {"B"}}, []string{"A", "B"}, 0)
		if len(got) != 1 || got[0].Index != 2 || got[0].Category != "B" {
			t.Fatalf("second B should be data once markers are exhausted, got %+v", got)
		}
	})

	t.Run("name column beyond short row", func(t *testing.T) {
		got := ClassifyRows([][]string{{"h", "h"}, {"x"}, {"x", "y"}}, []string{"A"}, 1)
		if len(got) != 1 || got[0].Index != 2 {
			t.Fatalf("short row should be skipped, got %+v", got)
		}
	})
}
