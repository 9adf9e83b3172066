package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"github.com/hyperleaf/hyperleaf-go/internal/replay"
)

func TestRunExportsReplayableFixture(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hyperleaf.db")
	outPath := filepath.Join(dir, "fixture.json")

	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for i := 0; i < 3; i++ {
		traits := agronomy.Traits{GrainWeight: 5000 + 500*float64(i), FertilizerScore: 0.2 * float64(i)}
		field := predict.Field{AreaAcres: 1 + float64(i), FertilizerRateInr: 6}
		m, err := agronomy.ComputeFor(traits, field.AreaAcres, field.FertilizerRateInr)
		if err != nil {
			t.Fatalf("ComputeFor: %v", err)
		}
		_, err = store.Save(history.Record{
			Owner: "alice", Cultivar: predict.Cultivars[i], Traits: traits, Field: field, Metrics: m,
			CreatedAt: time.Date(2026, 6, 1, i, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	store.Close()

	if err := run(dbPath, "alice", 2, outPath); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := replay.LoadFixture(outPath)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(f.Cases))
	}
	// Chronological: the older of the two most recent comes first.
	if f.Cases[0].GrainWeight != 5500 {
		t.Fatalf("expected chronological order, first grain weight %v", f.Cases[0].GrainWeight)
	}
}

func TestRunRejectsDriftedRows(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hyperleaf.db")
	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.Save(history.Record{
		Cultivar: "Kvium",
		Traits:   agronomy.Traits{GrainWeight: 5000},
		Field:    predict.Field{AreaAcres: 1},
		Metrics:  agronomy.Metrics{TotalProductionQuintals: 1},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Close()

	if err := run(dbPath, "", 0, filepath.Join(dir, "out.json")); err == nil {
		t.Fatal("expected drift error")
	}
}

func TestRunEmptyDB(t *testing.T) {
	dir := t.TempDir()
	if err := run(filepath.Join(dir, "empty.db"), "", 0, filepath.Join(dir, "out.json")); err == nil {
		t.Fatal("expected error for empty history")
	}
}
