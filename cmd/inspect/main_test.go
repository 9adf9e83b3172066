package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
)

func seededStore(t *testing.T) (*history.Store, []history.Record) {
	t.Helper()
	store, err := history.NewStore(filepath.Join(t.TempDir(), "hyperleaf.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var saved []history.Record
	for i, owner := range []string{"alice", "bob", "alice"} {
		rec := history.Record{
			Owner:      owner,
			ImagePath:  "leaf.tiff",
			Cultivar:   predict.Cultivars[i],
			Confidence: 0.6,
			Traits:     agronomy.Traits{GrainWeight: 6000},
			Field:      predict.Field{AreaAcres: float64(i + 1), FertilizerRateInr: 6},
			Metrics:    agronomy.Metrics{TotalProductionQuintals: 72 * float64(i+1)},
			CreatedAt:  time.Date(2026, 4, 1, i, 0, 0, 0, time.UTC),
		}
		if i == 0 {
			rec.Probabilities = []float64{0.5, 0.25, 0.125, 0.125}
		}
		rec, err := store.Save(rec)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		saved = append(saved, rec)
	}
	return store, saved
}

func TestListModeTable(t *testing.T) {
	store, _ := seededStore(t)
	var buf bytes.Buffer
	if err := runListMode(&buf, store, "", 10, false); err != nil {
		t.Fatalf("runListMode: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Heerup") || !strings.Contains(out, "Kvium") {
		t.Fatalf("expected cultivars in table:\n%s", out)
	}
	if strings.Index(out, "Heerup") > strings.Index(out, "Rembrandt") {
		t.Fatalf("expected chronological order:\n%s", out)
	}
}

func TestListModeJSONByOwner(t *testing.T) {
	store, _ := seededStore(t)
	var buf bytes.Buffer
	if err := runListMode(&buf, store, "alice", 10, true); err != nil {
		t.Fatalf("runListMode: %v", err)
	}
	var rows []listRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Owner != "alice" {
			t.Fatalf("unexpected owner %q", r.Owner)
		}
	}
}

func TestDetailMode(t *testing.T) {
	store, saved := seededStore(t)

	var buf bytes.Buffer
	if err := runDetailMode(&buf, store, saved[0].ID, true); err != nil {
		t.Fatalf("runDetailMode: %v", err)
	}
	var got detailOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Reconstructed || got.Probabilities[0] != 0.5 {
		t.Fatalf("expected stored probabilities, got %+v", got)
	}

	buf.Reset()
	if err := runDetailMode(&buf, store, saved[1].ID, false); err != nil {
		t.Fatalf("runDetailMode: %v", err)
	}
	if !strings.Contains(buf.String(), "Probabilities (reconstructed):") {
		t.Fatalf("expected reconstructed label:\n%s", buf.String())
	}
}

func TestDetailModeMissing(t *testing.T) {
	store, _ := seededStore(t)
	if err := runDetailMode(&bytes.Buffer{}, store, "missing", false); err == nil {
		t.Fatal("expected error for missing id")
	}
}
