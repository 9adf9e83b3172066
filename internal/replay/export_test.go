package replay

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
)

func TestFromRecords_ReplaysStoredMetrics(t *testing.T) {
	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	inputs := []struct {
		traits agronomy.Traits
		field  predict.Field
	}{
		{agronomy.Traits{GrainWeight: 6355.478, FertilizerScore: 0.5786}, predict.Field{AreaAcres: 1, FertilizerRateInr: 1}},
		{agronomy.Traits{GrainWeight: 8100.25, FertilizerScore: 1.2}, predict.Field{AreaAcres: 4.75, FertilizerRateInr: 6.2}},
		{agronomy.Traits{GrainWeight: 3900, FertilizerScore: -0.1}, predict.Field{AreaAcres: 0.3, FertilizerRateInr: 5.8}},
	}
	for i, in := range inputs {
		m, err := agronomy.ComputeFor(in.traits, in.field.AreaAcres, in.field.FertilizerRateInr)
		if err != nil {
			t.Fatalf("ComputeFor: %v", err)
		}
		_, err = store.Save(history.Record{
			Owner:     "alice",
			Cultivar:  predict.Cultivars[i],
			Traits:    in.traits,
			Field:     in.field,
			Metrics:   m,
			CreatedAt: time.Date(2026, 5, 1, i, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	records, err := store.List("alice", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	f := FromRecords("exported", records)
	if len(f.Cases) != len(inputs) {
		t.Fatalf("expected %d cases, got %d", len(inputs), len(f.Cases))
	}
	for _, r := range Run(f) {
		if !r.Pass {
			t.Errorf("case %s failed: %s", r.Name, r.Reason)
		}
	}
}
