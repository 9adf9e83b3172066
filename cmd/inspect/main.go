package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to hyperleaf.db")
	owner := flag.String("owner", "", "only show this owner's predictions (default: all owners)")
	last := flag.Int("last", 20, "show N most recent predictions")
	id := flag.String("id", "", "show single prediction detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/hyperleaf.db [--owner name] [--last N] [--id id] [--json]")
		os.Exit(2)
	}

	store, err := history.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *id != "" {
		err = runDetailMode(os.Stdout, store, *id, *jsonOut)
	} else {
		err = runListMode(os.Stdout, store, *owner, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		store.Close()
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ID         string  `json:"id"`
	Owner      string  `json:"owner"`
	Cultivar   string  `json:"cultivar_prediction"`
	Confidence float64 `json:"confidence"`
	Area       float64 `json:"field_area_acres"`
	Production float64 `json:"total_production_quintals"`
	Urea       float64 `json:"urea_required_kg"`
	Cost       float64 `json:"fertilizer_cost_inr"`
	CreatedAt  string  `json:"created_at"`
}

func runListMode(w io.Writer, store *history.Store, owner string, last int, jsonOut bool) error {
	records, err := store.List(owner, last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no predictions found")
		return nil
	}

	// Store returns newest first; print chronologically.
	rows := make([]listRow, len(records))
	for i, r := range records {
		rows[len(records)-1-i] = listRow{
			ID:         r.ID,
			Owner:      r.Owner,
			Cultivar:   r.Cultivar,
			Confidence: r.Confidence,
			Area:       r.Field.AreaAcres,
			Production: r.Metrics.TotalProductionQuintals,
			Urea:       r.Metrics.UreaRequiredKg,
			Cost:       r.Metrics.FertilizerCostInr,
			CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}
	printListTable(w, rows)
	return nil
}

func printListTable(w io.Writer, rows []listRow) {
	fmt.Fprintf(w, "%-8s  %-10s  %-10s  %6s  %8s  %10s  %9s  %10s  %s\n",
		"ID", "Owner", "Cultivar", "Conf", "Acres", "Quintals", "Urea kg", "Cost INR", "Time")
	fmt.Fprintf(w, "%-8s+-%-10s+-%-10s+-%6s+-%8s+-%10s+-%9s+-%10s+-%s\n",
		"--------", "----------", "----------", "------", "--------", "----------", "---------", "----------", "--------------------")
	counts := map[string]int{}
	for _, r := range rows {
		fmt.Fprintf(w, "%-8s  %-10s  %-10s  %5.1f%%  %8.2f  %10.2f  %9.2f  %10.2f  %s\n",
			shortID(r.ID), truncate(r.Owner, 10), r.Cultivar, r.Confidence*100,
			r.Area, r.Production, r.Urea, r.Cost, r.CreatedAt)
		counts[r.Cultivar]++
	}

	fmt.Fprintf(w, "\nCultivar counts:\n")
	for _, c := range predict.Cultivars {
		fmt.Fprintf(w, "  %-10s %d\n", c, counts[c])
	}
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	history.Record
	Probabilities []float64 `json:"cultivar_probs"`
	Reconstructed bool      `json:"probabilities_reconstructed"`
}

func runDetailMode(w io.Writer, store *history.Store, id string, jsonOut bool) error {
	rec, err := store.Get(id)
	if err != nil {
		return err
	}
	out := detailOutput{
		Record:        rec,
		Probabilities: rec.ProbabilityVector(),
		Reconstructed: len(rec.Probabilities) != predict.NumClasses,
	}
	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "ID:         %s\n", rec.ID)
	fmt.Fprintf(w, "Owner:      %s\n", rec.Owner)
	fmt.Fprintf(w, "Image:      %s\n", rec.ImagePath)
	fmt.Fprintf(w, "Created:    %s\n", rec.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "Cultivar:   %s (%.1f%%)\n", rec.Cultivar, rec.Confidence*100)

	label := "Probabilities:"
	if out.Reconstructed {
		label = "Probabilities (reconstructed):"
	}
	fmt.Fprintf(w, "\n%s\n", label)
	for i, c := range predict.Cultivars {
		fmt.Fprintf(w, "  %-10s %6.2f%%  %s\n", c, out.Probabilities[i]*100, bar(out.Probabilities[i]))
	}

	fmt.Fprintf(w, "\nTraits:\n")
	fmt.Fprintf(w, "  Grain weight:     %.3f mg\n", rec.Traits.GrainWeight)
	fmt.Fprintf(w, "  Gsw:              %.4f\n", rec.Traits.Gsw)
	fmt.Fprintf(w, "  PhiPS2:           %.4f\n", rec.Traits.PhiPS2)
	fmt.Fprintf(w, "  Fertilizer score: %.4f\n", rec.Traits.FertilizerScore)

	fmt.Fprintf(w, "\nField:\n")
	fmt.Fprintf(w, "  Area:             %.2f acres\n", rec.Field.AreaAcres)
	fmt.Fprintf(w, "  Urea rate:        %.2f INR/kg\n", rec.Field.FertilizerRateInr)
	fmt.Fprintf(w, "  Production:       %.2f quintals\n", rec.Metrics.TotalProductionQuintals)
	fmt.Fprintf(w, "  Urea required:    %.2f kg\n", rec.Metrics.UreaRequiredKg)
	fmt.Fprintf(w, "  Fertilizer cost:  %.2f INR\n", rec.Metrics.FertilizerCostInr)
	return nil
}

// #endregion detail-mode

// #region output

func bar(p float64) string {
	n := int(p*20 + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 20 {
		n = 20
	}
	return strings.Repeat("#", n)
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// #endregion output
