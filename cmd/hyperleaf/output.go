package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"gopkg.in/yaml.v3"
)

// #region output
func printResult(w io.Writer, res predict.Result, id string) {
	if id != "" {
		fmt.Fprintf(w, "ID:          %s\n", id)
	}
	fmt.Fprintf(w, "Cultivar:    %s (%.1f%%)\n", res.Cultivar, res.Confidence*100)
	for i, name := range predict.Cultivars {
		fmt.Fprintf(w, "  %-10s %6.2f%%\n", name, res.Probabilities[i]*100)
	}
	fmt.Fprintf(w, "Traits:\n")
	fmt.Fprintf(w, "  %-16s %12.3f mg\n", "grain weight", res.Traits.GrainWeight)
	fmt.Fprintf(w, "  %-16s %12.4f\n", "gsw", res.Traits.Gsw)
	fmt.Fprintf(w, "  %-16s %12.4f\n", "phiPS2", res.Traits.PhiPS2)
	fmt.Fprintf(w, "  %-16s %12.4f\n", "fertilizer score", res.Traits.FertilizerScore)
	fmt.Fprintf(w, "Field (%.2f acres at %.2f INR/kg):\n", res.Field.AreaAcres, res.Field.FertilizerRateInr)
	fmt.Fprintf(w, "  %-16s %12.2f quintals\n", "production", res.Metrics.TotalProductionQuintals)
	fmt.Fprintf(w, "  %-16s %12.2f kg\n", "urea", res.Metrics.UreaRequiredKg)
	fmt.Fprintf(w, "  %-16s %12.2f INR\n", "fertilizer cost", res.Metrics.FertilizerCostInr)
	if res.Rescaled {
		fmt.Fprintln(w, "Note: input exceeded 1 and was divided by its maximum.")
	}
}

func printYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// #endregion output
