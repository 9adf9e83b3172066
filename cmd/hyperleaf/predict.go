package main

import (
	"fmt"
	"path/filepath"

	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// #region predict
func newPredictCmd(a *app) *cobra.Command {
	var (
		cubePath    string
		weightsPath string
		field       predict.Field
		owner       string
		record      bool
		jsonOut     bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction on a raw cube file",
		Example: `  hyperleaf predict --cube leaf.hlcb --area 2.5 --rate 6.5
  hyperleaf predict --cube leaf.hlcb --area 1 --rate 1 --json --record --owner alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if weightsPath == "" {
				weightsPath = a.cfg.Model.WeightsPath
			}
			cube, err := tensor.LoadRaw(cubePath)
			if err != nil {
				return err
			}
			m, err := a.loadModel(weightsPath)
			if err != nil {
				return err
			}
			p, err := a.newPredictor(m)
			if err != nil {
				return err
			}
			res, err := p.Predict(cmd.Context(), cube, field)
			if err != nil {
				return fmt.Errorf("predict: %w", err)
			}

			rec := history.FromResult(res, owner, filepath.Base(cubePath))
			if record {
				store, err := history.NewStore(a.cfg.History.DBPath)
				if err != nil {
					return err
				}
				defer store.Close()
				if rec, err = store.Save(rec); err != nil {
					return err
				}
				a.logger.Info("prediction recorded", zap.String("id", rec.ID), zap.String("db", a.cfg.History.DBPath))
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res, rec.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cubePath, "cube", "", "raw HLCB cube file (required)")
	f.StringVar(&weightsPath, "weights", "", "weight file (default model.weights_path)")
	f.Float64Var(&field.AreaAcres, "area", 1, "field area in acres")
	f.Float64Var(&field.FertilizerRateInr, "rate", 0, "urea price in INR per kg")
	f.StringVar(&owner, "owner", "", "owner recorded with --record")
	f.BoolVar(&record, "record", false, "save the prediction to history.db_path")
	f.BoolVar(&jsonOut, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("cube")
	return cmd
}

// #endregion predict
