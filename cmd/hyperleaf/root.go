package main

import (
	"fmt"

	"github.com/hyperleaf/hyperleaf-go/internal/config"
	"github.com/hyperleaf/hyperleaf-go/internal/logging"
	"github.com/hyperleaf/hyperleaf-go/internal/model"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// #region app
// app carries what every subcommand needs once the root pre-run has loaded it.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) loadModel(path string) (*model.Model, error) {
	var opts []model.Option
	if !a.cfg.Model.ParallelBranches {
		opts = append(opts, model.WithSequentialBranches())
	}
	m, err := model.LoadFile(path, model.DefaultArchitecture(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return m, nil
}

func (a *app) newPredictor(m *model.Model) (*predict.Predictor, error) {
	return predict.New(m,
		predict.WithRescalePolicy(a.cfg.RescalePolicy()),
		predict.WithLogger(a.logger.Named("predict")),
	)
}

// #endregion app

// #region root
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "hyperleaf",
		Short: "Hyperspectral wheat leaf analysis",
		Long: `hyperleaf classifies wheat cultivars and estimates grain weight, stomatal
conductance, photosynthetic efficiency and fertilizer need from a 204-band
hyperspectral leaf cube, then turns those traits into field-level farming metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Logging.Level = a.logLevel
			}
			logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "hyperleaf.yaml", "config file (missing file means defaults)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newServeCmd(a),
		newPredictCmd(a),
		newWeightsCmd(a),
		newCubeCmd(a),
		newReplayCmd(a),
		newConfigCmd(a),
	)
	return root
}

// #endregion root
