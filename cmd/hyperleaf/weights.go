package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperleaf/hyperleaf-go/internal/model"
	"github.com/hyperleaf/hyperleaf-go/internal/weights"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// #region weights
func newWeightsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Create or inspect FusionNet weight files",
	}
	cmd.AddCommand(newWeightsInitCmd(a), newWeightsInspectCmd(a))
	return cmd
}

func newWeightsInitCmd(a *app) *cobra.Command {
	var (
		out  string
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a randomly initialised weight file",
		Long: `Writes a deterministic, untrained weight set for the default architecture.
Useful for smoke tests and for exercising the serving path without a trained
checkpoint; its predictions are meaningless.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = a.cfg.Model.WeightsPath
			}
			set := model.Init(model.DefaultArchitecture(), seed)
			if err := weights.Save(out, set); err != nil {
				return err
			}
			a.logger.Info("weights written",
				zap.String("path", out), zap.Int64("seed", seed), zap.Int("params", set.NumParams()))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tensors (%d parameters) to %s\n", len(set.Names()), set.NumParams(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default model.weights_path)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func newWeightsInspectCmd(a *app) *cobra.Command {
	var (
		path    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarise a weight file and check it against the architecture",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = a.cfg.Model.WeightsPath
			}
			set, err := weights.Load(path)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "File:       %s\n", path)
			keys := make([]string, 0, len(set.Metadata))
			for k := range set.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "Metadata:   %s = %s\n", k, set.Metadata[k])
			}
			fmt.Fprintf(w, "Tensors:    %d\n", len(set.Names()))
			fmt.Fprintf(w, "Parameters: %d\n", set.NumParams())
			if verbose {
				for _, name := range set.Names() {
					t, _ := set.Get(name)
					fmt.Fprintf(w, "  %-60s %v\n", name, t.Shape)
				}
			}

			_, err = model.Load(set, model.DefaultArchitecture())
			var ie *weights.IncompatibleError
			switch {
			case err == nil:
				fmt.Fprintln(w, "Compatible: yes")
			case errors.As(err, &ie):
				fmt.Fprintf(w, "Compatible: no (%v)\n", ie)
				return err
			default:
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "weights", "", "weight file (default model.weights_path)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every tensor")
	return cmd
}

// #endregion weights
