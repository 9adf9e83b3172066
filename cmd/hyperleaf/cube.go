package main

import (
	"fmt"
	"math/rand"

	"github.com/hyperleaf/hyperleaf-go/internal/model"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/spf13/cobra"
)

// #region cube
func newCubeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cube",
		Short: "Create or describe raw HLCB cube files",
	}
	cmd.AddCommand(newCubeSynthCmd(), newCubeInfoCmd(a))
	return cmd
}

func newCubeSynthCmd() *cobra.Command {
	var (
		out                  string
		bands, height, width int
		seed                 int64
		scale                float32
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic cube with uniform random reflectance",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(seed))
			c := tensor.Zeros(bands, height, width)
			for i := range c.Data {
				c.Data[i] = rng.Float32() * scale
			}
			if err := tensor.SaveRaw(out, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%dx%d cube to %s\n", bands, height, width, out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "output path (required)")
	f.IntVar(&bands, "bands", model.DefaultArchitecture().Bands, "spectral bands")
	f.IntVar(&height, "height", 48, "rows")
	f.IntVar(&width, "width", 352, "columns")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.Float32Var(&scale, "scale", 1, "upper bound of generated values")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newCubeInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <cube>",
		Short: "Print shape, range and validation status of a cube",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := tensor.LoadRaw(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Shape:    %v\n", c.Shape())
			fmt.Fprintf(w, "Max:      %g\n", c.Max())
			_, rescaled := a.cfg.RescalePolicy().Apply(c)
			fmt.Fprintf(w, "Rescaled: %t (policy %s)\n", rescaled, a.cfg.RescalePolicy())
			if err := c.Validate(model.DefaultArchitecture().Bands); err != nil {
				fmt.Fprintf(w, "Valid:    no (%v)\n", err)
				return nil
			}
			fmt.Fprintln(w, "Valid:    yes")
			return nil
		},
	}
}

// #endregion cube
