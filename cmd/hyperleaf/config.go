package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hyperleaf/hyperleaf-go/internal/config"
	"github.com/spf13/cobra"
)

// #region config
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the hyperleaf config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config to --config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", a.configPath, err)
			}
			if err := config.Default().Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config after file and environment overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printYAML(cmd.OutOrStdout(), a.cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

// #endregion config
