package main

import (
	"fmt"

	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/replay"
	"github.com/spf13/cobra"
)

// #region replay
func newReplayCmd(a *app) *cobra.Command {
	var (
		fixturePath string
		dbPath      string
		owner       string
		last        int
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay agronomy fixtures against the calculator",
		Long: `Runs calculator regression cases and reports drift.

Without flags the built-in baseline is replayed. --fixture replays a JSON
fixture; --db replays saved predictions, expecting their stored metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fixturePath != "" && dbPath != "" {
				return fmt.Errorf("--fixture and --db are mutually exclusive")
			}

			var f *replay.Fixture
			switch {
			case fixturePath != "":
				var err error
				if f, err = replay.LoadFixture(fixturePath); err != nil {
					return err
				}
			case dbPath != "":
				store, err := history.NewStore(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				records, err := store.List(owner, last)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return fmt.Errorf("no saved predictions in %s", dbPath)
				}
				f = replay.FromRecords("history "+dbPath, records)
			default:
				f = replay.Default()
			}

			results := replay.Run(f)
			w := cmd.OutOrStdout()
			if f.Description != "" {
				fmt.Fprintf(w, "%s\n\n", f.Description)
			}
			for _, r := range results {
				if r.Pass {
					fmt.Fprintf(w, "PASS  %s\n", r.Name)
				} else {
					fmt.Fprintf(w, "FAIL  %s: %s\n", r.Name, r.Reason)
				}
			}
			s := replay.Summarize(results)
			fmt.Fprintf(w, "\n%d/%d passed\n", s.Passed, s.Total)
			if s.Failed > 0 {
				return fmt.Errorf("%d of %d cases failed", s.Failed, s.Total)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&fixturePath, "fixture", "", "fixture JSON to replay")
	f.StringVar(&dbPath, "db", "", "history database to replay")
	f.StringVar(&owner, "owner", "", "with --db, only this owner's predictions")
	f.IntVar(&last, "last", 0, "with --db, only the N most recent predictions (0 = all)")
	return cmd
}

// #endregion replay
