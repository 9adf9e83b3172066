package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to hyperleaf.db")
	owner := flag.String("owner", "", "only export this owner's predictions")
	last := flag.Int("last", 20, "number of most recent predictions to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/hyperleaf.db --out path/to/fixture.json [--owner name] [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *owner, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, owner string, last int, outPath string) error {
	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	records, err := store.List(owner, last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no predictions found in %s", dbPath)
	}
	// Store returns newest first; fixtures read chronologically.
	slices.Reverse(records)

	desc := fmt.Sprintf("History export: %d predictions from %s", len(records), dbPath)
	if owner != "" {
		desc += " for " + owner
	}
	fixture := replay.FromRecords(desc, records)

	// Refuse to write a baseline that does not replay cleanly today.
	for _, r := range replay.Run(fixture) {
		if !r.Pass {
			return fmt.Errorf("case %s does not replay: %s", r.Name, r.Reason)
		}
	}

	if err := fixture.Save(outPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %d cases to %s\n", len(fixture.Cases), outPath)
	return nil
}

// #endregion export
