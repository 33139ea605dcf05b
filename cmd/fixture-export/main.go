package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/replay"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the audit run database")
	runID := flag.String("run", "", "run to export (default latest)")
	scale := flag.Float64("scale", 1.0, "sample-size scale the run was made with")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/audit.db --out path/to/fixture.json [--run id] [--scale f]")
		os.Exit(2)
	}

	if err := run(*dbPath, *runID, *scale, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, runID string, scale float64, outPath string) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer s.Close()

	var r audit.Report
	if runID == "" {
		r, err = s.LatestRun()
	} else {
		r, err = s.GetRun(runID)
	}
	if err != nil {
		return err
	}

	desc := fmt.Sprintf("exported from run %s (%s, %d/5 gates)", r.RunID, r.Classification, r.GatesPassed)
	f := replay.FixtureFromReport(r, desc, scale)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	fmt.Printf("exported %d sub-tests from run %s to %s\n", len(f.ExpectedResults), r.RunID, outPath)
	return nil
}

// #endregion export
