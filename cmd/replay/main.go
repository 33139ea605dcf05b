package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/replay"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the audit run database (DB mode)")
	runID := flag.String("run", "", "run to replay in DB mode (default latest)")
	reportPath := flag.String("report", "", "path to a JSON audit report (report mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	tolerance := flag.Float64("tolerance", 1e-9, "absolute tolerance on statistics")
	flag.Parse()

	modes := 0
	for _, p := range []string{*dbPath, *reportPath, *fixturePath} {
		if p != "" {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/audit.db [--run id]")
		fmt.Fprintln(os.Stderr, "       replay --report path/to/audit_report.json")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	opts := replay.DefaultOptions()
	opts.Tolerance = *tolerance
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	var exitCode int
	switch {
	case *fixturePath != "":
		exitCode = runFixtureMode(*fixturePath, opts)
	case *reportPath != "":
		exitCode = runReportMode(*reportPath, opts)
	default:
		exitCode = runDBMode(*dbPath, *runID, opts)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region modes

func runDBMode(dbPath, runID string, opts replay.Options) int {
	s, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer s.Close()

	var orig audit.Report
	if runID == "" {
		orig, err = s.LatestRun()
	} else {
		orig, err = s.GetRun(runID)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load run: %v\n", err)
		return 2
	}
	return replayReport(orig, opts)
}

func runReportMode(path string, opts replay.Options) int {
	orig, err := audit.LoadReport(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load report: %v\n", err)
		return 2
	}
	return replayReport(orig, opts)
}

func replayReport(orig audit.Report, opts replay.Options) int {
	fmt.Printf("replaying run %s (seed %d)\n\n", orig.RunID, orig.Seed)
	replayed, comps, err := replay.Replay(context.Background(), replay.ConfigFor(orig), replay.ExpectedFromReport(orig), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}
	return printComparison(comps, orig.Classification, replayed.Classification)
}

func runFixtureMode(path string, opts replay.Options) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Printf("fixture: %s\n\n", f.Description)
	}
	replayed, comps, err := replay.Replay(context.Background(), f.ToAuditConfig(), f.ToExpected(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}
	expected := f.ExpectedClassification
	if expected == "" {
		expected = replayed.Classification
	}
	return printComparison(comps, expected, replayed.Classification)
}

// #endregion modes

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(comps []replay.Comparison, expected, replayed audit.Classification) int {
	fmt.Printf("%-26s| %-9s| %-9s| %s\n", "Sub-test", "Expected", "Replayed", "Match")
	fmt.Printf("%-26s+%-10s+%-10s+%s\n",
		"--------------------------", "----------", "----------", "------")

	for _, c := range comps {
		got := outcome(c.Replayed)
		if c.Missing {
			got = "missing"
		}
		match := "OK"
		if !c.Match() {
			match = "DIFF"
			if c.Drift != "" {
				match += " " + c.Drift
			}
		}
		fmt.Printf("%-26s| %-9s| %-9s| %s\n", c.Test, outcome(c.Expected), got, match)
	}

	s := replay.Summarize(comps, expected, replayed)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", s.Total, s.Matches, s.Diverge)
	fmt.Printf("Classification: expected %s, replayed %s\n", s.Expected, s.Classification)

	if s.Diverge > 0 || s.Expected != s.Classification {
		return 1
	}
	return 0
}

func outcome(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

// #endregion output
