package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the audit run database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	rates := flag.Bool("rates", false, "show per-sub-test pass rates across runs")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/audit.db [--last N] [--run id] [--rates] [--json]")
		os.Exit(2)
	}

	s, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	switch {
	case *runID != "":
		err = runDetailMode(s, *runID, *jsonOut)
	case *rates:
		err = runRatesMode(s, *jsonOut)
	default:
		err = runListMode(s, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID          string `json:"run_id"`
	Seed           uint64 `json:"seed"`
	GatesPassed    int    `json:"gates_passed"`
	Classification string `json:"classification"`
	CreatedAt      string `json:"created_at"`
}

func runListMode(s *store.Store, last int, jsonOut bool) error {
	runs, err := s.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// store returns DESC, reverse for chronological
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[len(runs)-1-i] = listRow{
			RunID:          r.RunID,
			Seed:           r.Seed,
			GatesPassed:    r.GatesPassed,
			Classification: r.Classification,
			CreatedAt:      r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %20s  %5s  %-10s  %s\n", "Run", "Seed", "Gates", "Class", "Time")
	fmt.Printf("%-10s+-%20s+-%5s+-%-10s+-%s\n", "----------", "--------------------", "-----", "----------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %20d  %3d/5  %-10s  %s\n", shortID(r.RunID), r.Seed, r.GatesPassed, r.Classification, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(s *store.Store, runID string, jsonOut bool) error {
	report, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	if jsonOut {
		data, err := audit.MarshalReport(report)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Run:       %s\n", report.RunID)
	fmt.Printf("Created:   %s\n", report.Timestamp.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Seed:      %d\n", report.Seed)
	fmt.Printf("Parallel:  %v\n\n", report.Parallel)
	return audit.WriteTable(os.Stdout, report)
}

// #endregion detail-mode

// #region rates-mode

type rateRow struct {
	Gate   string  `json:"gate"`
	Test   string  `json:"test"`
	Runs   int     `json:"runs"`
	Passed int     `json:"passed"`
	Rate   float64 `json:"rate"`
}

func runRatesMode(s *store.Store, jsonOut bool) error {
	rates, err := s.PassRates()
	if err != nil {
		return err
	}
	if len(rates) == 0 {
		fmt.Fprintln(os.Stderr, "no results found")
		return nil
	}

	rows := make([]rateRow, len(rates))
	for i, r := range rates {
		rows[i] = rateRow{Gate: r.Gate, Test: r.Test, Runs: r.Runs, Passed: r.Passed, Rate: r.Rate()}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-18s  %-24s  %5s  %6s\n", "Gate", "Test", "Runs", "Rate")
	for _, r := range rows {
		fmt.Printf("%-18s  %-24s  %5d  %5.1f%%\n", r.Gate, r.Test, r.Runs, 100*r.Rate)
	}
	return nil
}

// #endregion rates-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
