package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/config"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/store"
)

// #region main

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to YAML config")
	seed := flag.Uint64("seed", 42, "base seed for every sub-test")
	parallel := flag.Bool("parallel", false, "run sub-tests concurrently")
	scale := flag.Float64("scale", 1.0, "multiply every sample size by this factor")
	dbPath := flag.String("db", "", "persist the run to this SQLite database")
	reportPath := flag.String("report", "", "write the JSON report here (default audit_report.json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	// explicit flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Audit.Seed = *seed
		case "parallel":
			cfg.Audit.Parallel = *parallel
		case "scale":
			cfg.Scale = *scale
		case "db":
			cfg.Store.Path = *dbPath
		case "report":
			cfg.Report.Path = *reportPath
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Δ-derivatives audit")
	fmt.Printf("  seed=%d parallel=%v scale=%g\n\n", cfg.Audit.Seed, cfg.Audit.Parallel, cfg.Scale)

	h, err := audit.NewHarness(cfg.EffectiveAudit(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "harness: %v\n", err)
		return 2
	}
	report, err := h.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: %v\n", err)
		return 1
	}

	if err := audit.WriteTable(os.Stdout, report); err != nil {
		fmt.Fprintf(os.Stderr, "print: %v\n", err)
		return 2
	}

	if cfg.Report.Path != "" {
		if err := audit.WriteReport(cfg.Report.Path, report); err != nil {
			fmt.Fprintf(os.Stderr, "report: %v\n", err)
			return 2
		}
		fmt.Printf("\nreport written to %s\n", cfg.Report.Path)
	}

	if cfg.Store.Path != "" {
		if code := persist(cfg.Store.Path, report); code != 0 {
			return code
		}
	}
	return 0
}

// #endregion main

// #region persist

func persist(dbPath string, report audit.Report) int {
	s, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer s.Close()

	id, err := s.SaveRun(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "save run: %v\n", err)
		return 1
	}
	fmt.Printf("run %s stored in %s\n", id, dbPath)
	return 0
}

// #endregion persist
