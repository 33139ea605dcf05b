package audit

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/logging"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/metrics"
)

// #region harness
// Harness runs a battery of sub-tests and aggregates them into a Report.
type Harness struct {
	cfg     Config
	battery []gate.SubTest
	logger  *slog.Logger
	now     func() time.Time
}

// NewHarness builds a harness over gate.DefaultBattery.
func NewHarness(cfg Config, logger *slog.Logger) (*Harness, error) {
	return NewHarnessWithBattery(cfg, logger, nil)
}

// NewHarnessWithBattery builds a harness over an explicit battery. A nil
// battery means gate.DefaultBattery(cfg.Gate).
func NewHarnessWithBattery(cfg Config, logger *slog.Logger, battery []gate.SubTest) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if battery == nil {
		battery = gate.DefaultBattery(cfg.Gate)
	}
	seen := make(map[string]bool, len(battery))
	for _, st := range battery {
		if seen[st.Name()] {
			return nil, fmt.Errorf("%w: duplicate sub-test %q", ErrInvalidConfig, st.Name())
		}
		seen[st.Name()] = true
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{cfg: cfg, battery: battery, logger: logger, now: time.Now}, nil
}

// Run executes every sub-test and returns the aggregated report. Sub-tests
// never fail; the only error is ctx cancellation between sub-tests.
func (h *Harness) Run(ctx context.Context) (Report, error) {
	results := make([]gate.Result, len(h.battery))

	if h.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, st := range h.battery {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = h.runOne(st)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Report{}, fmt.Errorf("run audit: %w", err)
		}
	} else {
		for i, st := range h.battery {
			if err := ctx.Err(); err != nil {
				return Report{}, fmt.Errorf("run audit: %w", err)
			}
			results[i] = h.runOne(st)
		}
	}

	gates, passed := Aggregate(results)
	class := Classify(passed)
	gateCfg := h.cfg.Gate
	report := Report{
		RunID:          uuid.NewString(),
		Timestamp:      h.now().UTC(),
		Seed:           h.cfg.Seed,
		Parallel:       h.cfg.Parallel,
		Gates:          gates,
		GatesPassed:    passed,
		Classification: class,
		Recommendation: Recommendation(class),
		GateConfig:     &gateCfg,
	}

	for _, g := range gates {
		h.logger.Info("gate evaluated", "gate", g.Gate, "passed", g.Passed, "subtests", len(g.Results))
	}
	metrics.RunsTotal.WithLabelValues(string(class)).Inc()
	metrics.LastGatesPassed.Set(float64(passed))
	h.logger.Info("audit complete",
		"run_id", report.RunID,
		"gates_passed", passed,
		"classification", class,
	)
	return report, nil
}

func (h *Harness) runOne(st gate.SubTest) gate.Result {
	start := time.Now()
	res := st.Run(SubTestRand(h.cfg.Seed, st.Name()))
	elapsed := time.Since(start)

	metrics.SubTestDuration.WithLabelValues(string(st.Gate()), st.Name()).Observe(elapsed.Seconds())
	metrics.SubTestResults.WithLabelValues(string(st.Gate()), st.Name(), metrics.Outcome(res.Passed)).Inc()
	h.logger.Debug("sub-test complete", append(logging.Attrs(res), "duration", elapsed)...)
	return res
}

// #endregion harness

// #region seeding
// DeriveSeed hashes a sub-test name with FNV-64a.
func DeriveSeed(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// SubTestRand returns the generator a sub-test named name receives under
// base seed. It depends only on (seed, name), so execution order and
// concurrency cannot change results.
func SubTestRand(seed uint64, name string) *rand.Rand {
	return rand.New(rand.NewPCG(seed, DeriveSeed(name)))
}

// #endregion seeding
