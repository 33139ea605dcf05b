package replay

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
)

// #region types
// Expected is the reference outcome of one sub-test.
type Expected struct {
	Gate       gate.ID
	Test       string
	Passed     bool
	Statistics []gate.Statistic // nil when only the pass flag is compared
}

// Comparison is the replayed outcome of one sub-test against its reference.
type Comparison struct {
	Gate     gate.ID
	Test     string
	Expected bool
	Replayed bool
	Missing  bool   // sub-test absent from the replayed report
	Drift    string // first statistic outside tolerance, if any
}

// Match reports whether the replay reproduced the reference outcome.
func (c Comparison) Match() bool {
	return !c.Missing && c.Expected == c.Replayed && c.Drift == ""
}

// Options controls a replay run.
type Options struct {
	Battery   []gate.SubTest // nil means the default battery
	Logger    *slog.Logger
	Tolerance float64 // absolute tolerance on statistics
}

// DefaultOptions compares statistics to 1e-9.
func DefaultOptions() Options {
	return Options{Tolerance: 1e-9}
}

// Summary provides aggregate counts from a replay.
type Summary struct {
	Total          int
	Matches        int
	Diverge        int
	Classification audit.Classification
	Expected       audit.Classification
}

// #endregion types

// #region replay
// ExpectedFromReport lists every sub-test outcome of r, statistics included.
func ExpectedFromReport(r audit.Report) []Expected {
	var out []Expected
	for _, g := range r.Gates {
		for _, res := range g.Results {
			out = append(out, Expected{Gate: res.Gate, Test: res.Test, Passed: res.Passed, Statistics: res.Statistics})
		}
	}
	return out
}

// ConfigFor rebuilds the audit config a report was produced with. Reports
// without recorded thresholds fall back to the default gate config.
func ConfigFor(r audit.Report) audit.Config {
	cfg := audit.DefaultConfig()
	cfg.Seed = r.Seed
	cfg.Parallel = r.Parallel
	if r.GateConfig != nil {
		cfg.Gate = *r.GateConfig
	}
	return cfg
}

// Replay re-runs an audit with cfg and compares it against expected.
func Replay(ctx context.Context, cfg audit.Config, expected []Expected, opts Options) (audit.Report, []Comparison, error) {
	h, err := audit.NewHarnessWithBattery(cfg, opts.Logger, opts.Battery)
	if err != nil {
		return audit.Report{}, nil, fmt.Errorf("replay: %w", err)
	}
	report, err := h.Run(ctx)
	if err != nil {
		return audit.Report{}, nil, fmt.Errorf("replay: %w", err)
	}
	return report, Compare(expected, report, opts.Tolerance), nil
}

// Compare matches expected outcomes against a report by sub-test name.
func Compare(expected []Expected, r audit.Report, tol float64) []Comparison {
	byName := make(map[string]gate.Result)
	for _, g := range r.Gates {
		for _, res := range g.Results {
			byName[res.Test] = res
		}
	}

	out := make([]Comparison, 0, len(expected))
	for _, e := range expected {
		c := Comparison{Gate: e.Gate, Test: e.Test, Expected: e.Passed}
		res, ok := byName[e.Test]
		if !ok {
			c.Missing = true
			out = append(out, c)
			continue
		}
		c.Replayed = res.Passed
		c.Drift = drift(e.Statistics, res, tol)
		out = append(out, c)
	}
	return out
}

// drift names the first expected statistic the replayed result does not
// reproduce within tol. NaN matches NaN.
func drift(want []gate.Statistic, got gate.Result, tol float64) string {
	for _, w := range want {
		v, ok := got.Stat(w.Name)
		if !ok {
			return w.Name + " missing"
		}
		if math.IsNaN(w.Value) && math.IsNaN(v) {
			continue
		}
		if math.IsNaN(w.Value) != math.IsNaN(v) || math.Abs(w.Value-v) > tol {
			return fmt.Sprintf("%s %.6g → %.6g", w.Name, w.Value, v)
		}
	}
	return ""
}

// Summarize computes aggregate counts from comparisons.
func Summarize(comps []Comparison, expected, replayed audit.Classification) Summary {
	s := Summary{Total: len(comps), Expected: expected, Classification: replayed}
	for _, c := range comps {
		if c.Match() {
			s.Matches++
		}
	}
	s.Diverge = s.Total - s.Matches
	return s
}

// #endregion replay
