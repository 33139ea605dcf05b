package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
)

// ErrInvalidConfig is returned when a harness cannot be built from its config.
var ErrInvalidConfig = errors.New("invalid audit config")

// #region classification
// Classification is the decision-ladder rung reached by an audit.
type Classification string

const (
	Probe     Classification = "PROBE"
	Primitive Classification = "PRIMITIVE"
	Law       Classification = "LAW"
)

// #endregion classification

// #region audit-config
// Config bundles the base seed, execution mode and gate thresholds.
type Config struct {
	Seed     uint64      `yaml:"seed"`
	Parallel bool        `yaml:"parallel"`
	Gate     gate.Config `yaml:"gate"`
}

// DefaultConfig returns a sequential full-size audit with seed 42.
func DefaultConfig() Config {
	return Config{
		Seed:     42,
		Parallel: false,
		Gate:     gate.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if err := c.Gate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// #endregion audit-config

// #region report
// GateReport groups the sub-test results of one gate. Passed is the AND of
// its sub-tests.
type GateReport struct {
	Gate    gate.ID       `json:"gate"`
	Passed  bool          `json:"passed"`
	Results []gate.Result `json:"results"`
}

// Report is the full outcome of one audit run.
type Report struct {
	RunID          string         `json:"run_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Seed           uint64         `json:"seed"`
	Parallel       bool           `json:"parallel"`
	Gates          []GateReport   `json:"gates"`
	GatesPassed    int            `json:"gates_passed"`
	Classification Classification `json:"classification"`
	Recommendation string         `json:"recommendation"`
	GateConfig     *gate.Config   `json:"gate_config,omitempty"` // thresholds active for this run
}

// Gate returns the report for id.
func (r Report) Gate(id gate.ID) (GateReport, bool) {
	for _, g := range r.Gates {
		if g.Gate == id {
			return g, true
		}
	}
	return GateReport{}, false
}

// PassVector returns the pass flag of every gate in order.
func (r Report) PassVector() []bool {
	out := make([]bool, len(r.Gates))
	for i, g := range r.Gates {
		out[i] = g.Passed
	}
	return out
}

// Summary provides aggregate counts over a report.
type Summary struct {
	TotalTests     int
	PassedTests    int
	FailedTests    int
	GatesPassed    int
	Classification Classification
}

// #endregion report
