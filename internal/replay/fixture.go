package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: an audit
// setup and the pass flags it must reproduce.
type Fixture struct {
	Description            string                  `json:"description"`
	Seed                   uint64                  `json:"seed"`
	Parallel               bool                    `json:"parallel"`
	Scale                  float64                 `json:"scale"`
	ExpectedResults        []FixtureExpectedResult `json:"expected_results"`
	ExpectedClassification audit.Classification   `json:"expected_classification"`
}

// FixtureExpectedResult captures the expected outcome per sub-test.
type FixtureExpectedResult struct {
	Gate   gate.ID `json:"gate"`
	Test   string  `json:"test"`
	Passed bool    `json:"passed"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Scale < 0 {
		return nil, fmt.Errorf("parse fixture %s: negative scale %g", path, f.Scale)
	}
	return &f, nil
}

// ToAuditConfig converts the fixture setup to an audit config. A zero scale
// means full size.
func (f *Fixture) ToAuditConfig() audit.Config {
	cfg := audit.DefaultConfig()
	cfg.Seed = f.Seed
	cfg.Parallel = f.Parallel
	if f.Scale > 0 && f.Scale != 1 {
		cfg.Gate = cfg.Gate.Scaled(f.Scale)
	}
	return cfg
}

// ToExpected converts the fixture's expected results; only pass flags are
// compared.
func (f *Fixture) ToExpected() []Expected {
	out := make([]Expected, len(f.ExpectedResults))
	for i, e := range f.ExpectedResults {
		out[i] = Expected{Gate: e.Gate, Test: e.Test, Passed: e.Passed}
	}
	return out
}

// FixtureFromReport records a report as a fixture reproducing its pass flags.
func FixtureFromReport(r audit.Report, description string, scale float64) Fixture {
	f := Fixture{
		Description:            description,
		Seed:                   r.Seed,
		Parallel:               r.Parallel,
		Scale:                  scale,
		ExpectedClassification: r.Classification,
	}
	for _, e := range ExpectedFromReport(r) {
		f.ExpectedResults = append(f.ExpectedResults, FixtureExpectedResult{Gate: e.Gate, Test: e.Test, Passed: e.Passed})
	}
	return f
}

// #endregion fixture-loader
