package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig(parallel bool) Config {
	cfg := DefaultConfig()
	cfg.Gate = cfg.Gate.Scaled(0.05)
	cfg.Parallel = parallel
	return cfg
}

// stubTest is a sub-test with a fixed outcome that records its first draw.
type stubTest struct {
	gate  gate.ID
	name  string
	pass  bool
	first *uint64
}

func (s stubTest) Gate() gate.ID { return s.gate }
func (s stubTest) Name() string  { return s.name }
func (s stubTest) Run(rng *rand.Rand) gate.Result {
	v := rng.Uint64()
	if s.first != nil {
		*s.first = v
	}
	return gate.Result{
		Gate:       s.gate,
		Test:       s.name,
		Statistics: []gate.Statistic{{Name: "draw", Value: float64(v >> 11)}},
		Passed:     s.pass,
		Note:       "stub",
	}
}

func stubBattery(passing map[gate.ID]bool) []gate.SubTest {
	var out []gate.SubTest
	for _, id := range gate.Order {
		out = append(out,
			stubTest{gate: id, name: string(id) + "_a", pass: passing[id]},
			stubTest{gate: id, name: string(id) + "_b", pass: true},
		)
	}
	return out
}

// #region classify
func TestClassify_Ladder(t *testing.T) {
	want := []Classification{Probe, Probe, Probe, Primitive, Law, Law}
	for n, c := range want {
		if got := Classify(n); got != c {
			t.Errorf("Classify(%d) = %s, want %s", n, got, c)
		}
	}
}

func TestRecommendation_Strings(t *testing.T) {
	cases := map[Classification]string{
		Probe:     "Explore freely, no public claims",
		Primitive: "Report findings with caveats, no causality claims",
		Law:       "Make predictions, ship with PCO documentation",
	}
	for c, want := range cases {
		if got := Recommendation(c); got != want {
			t.Errorf("Recommendation(%s) = %q, want %q", c, got, want)
		}
	}
}

func TestAggregate_MissingGateFails(t *testing.T) {
	results := []gate.Result{
		{Gate: gate.Calibration, Test: "a", Passed: true},
		{Gate: gate.Calibration, Test: "b", Passed: true},
		{Gate: gate.Vibration, Test: "c", Passed: false},
		{Gate: gate.Causal, Test: "d", Passed: true},
	}
	reports, passed := Aggregate(results)
	if len(reports) != 5 {
		t.Fatalf("expected 5 gate reports, got %d", len(reports))
	}
	if passed != 2 {
		t.Fatalf("expected 2 gates passed, got %d", passed)
	}
	for i, id := range gate.Order {
		if reports[i].Gate != id {
			t.Errorf("position %d: got %s, want %s", i, reports[i].Gate, id)
		}
	}
	if reports[2].Passed || len(reports[2].Results) != 0 {
		t.Fatalf("gate with no results must fail: %+v", reports[2])
	}
}

// #endregion classify

// #region harness
func TestHarness_StubBatteryClassification(t *testing.T) {
	battery := stubBattery(map[gate.ID]bool{
		gate.Calibration: true,
		gate.Vibration:   true,
		gate.Symmetry:    true,
	})
	h, err := NewHarnessWithBattery(DefaultConfig(), quietLogger(), battery)
	if err != nil {
		t.Fatal(err)
	}
	report, err := h.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.GatesPassed != 3 {
		t.Fatalf("expected 3 gates passed, got %d", report.GatesPassed)
	}
	if report.Classification != Primitive {
		t.Fatalf("expected PRIMITIVE, got %s", report.Classification)
	}
	if report.Recommendation != Recommendation(Primitive) {
		t.Fatalf("unexpected recommendation %q", report.Recommendation)
	}
	if report.RunID == "" || report.Timestamp.IsZero() {
		t.Fatal("report should carry a run ID and timestamp")
	}
}

func TestHarness_SubTestRandDependsOnName(t *testing.T) {
	var first uint64
	battery := []gate.SubTest{stubTest{gate: gate.Calibration, name: "probe", pass: true, first: &first}}
	cfg := DefaultConfig()
	cfg.Seed = 99
	h, err := NewHarnessWithBattery(cfg, quietLogger(), battery)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if want := SubTestRand(99, "probe").Uint64(); first != want {
		t.Fatalf("sub-test drew %d, want %d", first, want)
	}
	if DeriveSeed("probe") == DeriveSeed("probe2") {
		t.Fatal("distinct names should hash differently")
	}
}

func TestHarness_RejectsDuplicateNames(t *testing.T) {
	battery := []gate.SubTest{
		stubTest{gate: gate.Calibration, name: "x"},
		stubTest{gate: gate.Vibration, name: "x"},
	}
	if _, err := NewHarnessWithBattery(DefaultConfig(), quietLogger(), battery); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestHarness_RejectsInvalidGateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gate.NullSamples = 0
	if _, err := NewHarness(cfg, quietLogger()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestHarness_CancelledContext(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.Parallel = parallel
		h, err := NewHarnessWithBattery(cfg, quietLogger(), stubBattery(nil))
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := h.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("parallel=%v: expected context.Canceled, got %v", parallel, err)
		}
	}
}

func TestHarness_FullBatteryShape(t *testing.T) {
	h, err := NewHarness(smallConfig(false), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	report, err := h.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Gates) != 5 {
		t.Fatalf("expected 5 gates, got %d", len(report.Gates))
	}
	sum := Summarize(report)
	if sum.TotalTests != 12 {
		t.Fatalf("expected 12 sub-tests, got %d", sum.TotalTests)
	}
	if sum.PassedTests+sum.FailedTests != 12 {
		t.Fatalf("pass/fail counts do not add up: %+v", sum)
	}
	if report.Classification != Classify(report.GatesPassed) {
		t.Fatalf("classification %s does not match %d gates", report.Classification, report.GatesPassed)
	}
}

func gatesJSON(t *testing.T, r Report) string {
	t.Helper()
	b, err := json.Marshal(r.Gates)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestHarness_DeterministicAcrossRunsAndModes(t *testing.T) {
	run := func(parallel bool) Report {
		h, err := NewHarness(smallConfig(parallel), quietLogger())
		if err != nil {
			t.Fatal(err)
		}
		r, err := h.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	a, b, p := run(false), run(false), run(true)
	if gatesJSON(t, a) != gatesJSON(t, b) {
		t.Fatal("two sequential runs with the same seed differ")
	}
	if gatesJSON(t, a) != gatesJSON(t, p) {
		t.Fatal("parallel run differs from sequential run")
	}
	if a.Classification != p.Classification || a.GatesPassed != p.GatesPassed {
		t.Fatalf("aggregate differs: %d/%s vs %d/%s", a.GatesPassed, a.Classification, p.GatesPassed, p.Classification)
	}
}

// #endregion harness

// #region report
func sampleReport(t *testing.T) Report {
	t.Helper()
	h, err := NewHarnessWithBattery(DefaultConfig(), quietLogger(), stubBattery(map[gate.ID]bool{gate.Calibration: true}))
	if err != nil {
		t.Fatal(err)
	}
	r, err := h.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestWriteReport_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r := sampleReport(t)
	if err := WriteReport(path, r); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	loaded, err := LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if loaded.RunID != r.RunID || loaded.GatesPassed != r.GatesPassed || loaded.Classification != r.Classification {
		t.Fatalf("loaded report differs: %+v", loaded)
	}
	if !loaded.Timestamp.Equal(r.Timestamp) {
		t.Fatalf("timestamp changed: %v → %v", r.Timestamp, loaded.Timestamp)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}

func TestWriteReport_NonFiniteStatisticIsNull(t *testing.T) {
	r := sampleReport(t)
	r.Gates[0].Results[0].Statistics = append(r.Gates[0].Results[0].Statistics, gate.Statistic{Name: "t_statistic", Value: math.Inf(1)})
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteReport(path, r); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"value": null`) {
		t.Fatalf("expected null statistic in %s", data)
	}
	loaded, err := LoadReport(path)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := loaded.Gates[0].Results[0].Stat("t_statistic")
	if !math.IsNaN(v) {
		t.Fatalf("null statistic should load as NaN, got %f", v)
	}
}

func TestValidateReportJSON_RejectsBadReports(t *testing.T) {
	r := sampleReport(t)
	good, err := MarshalReport(r)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(good, &doc); err != nil {
		t.Fatal(err)
	}

	doc["gates_passed"] = 9
	bad, _ := json.Marshal(doc)
	if err := ValidateReportJSON(bad); err == nil {
		t.Fatal("gates_passed 9 should fail validation")
	}

	doc["gates_passed"] = 1
	doc["classification"] = "MAYBE"
	bad, _ = json.Marshal(doc)
	if err := ValidateReportJSON(bad); err == nil {
		t.Fatal("unknown classification should fail validation")
	}
}

func TestLoadReport_MissingFile(t *testing.T) {
	if _, err := LoadReport(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing report")
	}
}

// #endregion report

// #region table
func TestWriteTable_ListsGatesAndClassification(t *testing.T) {
	r := sampleReport(t)
	r.Gates[1].Results[0].Note = "bucket empty"
	r.Gates[1].Results[0].Statistics = append(r.Gates[1].Results[0].Statistics, gate.Statistic{Name: "t", Value: math.Inf(1)})

	var buf strings.Builder
	if err := WriteTable(&buf, r); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		string(gate.Calibration), string(gate.RGPersistence),
		"note: bucket empty", "t=+inf",
		"classification: " + string(r.Classification),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

// #endregion table
