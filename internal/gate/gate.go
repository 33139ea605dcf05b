package gate

import (
	"fmt"
	"math"
	"strings"
)

// #region battery
// DefaultBattery returns the twelve sub-tests in gate order.
func DefaultBattery(cfg Config) []SubTest {
	return []SubTest{
		lockFutureNull{base{Calibration, "lock_future_null", cfg}},
		phaseBarrierNull{base{Calibration, "phase_barrier_null", cfg}},
		eligibilityFailureNull{base{Calibration, "eligibility_failure_null", cfg}},
		amplitudeMute{base{Vibration, "amplitude_mute_phase_structure", cfg}},
		frequencyStructure{base{Vibration, "frequency_structure_persistence", cfg}},
		agentPermutation{base{Symmetry, "agent_permutation", cfg}},
		gaugeOffset{base{Symmetry, "gauge_offset", cfg}},
		phaseNudge{base{Causal, "phase_nudge", cfg}},
		couplingNudge{base{Causal, "coupling_nudge", cfg}},
		integerThinning{base{RGPersistence, "integer_thinning", cfg}},
		coarseGraining{base{RGPersistence, "coarse_graining_persistence", cfg}},
		brittlenessStability{base{RGPersistence, "brittleness_stability", cfg}},
	}
}

// #endregion battery

// #region base
// base carries identity and config shared by every sub-test.
type base struct {
	gate ID
	name string
	cfg  Config
}

func (b base) Gate() ID     { return b.gate }
func (b base) Name() string { return b.name }

func (b base) result(passed bool, note string, stats ...Statistic) Result {
	return Result{
		Gate:       b.gate,
		Test:       b.name,
		Statistics: stats,
		Passed:     passed,
		Note:       note,
	}
}

// #endregion base

// #region helpers
func stat(name string, v float64) Statistic {
	return Statistic{Name: name, Value: v}
}

// rate returns count/n, or 0 for an empty population.
func rate(count, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(count) / float64(n)
}

// sign returns ±1, treating zero as positive.
func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// emptyNote describes which named populations had no members.
func emptyNote(sizes map[string]int, order ...string) string {
	var empty []string
	for _, name := range order {
		if sizes[name] == 0 {
			empty = append(empty, name)
		}
	}
	if len(empty) == 0 {
		return ""
	}
	return fmt.Sprintf("empty population: %s (statistic set to neutral value)", strings.Join(empty, ", "))
}

// joinNotes joins non-empty notes with "; ".
func joinNotes(notes ...string) string {
	var out []string
	for _, n := range notes {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, "; ")
}

func pct(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*r)
}

// #endregion helpers
