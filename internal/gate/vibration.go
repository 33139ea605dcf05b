package gate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/stats"
)

// populations draws n/2 locked then n/2 unlocked states.
func populations(rng *rand.Rand, n int) (locked, unlocked []state.PhaseLockState) {
	half := n / 2
	locked = make([]state.PhaseLockState, 0, half)
	unlocked = make([]state.PhaseLockState, 0, half)
	for i := 0; i < half; i++ {
		locked = append(locked, state.GenerateLocked(rng))
	}
	for i := 0; i < half; i++ {
		unlocked = append(unlocked, state.GenerateUnlocked(rng))
	}
	return locked, unlocked
}

func mute(states []state.PhaseLockState, k float64) []state.PhaseLockState {
	out := make([]state.PhaseLockState, len(states))
	for i, s := range states {
		out[i] = s.WithCoupling(k)
	}
	return out
}

func observe(states []state.PhaseLockState, f func(state.PhaseLockState) float64) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		out[i] = f(s)
	}
	return out
}

func absPhaseError(s state.PhaseLockState) float64 {
	return math.Abs(state.PhaseError(s))
}

// #region amplitude-mute
// amplitudeMute checks that locked states keep a smaller |e_φ| than
// unlocked ones after every coupling is forced to the same value.
type amplitudeMute struct{ base }

func (t amplitudeMute) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	locked, unlocked := populations(rng, cfg.VibrationSamples)

	before := stats.MannWhitneyU(observe(locked, absPhaseError), observe(unlocked, absPhaseError), stats.Less)

	mutedLocked := mute(locked, cfg.MutedCoupling)
	mutedUnlocked := mute(unlocked, cfg.MutedCoupling)
	lockedAfter := observe(mutedLocked, absPhaseError)
	unlockedAfter := observe(mutedUnlocked, absPhaseError)
	after := stats.MannWhitneyU(lockedAfter, unlockedAfter, stats.Less)

	passed := after.PValue < cfg.Alpha
	note := "phase structure survives amplitude mute"
	if !passed {
		note = "signal lost after muting coupling strength"
	}
	note = joinNotes(note, emptyNote(map[string]int{"locked": len(locked), "unlocked": len(unlocked)}, "locked", "unlocked"))

	return t.result(passed, note,
		stat("p_value_before_mute", before.PValue),
		stat("p_value_after_mute", after.PValue),
		stat("u_after_mute", after.U),
		stat("mean_abs_e_locked", stats.Mean(lockedAfter)),
		stat("mean_abs_e_unlocked", stats.Mean(unlockedAfter)),
		stat("muted_k", cfg.MutedCoupling),
	)
}

// #endregion amplitude-mute

// #region frequency-structure
// frequencyStructure checks that locked states keep lower eligibility than
// unlocked ones once coupling is muted.
type frequencyStructure struct{ base }

func (t frequencyStructure) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	locked, unlocked := populations(rng, cfg.VibrationSamples)

	sfLocked := observe(mute(locked, cfg.MutedCoupling), state.Eligibility)
	sfUnlocked := observe(mute(unlocked, cfg.MutedCoupling), state.Eligibility)
	mw := stats.MannWhitneyU(sfLocked, sfUnlocked, stats.Less)

	passed := mw.PValue < cfg.Alpha
	note := "frequency structure independent of coupling amplitude"
	if !passed {
		note = fmt.Sprintf("frequency structure depends on K (p=%.3g)", mw.PValue)
	}
	note = joinNotes(note, emptyNote(map[string]int{"locked": len(locked), "unlocked": len(unlocked)}, "locked", "unlocked"))

	return t.result(passed, note,
		stat("p_value", mw.PValue),
		stat("u_statistic", mw.U),
		stat("median_s_f_locked", stats.Median(sfLocked)),
		stat("median_s_f_unlocked", stats.Median(sfUnlocked)),
	)
}

// #endregion frequency-structure
