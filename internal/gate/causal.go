package gate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/pricing"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/stats"
)

// #region phase-nudge
// phaseNudge moves θa by ±PhaseNudge toward and away from alignment and
// compares the LF price changes against a random-direction sham nudge.
type phaseNudge struct{ base }

// nudgeTrial returns the toward, away and sham price deltas for one state.
// Raising θa lowers e_φ, so moving θa by sign(e_φ) shrinks |e_φ|.
func (t phaseNudge) nudgeTrial(rng *rand.Rand, s state.PhaseLockState) (toward, away, sham float64) {
	cfg := t.cfg
	if math.Abs(state.PhaseError(s)) < cfg.MinPhaseError {
		s = s.WithPhases(s.ThetaA+cfg.PhaseErrorBoost, s.ThetaB)
	}
	p0 := pricing.PriceLockFuture(s, cfg.TimeToExpiry)
	dir := sign(state.PhaseError(s))
	nudged := func(d float64) float64 {
		return pricing.PriceLockFuture(s.WithPhases(s.ThetaA+d*cfg.PhaseNudge, s.ThetaB), cfg.TimeToExpiry) - p0
	}

	shamDir := 1.0
	if rng.IntN(2) == 0 {
		shamDir = -1.0
	}
	return nudged(dir), nudged(-dir), nudged(shamDir)
}

func (t phaseNudge) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	n := cfg.CausalTrials
	toward := make([]float64, 0, n)
	away := make([]float64, 0, n)
	sham := make([]float64, 0, n)

	for i := 0; i < n; i++ {
		dt, da, ds := t.nudgeTrial(rng, state.GenerateLocked(rng))
		toward = append(toward, dt)
		away = append(away, da)
		sham = append(sham, ds)
	}

	mwToward := stats.MannWhitneyU(toward, sham, stats.Greater)
	mwAway := stats.MannWhitneyU(away, sham, stats.Less)
	passed := mwToward.PValue < cfg.Alpha && mwAway.PValue < cfg.Alpha

	meanToward, meanAway, meanSham := stats.Mean(toward), stats.Mean(away), stats.Mean(sham)
	note := fmt.Sprintf("causal: toward=%+.4f, away=%+.4f, sham=%+.4f", meanToward, meanAway, meanSham)
	if !passed {
		note = fmt.Sprintf("no causal effect detected: toward=%+.4f, away=%+.4f, sham=%+.4f", meanToward, meanAway, meanSham)
	}
	note = joinNotes(note, emptyNote(map[string]int{"trials": n}, "trials"))

	return t.result(passed, note,
		stat("mean_delta_toward", meanToward),
		stat("mean_delta_away", meanAway),
		stat("mean_delta_sham", meanSham),
		stat("p_value_toward_vs_sham", mwToward.PValue),
		stat("p_value_away_vs_sham", mwAway.PValue),
		stat("n", float64(n)),
	)
}

// #endregion phase-nudge

// #region coupling-nudge
// couplingNudge scales K by 1 ± CouplingNudge and tests that the LF price
// moves in the same direction.
type couplingNudge struct{ base }

func (t couplingNudge) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	n := cfg.CausalTrials
	up := make([]float64, 0, n)
	down := make([]float64, 0, n)

	for i := 0; i < n; i++ {
		s := state.GenerateLocked(rng)
		p0 := pricing.PriceLockFuture(s, cfg.TimeToExpiry)
		up = append(up, pricing.PriceLockFuture(s.WithCoupling(s.K*(1+cfg.CouplingNudge)), cfg.TimeToExpiry)-p0)
		down = append(down, pricing.PriceLockFuture(s.WithCoupling(s.K*(1-cfg.CouplingNudge)), cfg.TimeToExpiry)-p0)
	}

	inc := stats.OneSampleTTest(up, 0, stats.Greater)
	dec := stats.OneSampleTTest(down, 0, stats.Less)
	passed := inc.PValue < cfg.Alpha && dec.PValue < cfg.Alpha

	note := fmt.Sprintf("causal: ΔK↑=%+.4f, ΔK↓=%+.4f", inc.Mean, dec.Mean)
	if !passed {
		note = "K nudges don't produce predicted effects"
	}
	if n < 2 {
		note = joinNotes(note, "population too small for a t-test (p-value set to 1)")
	}

	return t.result(passed, note,
		stat("mean_delta_increase_k", inc.Mean),
		stat("mean_delta_decrease_k", dec.Mean),
		stat("t_increase", inc.T),
		stat("t_decrease", dec.T),
		stat("p_value_increase", inc.PValue),
		stat("p_value_decrease", dec.PValue),
		stat("n", float64(n)),
	)
}

// #endregion coupling-nudge
