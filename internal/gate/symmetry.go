package gate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/pricing"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
)

// #region agent-permutation
// agentPermutation relabels A ↔ B and counts states whose coupling is
// unchanged and whose |e_φ| moves by less than PhaseTolerance. LF agreement
// is reported alongside but does not decide the outcome.
type agentPermutation struct{ base }

func (t agentPermutation) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	n := cfg.SymmetrySamples
	agree, priceAgree := 0, 0
	var maxPhaseDiff float64

	for i := 0; i < n; i++ {
		s := state.GenerateLocked(rng)
		sw := s.Swapped()

		kMatch := math.Abs(s.K-sw.K) < cfg.CouplingTolerance
		phaseDiff := math.Abs(math.Abs(state.PhaseError(s)) - math.Abs(state.PhaseError(sw)))
		maxPhaseDiff = math.Max(maxPhaseDiff, phaseDiff)
		if kMatch && phaseDiff < cfg.PhaseTolerance {
			agree++
		}
		priceDiff := math.Abs(pricing.PriceLockFuture(s, cfg.TimeToExpiry) - pricing.PriceLockFuture(sw, cfg.TimeToExpiry))
		if priceDiff < cfg.PriceTolerance {
			priceAgree++
		}
	}

	r := rate(agree, n)
	passed := r > cfg.AgreementMin
	note := fmt.Sprintf("%s permutation invariant", pct(r))
	if !passed {
		note = fmt.Sprintf("only %s agreement after swap", pct(r))
	}
	note = joinNotes(note, emptyNote(map[string]int{"states": n}, "states"))

	return t.result(passed, note,
		stat("agreement_rate", r),
		stat("price_agreement_rate", rate(priceAgree, n)),
		stat("max_abs_phase_diff", maxPhaseDiff),
		stat("expected_min", cfg.AgreementMin),
		stat("n", float64(n)),
	)
}

// #endregion agent-permutation

// #region gauge-offset
// gaugeOffset adds one random global offset to both phases and counts
// states whose phase error and LF price stay within tolerance. The offset
// only cancels in e_φ when p == q; other lock orders shift by (p−q)·offset.
type gaugeOffset struct{ base }

func (t gaugeOffset) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	n := cfg.SymmetrySamples
	agree, equalOrder := 0, 0

	for i := 0; i < n; i++ {
		s := state.GenerateLocked(rng)
		shifted := s.WithPhaseOffset(rng.Float64() * 360)
		if s.P == s.Q {
			equalOrder++
		}

		phaseDiff := math.Abs(state.WrapDegrees(state.PhaseError(s) - state.PhaseError(shifted)))
		priceDiff := math.Abs(pricing.PriceLockFuture(s, cfg.TimeToExpiry) - pricing.PriceLockFuture(shifted, cfg.TimeToExpiry))
		if phaseDiff < cfg.PhaseTolerance && priceDiff < cfg.PriceTolerance {
			agree++
		}
	}

	r := rate(agree, n)
	passed := r > cfg.AgreementMin
	note := fmt.Sprintf("%s gauge invariant", pct(r))
	if !passed {
		note = fmt.Sprintf("only %s invariant to phase offset", pct(r))
	}
	note = joinNotes(note, emptyNote(map[string]int{"states": n}, "states"))

	return t.result(passed, note,
		stat("agreement_rate", r),
		stat("equal_order_fraction", rate(equalOrder, n)),
		stat("expected_min", cfg.AgreementMin),
		stat("n", float64(n)),
	)
}

// #endregion gauge-offset
