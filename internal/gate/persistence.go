package gate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/pricing"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/stats"
)

// #region integer-thinning
// integerThinning buckets locked states by lock order p+q and requires the
// mean coupling to fall strictly from low to mid to high order.
type integerThinning struct{ base }

// orderBuckets splits coupling values by lock order.
func (t integerThinning) orderBuckets(states []state.PhaseLockState) (low, mid, high []float64) {
	for _, s := range states {
		switch order := s.P + s.Q; {
		case order <= t.cfg.LowOrderMax:
			low = append(low, s.K)
		case order <= t.cfg.MidOrderMax:
			mid = append(mid, s.K)
		default:
			high = append(high, s.K)
		}
	}
	return low, mid, high
}

func (t integerThinning) Run(rng *rand.Rand) Result {
	states := make([]state.PhaseLockState, 0, t.cfg.ThinningSamples)
	for i := 0; i < t.cfg.ThinningSamples; i++ {
		states = append(states, state.GenerateLocked(rng))
	}
	return t.evaluate(states)
}

func (t integerThinning) evaluate(states []state.PhaseLockState) Result {
	low, mid, high := t.orderBuckets(states)
	mLow, mMid, mHigh := stats.Mean(low), stats.Mean(mid), stats.Mean(high)
	passed := mLow > mMid && mMid > mHigh

	note := fmt.Sprintf("low-order wins: K(%.3f > %.3f > %.3f)", mLow, mMid, mHigh)
	if !passed {
		note = fmt.Sprintf("integer-thinning violated: K(%.3f, %.3f, %.3f)", mLow, mMid, mHigh)
	}
	note = joinNotes(note, emptyNote(map[string]int{
		"low-order": len(low), "mid-order": len(mid), "high-order": len(high),
	}, "low-order", "mid-order", "high-order"))

	return t.result(passed, note,
		stat("mean_k_low_order", mLow),
		stat("mean_k_mid_order", mMid),
		stat("mean_k_high_order", mHigh),
		stat("n_low_order", float64(len(low))),
		stat("n_mid_order", float64(len(mid))),
		stat("n_high_order", float64(len(high))),
	)
}

// #endregion integer-thinning

// #region coarse-graining
// coarseGraining averages LF prices over noisy copies of each locked state
// and counts predictions that stay in their qualitative band.
type coarseGraining struct{ base }

// Persists applies the band policy: a high original price must stay above
// HighPersist, a low one below LowPersist, and mid-band prices always count
// as persisted.
func Persists(original, coarse float64, cfg Config) bool {
	switch {
	case original > cfg.HighPrice:
		return coarse > cfg.HighPersist
	case original < cfg.LowPrice:
		return coarse < cfg.LowPersist
	default:
		return true
	}
}

func (t coarseGraining) coarsePrice(rng *rand.Rand, s state.PhaseLockState) float64 {
	cfg := t.cfg
	prices := make([]float64, 0, cfg.CoarseCopies)
	for j := 0; j < cfg.CoarseCopies; j++ {
		dTheta := rng.NormFloat64() * cfg.CoarsePhaseNoise
		dK := rng.NormFloat64() * cfg.CoarseCouplingNoise
		noisy := s.WithPhases(s.ThetaA+dTheta, s.ThetaB+dTheta).
			WithCoupling(math.Max(cfg.CouplingFloor, s.K+dK))
		prices = append(prices, pricing.PriceLockFuture(noisy, cfg.TimeToExpiry))
	}
	return stats.Mean(prices)
}

func (t coarseGraining) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	n := cfg.CoarseSamples
	persisted, high, low := 0, 0, 0

	for i := 0; i < n; i++ {
		s := state.GenerateLocked(rng)
		original := pricing.PriceLockFuture(s, cfg.TimeToExpiry)
		switch {
		case original > cfg.HighPrice:
			high++
		case original < cfg.LowPrice:
			low++
		}
		if Persists(original, t.coarsePrice(rng, s), cfg) {
			persisted++
		}
	}

	r := rate(persisted, n)
	passed := r > cfg.PersistenceMin
	note := fmt.Sprintf("%s persist after ×2 pooling", pct(r))
	if !passed {
		note = fmt.Sprintf("only %s survive coarse-graining", pct(r))
	}
	note = joinNotes(note, emptyNote(map[string]int{"states": n}, "states"))

	return t.result(passed, note,
		stat("persistence_rate", r),
		stat("high_band_fraction", rate(high, n)),
		stat("low_band_fraction", rate(low, n)),
		stat("expected_min", cfg.PersistenceMin),
		stat("n", float64(n)),
	)
}

// #endregion coarse-graining

// #region brittleness-stability
// brittlenessStability scales both damping terms by DampingScale and counts
// states whose brittleness does not grow past BrittleGrowthMax times.
type brittlenessStability struct{ base }

func (t brittlenessStability) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	n := cfg.BrittleSamples
	blowups := 0

	for i := 0; i < n; i++ {
		s := state.GenerateLocked(rng)
		z0 := state.Brittleness(s)
		z1 := state.Brittleness(s.WithDamping(s.GammaA*cfg.DampingScale, s.GammaB*cfg.DampingScale))
		if z1 > z0*cfg.BrittleGrowthMax {
			blowups++
		}
	}

	r := 0.0
	if n > 0 {
		r = 1 - rate(blowups, n)
	}
	passed := r > cfg.StabilityMin
	note := fmt.Sprintf("%s remain stable", pct(r))
	if !passed {
		note = fmt.Sprintf("%s become brittle at coarser scale", pct(rate(blowups, n)))
	}
	note = joinNotes(note, emptyNote(map[string]int{"states": n}, "states"))

	return t.result(passed, note,
		stat("stability_rate", r),
		stat("blowups", float64(blowups)),
		stat("expected_min", cfg.StabilityMin),
		stat("n", float64(n)),
	)
}

// #endregion brittleness-stability
