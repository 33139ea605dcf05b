package gate

import (
	"fmt"
	"math/rand/v2"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/pricing"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/stats"
)

// #region lock-future-null
// lockFutureNull checks that LF prices of structureless states are not
// biased away from fair odds.
type lockFutureNull struct{ base }

func (t lockFutureNull) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	prices := make([]float64, 0, cfg.NullSamples)
	for i := 0; i < cfg.NullSamples; i++ {
		prices = append(prices, pricing.PriceLockFuture(state.GenerateNull(rng), cfg.TimeToExpiry))
	}

	tt := stats.OneSampleTTest(prices, cfg.NullTarget, stats.TwoSided)
	passed := tt.PValue > cfg.NullAlpha

	note := "random states give fair odds"
	if !passed {
		note = fmt.Sprintf("systematic bias detected: mean=%.3f", tt.Mean)
	}
	if len(prices) < 2 {
		note = "population too small for a t-test (p-value set to 1)"
	}
	return t.result(passed, note,
		stat("mean_price", tt.Mean),
		stat("std_price", tt.StdDev),
		stat("expected", cfg.NullTarget),
		stat("t_statistic", tt.T),
		stat("p_value", tt.PValue),
		stat("n", float64(len(prices))),
	)
}

// #endregion lock-future-null

// #region phase-barrier-null
// phaseBarrierNull checks that random phase errors rarely knock in a tight
// barrier.
type phaseBarrierNull struct{ base }

func (t phaseBarrierNull) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	prices := make([]float64, 0, cfg.NullBarrierStates)
	for i := 0; i < cfg.NullBarrierStates; i++ {
		s := state.GenerateNull(rng)
		p, err := pricing.PriceBarrier(rng, s, cfg.NullBarrier)
		if err != nil {
			return t.result(false, err.Error(), stat("n", float64(len(prices))))
		}
		prices = append(prices, p)
	}

	mean := stats.Mean(prices)
	passed := mean < cfg.BarrierMeanMax

	note := "random states rarely hit tight barrier"
	if !passed {
		note = fmt.Sprintf("too many barrier hits: %.3f", mean)
	}
	return t.result(passed, note,
		stat("mean_price", mean),
		stat("std_price", stats.StdDev(prices)),
		stat("expected_max", cfg.BarrierMeanMax),
		stat("barrier", cfg.NullBarrier.Barrier),
		stat("paths", float64(cfg.NullBarrier.Paths)),
		stat("n", float64(len(prices))),
	)
}

// #endregion phase-barrier-null

// #region eligibility-failure-null
// eligibilityFailureNull checks that EFS risk of random states is moderate.
type eligibilityFailureNull struct{ base }

func (t eligibilityFailureNull) Run(rng *rand.Rand) Result {
	cfg := t.cfg
	risks := make([]float64, 0, cfg.NullSamples)
	for i := 0; i < cfg.NullSamples; i++ {
		risks = append(risks, pricing.SwapRisk(state.GenerateNull(rng), cfg.Swap.Windows, cfg.Swap.SigmaF))
	}

	mean := stats.Mean(risks)
	passed := mean > cfg.SwapRiskMin && mean < cfg.SwapRiskMax

	note := "null states have moderate risk"
	if !passed {
		note = fmt.Sprintf("risk out of range: %.3f", mean)
	}
	return t.result(passed, note,
		stat("mean_risk", mean),
		stat("std_risk", stats.StdDev(risks)),
		stat("expected_min", cfg.SwapRiskMin),
		stat("expected_max", cfg.SwapRiskMax),
		stat("n", float64(len(risks))),
	)
}

// #endregion eligibility-failure-null
