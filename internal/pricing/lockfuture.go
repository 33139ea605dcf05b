package pricing

import (
	"math"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
)

// #region lock-future
// lockFutureBeta weights the feature vector built by lockFutureFeatures.
var lockFutureBeta = [10]float64{
	0.0,  // intercept
	-0.8, // s_f
	-1.5, // e_φ/180
	2.0,  // harmony/100
	0.5,  // χ
	-2.0, // (χ − χeq)²
	3.5,  // K
	-0.3, // s_f·|e_φ|
	1.2,  // χ·K
	0.2,  // exp(−t/10)
}

// logitClamp bounds the linear predictor before exponentiation.
const logitClamp = 20.0

func lockFutureFeatures(m state.Metrics, tte float64) [10]float64 {
	return [10]float64{
		1.0,
		m.Eligibility,
		m.PhaseError / 180.0,
		m.Harmony / 100.0,
		m.Criticality,
		(m.Criticality - state.ChiEq) * (m.Criticality - state.ChiEq),
		m.K,
		m.Eligibility * math.Abs(m.PhaseError),
		m.Criticality * m.K,
		math.Exp(-tte / 10.0),
	}
}

// PriceLockFuture returns the probability, in [0, 1], that the lock on s
// persists to expiry under the fixed logistic model.
func PriceLockFuture(s state.PhaseLockState, tte float64) float64 {
	x := lockFutureFeatures(state.AllMetrics(s), tte)
	var logit float64
	for i, b := range lockFutureBeta {
		logit += b * x[i]
	}
	if math.IsNaN(logit) {
		return 0.5
	}
	logit = math.Max(-logitClamp, math.Min(logitClamp, logit))
	price := 1.0 / (1.0 + math.Exp(-logit))
	return math.Max(0, math.Min(1, price))
}

// LockFuturePayoff settles a Lock-Future: 1 if the lock held at expiry.
func LockFuturePayoff(lockAtExpiry bool) float64 {
	if lockAtExpiry {
		return 1.0
	}
	return 0.0
}

// #endregion lock-future
