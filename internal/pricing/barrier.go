package pricing

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
)

// ErrInvalidParams is returned when Monte-Carlo settings cannot produce a price.
var ErrInvalidParams = errors.New("invalid barrier parameters")

// NoiseSigma is the diffusion strength of the phase-error SDE.
const NoiseSigma = 0.1

// #region params
// BarrierParams configures a phase-barrier valuation.
type BarrierParams struct {
	Barrier      float64 `json:"barrier" yaml:"barrier"` // knock-in level on |e_φ| [deg]
	TimeToExpiry float64 `json:"time_to_expiry" yaml:"time_to_expiry"`
	Paths        int     `json:"paths" yaml:"paths"`
	Steps        int     `json:"steps" yaml:"steps"`
	Dt           float64 `json:"dt" yaml:"dt"`
}

// DefaultBarrierParams returns the standard contract: 10° barrier, 10k paths
// of 100 steps at dt=0.01.
func DefaultBarrierParams() BarrierParams {
	return BarrierParams{
		Barrier:      10.0,
		TimeToExpiry: 1.0,
		Paths:        10000,
		Steps:        100,
		Dt:           0.01,
	}
}

// Validate fails fast on settings that would divide by zero or loop forever.
func (p BarrierParams) Validate() error {
	if math.IsNaN(p.Barrier) || math.IsInf(p.Barrier, 0) || math.IsNaN(p.Dt) || math.IsInf(p.Dt, 0) ||
		math.IsNaN(p.TimeToExpiry) || math.IsInf(p.TimeToExpiry, 0) {
		return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidParams, p)
	}
	if p.Paths < 1 {
		return fmt.Errorf("%w: paths must be ≥ 1, got %d", ErrInvalidParams, p.Paths)
	}
	if p.Steps < 1 {
		return fmt.Errorf("%w: steps must be ≥ 1, got %d", ErrInvalidParams, p.Steps)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParams, p.Dt)
	}
	if p.Barrier <= 0 {
		return fmt.Errorf("%w: barrier must be positive, got %g", ErrInvalidParams, p.Barrier)
	}
	return nil
}

// #endregion params

// #region simulate
// SimulatePhasePath runs the Euler–Maruyama recursion of the Kuramoto
// phase-error SDE from e0 and returns steps+1 values in [-180, 180).
func SimulatePhasePath(rng *rand.Rand, e0, k float64, steps int, dt float64) []float64 {
	path := make([]float64, 0, steps+1)
	e := e0
	path = append(path, e)
	noise := NoiseSigma * math.Sqrt(dt) * 180
	for i := 0; i < steps; i++ {
		drift := -k * math.Sin(e*math.Pi/180) * dt * 180 / math.Pi
		e = state.WrapDegrees(e + drift + noise*rng.NormFloat64())
		path = append(path, e)
	}
	return path
}

// KnockedIn reports whether any point of path is within barrier of zero.
func KnockedIn(path []float64, barrier float64) bool {
	for _, e := range path {
		if math.Abs(e) <= barrier {
			return true
		}
	}
	return false
}

// BarrierPayoff returns 1 − |e_final|/180 for a knocked-in path, else 0.
func BarrierPayoff(path []float64, barrier float64) float64 {
	if !KnockedIn(path, barrier) {
		return 0
	}
	return math.Max(0, 1-math.Abs(path[len(path)-1])/180)
}

// #endregion simulate

// #region price
// BarrierEstimate is a Monte-Carlo price with its sampling error.
type BarrierEstimate struct {
	Price    float64 `json:"price"`
	StdErr   float64 `json:"std_err"`
	KnockIns int     `json:"knock_ins"`
	Paths    int     `json:"paths"`
}

// EstimateBarrier prices a phase-barrier option on s and reports the
// standard error of the mean payoff.
func EstimateBarrier(rng *rand.Rand, s state.PhaseLockState, p BarrierParams) (BarrierEstimate, error) {
	if err := p.Validate(); err != nil {
		return BarrierEstimate{}, err
	}
	e0 := state.PhaseError(s)

	var sum, sumSq float64
	knockIns := 0
	for i := 0; i < p.Paths; i++ {
		path := SimulatePhasePath(rng, e0, s.K, p.Steps, p.Dt)
		v := BarrierPayoff(path, p.Barrier)
		if KnockedIn(path, p.Barrier) {
			knockIns++
		}
		sum += v
		sumSq += v * v
	}

	n := float64(p.Paths)
	mean := sum / n
	est := BarrierEstimate{Price: mean, KnockIns: knockIns, Paths: p.Paths}
	if p.Paths > 1 {
		variance := math.Max(0, (sumSq-n*mean*mean)/(n-1))
		est.StdErr = math.Sqrt(variance / n)
	}
	return est, nil
}

// PriceBarrier returns the mean payoff over p.Paths simulated paths.
func PriceBarrier(rng *rand.Rand, s state.PhaseLockState, p BarrierParams) (float64, error) {
	est, err := EstimateBarrier(rng, s, p)
	if err != nil {
		return 0, fmt.Errorf("price barrier: %w", err)
	}
	return est.Price, nil
}

// #endregion price
