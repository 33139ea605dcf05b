package pricing

import "github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"

// PriceFunc values a contract on s with tte time units left.
type PriceFunc func(s state.PhaseLockState, tte float64) float64

// Bump sizes for the finite-difference Greeks.
const (
	freqBump  = 0.01 // Hz
	phaseBump = 1.0  // deg
	timeBump  = 0.01
)

// #region greeks
// DeltaF returns ∂V/∂f_a and ∂V/∂f_b by forward differences.
func DeltaF(f PriceFunc, s state.PhaseLockState, tte float64) (float64, float64) {
	v0 := f(s, tte)
	va := f(s.WithFrequencies(s.FA+freqBump, s.FB), tte)
	vb := f(s.WithFrequencies(s.FA, s.FB+freqBump), tte)
	return (va - v0) / freqBump, (vb - v0) / freqBump
}

// DeltaPhi returns ∂V/∂θ_a and ∂V/∂θ_b per degree.
func DeltaPhi(f PriceFunc, s state.PhaseLockState, tte float64) (float64, float64) {
	v0 := f(s, tte)
	va := f(s.WithPhases(s.ThetaA+phaseBump, s.ThetaB), tte)
	vb := f(s.WithPhases(s.ThetaA, s.ThetaB+phaseBump), tte)
	return (va - v0) / phaseBump, (vb - v0) / phaseBump
}

// Theta returns −∂V/∂t, the value lost as expiry approaches.
func Theta(f PriceFunc, s state.PhaseLockState, tte float64) float64 {
	v0 := f(s, tte)
	v1 := f(s, tte-timeBump)
	return -(v1 - v0) / timeBump
}

// Gamma returns ∂²V/∂f_a² by the three-point central difference.
func Gamma(f PriceFunc, s state.PhaseLockState, tte float64) float64 {
	minus := f(s.WithFrequencies(s.FA-freqBump, s.FB), tte)
	v0 := f(s, tte)
	plus := f(s.WithFrequencies(s.FA+freqBump, s.FB), tte)
	return (plus - 2*v0 + minus) / (freqBump * freqBump)
}

// Vega is zero: no pricer here exposes its noise level as an input.
func Vega(PriceFunc, state.PhaseLockState, float64) float64 {
	return 0
}

// Greeks bundles every sensitivity of one contract.
type Greeks struct {
	DeltaFA   float64 `json:"delta_f_a"`
	DeltaFB   float64 `json:"delta_f_b"`
	DeltaPhiA float64 `json:"delta_phi_a"`
	DeltaPhiB float64 `json:"delta_phi_b"`
	Theta     float64 `json:"theta"`
	Gamma     float64 `json:"gamma"`
	Vega      float64 `json:"vega"`
}

// AllGreeks computes every sensitivity of f at s.
func AllGreeks(f PriceFunc, s state.PhaseLockState, tte float64) Greeks {
	var g Greeks
	g.DeltaFA, g.DeltaFB = DeltaF(f, s, tte)
	g.DeltaPhiA, g.DeltaPhiB = DeltaPhi(f, s, tte)
	g.Theta = Theta(f, s, tte)
	g.Gamma = Gamma(f, s, tte)
	g.Vega = Vega(f, s, tte)
	return g
}

// #endregion greeks
