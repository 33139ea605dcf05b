package state

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidState is returned by Validate for states that cannot be priced.
var ErrInvalidState = errors.New("invalid phase-lock state")

// #region params
// Params is the raw input for New. Phases may be any real number.
type Params struct {
	FA, FB         float64 // natural frequencies [Hz]
	ThetaA, ThetaB float64 // phase angles [deg]
	P, Q           int     // lock order p:q
	K              float64 // coupling strength [rad/s]
	GammaA, GammaB float64 // damping
	QA, QB         float64 // quality factors, 0 means 1.0
}

// #endregion params

// #region phase-lock-state
// PhaseLockState describes two oscillating agents at one instant.
// Values are immutable by convention: every perturbation returns a copy.
// Phases are always stored in [0, 360).
type PhaseLockState struct {
	FA     float64 `json:"f_a"`
	FB     float64 `json:"f_b"`
	ThetaA float64 `json:"theta_a"`
	ThetaB float64 `json:"theta_b"`
	P      int     `json:"p"`
	Q      int     `json:"q"`
	K      float64 `json:"k"`
	GammaA float64 `json:"gamma_a"`
	GammaB float64 `json:"gamma_b"`
	QA     float64 `json:"q_a"`
	QB     float64 `json:"q_b"`
}

// New builds a state, normalizing both phases mod 360 and defaulting
// quality factors to 1.0.
func New(p Params) PhaseLockState {
	qa, qb := p.QA, p.QB
	if qa == 0 {
		qa = 1.0
	}
	if qb == 0 {
		qb = 1.0
	}
	return PhaseLockState{
		FA:     p.FA,
		FB:     p.FB,
		ThetaA: NormalizeDegrees(p.ThetaA),
		ThetaB: NormalizeDegrees(p.ThetaB),
		P:      p.P,
		Q:      p.Q,
		K:      p.K,
		GammaA: p.GammaA,
		GammaB: p.GammaB,
		QA:     qa,
		QB:     qb,
	}
}

// Params returns the construction parameters of s.
func (s PhaseLockState) Params() Params {
	return Params{
		FA: s.FA, FB: s.FB,
		ThetaA: s.ThetaA, ThetaB: s.ThetaB,
		P: s.P, Q: s.Q,
		K:      s.K,
		GammaA: s.GammaA, GammaB: s.GammaB,
		QA: s.QA, QB: s.QB,
	}
}

// Validate reports the first field that makes s unusable as pricing input.
func (s PhaseLockState) Validate() error {
	for name, v := range map[string]float64{
		"f_a": s.FA, "f_b": s.FB, "theta_a": s.ThetaA, "theta_b": s.ThetaB,
		"k": s.K, "gamma_a": s.GammaA, "gamma_b": s.GammaB, "q_a": s.QA, "q_b": s.QB,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidState, name)
		}
	}
	if s.FA <= 0 || s.FB <= 0 {
		return fmt.Errorf("%w: frequencies must be positive (f_a=%g, f_b=%g)", ErrInvalidState, s.FA, s.FB)
	}
	if s.P < 1 || s.Q < 1 {
		return fmt.Errorf("%w: lock order must be positive (p=%d, q=%d)", ErrInvalidState, s.P, s.Q)
	}
	if s.K < 0 {
		return fmt.Errorf("%w: coupling must be non-negative (k=%g)", ErrInvalidState, s.K)
	}
	if s.GammaA < 0 || s.GammaB < 0 {
		return fmt.Errorf("%w: damping must be non-negative (gamma_a=%g, gamma_b=%g)", ErrInvalidState, s.GammaA, s.GammaB)
	}
	return nil
}

// #endregion phase-lock-state

// #region perturbations
// WithCoupling returns a copy of s with coupling k.
func (s PhaseLockState) WithCoupling(k float64) PhaseLockState {
	p := s.Params()
	p.K = k
	return New(p)
}

// WithPhases returns a copy of s with new phase angles (normalized).
func (s PhaseLockState) WithPhases(thetaA, thetaB float64) PhaseLockState {
	p := s.Params()
	p.ThetaA, p.ThetaB = thetaA, thetaB
	return New(p)
}

// WithPhaseOffset adds the same global offset to both phases.
func (s PhaseLockState) WithPhaseOffset(offset float64) PhaseLockState {
	return s.WithPhases(s.ThetaA+offset, s.ThetaB+offset)
}

// WithDamping returns a copy of s with both damping coefficients replaced.
func (s PhaseLockState) WithDamping(gammaA, gammaB float64) PhaseLockState {
	p := s.Params()
	p.GammaA, p.GammaB = gammaA, gammaB
	return New(p)
}

// WithFrequencies returns a copy of s with both frequencies replaced.
func (s PhaseLockState) WithFrequencies(fa, fb float64) PhaseLockState {
	p := s.Params()
	p.FA, p.FB = fa, fb
	return New(p)
}

// Swapped relabels the agents: frequency, phase, lock-order component,
// damping and quality factor trade places. Coupling is shared.
func (s PhaseLockState) Swapped() PhaseLockState {
	return New(Params{
		FA: s.FB, FB: s.FA,
		ThetaA: s.ThetaB, ThetaB: s.ThetaA,
		P: s.Q, Q: s.P,
		K:      s.K,
		GammaA: s.GammaB, GammaB: s.GammaA,
		QA: s.QB, QB: s.QA,
	})
}

// #endregion perturbations

// #region angles
// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	if m >= 360 {
		m = 0
	}
	return m
}

// WrapDegrees maps any angle into [-180, 180).
func WrapDegrees(deg float64) float64 {
	m := math.Mod(deg+180, 360)
	if m < 0 {
		m += 360
	}
	return m - 180
}

// #endregion angles
