package state

import "math"

// #region constants
// ChiEq is the critical coupling point 1/(1+φ) ≈ 0.382.
var ChiEq = 1 / (1 + (1+math.Sqrt(5))/2)

// EligibilitySentinel is returned by Eligibility when capture bandwidth is zero.
const EligibilitySentinel = 1e6

// #endregion constants

// #region metrics
// Metrics bundles every closed-form observable of a state.
type Metrics struct {
	K           float64 `json:"k"`
	Capture     float64 `json:"epsilon_cap"`
	Stability   float64 `json:"epsilon_stab"`
	Brittleness float64 `json:"zeta"`
	Eligibility float64 `json:"s_f"`
	PhaseError  float64 `json:"e_phi"`
	Criticality float64 `json:"chi"`
	Harmony     float64 `json:"harmony"`
}

// AllMetrics computes every observable of s at once.
func AllMetrics(s PhaseLockState) Metrics {
	return Metrics{
		K:           LockStrength(s),
		Capture:     Capture(s),
		Stability:   Stability(s),
		Brittleness: Brittleness(s),
		Eligibility: Eligibility(s),
		PhaseError:  PhaseError(s),
		Criticality: Criticality(s),
		Harmony:     Harmony(s),
	}
}

// #endregion metrics

// #region formulas
// PhaseError returns wrap(p·θb − q·θa) in degrees, in (-180, 180].
func PhaseError(s PhaseLockState) float64 {
	e := NormalizeDegrees(float64(s.P)*s.ThetaB - float64(s.Q)*s.ThetaA)
	if e > 180 {
		e -= 360
	}
	return e
}

// LockStrength is the effective coupling. Taken directly from K.
func LockStrength(s PhaseLockState) float64 {
	return s.K
}

// Capture returns the capture bandwidth [2πK − (Γa+Γb)]₊.
func Capture(s PhaseLockState) float64 {
	return math.Max(0, 2*math.Pi*s.K-(s.GammaA+s.GammaB))
}

// Stability returns the margin before slip: capture scaled down by phase error.
func Stability(s PhaseLockState) float64 {
	penalty := math.Abs(PhaseError(s)) / 180.0
	return math.Max(0, Capture(s)*(1-penalty))
}

// Brittleness returns (Γa·p² + Γb·q²) / max(capture, K, 1e-6).
func Brittleness(s PhaseLockState) float64 {
	p, q := float64(s.P), float64(s.Q)
	num := s.GammaA*p*p + s.GammaB*q*q
	den := math.Max(math.Max(Capture(s), s.K), 1e-6)
	return num / den
}

// Eligibility returns capture·|p·fa − q·fb|, or EligibilitySentinel when
// the system has no capture bandwidth.
func Eligibility(s PhaseLockState) float64 {
	c := Capture(s)
	if c <= 0 {
		return EligibilitySentinel
	}
	return c * math.Abs(float64(s.P)*s.FA-float64(s.Q)*s.FB)
}

// Criticality returns |K/(1+K) − ChiEq|.
func Criticality(s PhaseLockState) float64 {
	kNorm := s.K / (1 + s.K)
	return math.Abs(kNorm - ChiEq)
}

// Harmony returns a coherence score in [0, 100]. Zero when the system
// cannot capture or the phase error exceeds 90°.
func Harmony(s PhaseLockState) float64 {
	e := math.Abs(PhaseError(s))
	c := Capture(s)
	if c <= 0 || e > 90 {
		return 0
	}
	h := 100.0 * (1.0 - e/180.0) * math.Min(c/0.1, 1.0)
	return math.Max(0, h)
}

// #endregion formulas
