package pricing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
)

// ErrInvalidNotional is returned for swap terms that cannot be priced.
var ErrInvalidNotional = errors.New("invalid swap terms")

// riskMultiplier is the market price of eligibility-failure risk.
const riskMultiplier = 1.2

// #region terms
// SwapTerms configures an Eligibility-Failure Swap.
type SwapTerms struct {
	Notional float64 `json:"notional" yaml:"notional"`
	Windows  int     `json:"windows" yaml:"windows"` // consecutive failing windows that trigger
	SigmaF   float64 `json:"sigma_f" yaml:"sigma_f"` // frequency noise
}

// DefaultSwapTerms returns unit notional, 3 windows, σ_f = 0.01.
func DefaultSwapTerms() SwapTerms {
	return SwapTerms{Notional: 1.0, Windows: 3, SigmaF: 0.01}
}

func (t SwapTerms) Validate() error {
	if math.IsNaN(t.Notional) || math.IsInf(t.Notional, 0) || t.Notional <= 0 {
		return fmt.Errorf("%w: notional must be positive and finite, got %g", ErrInvalidNotional, t.Notional)
	}
	if t.Windows < 1 {
		return fmt.Errorf("%w: windows must be ≥ 1, got %d", ErrInvalidNotional, t.Windows)
	}
	if math.IsNaN(t.SigmaF) || t.SigmaF < 0 {
		return fmt.Errorf("%w: sigma_f must be non-negative, got %g", ErrInvalidNotional, t.SigmaF)
	}
	return nil
}

// #endregion terms

// #region risk
// SwapRisk returns the probability-like score in [0, 1] that eligibility
// fails for the given number of consecutive windows.
func SwapRisk(s state.PhaseLockState, windows int, sigmaF float64) float64 {
	m := state.AllMetrics(s)

	z := (1.0 - m.Eligibility) / (sigmaF + 1e-6)
	pSingle := distuv.UnitNormal.Survival(z)
	pRun := math.Pow(pSingle, float64(windows))

	chiPenalty := 1.0 + 0.5*math.Abs(m.Criticality-state.ChiEq)
	kPenalty := 0.5 / (1.0 + 2*m.K)

	risk := pRun * chiPenalty * kPenalty
	if math.IsNaN(risk) {
		return 0
	}
	return math.Max(0, math.Min(1, risk))
}

// PriceSwap returns the premium notional·risk·1.2.
func PriceSwap(s state.PhaseLockState, t SwapTerms) (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("price swap: %w", err)
	}
	return t.Notional * SwapRisk(s, t.Windows, t.SigmaF) * riskMultiplier, nil
}

// #endregion risk
