package gate

import (
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/pricing"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid gate config")

// #region gate-config
// Config holds sample sizes and thresholds for every sub-test.
type Config struct {
	TimeToExpiry float64 `json:"time_to_expiry" yaml:"time_to_expiry"` // LF horizon used by every gate
	Alpha        float64 `json:"alpha" yaml:"alpha"`                   // significance level for E1 and E3

	// E0
	NullSamples       int                   `json:"null_samples" yaml:"null_samples"`
	NullBarrierStates int                   `json:"null_barrier_states" yaml:"null_barrier_states"`
	NullBarrier       pricing.BarrierParams `json:"null_barrier" yaml:"null_barrier"`
	NullTarget        float64               `json:"null_target" yaml:"null_target"`
	NullAlpha         float64               `json:"null_alpha" yaml:"null_alpha"`
	BarrierMeanMax    float64               `json:"barrier_mean_max" yaml:"barrier_mean_max"`
	Swap              pricing.SwapTerms     `json:"swap" yaml:"swap"`
	SwapRiskMin       float64               `json:"swap_risk_min" yaml:"swap_risk_min"`
	SwapRiskMax       float64               `json:"swap_risk_max" yaml:"swap_risk_max"`

	// E1
	VibrationSamples int     `json:"vibration_samples" yaml:"vibration_samples"` // split evenly locked/unlocked
	MutedCoupling    float64 `json:"muted_coupling" yaml:"muted_coupling"`

	// E2
	SymmetrySamples   int     `json:"symmetry_samples" yaml:"symmetry_samples"`
	CouplingTolerance float64 `json:"coupling_tolerance" yaml:"coupling_tolerance"`
	PhaseTolerance    float64 `json:"phase_tolerance" yaml:"phase_tolerance"`
	PriceTolerance    float64 `json:"price_tolerance" yaml:"price_tolerance"`
	AgreementMin      float64 `json:"agreement_min" yaml:"agreement_min"`

	// E3
	CausalTrials    int     `json:"causal_trials" yaml:"causal_trials"`
	PhaseNudge      float64 `json:"phase_nudge" yaml:"phase_nudge"`
	CouplingNudge   float64 `json:"coupling_nudge" yaml:"coupling_nudge"`
	MinPhaseError   float64 `json:"min_phase_error" yaml:"min_phase_error"`
	PhaseErrorBoost float64 `json:"phase_error_boost" yaml:"phase_error_boost"`

	// E4
	ThinningSamples     int     `json:"thinning_samples" yaml:"thinning_samples"`
	LowOrderMax         int     `json:"low_order_max" yaml:"low_order_max"`
	MidOrderMax         int     `json:"mid_order_max" yaml:"mid_order_max"`
	CoarseSamples       int     `json:"coarse_samples" yaml:"coarse_samples"`
	CoarseCopies        int     `json:"coarse_copies" yaml:"coarse_copies"`
	CoarsePhaseNoise    float64 `json:"coarse_phase_noise" yaml:"coarse_phase_noise"`
	CoarseCouplingNoise float64 `json:"coarse_coupling_noise" yaml:"coarse_coupling_noise"`
	CouplingFloor       float64 `json:"coupling_floor" yaml:"coupling_floor"`
	HighPrice           float64 `json:"high_price" yaml:"high_price"`
	HighPersist         float64 `json:"high_persist" yaml:"high_persist"`
	LowPrice            float64 `json:"low_price" yaml:"low_price"`
	LowPersist          float64 `json:"low_persist" yaml:"low_persist"`
	PersistenceMin      float64 `json:"persistence_min" yaml:"persistence_min"`
	BrittleSamples      int     `json:"brittle_samples" yaml:"brittle_samples"`
	DampingScale        float64 `json:"damping_scale" yaml:"damping_scale"`
	BrittleGrowthMax    float64 `json:"brittle_growth_max" yaml:"brittle_growth_max"`
	StabilityMin        float64 `json:"stability_min" yaml:"stability_min"`
}

// DefaultConfig returns the full-size audit.
func DefaultConfig() Config {
	barrier := pricing.DefaultBarrierParams()
	barrier.Paths = 500

	return Config{
		TimeToExpiry: 1.0,
		Alpha:        0.01,

		NullSamples:       1000,
		NullBarrierStates: 500,
		NullBarrier:       barrier,
		NullTarget:        0.5,
		NullAlpha:         0.05,
		BarrierMeanMax:    0.3,
		Swap:              pricing.DefaultSwapTerms(),
		SwapRiskMin:       0.1,
		SwapRiskMax:       0.7,

		VibrationSamples: 500,
		MutedCoupling:    0.2,

		SymmetrySamples:   200,
		CouplingTolerance: 1e-6,
		PhaseTolerance:    1.0,
		PriceTolerance:    0.05,
		AgreementMin:      0.95,

		CausalTrials:    240,
		PhaseNudge:      5.0,
		CouplingNudge:   0.02,
		MinPhaseError:   10.0,
		PhaseErrorBoost: 20.0,

		ThinningSamples:     500,
		LowOrderMax:         3,
		MidOrderMax:         5,
		CoarseSamples:       200,
		CoarseCopies:        10,
		CoarsePhaseNoise:    2.0,
		CoarseCouplingNoise: 0.01,
		CouplingFloor:       0.001,
		HighPrice:           0.7,
		HighPersist:         0.6,
		LowPrice:            0.3,
		LowPersist:          0.4,
		PersistenceMin:      0.80,
		BrittleSamples:      200,
		DampingScale:        1.5,
		BrittleGrowthMax:    2.0,
		StabilityMin:        0.85,
	}
}

// Scaled returns a copy with every sample count and the barrier path count
// multiplied by f. Counts never drop below 2.
func (c Config) Scaled(f float64) Config {
	scale := func(n int) int {
		return max(2, int(math.Round(float64(n)*f)))
	}
	c.NullSamples = scale(c.NullSamples)
	c.NullBarrierStates = scale(c.NullBarrierStates)
	c.NullBarrier.Paths = scale(c.NullBarrier.Paths)
	c.VibrationSamples = scale(c.VibrationSamples)
	c.SymmetrySamples = scale(c.SymmetrySamples)
	c.CausalTrials = scale(c.CausalTrials)
	c.ThinningSamples = scale(c.ThinningSamples)
	c.CoarseSamples = scale(c.CoarseSamples)
	c.BrittleSamples = scale(c.BrittleSamples)
	return c
}

// Validate checks counts, probabilities and nested pricing settings.
func (c Config) Validate() error {
	counts := []struct {
		name string
		n    int
	}{
		{"null_samples", c.NullSamples},
		{"null_barrier_states", c.NullBarrierStates},
		{"vibration_samples", c.VibrationSamples},
		{"symmetry_samples", c.SymmetrySamples},
		{"causal_trials", c.CausalTrials},
		{"thinning_samples", c.ThinningSamples},
		{"coarse_samples", c.CoarseSamples},
		{"coarse_copies", c.CoarseCopies},
		{"brittle_samples", c.BrittleSamples},
	}
	for _, cn := range counts {
		if cn.n < 1 {
			return fmt.Errorf("%w: %s must be ≥ 1, got %d", ErrInvalidConfig, cn.name, cn.n)
		}
	}
	if c.VibrationSamples < 2 {
		return fmt.Errorf("%w: vibration_samples must be ≥ 2 to split populations, got %d", ErrInvalidConfig, c.VibrationSamples)
	}
	for name, p := range map[string]float64{
		"alpha": c.Alpha, "null_alpha": c.NullAlpha,
		"agreement_min": c.AgreementMin, "persistence_min": c.PersistenceMin, "stability_min": c.StabilityMin,
	} {
		if math.IsNaN(p) || p <= 0 || p >= 1 {
			return fmt.Errorf("%w: %s must be in (0,1), got %g", ErrInvalidConfig, name, p)
		}
	}
	if c.LowOrderMax >= c.MidOrderMax {
		return fmt.Errorf("%w: low_order_max %d must be below mid_order_max %d", ErrInvalidConfig, c.LowOrderMax, c.MidOrderMax)
	}
	if c.DampingScale <= 0 || c.BrittleGrowthMax <= 0 {
		return fmt.Errorf("%w: damping_scale and brittle_growth_max must be positive", ErrInvalidConfig)
	}
	if err := c.NullBarrier.Validate(); err != nil {
		return fmt.Errorf("%w: null_barrier: %v", ErrInvalidConfig, err)
	}
	if err := c.Swap.Validate(); err != nil {
		return fmt.Errorf("%w: swap: %v", ErrInvalidConfig, err)
	}
	return nil
}

// #endregion gate-config
