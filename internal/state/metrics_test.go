package state

import (
	"math"
	"testing"
)

func makeState(thetaA, thetaB float64, p, q int, k float64) PhaseLockState {
	return New(Params{
		FA: 2.0, FB: 2.0 * float64(q) / float64(p),
		ThetaA: thetaA, ThetaB: thetaB,
		P: p, Q: q,
		K:      k,
		GammaA: 0.02, GammaB: 0.03,
	})
}

func TestPhaseError_Aligned(t *testing.T) {
	s := makeState(30, 30, 1, 1, 0.3)
	if e := PhaseError(s); e != 0 {
		t.Fatalf("expected 0 phase error, got %f", e)
	}
}

func TestPhaseError_WrapsIntoRange(t *testing.T) {
	cases := []struct {
		thetaA, thetaB float64
		p, q           int
		want           float64
	}{
		{0, 190, 1, 1, -170},
		{190, 0, 1, 1, 170},
		{0, 180, 1, 1, 180},
		{10, 100, 2, 1, -170}, // 2·100 − 10 = 190
	}

	for _, c := range cases {
		s := makeState(c.thetaA, c.thetaB, c.p, c.q, 0.3)
		got := PhaseError(s)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("PhaseError(%v,%v,%d:%d) = %f, want %f", c.thetaA, c.thetaB, c.p, c.q, got, c.want)
		}
		if got < -180 || got > 180 {
			t.Errorf("phase error %f out of [-180,180]", got)
		}
	}
}

func TestCapture_ClampsAtZero(t *testing.T) {
	s := New(Params{FA: 1, FB: 1, P: 1, Q: 1, K: 0.001, GammaA: 0.5, GammaB: 0.5})
	if c := Capture(s); c != 0 {
		t.Fatalf("expected zero capture, got %f", c)
	}
	if e := Eligibility(s); e != EligibilitySentinel {
		t.Fatalf("expected sentinel eligibility, got %f", e)
	}
	if h := Harmony(s); h != 0 {
		t.Fatalf("expected zero harmony without capture, got %f", h)
	}
}

func TestEligibility_FrequencyMismatch(t *testing.T) {
	s := New(Params{FA: 2, FB: 3, P: 1, Q: 1, K: 0.2, GammaA: 0.01, GammaB: 0.01})
	want := (2*math.Pi*0.2 - 0.02) * 1.0
	if got := Eligibility(s); math.Abs(got-want) > 1e-12 {
		t.Fatalf("eligibility = %f, want %f", got, want)
	}
}

func TestBrittleness_UsesLargestDenominator(t *testing.T) {
	s := New(Params{FA: 1, FB: 1, P: 2, Q: 1, K: 0, GammaA: 0.1, GammaB: 0.1})
	// capture 0, K 0 → denominator floor 1e-6
	want := (0.1*4 + 0.1*1) / 1e-6
	if got := Brittleness(s); math.Abs(got-want) > 1e-3 {
		t.Fatalf("brittleness = %f, want %f", got, want)
	}
}

func TestCriticality_AtEquilibrium(t *testing.T) {
	// K/(1+K) = ChiEq → K = ChiEq/(1−ChiEq)
	k := ChiEq / (1 - ChiEq)
	s := makeState(0, 0, 1, 1, k)
	if c := Criticality(s); c > 1e-12 {
		t.Fatalf("expected ~0 criticality at equilibrium, got %g", c)
	}
}

func TestHarmony_ZeroBeyondNinetyDegrees(t *testing.T) {
	s := makeState(0, 120, 1, 1, 0.3)
	if h := Harmony(s); h != 0 {
		t.Fatalf("expected zero harmony at 120° error, got %f", h)
	}
	aligned := makeState(0, 0, 1, 1, 0.3)
	if h := Harmony(aligned); math.Abs(h-100) > 1e-9 {
		t.Fatalf("expected full harmony when aligned with capture ≥ 0.1, got %f", h)
	}
}

func TestStability_PenalizedByPhaseError(t *testing.T) {
	s := makeState(0, 90, 1, 1, 0.3)
	want := Capture(s) * 0.5
	if got := Stability(s); math.Abs(got-want) > 1e-12 {
		t.Fatalf("stability = %f, want %f", got, want)
	}
}

func TestAllMetrics_MatchesIndividualFormulas(t *testing.T) {
	s := LockedFromSeed(7)
	m := AllMetrics(s)
	if m.PhaseError != PhaseError(s) || m.Eligibility != Eligibility(s) ||
		m.Brittleness != Brittleness(s) || m.Harmony != Harmony(s) ||
		m.Criticality != Criticality(s) || m.Capture != Capture(s) ||
		m.Stability != Stability(s) || m.K != s.K {
		t.Fatalf("AllMetrics disagrees with individual formulas: %+v", m)
	}
}

func TestSwapped_PreservesCouplingAndPhaseMagnitude(t *testing.T) {
	rng := NewRand(42)
	for i := 0; i < 200; i++ {
		s := GenerateLocked(rng)
		sw := s.Swapped()
		if sw.K != s.K {
			t.Fatalf("coupling changed under swap: %f → %f", s.K, sw.K)
		}
		if d := math.Abs(math.Abs(PhaseError(s)) - math.Abs(PhaseError(sw))); d > 1 {
			t.Fatalf("phase error magnitude changed by %f under swap", d)
		}
		if math.Abs(Eligibility(s)-Eligibility(sw)) > 1e-9 {
			t.Fatalf("eligibility changed under swap")
		}
	}
}

func TestPhaseOffset_InvariantForEqualOrders(t *testing.T) {
	rng := NewRand(3)
	for i := 0; i < 200; i++ {
		s := New(Params{
			FA: 1 + rng.Float64(), FB: 1 + rng.Float64(),
			ThetaA: rng.Float64() * 360, ThetaB: rng.Float64() * 360,
			P: 1 + i%3, Q: 1 + i%3,
			K: 0.3, GammaA: 0.02, GammaB: 0.02,
		})
		offset := rng.Float64() * 360
		shifted := s.WithPhaseOffset(offset)
		diff := WrapDegrees(PhaseError(s) - PhaseError(shifted))
		if math.Abs(diff) > 1e-6 {
			t.Fatalf("phase error moved by %g under offset %f", diff, offset)
		}
	}
}

func TestPhaseOffset_ShiftsUnequalOrders(t *testing.T) {
	s := makeState(10, 20, 2, 1, 0.3)
	shifted := s.WithPhaseOffset(30)
	// e changes by (p − q)·offset = 30°
	diff := WrapDegrees(PhaseError(shifted) - PhaseError(s))
	if math.Abs(diff-30) > 1e-9 {
		t.Fatalf("expected 30° shift for 2:1 lock, got %f", diff)
	}
}
