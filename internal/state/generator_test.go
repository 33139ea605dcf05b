package state

import (
	"errors"
	"math"
	"testing"
)

func TestNew_NormalizesPhases(t *testing.T) {
	s := New(Params{FA: 1, FB: 1, ThetaA: -30, ThetaB: 725, P: 1, Q: 1})
	if s.ThetaA != 330 {
		t.Errorf("expected theta_a 330, got %f", s.ThetaA)
	}
	if math.Abs(s.ThetaB-5) > 1e-9 {
		t.Errorf("expected theta_b 5, got %f", s.ThetaB)
	}
	if s.QA != 1.0 || s.QB != 1.0 {
		t.Errorf("expected default quality factors, got %f/%f", s.QA, s.QB)
	}
}

func TestWithCoupling_DoesNotMutateOriginal(t *testing.T) {
	s := LockedFromSeed(1)
	orig := s.K
	muted := s.WithCoupling(0.2)
	if s.K != orig {
		t.Fatalf("original coupling mutated: %f → %f", orig, s.K)
	}
	if muted.K != 0.2 {
		t.Fatalf("expected muted coupling 0.2, got %f", muted.K)
	}
	if muted.ThetaA != s.ThetaA || muted.P != s.P {
		t.Fatal("WithCoupling changed unrelated fields")
	}
}

func TestValidate(t *testing.T) {
	good := LockedFromSeed(2)
	if err := good.Validate(); err != nil {
		t.Fatalf("generated locked state should be valid: %v", err)
	}

	bad := []PhaseLockState{
		New(Params{FA: 0, FB: 1, P: 1, Q: 1}),
		New(Params{FA: 1, FB: 1, P: 0, Q: 1}),
		New(Params{FA: 1, FB: 1, P: 1, Q: 1, K: -1}),
		New(Params{FA: 1, FB: 1, P: 1, Q: 1, GammaB: -0.1}),
		New(Params{FA: math.NaN(), FB: 1, P: 1, Q: 1}),
	}
	for i, s := range bad {
		err := s.Validate()
		if err == nil {
			t.Errorf("case %d: expected validation error", i)
			continue
		}
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("case %d: expected ErrInvalidState, got %v", i, err)
		}
	}
}

func TestGenerateLocked_Deterministic(t *testing.T) {
	a := LockedFromSeed(42)
	b := LockedFromSeed(42)
	if a != b {
		t.Fatalf("same seed produced different states: %+v vs %+v", a, b)
	}
	c := LockedFromSeed(43)
	if a == c {
		t.Fatal("different seeds produced identical states")
	}
}

func TestGenerateLocked_Ranges(t *testing.T) {
	rng := NewRand(11)
	for i := 0; i < 500; i++ {
		s := GenerateLocked(rng)
		if s.K < 0.1 || s.K >= 0.5 {
			t.Fatalf("locked K %f outside [0.1,0.5)", s.K)
		}
		if s.P+s.Q > 5 {
			t.Fatalf("locked order %d:%d is not low order", s.P, s.Q)
		}
		if s.GammaA < 0.01 || s.GammaA >= 0.06 {
			t.Fatalf("locked damping %f outside range", s.GammaA)
		}
		if s.ThetaA < 0 || s.ThetaA >= 360 || s.ThetaB < 0 || s.ThetaB >= 360 {
			t.Fatalf("phases not normalized: %f %f", s.ThetaA, s.ThetaB)
		}
	}
}

func TestLockedPopulation_HasSmallerPhaseError(t *testing.T) {
	rng := NewRand(5)
	var lockedSum, unlockedSum float64
	n := 300
	for i := 0; i < n; i++ {
		lockedSum += math.Abs(PhaseError(GenerateLocked(rng)))
		unlockedSum += math.Abs(PhaseError(GenerateUnlocked(rng)))
	}
	if lockedSum/float64(n) >= unlockedSum/float64(n) {
		t.Fatalf("locked mean |e| %f should be below unlocked %f", lockedSum/float64(n), unlockedSum/float64(n))
	}
}

func TestGenerateUnlocked_Ranges(t *testing.T) {
	rng := NewRand(12)
	for i := 0; i < 500; i++ {
		s := GenerateUnlocked(rng)
		if s.K < 0.001 || s.K >= 0.051 {
			t.Fatalf("unlocked K %f outside range", s.K)
		}
		if s.P < 1 || s.P > 4 || s.Q < 1 || s.Q > 4 {
			t.Fatalf("unlocked order %d:%d outside 1..4", s.P, s.Q)
		}
	}
}

func TestDataset_LabelsAndSize(t *testing.T) {
	rows := Dataset(NewRand(42), 30, 20)
	if len(rows) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(rows))
	}
	locked := 0
	for _, r := range rows {
		if r.Locked {
			locked++
		}
		if r.Metrics.PhaseError != PhaseError(r.State) {
			t.Fatal("row metrics do not match its state")
		}
	}
	if locked != 30 {
		t.Fatalf("expected 30 locked rows, got %d", locked)
	}
}

func TestDataset_NegativeCountsAreEmpty(t *testing.T) {
	if rows := Dataset(NewRand(1), -1, -5); len(rows) != 0 {
		t.Fatalf("expected empty dataset, got %d rows", len(rows))
	}
}
