package state

import "math/rand/v2"

// #region rng
// NewRand returns a PCG-backed generator for seed. Every stochastic
// function in this module takes one of these explicitly.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// #endregion rng

// #region locked
// lockedRatios are the low-order p:q locks the locked population draws from.
var lockedRatios = [][2]int{{1, 1}, {2, 1}, {3, 2}, {1, 2}, {2, 3}}

// GenerateLocked draws a strongly locked state: frequencies nearly in
// ratio, phases nearly aligned, strong coupling and light damping.
func GenerateLocked(rng *rand.Rand) PhaseLockState {
	ratio := lockedRatios[rng.IntN(len(lockedRatios))]
	p, q := ratio[0], ratio[1]
	r := float64(q) / float64(p)

	fBase := 1.0 + rng.Float64()*5.0
	fa := fBase
	fb := r * fBase * (1 + rng.NormFloat64()*0.005)

	thetaA := rng.Float64() * 360
	thetaB := r*thetaA + rng.NormFloat64()*5

	k := 0.1 + rng.Float64()*0.4
	gammaA := 0.01 + rng.Float64()*0.05
	gammaB := 0.01 + rng.Float64()*0.05

	return New(Params{
		FA: fa, FB: fb,
		ThetaA: thetaA, ThetaB: thetaB,
		P: p, Q: q,
		K:      k,
		GammaA: gammaA, GammaB: gammaB,
	})
}

// LockedFromSeed is GenerateLocked on a fresh generator for seed.
func LockedFromSeed(seed uint64) PhaseLockState {
	return GenerateLocked(NewRand(seed))
}

// #endregion locked

// #region unlocked
// GenerateUnlocked draws an unlocked state: unrelated frequencies, random
// phases, weak coupling and heavier damping.
func GenerateUnlocked(rng *rand.Rand) PhaseLockState {
	p, q := 1+rng.IntN(4), 1+rng.IntN(4)

	fa := 1.0 + rng.Float64()*10.0
	fb := 1.0 + rng.Float64()*10.0

	thetaA := rng.Float64() * 360
	thetaB := rng.Float64() * 360

	k := 0.001 + rng.Float64()*0.05
	gammaA := 0.05 + rng.Float64()*0.2
	gammaB := 0.05 + rng.Float64()*0.2

	return New(Params{
		FA: fa, FB: fb,
		ThetaA: thetaA, ThetaB: thetaB,
		P: p, Q: q,
		K:      k,
		GammaA: gammaA, GammaB: gammaB,
	})
}

// UnlockedFromSeed is GenerateUnlocked on a fresh generator for seed.
func UnlockedFromSeed(seed uint64) PhaseLockState {
	return GenerateUnlocked(NewRand(seed))
}

// #endregion unlocked

// #region null
// GenerateNull draws a state with every field uniform over its range and
// no lock structure at all. Used by the calibration gate.
func GenerateNull(rng *rand.Rand) PhaseLockState {
	return New(Params{
		FA:     rng.Float64() * 10,
		FB:     rng.Float64() * 10,
		ThetaA: rng.Float64() * 360,
		ThetaB: rng.Float64() * 360,
		P:      1 + rng.IntN(5),
		Q:      1 + rng.IntN(5),
		K:      rng.Float64() * 0.5,
		GammaA: rng.Float64() * 0.2,
		GammaB: rng.Float64() * 0.2,
	})
}

// #endregion null

// #region dataset
// Sample is one labelled row of a synthetic dataset.
type Sample struct {
	State   PhaseLockState `json:"state"`
	Metrics Metrics        `json:"metrics"`
	Locked  bool           `json:"lock_exists"`
}

// Dataset generates nLocked locked and nUnlocked unlocked samples with
// their metrics, shuffled with rng.
func Dataset(rng *rand.Rand, nLocked, nUnlocked int) []Sample {
	if nLocked < 0 {
		nLocked = 0
	}
	if nUnlocked < 0 {
		nUnlocked = 0
	}
	out := make([]Sample, 0, nLocked+nUnlocked)
	for i := 0; i < nLocked; i++ {
		s := GenerateLocked(rng)
		out = append(out, Sample{State: s, Metrics: AllMetrics(s), Locked: true})
	}
	for i := 0; i < nUnlocked; i++ {
		s := GenerateUnlocked(rng)
		out = append(out, Sample{State: s, Metrics: AllMetrics(s), Locked: false})
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// #endregion dataset
