package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// #region summary
// Mean returns the arithmetic mean, or 0 for an empty sample.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// StdDev returns the sample standard deviation, or 0 when n < 2.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}

// StdErr returns StdDev/√n, or 0 when n < 2.
func StdErr(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return StdDev(x) / math.Sqrt(float64(len(x)))
}

// Median returns the empirical median, or 0 for an empty sample.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Abs returns a new slice with |x_i|.
func Abs(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v)
	}
	return out
}

// #endregion summary

// #region t-test
// OneSampleTTest tests whether the mean of x differs from mu.
// Samples with fewer than two values give t=0, p=1.
func OneSampleTTest(x []float64, mu float64, alt Alternative) TTestResult {
	res := TTestResult{N: len(x), Mean: Mean(x), PValue: 1}
	if len(x) < 2 {
		return res
	}
	res.StdDev = StdDev(x)
	res.DF = float64(len(x) - 1)

	diff := res.Mean - mu
	if res.StdDev == 0 {
		switch {
		case diff == 0:
			return res
		case diff > 0:
			res.T = math.Inf(1)
		default:
			res.T = math.Inf(-1)
		}
		res.PValue = degeneratePValue(diff, alt)
		return res
	}

	res.T = diff / (res.StdDev / math.Sqrt(float64(len(x))))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	switch alt {
	case Greater:
		res.PValue = dist.Survival(res.T)
	case Less:
		res.PValue = dist.CDF(res.T)
	default:
		res.PValue = math.Min(1, 2*dist.Survival(math.Abs(res.T)))
	}
	return res
}

// degeneratePValue handles zero-variance samples whose mean is off mu.
func degeneratePValue(diff float64, alt Alternative) float64 {
	switch alt {
	case Greater:
		if diff > 0 {
			return 0
		}
		return 1
	case Less:
		if diff < 0 {
			return 0
		}
		return 1
	default:
		return 0
	}
}

// #endregion t-test

// #region mann-whitney
// MannWhitneyU compares x against y with the normal approximation,
// tie correction and continuity correction. An empty sample or a
// constant pooled sample gives p=1.
func MannWhitneyU(x, y []float64, alt Alternative) MannWhitneyResult {
	n1, n2 := len(x), len(y)
	res := MannWhitneyResult{N1: n1, N2: n2, PValue: 1}
	if n1 == 0 || n2 == 0 {
		return res
	}

	ranks, tieTerm := rankPooled(x, y)
	var r1 float64
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}
	f1, f2 := float64(n1), float64(n2)
	u1 := r1 - f1*(f1+1)/2
	u2 := f1*f2 - u1
	res.U = u1

	n := f1 + f2
	mu := f1 * f2 / 2
	sigma := math.Sqrt(f1 * f2 / 12 * ((n + 1) - tieTerm/(n*(n-1))))
	if sigma == 0 || math.IsNaN(sigma) {
		return res
	}

	switch alt {
	case Greater:
		res.Z = (u1 - mu - 0.5) / sigma
		res.PValue = distuv.UnitNormal.Survival(res.Z)
	case Less:
		res.Z = (u2 - mu - 0.5) / sigma
		res.PValue = distuv.UnitNormal.Survival(res.Z)
	default:
		res.Z = (math.Max(u1, u2) - mu - 0.5) / sigma
		res.PValue = math.Min(1, 2*distuv.UnitNormal.Survival(res.Z))
	}
	return res
}

// rankPooled returns average ranks (1-based) of x followed by y, and the
// tie term Σ(t³ − t) over groups of equal values.
func rankPooled(x, y []float64) ([]float64, float64) {
	n := len(x) + len(y)
	vals := make([]float64, 0, n)
	vals = append(vals, x...)
	vals = append(vals, y...)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })

	ranks := make([]float64, n)
	var tieTerm float64
	for i := 0; i < n; {
		j := i + 1
		for j < n && vals[idx[j]] == vals[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // mean of ranks i+1..j
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		t := float64(j - i)
		tieTerm += t*t*t - t
		i = j
	}
	return ranks, tieTerm
}

// #endregion mann-whitney
