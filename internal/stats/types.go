package stats

// #region alternative
// Alternative selects the tail of a hypothesis test.
type Alternative int

const (
	TwoSided Alternative = iota
	Greater              // first sample / mean is larger
	Less                 // first sample / mean is smaller
)

func (a Alternative) String() string {
	switch a {
	case Greater:
		return "greater"
	case Less:
		return "less"
	default:
		return "two-sided"
	}
}

// #endregion alternative

// #region results
// TTestResult is the outcome of a one-sample Student t-test.
type TTestResult struct {
	N      int
	Mean   float64
	StdDev float64 // sample standard deviation (n−1)
	T      float64
	DF     float64
	PValue float64
}

// MannWhitneyResult is the outcome of a Mann–Whitney U rank-sum test.
// U is always the statistic of the first sample.
type MannWhitneyResult struct {
	N1, N2 int
	U      float64
	Z      float64
	PValue float64
}

// #endregion results
