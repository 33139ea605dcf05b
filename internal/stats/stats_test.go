package stats

import (
	"math"
	"testing"
)

func TestMean_EmptyIsZero(t *testing.T) {
	if m := Mean(nil); m != 0 {
		t.Fatalf("expected 0 mean for empty sample, got %f", m)
	}
	if m := Mean([]float64{1, 2, 3}); m != 2 {
		t.Fatalf("expected mean 2, got %f", m)
	}
}

func TestStdErr_SmallSamples(t *testing.T) {
	if se := StdErr([]float64{5}); se != 0 {
		t.Fatalf("expected 0 stderr for one value, got %f", se)
	}
	// sd of {1,3} is √2, se = √2/√2 = 1
	if se := StdErr([]float64{1, 3}); math.Abs(se-1) > 1e-12 {
		t.Fatalf("expected stderr 1, got %f", se)
	}
}

func TestOneSampleTTest_KnownValue(t *testing.T) {
	x := []float64{5.1, 4.9, 5.6, 5.8, 6.0, 5.3, 5.7, 5.2}
	res := OneSampleTTest(x, 5.0, TwoSided)
	// mean 5.45, sd ≈ 0.3817, t ≈ 3.334 on 7 df
	if math.Abs(res.Mean-5.45) > 1e-9 {
		t.Fatalf("mean = %f, want 5.45", res.Mean)
	}
	if math.Abs(res.T-3.334) > 0.01 {
		t.Fatalf("t = %f, want ≈3.334", res.T)
	}
	if res.DF != 7 {
		t.Fatalf("df = %f, want 7", res.DF)
	}
	if res.PValue < 0.01 || res.PValue > 0.02 {
		t.Fatalf("two-sided p = %f, want in (0.01, 0.02)", res.PValue)
	}
}

func TestOneSampleTTest_TailsSumToOne(t *testing.T) {
	x := []float64{0.2, -0.1, 0.4, 0.3, 0.0, 0.5, 0.1}
	g := OneSampleTTest(x, 0, Greater)
	l := OneSampleTTest(x, 0, Less)
	if math.Abs(g.PValue+l.PValue-1) > 1e-9 {
		t.Fatalf("greater %f + less %f should be 1", g.PValue, l.PValue)
	}
	two := OneSampleTTest(x, 0, TwoSided)
	if math.Abs(two.PValue-2*g.PValue) > 1e-9 {
		t.Fatalf("two-sided %f should be twice greater %f when t > 0", two.PValue, g.PValue)
	}
}

func TestOneSampleTTest_TooFewValuesIsNeutral(t *testing.T) {
	for _, x := range [][]float64{nil, {3}} {
		res := OneSampleTTest(x, 0, Greater)
		if res.PValue != 1 || res.T != 0 {
			t.Fatalf("expected neutral result for n=%d, got %+v", len(x), res)
		}
	}
}

func TestOneSampleTTest_ZeroVariance(t *testing.T) {
	same := OneSampleTTest([]float64{2, 2, 2}, 2, TwoSided)
	if same.PValue != 1 {
		t.Fatalf("constant sample at mu should give p=1, got %f", same.PValue)
	}
	above := OneSampleTTest([]float64{3, 3, 3}, 2, Greater)
	if above.PValue != 0 || !math.IsInf(above.T, 1) {
		t.Fatalf("constant sample above mu should give t=+Inf p=0, got %+v", above)
	}
	if p := OneSampleTTest([]float64{3, 3, 3}, 2, Less).PValue; p != 1 {
		t.Fatalf("constant sample above mu with 'less' should give p=1, got %f", p)
	}
}

func TestMannWhitneyU_Separated(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}

	less := MannWhitneyU(x, y, Less)
	if less.U != 0 {
		t.Fatalf("U for fully separated lower sample = %f, want 0", less.U)
	}
	if less.PValue > 0.001 {
		t.Fatalf("'less' p = %f, want < 0.001", less.PValue)
	}
	greater := MannWhitneyU(x, y, Greater)
	if greater.PValue < 0.99 {
		t.Fatalf("'greater' p = %f, want ≈ 1", greater.PValue)
	}
}

func TestMannWhitneyU_KnownPValue(t *testing.T) {
	// n1=n2=10, U1=0, U2=100: sigma = sqrt(100·21/12) ≈ 13.229, z = (100−50−0.5)/13.229 ≈ 3.742
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	res := MannWhitneyU(x, y, Less)
	if math.Abs(res.Z-3.742) > 0.001 {
		t.Fatalf("z = %f, want ≈3.742", res.Z)
	}
	if math.Abs(res.PValue-9.13e-5) > 1e-5 {
		t.Fatalf("p = %g, want ≈9.13e-5", res.PValue)
	}
}

func TestMannWhitneyU_TiesUseAverageRanks(t *testing.T) {
	x := []float64{1, 2, 2}
	y := []float64{2, 3}
	// pooled ranks: 1→1, 2→3 (avg of 2,3,4), 3→5; R1 = 1+3+3 = 7, U1 = 7−6 = 1
	res := MannWhitneyU(x, y, TwoSided)
	if res.U != 1 {
		t.Fatalf("U = %f, want 1", res.U)
	}
	ranks, tie := rankPooled(x, y)
	if ranks[1] != 3 || ranks[3] != 3 {
		t.Fatalf("tied values should share rank 3, got %v", ranks)
	}
	if tie != 24 {
		t.Fatalf("tie term = %f, want 24", tie)
	}
}

func TestMannWhitneyU_DegenerateInputsAreNeutral(t *testing.T) {
	if p := MannWhitneyU(nil, []float64{1, 2}, Less).PValue; p != 1 {
		t.Fatalf("empty first sample should give p=1, got %f", p)
	}
	if p := MannWhitneyU([]float64{1, 2}, nil, Greater).PValue; p != 1 {
		t.Fatalf("empty second sample should give p=1, got %f", p)
	}
	if p := MannWhitneyU([]float64{4, 4}, []float64{4, 4, 4}, TwoSided).PValue; p != 1 {
		t.Fatalf("constant pooled sample should give p=1, got %f", p)
	}
}

func TestMannWhitneyU_IdenticalDistributionsNotSignificant(t *testing.T) {
	x := []float64{1, 3, 5, 7, 9, 11}
	y := []float64{2, 4, 6, 8, 10, 12}
	res := MannWhitneyU(x, y, TwoSided)
	if res.PValue < 0.5 {
		t.Fatalf("interleaved samples should not differ, p = %f", res.PValue)
	}
}

func TestMedian(t *testing.T) {
	if m := Median(nil); m != 0 {
		t.Fatalf("expected 0 median for empty sample, got %f", m)
	}
	if m := Median([]float64{9, 1, 5}); m != 5 {
		t.Fatalf("expected median 5, got %f", m)
	}
	x := []float64{3, 1, 2}
	Median(x)
	if x[0] != 3 {
		t.Fatal("Median must not reorder its input")
	}
}
