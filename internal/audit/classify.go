package audit

import "github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"

// #region classify
// Classify maps a gate pass count to its rung: 0-2 Probe, 3 Primitive,
// 4-5 Law.
func Classify(gatesPassed int) Classification {
	switch {
	case gatesPassed <= 2:
		return Probe
	case gatesPassed == 3:
		return Primitive
	default:
		return Law
	}
}

// Recommendation returns the rights granted at c.
func Recommendation(c Classification) string {
	switch c {
	case Law:
		return "Make predictions, ship with PCO documentation"
	case Primitive:
		return "Report findings with caveats, no causality claims"
	default:
		return "Explore freely, no public claims"
	}
}

// #endregion classify

// #region aggregate
// Aggregate groups results by gate in gate.Order. A gate with no results
// does not pass.
func Aggregate(results []gate.Result) ([]GateReport, int) {
	byGate := make(map[gate.ID][]gate.Result, len(gate.Order))
	for _, r := range results {
		byGate[r.Gate] = append(byGate[r.Gate], r)
	}

	reports := make([]GateReport, 0, len(gate.Order))
	passed := 0
	for _, id := range gate.Order {
		rs := byGate[id]
		ok := len(rs) > 0
		for _, r := range rs {
			ok = ok && r.Passed
		}
		if ok {
			passed++
		}
		if rs == nil {
			rs = []gate.Result{}
		}
		reports = append(reports, GateReport{Gate: id, Passed: ok, Results: rs})
	}
	return reports, passed
}

// Summarize computes aggregate counts from a report.
func Summarize(r Report) Summary {
	s := Summary{
		GatesPassed:    r.GatesPassed,
		Classification: r.Classification,
	}
	for _, g := range r.Gates {
		for _, res := range g.Results {
			s.TotalTests++
			if res.Passed {
				s.PassedTests++
			} else {
				s.FailedTests++
			}
		}
	}
	return s
}

// #endregion aggregate
