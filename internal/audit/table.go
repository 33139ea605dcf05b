package audit

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
)

// #region table
// WriteTable renders r as a human-readable gate table.
func WriteTable(w io.Writer, r Report) error {
	var b strings.Builder
	for _, g := range r.Gates {
		fmt.Fprintf(&b, "%-18s %s\n", g.Gate, passLabel(g.Passed))
		for _, res := range g.Results {
			fmt.Fprintf(&b, "  %-24s %-4s %s\n", res.Test, passLabel(res.Passed), formatStats(res))
			if res.Note != "" {
				fmt.Fprintf(&b, "  %-24s      note: %s\n", "", res.Note)
			}
		}
	}

	s := Summarize(r)
	fmt.Fprintf(&b, "\nsub-tests: %d/%d passed\n", s.PassedTests, s.TotalTests)
	fmt.Fprintf(&b, "gates passed: %d/%d\n", r.GatesPassed, len(r.Gates))
	fmt.Fprintf(&b, "classification: %s\n", r.Classification)
	fmt.Fprintf(&b, "recommendation: %s\n", r.Recommendation)

	_, err := io.WriteString(w, b.String())
	return err
}

func passLabel(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func formatStats(res gate.Result) string {
	parts := make([]string, 0, len(res.Statistics))
	for _, st := range res.Statistics {
		parts = append(parts, st.Name+"="+formatValue(st.Value))
	}
	return strings.Join(parts, " ")
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "null"
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.4g", v)
}
// #endregion table
