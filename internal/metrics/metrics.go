package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit counters and histograms, partitioned by gate + sub-test.

var (
	SubTestResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deltaaudit",
		Name:      "subtest_results_total",
		Help:      "Sub-test outcomes by gate, test and result (pass|fail)",
	}, []string{"gate", "test", "result"})

	SubTestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "deltaaudit",
		Name:      "subtest_duration_seconds",
		Help:      "Wall time of one sub-test run",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"gate", "test"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deltaaudit",
		Name:      "runs_total",
		Help:      "Completed audit runs by classification",
	}, []string{"classification"})

	LastGatesPassed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "deltaaudit",
		Name:      "last_gates_passed",
		Help:      "Gates passed by the most recent audit run (0-5)",
	})

	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deltaaudit",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "AuditService requests by method and status code",
	}, []string{"method", "code"})
)

// Outcome maps a pass flag to the result label.
func Outcome(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}
