package store

import (
	"database/sql"
	"time"
)

// #region run-summary
// RunSummary is one row of audit_runs without the report body.
type RunSummary struct {
	RunID          string
	Seed           uint64
	GatesPassed    int
	Classification string
	CreatedAt      time.Time
}

// runRow mirrors audit_runs for sqlx scanning.
type runRow struct {
	RunID          string `db:"run_id"`
	Seed           int64  `db:"seed"`
	GatesPassed    int    `db:"gates_passed"`
	Classification string `db:"classification"`
	CreatedAt      string `db:"created_at"`
}

func (r runRow) summary() RunSummary {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return RunSummary{
		RunID:          r.RunID,
		Seed:           uint64(r.Seed),
		GatesPassed:    r.GatesPassed,
		Classification: r.Classification,
		CreatedAt:      created,
	}
}
// #endregion run-summary

// #region result-row
// ResultRow is one stored sub-test outcome.
type ResultRow struct {
	ID             int64          `db:"id"`
	RunID          string         `db:"run_id"`
	Gate           string         `db:"gate"`
	Test           string         `db:"test"`
	Passed         bool           `db:"passed"`
	StatisticsJSON sql.NullString `db:"statistics_json"`
	Note           sql.NullString `db:"note"`
	CreatedAt      string         `db:"created_at"`
}

// PassRate aggregates one sub-test across every stored run.
type PassRate struct {
	Gate   string `db:"gate"`
	Test   string `db:"test"`
	Runs   int    `db:"runs"`
	Passed int    `db:"passed"`
}

// Rate returns Passed/Runs, or 0 with no runs.
func (p PassRate) Rate() float64 {
	if p.Runs == 0 {
		return 0
	}
	return float64(p.Passed) / float64(p.Runs)
}
// #endregion result-row
