package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/logging"
)

// ErrNotFound is returned when a run id has no stored report.
var ErrNotFound = errors.New("run not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
	run_id         TEXT PRIMARY KEY,
	seed           INTEGER NOT NULL,
	gates_passed   INTEGER NOT NULL,
	classification TEXT NOT NULL,
	report_json    TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gate_results (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	gate            TEXT NOT NULL,
	test            TEXT NOT NULL,
	passed          INTEGER NOT NULL,
	statistics_json TEXT,
	note            TEXT,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES audit_runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_gate_results_run ON gate_results(run_id);
`
// #endregion schema

// #region store-struct
// Store keeps audit run history in SQLite.
type Store struct {
	db *sqlx.DB
}
// #endregion store-struct

// #region constructor
// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db.DB
}
// #endregion db-accessor

// #region save-run
// SaveRun stores a report and one gate_results row per sub-test in a
// single transaction. A report without a run id gets a fresh one.
func (s *Store) SaveRun(r audit.Report) (string, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	body, err := audit.MarshalReport(r)
	if err != nil {
		return "", err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := r.Timestamp.UTC()
	_, err = tx.NamedExec(
		`INSERT INTO audit_runs (run_id, seed, gates_passed, classification, report_json, created_at)
		 VALUES (:run_id, :seed, :gates_passed, :classification, :report_json, :created_at)`,
		map[string]any{
			"run_id":         r.RunID,
			"seed":           int64(r.Seed),
			"gates_passed":   r.GatesPassed,
			"classification": string(r.Classification),
			"report_json":    string(body),
			"created_at":     created.Format(time.RFC3339Nano),
		},
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, g := range r.Gates {
		for _, res := range g.Results {
			entry, err := logging.EntryFromResult(r.RunID, res, created)
			if err != nil {
				return "", err
			}
			if err := logging.LogResult(tx, entry); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return r.RunID, nil
}
// #endregion save-run

// #region get-run
// GetRun loads the stored report for id.
func (s *Store) GetRun(id string) (audit.Report, error) {
	var body string
	err := s.db.Get(&body, `SELECT report_json FROM audit_runs WHERE run_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Report{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return audit.Report{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return audit.ParseReport([]byte(body))
}

// LatestRun loads the most recently stored report.
func (s *Store) LatestRun() (audit.Report, error) {
	var body string
	err := s.db.Get(&body, `SELECT report_json FROM audit_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Report{}, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	if err != nil {
		return audit.Report{}, fmt.Errorf("latest run: %w", err)
	}
	return audit.ParseReport([]byte(body))
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	err := s.db.Select(&rows,
		`SELECT run_id, seed, gates_passed, classification, created_at
		 FROM audit_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]RunSummary, len(rows))
	for i, r := range rows {
		out[i] = r.summary()
	}
	return out, nil
}
// #endregion list-runs

// #region gate-results
// GateResults returns the stored sub-test rows of a run in insertion order.
func (s *Store) GateResults(runID string) ([]ResultRow, error) {
	var rows []ResultRow
	err := s.db.Select(&rows,
		`SELECT id, run_id, gate, test, passed, statistics_json, note, created_at
		 FROM gate_results WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("gate results %s: %w", runID, err)
	}
	return rows, nil
}

// PassRates aggregates pass counts per sub-test across every stored run.
func (s *Store) PassRates() ([]PassRate, error) {
	var rates []PassRate
	err := s.db.Select(&rates,
		`SELECT gate, test, COUNT(*) AS runs, SUM(passed) AS passed
		 FROM gate_results GROUP BY gate, test ORDER BY gate, test`,
	)
	if err != nil {
		return nil, fmt.Errorf("pass rates: %w", err)
	}
	return rates, nil
}
// #endregion gate-results

// #region statistics
// Statistics decodes the stored statistics of a row. Null values decode
// as NaN.
func (r ResultRow) Statistics() ([]gate.Statistic, error) {
	if !r.StatisticsJSON.Valid {
		return nil, nil
	}
	var stats []gate.Statistic
	if err := json.Unmarshal([]byte(r.StatisticsJSON.String), &stats); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}
	return stats, nil
}
// #endregion statistics
