package logging

import (
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE gate_results (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id          TEXT NOT NULL,
		gate            TEXT NOT NULL,
		test            TEXT NOT NULL,
		passed          INTEGER NOT NULL,
		statistics_json TEXT,
		note            TEXT,
		created_at      TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-result-tests
func TestLogResult_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ResultEntry{
		RunID:          "run-1",
		Gate:           "E1_Vibration",
		Test:           "amplitude_mute",
		Passed:         true,
		StatisticsJSON: `[{"name":"p_value","value":0.001}]`,
		Note:           "muted coupling weakens lock",
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogResult(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM gate_results").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var runID, test string
	var passed bool
	db.QueryRow("SELECT run_id, test, passed FROM gate_results").Scan(&runID, &test, &passed)
	if runID != "run-1" {
		t.Errorf("expected run_id 'run-1', got %q", runID)
	}
	if test != "amplitude_mute" {
		t.Errorf("expected test 'amplitude_mute', got %q", test)
	}
	if !passed {
		t.Error("expected passed to round-trip as true")
	}
}

func TestLogResult_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	if err := LogResult(db, ResultEntry{RunID: "run-2", Gate: "E0_Calibration", Test: "lf_null"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM gate_results").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogResult_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ResultEntry{RunID: "run-3", Gate: "E3_Causal", Test: "phase_nudge"}
	if err := LogResult(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var statsJSON, note sql.NullString
	db.QueryRow("SELECT statistics_json, note FROM gate_results").Scan(&statsJSON, &note)
	if statsJSON.Valid {
		t.Error("expected NULL statistics_json for empty string")
	}
	if note.Valid {
		t.Error("expected NULL note for empty string")
	}
}

func TestLogResult_MissingRunID(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	err := LogResult(db, ResultEntry{Gate: "E0_Calibration", Test: "lf_null"})
	if !errors.Is(err, ErrMissingRunID) {
		t.Fatalf("expected ErrMissingRunID, got %v", err)
	}
}

func TestLogResult_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	err := LogResult(db, ResultEntry{RunID: "run-4", Gate: "E0_Calibration", Test: "lf_null"})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

func TestLogResult_InsideTx(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := LogResult(tx, ResultEntry{RunID: "run-5", Gate: "E2_Symmetry", Test: "gauge_offset"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tx.Rollback()

	var count int
	db.QueryRow("SELECT COUNT(*) FROM gate_results").Scan(&count)
	if count != 0 {
		t.Errorf("expected rolled back insert to leave 0 rows, got %d", count)
	}
}

// #endregion log-result-tests

// #region entry-tests
func TestEntryFromResult_EncodesStatistics(t *testing.T) {
	r := gate.Result{
		Gate: gate.Causal,
		Test: "coupling_nudge",
		Statistics: []gate.Statistic{
			{Name: "t", Value: math.Inf(1)},
			{Name: "p_value", Value: 0.02},
		},
		Passed: true,
	}
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entry, err := EntryFromResult("run-6", r, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `[{"name":"t","value":null},{"name":"p_value","value":0.02}]`
	if entry.StatisticsJSON != want {
		t.Errorf("statistics json = %s, want %s", entry.StatisticsJSON, want)
	}
	if entry.Gate != "E3_Causal" || entry.RunID != "run-6" || !entry.CreatedAt.Equal(at) {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestAttrs_IncludesNoteOnlyWhenSet(t *testing.T) {
	r := gate.Result{Gate: gate.Vibration, Test: "observe", Statistics: []gate.Statistic{{Name: "rate", Value: 1}}}
	if got := len(Attrs(r)); got != 7 {
		t.Errorf("expected 7 attrs without note, got %d", got)
	}
	r.Note = "empty bucket"
	if got := len(Attrs(r)); got != 9 {
		t.Errorf("expected 9 attrs with note, got %d", got)
	}
}

// #endregion entry-tests

// #region null-if-empty-tests
func TestNullIfEmpty_Empty(t *testing.T) {
	result := nullIfEmpty("")
	if result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestNullIfEmpty_NonEmpty(t *testing.T) {
	result := nullIfEmpty("hello")
	if result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}

// #endregion null-if-empty-tests
