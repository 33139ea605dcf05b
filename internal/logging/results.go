package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
)

// ErrMissingRunID is returned when a result row has no owning run.
var ErrMissingRunID = errors.New("missing run id")

// #region entry-from-result
// EntryFromResult converts a sub-test result into a gate_results row.
func EntryFromResult(runID string, r gate.Result, at time.Time) (ResultEntry, error) {
	stats, err := json.Marshal(r.Statistics)
	if err != nil {
		return ResultEntry{}, fmt.Errorf("marshal statistics: %w", err)
	}
	return ResultEntry{
		RunID:          runID,
		Gate:           string(r.Gate),
		Test:           r.Test,
		Passed:         r.Passed,
		StatisticsJSON: string(stats),
		Note:           r.Note,
		CreatedAt:      at,
	}, nil
}
// #endregion entry-from-result

// #region log-result
// LogResult writes a sub-test outcome to the gate_results table.
func LogResult(db Execer, entry ResultEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("log result: %w", ErrMissingRunID)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO gate_results (run_id, gate, test, passed, statistics_json, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Gate,
		entry.Test,
		entry.Passed,
		nullIfEmpty(entry.StatisticsJSON),
		nullIfEmpty(entry.Note),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log result: %w", err)
	}
	return nil
}
// #endregion log-result

// #region log-slog
// Attrs renders a sub-test outcome as structured log attributes.
func Attrs(r gate.Result) []any {
	attrs := []any{
		"gate", string(r.Gate),
		"test", r.Test,
		"passed", r.Passed,
	}
	for _, s := range r.Statistics {
		attrs = append(attrs, slog.Float64(s.Name, s.Value))
	}
	if r.Note != "" {
		attrs = append(attrs, "note", r.Note)
	}
	return attrs
}
// #endregion log-slog

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
