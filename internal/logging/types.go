package logging

import (
	"database/sql"
	"time"
)

// #region result-entry
// ResultEntry is a single row in the gate_results table.
type ResultEntry struct {
	RunID          string
	Gate           string
	Test           string
	Passed         bool
	StatisticsJSON string
	Note           string
	CreatedAt      time.Time
}
// #endregion result-entry

// #region execer
// Execer is satisfied by *sql.DB, *sql.Tx and their sqlx wrappers.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
// #endregion execer
