// Package results provides SQLite-based storage for batch run outcomes,
// so collaboration-factor sweeps can be aggregated and compared across
// invocations.
package results

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/evac-lab/evacsim/internal/sim"
)

// DB wraps a SQLite connection for run result storage.
type DB struct {
	conn *sqlx.DB
}

// RunRow is one completed run as stored in the runs table.
type RunRow struct {
	ID            int64   `db:"id"`
	Seed          int64   `db:"seed"`
	Collaboration float64 `db:"collaboration"`
	Humans        int     `db:"humans"`
	Ticks         int     `db:"ticks"`
	Escaped       int     `db:"escaped"`
	Dead          int     `db:"dead"`
	Incapacitated int     `db:"incapacitated"`
	Reason        string  `db:"reason"`
	CreatedAt     string  `db:"created_at"`
}

// SweepPoint is the aggregate outcome for one collaboration factor.
type SweepPoint struct {
	Collaboration float64 `db:"collaboration"`
	Runs          int     `db:"runs"`
	EscapedPct    float64 `db:"escaped_pct"`
	DeadPct       float64 `db:"dead_pct"`
	AvgTicks      float64 `db:"avg_ticks"`
}

// Open opens or creates a SQLite database at the given path. Use
// ":memory:" for a throwaway store.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed INTEGER NOT NULL,
		collaboration REAL NOT NULL,
		humans INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		escaped INTEGER NOT NULL,
		dead INTEGER NOT NULL,
		incapacitated INTEGER NOT NULL,
		reason TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_collaboration ON runs(collaboration);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// InsertRun records one completed run.
func (db *DB) InsertRun(seed int64, collaboration float64, sum sim.Summary) error {
	_, err := db.conn.Exec(`INSERT INTO runs
		(seed, collaboration, humans, ticks, escaped, dead, incapacitated, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seed, collaboration, sum.Initial, sum.Ticks,
		sum.Escaped, sum.Dead, sum.Incapacitated, sum.Reason,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Runs returns all stored runs, oldest first.
func (db *DB) Runs() ([]RunRow, error) {
	var rows []RunRow
	err := db.conn.Select(&rows, "SELECT * FROM runs ORDER BY id")
	return rows, err
}

// Sweep aggregates outcomes per collaboration factor, ascending.
func (db *DB) Sweep() ([]SweepPoint, error) {
	var points []SweepPoint
	err := db.conn.Select(&points, `
		SELECT collaboration,
		       COUNT(*) AS runs,
		       100.0 * SUM(escaped) / SUM(humans) AS escaped_pct,
		       100.0 * SUM(dead) / SUM(humans) AS dead_pct,
		       AVG(ticks) AS avg_ticks
		FROM runs
		GROUP BY collaboration
		ORDER BY collaboration`)
	return points, err
}
