// Package stackdb persists stacking analysis runs and their aggregate
// statistics to sqlite, so repeated post-processing jobs over snapshots stay
// queryable after the fact.
package stackdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	"github.com/lattice-data/stacking.report/internal/stacking"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps the sqlite handle. It implements stacking.RunStore.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the run store at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise schema: %w", err)
	}
	log.Println("initialized stacking run store schema")
	return &DB{db}, nil
}

// InsertRun records a newly started run.
func (db *DB) InsertRun(run *stacking.AnalysisRun) error {
	stmt := `INSERT INTO analysis_runs (run_id, created_unix_nanos, source_path, params_json, status, target_atoms, duration_secs)
	         VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(stmt, run.RunID, run.CreatedAt.UnixNano(), run.SourcePath, run.ParamsJSON, run.Status, run.TargetAtoms, run.DurationSecs)
	return err
}

// CompleteRun finalises a run and stores its per-category statistics.
func (db *DB) CompleteRun(runID, status string, durationSecs float64, targetAtoms int, stats stacking.Statistics) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE analysis_runs SET status = ?, duration_secs = ?, target_atoms = ? WHERE run_id = ?`,
		status, durationSecs, targetAtoms, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown run %s", runID)
	}

	for _, t := range stacking.StackingTypes {
		cs, ok := stats.ByType[t]
		if !ok {
			continue
		}
		_, err := tx.Exec(`INSERT OR REPLACE INTO run_stats (run_id, s_type, s_code, atom_count, percent, mean_offset, std_offset)
		                   VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, string(t), t.Code(), cs.Count, cs.Percent, cs.MeanOffset, cs.StdOffset)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRun fetches one run by ID.
func (db *DB) GetRun(runID string) (*stacking.AnalysisRun, error) {
	row := db.QueryRow(`SELECT run_id, created_unix_nanos, source_path, params_json, status, target_atoms, duration_secs
	                    FROM analysis_runs WHERE run_id = ?`, runID)
	var run stacking.AnalysisRun
	var createdNanos int64
	err := row.Scan(&run.RunID, &createdNanos, &run.SourcePath, &run.ParamsJSON, &run.Status, &run.TargetAtoms, &run.DurationSecs)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, createdNanos)
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]stacking.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`SELECT run_id, created_unix_nanos, source_path, params_json, status, target_atoms, duration_secs
	                       FROM analysis_runs ORDER BY created_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []stacking.AnalysisRun
	for rows.Next() {
		var run stacking.AnalysisRun
		var createdNanos int64
		if err := rows.Scan(&run.RunID, &createdNanos, &run.SourcePath, &run.ParamsJSON, &run.Status, &run.TargetAtoms, &run.DurationSecs); err != nil {
			return nil, err
		}
		run.CreatedAt = time.Unix(0, createdNanos)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunStats fetches the per-category statistics recorded for a run, keyed by
// stacking type.
func (db *DB) RunStats(runID string) (map[stacking.StackingType]stacking.CategoryStats, error) {
	rows, err := db.Query(`SELECT s_type, atom_count, percent, mean_offset, std_offset
	                       FROM run_stats WHERE run_id = ? ORDER BY s_code`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[stacking.StackingType]stacking.CategoryStats)
	for rows.Next() {
		var t string
		var cs stacking.CategoryStats
		if err := rows.Scan(&t, &cs.Count, &cs.Percent, &cs.MeanOffset, &cs.StdOffset); err != nil {
			return nil, err
		}
		stats[stacking.StackingType(t)] = cs
	}
	return stats, rows.Err()
}
