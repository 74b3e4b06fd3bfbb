package benchmarks

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	resultsDBFilename = "query_bench.db"

	// resultsDirEnv names the directory benchmark results are recorded
	// under. Recording is off when it is unset.
	resultsDirEnv = "GRN_BENCH_RESULTS_DIR"
)

// BenchResult is one recorded benchmark observation.
type BenchResult struct {
	Operation  string
	Partitions int
	Edges      int64
	Iterations int64
	NsPerOp    float64
}

// ResultsDBPath returns the path to the results SQLite DB for a given
// results directory.
func ResultsDBPath(resultsDir string) string {
	return filepath.Join(resultsDir, resultsDBFilename)
}

// OpenResultsDB opens or creates the benchmark results database at the
// given path.
func OpenResultsDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if err := initResultsSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func initResultsSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			benchmarks INTEGER DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			operation TEXT NOT NULL,
			partitions INTEGER NOT NULL,
			edges INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			ns_per_op REAL NOT NULL,
			UNIQUE (run_id, operation, partitions, edges)
		);
	`)
	return err
}

// InsertRun inserts a new run row and returns its id.
func InsertRun(db *sql.DB, label string) (int64, error) {
	startedAt := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(
		`INSERT INTO runs (label, started_at) VALUES (?, ?)`,
		label, startedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run with its finish time and benchmark count.
func FinishRun(db *sql.DB, runID int64, benchmarks int) error {
	finishedAt := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(
		`UPDATE runs SET finished_at = ?, benchmarks = ? WHERE id = ?`,
		finishedAt, benchmarks, runID,
	)
	return err
}

// InsertResult records one observation for the given run. The harness calls
// each benchmark several times with growing iteration counts, so the upsert
// keeps only the final, largest measurement per operation and shape.
func InsertResult(db *sql.DB, runID int64, r *BenchResult) error {
	_, err := db.Exec(
		`INSERT INTO results (run_id, operation, partitions, edges, iterations, ns_per_op)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, operation, partitions, edges)
		 DO UPDATE SET iterations = excluded.iterations, ns_per_op = excluded.ns_per_op`,
		runID, r.Operation, r.Partitions, r.Edges, r.Iterations, r.NsPerOp,
	)
	return err
}

// QueryLatestRunID returns the id of the most recent run, or 0 if none.
func QueryLatestRunID(db *sql.DB) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// QueryResultsByRunID returns all result rows for the given run.
func QueryResultsByRunID(db *sql.DB, runID int64) ([]BenchResult, error) {
	rows, err := db.Query(
		`SELECT operation, partitions, edges, iterations, ns_per_op
		 FROM results WHERE run_id = ? ORDER BY operation`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []BenchResult
	for rows.Next() {
		var r BenchResult
		if err := rows.Scan(&r.Operation, &r.Partitions, &r.Edges, &r.Iterations, &r.NsPerOp); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}
