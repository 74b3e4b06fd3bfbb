// Package duck provides thin helpers around an embedded DuckDB handle.
//
// DuckDB is the pushdown engine behind every query in this module: it scans
// parquet files directly with filter and projection pushdown, so partitions
// are never materialized in full. Handles are ephemeral; callers open one per
// operation and close it when the operation returns. Filter values must be
// passed as bound parameters, never spliced into query text; only file paths
// (escaped with QuoteLiteral) and whitelisted identifiers may be spliced.
package duck

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// Open returns a new ephemeral in-memory DuckDB handle. The handle is pinned
// to a single connection so session state, in particular temp tables created
// by CreateEdgeTable, stays visible to every statement.
func Open() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// QuoteLiteral returns s as a SQL string literal with embedded quotes doubled.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdent returns s as a quoted SQL identifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ParquetScan returns a relation expression that scans one parquet file.
func ParquetScan(path string) string {
	return "read_parquet(" + QuoteLiteral(path) + ")"
}

// CSVScan returns a relation expression that scans one delimited text file,
// with types and delimiter inferred by the engine.
func CSVScan(path string) string {
	return "read_csv_auto(" + QuoteLiteral(path) + ", header=true)"
}

// Columns probes the column names of a relation without reading any rows.
func Columns(db *sql.DB, rel string) ([]string, error) {
	rows, err := db.Query("SELECT * FROM " + rel + " WHERE 1=0")
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", rel, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", rel, err)
	}
	return cols, rows.Err()
}

// CreateEdgeTable creates a session-local table with the contracted edge
// columns and loads rows into it. Each row must already be projected to
// [regulator, target, weight] plus cell_type when withCellType is set.
func CreateEdgeTable(db *sql.DB, name string, withCellType bool, rows [][]any) error {
	cols := "regulator VARCHAR, target VARCHAR, weight DOUBLE"
	placeholders := "?, ?, ?"
	if withCellType {
		cols += ", cell_type VARCHAR"
		placeholders += ", ?"
	}

	if _, err := db.Exec("CREATE TEMP TABLE " + QuoteIdent(name) + " (" + cols + ")"); err != nil {
		return fmt.Errorf("create edge table %s: %w", name, err)
	}

	stmt, err := db.Prepare("INSERT INTO " + QuoteIdent(name) + " VALUES (" + placeholders + ")")
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("insert edge row %d: %w", i, err)
		}
	}
	return nil
}

// CopyToParquet writes the result of query to a parquet file at path.
func CopyToParquet(db *sql.DB, query, path string) error {
	copySQL := "COPY (" + query + ") TO " + QuoteLiteral(path) + " (FORMAT PARQUET)"
	if _, err := db.Exec(copySQL); err != nil {
		return fmt.Errorf("copy to %s: %w", path, err)
	}
	return nil
}
