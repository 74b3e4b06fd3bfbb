package networks

import (
	"strings"
	"testing"

	"github.com/ekernf01/pereggrn-networks/internal/duck"
)

// writeEdgeParquet writes edges to a parquet file with the contracted
// columns, for use as a test partition. Untagged edges contribute NULL in
// the cell_type column when it is requested.
func writeEdgeParquet(t *testing.T, path string, withCellType bool, edges []Edge) {
	t.Helper()

	db, err := duck.Open()
	if err != nil {
		t.Fatalf("Failed to open duckdb: %v", err)
	}
	defer db.Close()

	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		row := []any{e.Regulator, e.Target, e.Weight}
		if withCellType {
			if e.CellType != "" {
				row = append(row, e.CellType)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}

	if err := duck.CreateEdgeTable(db, "fixture", withCellType, rows); err != nil {
		t.Fatalf("Failed to load fixture rows: %v", err)
	}
	if err := duck.CopyToParquet(db, `SELECT * FROM "fixture"`, path); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// writeRawParquet writes a parquet file with arbitrary columns, for schema
// edge cases the contracted helper cannot produce.
func writeRawParquet(t *testing.T, path, columnDDL string, rows [][]any) {
	t.Helper()

	db, err := duck.Open()
	if err != nil {
		t.Fatalf("Failed to open duckdb: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TEMP TABLE "fixture" (` + columnDDL + `)`); err != nil {
		t.Fatalf("Failed to create fixture table: %v", err)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", strings.Count(columnDDL, ",")+1), ", ")
	stmt, err := db.Prepare(`INSERT INTO "fixture" VALUES (` + placeholders + `)`)
	if err != nil {
		t.Fatalf("Failed to prepare fixture insert: %v", err)
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			t.Fatalf("Failed to insert fixture row: %v", err)
		}
	}
	if err := duck.CopyToParquet(db, `SELECT * FROM "fixture"`, path); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// sortedEdges returns a copy ordered for order-insensitive comparison.
func sortedEdges(edges []Edge) []Edge {
	out := append([]Edge(nil), edges...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && edgeLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func edgeLess(a, b Edge) bool {
	if a.Regulator != b.Regulator {
		return a.Regulator < b.Regulator
	}
	if a.Target != b.Target {
		return a.Target < b.Target
	}
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	return a.CellType < b.CellType
}
