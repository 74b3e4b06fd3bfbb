package networks

import (
	"fmt"

	"github.com/ekernf01/pereggrn-networks/internal/errors"
	"github.com/ekernf01/pereggrn-networks/internal/schema"
)

// Table is a small in-memory edge table, used as the optional non-file-backed
// constituent of a LightNetwork. Columns must satisfy the same contract as
// partition files: regulator, target, weight, then optionally cell_type.
// Columns past the contracted prefix are carried but never queried.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable builds a Table and validates it against the column contract.
func NewTable(columns []string, rows [][]any) (*Table, error) {
	t := &Table{Columns: columns, Rows: rows}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// TableFromEdges converts a slice of edges into a Table. The cell_type column
// is included only when at least one edge carries a cell-type tag; edges
// without one contribute NULL in that column.
func TableFromEdges(edges []Edge) *Table {
	withCellType := false
	for _, e := range edges {
		if e.HasCellType() {
			withCellType = true
			break
		}
	}

	cols := append([]string{}, schema.Expected...)
	if withCellType {
		cols = append(cols, schema.CellTypeColumn)
	}

	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		row := []any{e.Regulator, e.Target, e.Weight}
		if withCellType {
			if e.HasCellType() {
				row = append(row, e.CellType)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: cols, Rows: rows}
}

// Validate checks the column contract and that every row has exactly one
// value per column. Fails with ErrSchema on any violation.
func (t *Table) Validate() error {
	if _, err := schema.Validate(t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d values, want %d",
				errors.ErrSchema, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// HasCellType reports whether the table carries the optional cell_type column.
func (t *Table) HasCellType() bool {
	return len(t.Columns) > len(schema.Expected) &&
		t.Columns[len(schema.Expected)] == schema.CellTypeColumn
}

// contractRows projects every row down to the contracted columns, dropping
// anything past cell_type. The result feeds the query engine's edge table.
func (t *Table) contractRows() [][]any {
	width := len(schema.Expected)
	if t.HasCellType() {
		width++
	}
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = row[:width:width]
	}
	return rows
}
