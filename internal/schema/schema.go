// Package schema enforces the fixed column contract for edge tables.
//
// Every constituent of a virtual union, whether parquet-backed or in-memory,
// must start with the columns regulator, target, weight, in that order. A
// fourth column is permitted only if it is cell_type. Columns after cell_type
// are outside the contract and ignored by queries.
package schema

import (
	"fmt"
	"strings"

	"github.com/ekernf01/pereggrn-networks/internal/errors"
)

// Expected is the contracted leading column sequence of every edge table.
var Expected = []string{"regulator", "target", "weight"}

// CellTypeColumn is the optional fourth contracted column.
const CellTypeColumn = "cell_type"

// Validate checks cols against the contract and reports whether the optional
// cell_type column is present. It fails with ErrSchema on any mismatch.
func Validate(cols []string) (hasCellType bool, err error) {
	if len(cols) < len(Expected) {
		return false, fmt.Errorf("%w: got columns [%s], want at least [%s]",
			errors.ErrSchema, strings.Join(cols, ", "), strings.Join(Expected, ", "))
	}
	for i, want := range Expected {
		if cols[i] != want {
			return false, fmt.Errorf("%w: column %d is %q, want %q",
				errors.ErrSchema, i+1, cols[i], want)
		}
	}
	if len(cols) == len(Expected) {
		return false, nil
	}
	if cols[len(Expected)] != CellTypeColumn {
		return false, fmt.Errorf("%w: column %d is %q, want %q",
			errors.ErrSchema, len(Expected)+1, cols[len(Expected)], CellTypeColumn)
	}
	return true, nil
}

// IsQueryable reports whether field may be used with distinct-value queries.
// Only the categorical columns qualify; weight is numeric and excluded.
func IsQueryable(field string) bool {
	switch field {
	case "regulator", "target", CellTypeColumn:
		return true
	}
	return false
}

// QueryableFields returns the fields accepted by IsQueryable.
func QueryableFields() []string {
	return []string{"regulator", "target", CellTypeColumn}
}
