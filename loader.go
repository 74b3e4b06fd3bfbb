package networks

import (
	"fmt"
	"os"

	"github.com/ekernf01/pereggrn-networks/internal/duck"
	"github.com/ekernf01/pereggrn-networks/internal/errors"
	"github.com/ekernf01/pereggrn-networks/internal/schema"
)

// LoadSubnetwork reads one partition of a source fully into memory. Columns
// are taken positionally: the first two are regulator and target, the third
// is the weight. Files with only two columns get a synthesized weight of -1
// for every row. A fourth column is carried iff it is cell_type; anything
// past it is ignored. Use a LightNetwork instead when the partitions may not
// fit in memory.
func LoadSubnetwork(l *Location, source, subnetwork string) ([]Edge, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: no location given", errors.ErrConfiguration)
	}
	path := l.SubnetworkPath(source, subnetwork)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: no subnetwork %q of source %q under %s; %s",
			errors.ErrNotFound, subnetwork, source, l.Root(), lookupGuidance)
	}

	db, err := duck.Open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rel := duck.ParquetScan(path)
	cols, err := duck.Columns(db, rel)
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", path, err)
	}
	if len(cols) < 2 {
		return nil, fmt.Errorf("%w: file %s has %d columns, want at least regulator and target",
			errors.ErrSchema, path, len(cols))
	}

	sel := duck.QuoteIdent(cols[0]) + " AS regulator, " + duck.QuoteIdent(cols[1]) + " AS target, "
	if len(cols) == 2 {
		sel += "CAST(-1 AS DOUBLE) AS weight"
	} else {
		sel += "CAST(" + duck.QuoteIdent(cols[2]) + " AS DOUBLE) AS weight"
	}
	withCellType := len(cols) > 3 && cols[3] == schema.CellTypeColumn
	if withCellType {
		sel += ", " + duck.QuoteIdent(schema.CellTypeColumn)
	}

	rows, err := db.Query("SELECT " + sel + " FROM " + rel)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	edges, err := scanEdges(rows, withCellType)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return edges, nil
}

// LoadAllSubnetworks loads every subnetwork of a source, concatenated in
// ListSubnetworks order.
func LoadAllSubnetworks(l *Location, source string) ([]Edge, error) {
	subnets, err := ListSubnetworks(l, source)
	if err != nil {
		return nil, err
	}
	var all []Edge
	for _, s := range subnets {
		edges, err := LoadSubnetwork(l, source, s)
		if err != nil {
			return nil, err
		}
		all = append(all, edges...)
	}
	return all, nil
}

// ValidateSubnetwork loads one partition and checks the integrity heuristic:
// a plausible regulatory network names fewer distinct regulators than
// distinct targets.
func ValidateSubnetwork(l *Location, source, subnetwork string) error {
	edges, err := LoadSubnetwork(l, source, subnetwork)
	if err != nil {
		return err
	}
	if err := ValidateEdges(edges); err != nil {
		return fmt.Errorf("%s %s: %w", source, subnetwork, err)
	}
	return nil
}

// ValidateEdges applies the same heuristic to an in-memory edge list.
func ValidateEdges(edges []Edge) error {
	regulators := make(map[string]struct{})
	targets := make(map[string]struct{})
	for _, e := range edges {
		regulators[e.Regulator] = struct{}{}
		targets[e.Target] = struct{}{}
	}
	if len(regulators) > len(targets) {
		return fmt.Errorf("%w: %d regulators but only %d targets",
			errors.ErrValidation, len(regulators), len(targets))
	}
	return nil
}
