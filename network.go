// Package networks provides read access to collections of gene regulatory
// networks stored as partitioned parquet files.
//
// The central type is LightNetwork: a read-only view over any number of
// on-disk partitions plus at most one in-memory table, behaving as a single
// logical edge table. Queries are pushed down to an embedded DuckDB engine
// that scans each parquet file with filter and projection pushdown, so the
// union is never materialized in memory.
//
// Collections live under a root directory described by Location:
//
//	<root>/published_networks.csv
//	<root>/<sourceName>/networks/<subnetworkFile>
//
// Every constituent table starts with the columns regulator, target, weight,
// optionally followed by cell_type. GetAll and GetNumEdges use bag semantics
// (an edge present in two constituents is reported twice); GetAllOneField
// deduplicates. Instances are immutable and safe for concurrent use: each
// operation opens its own ephemeral engine handle and no results are cached.
package networks

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ekernf01/pereggrn-networks/internal/duck"
	"github.com/ekernf01/pereggrn-networks/internal/errors"
	"github.com/ekernf01/pereggrn-networks/internal/schema"
)

// memTableName is the session-local table the in-memory constituent loads
// into before each operation.
const memTableName = "mem_edges"

// LightNetwork is a virtual union of edge-table constituents: zero or more
// parquet partitions and at most one in-memory Table. Constituents are fixed
// and immutable for the lifetime of the instance.
type LightNetwork struct {
	files        []string
	table        *Table
	cellTypeFile map[string]bool // per-file cell_type presence, probed at construction
	hasCellType  bool            // the union exposes cell_type iff any constituent carries it
}

// Options configures Open. Any non-empty combination of Source, Files, and
// Table is accepted.
type Options struct {
	// Location of the network collection. Required when Source is set.
	Location *Location

	// Source names a collection source whose subnetworks become
	// constituents, resolved through the catalog layout.
	Source string

	// Subnetworks restricts Source to the named subnetworks. Empty means
	// every subnetwork of the source. Requires Source.
	Subnetworks []string

	// Files adds explicit parquet partitions. They are queried before the
	// partitions resolved from Source.
	Files []string

	// Table adds one in-memory constituent, queried after all partitions.
	Table *Table
}

// Open builds a LightNetwork from opts. It is fail-fast: every partition
// file must exist and satisfy the column contract at construction time, not
// at first query. File probes read schema only, never rows.
func Open(opts Options) (*LightNetwork, error) {
	if len(opts.Subnetworks) > 0 && opts.Source == "" {
		return nil, fmt.Errorf("%w: cannot resolve subnetworks without a source name",
			errors.ErrInvalidArgument)
	}

	files := append([]string(nil), opts.Files...)
	if opts.Source != "" {
		if opts.Location == nil {
			return nil, fmt.Errorf("%w: opening source %q requires a location",
				errors.ErrConfiguration, opts.Source)
		}
		subnets := opts.Subnetworks
		if len(subnets) == 0 {
			var err error
			subnets, err = ListSubnetworks(opts.Location, opts.Source)
			if err != nil {
				return nil, err
			}
		}
		for _, s := range subnets {
			files = append(files, opts.Location.SubnetworkPath(opts.Source, s))
		}
	}

	if len(files) == 0 && opts.Table == nil {
		return nil, fmt.Errorf("%w: provide at least one of a source, files, or an in-memory table",
			errors.ErrInvalidArgument)
	}
	if opts.Table != nil {
		if err := opts.Table.Validate(); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("%w: file %s does not exist", errors.ErrNotFound, f)
		}
	}

	n := &LightNetwork{
		files:        files,
		table:        opts.Table,
		cellTypeFile: make(map[string]bool, len(files)),
	}
	if len(files) > 0 {
		db, err := duck.Open()
		if err != nil {
			return nil, err
		}
		defer db.Close()
		for _, f := range files {
			cols, err := duck.Columns(db, duck.ParquetScan(f))
			if err != nil {
				return nil, fmt.Errorf("%w: file %s is not readable as parquet: %v",
					errors.ErrSchema, f, err)
			}
			hasCellType, err := schema.Validate(cols)
			if err != nil {
				return nil, fmt.Errorf("file %s: %w", f, err)
			}
			n.cellTypeFile[f] = hasCellType
			n.hasCellType = n.hasCellType || hasCellType
		}
	}
	if opts.Table != nil && opts.Table.HasCellType() {
		n.hasCellType = true
	}
	return n, nil
}

// constituent is one queryable member of the union: a relation expression
// plus whether it carries the optional cell_type column.
type constituent struct {
	rel         string
	hasCellType bool
}

// constituents returns every member in query order: partitions in list
// order, then the in-memory table.
func (n *LightNetwork) constituents() []constituent {
	out := make([]constituent, 0, len(n.files)+1)
	for _, f := range n.files {
		out = append(out, constituent{rel: duck.ParquetScan(f), hasCellType: n.cellTypeFile[f]})
	}
	if n.table != nil {
		out = append(out, constituent{rel: duck.QuoteIdent(memTableName), hasCellType: n.table.HasCellType()})
	}
	return out
}

// open returns an ephemeral engine handle with the in-memory constituent
// loaded. The caller closes it when the operation returns.
func (n *LightNetwork) open() (*sql.DB, error) {
	db, err := duck.Open()
	if err != nil {
		return nil, err
	}
	if n.table != nil {
		if err := duck.CreateEdgeTable(db, memTableName, n.table.HasCellType(), n.table.contractRows()); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// edgeSelect builds the projection for one constituent. Constituents without
// cell_type contribute NULL in that column when the union carries it, so
// heterogeneous partitions concatenate cleanly. Columns past the contract
// never appear in results.
func (n *LightNetwork) edgeSelect(c constituent) string {
	cols := "regulator, target, weight"
	if n.hasCellType {
		if c.hasCellType {
			cols += ", cell_type"
		} else {
			cols += ", CAST(NULL AS VARCHAR) AS cell_type"
		}
	}
	return "SELECT " + cols + " FROM " + c.rel
}

// queryEdges runs one pushed-down query per constituent and concatenates the
// results in constituent order. Filter values are bound, never spliced.
func (n *LightNetwork) queryEdges(where string, args ...any) ([]Edge, error) {
	db, err := n.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	all := []Edge{}
	for _, c := range n.constituents() {
		q := n.edgeSelect(c)
		if where != "" {
			q += " WHERE " + where
		}
		rows, err := db.Query(q, args...)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", c.rel, err)
		}
		edges, err := scanEdges(rows, n.hasCellType)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.rel, err)
		}
		all = append(all, edges...)
	}
	return all, nil
}

// GetAll returns every edge of every constituent, concatenated. Duplicates
// across constituents are preserved.
func (n *LightNetwork) GetAll() ([]Edge, error) {
	return n.queryEdges("")
}

// GetRegulators returns every edge whose target equals the given gene. The
// result is empty, not an error, when the gene appears nowhere.
func (n *LightNetwork) GetRegulators(target string) ([]Edge, error) {
	return n.queryEdges("target = ?", target)
}

// GetTargets returns every edge whose regulator equals the given gene.
func (n *LightNetwork) GetTargets(regulator string) ([]Edge, error) {
	return n.queryEdges("regulator = ?", regulator)
}

// GetAllOneField returns the distinct values of one categorical column
// across every constituent carrying it, sorted ascending. Constituents
// lacking the column are skipped. NULLs are excluded. Only regulator,
// target, and cell_type are queryable.
func (n *LightNetwork) GetAllOneField(field string) ([]string, error) {
	if !schema.IsQueryable(field) {
		return nil, fmt.Errorf("%w: distinct values exist only for %s, not %q",
			errors.ErrInvalidArgument, strings.Join(schema.QueryableFields(), ", "), field)
	}
	db, err := n.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	col := duck.QuoteIdent(field)
	seen := make(map[string]struct{})
	for _, c := range n.constituents() {
		if field == schema.CellTypeColumn && !c.hasCellType {
			continue
		}
		rows, err := db.Query("SELECT DISTINCT " + col + " FROM " + c.rel + " WHERE " + col + " IS NOT NULL")
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", c.rel, err)
		}
		values, err := scanStrings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.rel, err)
		}
		for _, v := range values {
			seen[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// GetAllRegulators returns the distinct regulators of the union.
func (n *LightNetwork) GetAllRegulators() ([]string, error) {
	return n.GetAllOneField("regulator")
}

// GetNumEdges returns the total row count across constituents: a raw sum,
// assuming no edge is recorded in two constituents.
func (n *LightNetwork) GetNumEdges() (int64, error) {
	var total int64
	if len(n.files) > 0 {
		db, err := duck.Open()
		if err != nil {
			return 0, err
		}
		defer db.Close()
		for _, f := range n.files {
			var count int64
			if err := db.QueryRow("SELECT COUNT(*) FROM " + duck.ParquetScan(f)).Scan(&count); err != nil {
				return 0, fmt.Errorf("count %s: %w", f, err)
			}
			total += count
		}
	}
	if n.table != nil {
		total += int64(n.table.NumRows())
	}
	return total, nil
}

// Save writes the full union to one parquet file at path. The path must end
// in .parquet. UNION ALL keeps duplicate edges; plain UNION would silently
// deduplicate.
func (n *LightNetwork) Save(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".parquet") {
		return fmt.Errorf("%w: save path must end in .parquet, got %q",
			errors.ErrInvalidArgument, path)
	}
	db, err := n.open()
	if err != nil {
		return err
	}
	defer db.Close()

	selects := make([]string, 0, len(n.files)+1)
	for _, c := range n.constituents() {
		selects = append(selects, n.edgeSelect(c))
	}
	return duck.CopyToParquet(db, strings.Join(selects, " UNION ALL "), path)
}

// Copy returns a new instance over the same constituents. The underlying
// files, table, and cached schema are shared, not duplicated; no I/O occurs.
func (n *LightNetwork) Copy() *LightNetwork {
	return &LightNetwork{
		files:        n.files,
		table:        n.table,
		cellTypeFile: n.cellTypeFile,
		hasCellType:  n.hasCellType,
	}
}

// Files returns the partition paths in query order.
func (n *LightNetwork) Files() []string {
	return append([]string(nil), n.files...)
}

// Table returns the in-memory constituent, or nil.
func (n *LightNetwork) Table() *Table {
	return n.table
}

// HasCellType reports whether the union exposes the cell_type column.
func (n *LightNetwork) HasCellType() bool {
	return n.hasCellType
}

// String describes the constituents without touching them.
func (n *LightNetwork) String() string {
	var b strings.Builder
	b.WriteString("LightNetwork over")
	if len(n.files) > 0 {
		fmt.Fprintf(&b, " %d files:\n  %s", len(n.files), strings.Join(n.files, "\n  "))
	}
	if n.table != nil {
		if len(n.files) > 0 {
			b.WriteString("\nand")
		}
		fmt.Fprintf(&b, " an in-memory table of %d rows x %d columns",
			n.table.NumRows(), n.table.NumColumns())
	}
	return b.String()
}

// scanEdges drains one result set into edges. NULL strings map to "" and a
// NULL weight to 0.
func scanEdges(rows *sql.Rows, withCellType bool) ([]Edge, error) {
	defer rows.Close()
	var out []Edge
	for rows.Next() {
		var regulator, target, cellType sql.NullString
		var weight sql.NullFloat64
		var err error
		if withCellType {
			err = rows.Scan(&regulator, &target, &weight, &cellType)
		} else {
			err = rows.Scan(&regulator, &target, &weight)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Edge{
			Regulator: regulator.String,
			Target:    target.String,
			Weight:    weight.Float64,
			CellType:  cellType.String,
		})
	}
	return out, rows.Err()
}

// scanStrings drains a single-column result set.
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
