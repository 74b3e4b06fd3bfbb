package networks

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ekernf01/pereggrn-networks/internal/errors"
)

// lookupGuidance steers users of a misconfigured collection toward the
// operations that explain what exists and where it is expected to live.
const lookupGuidance = "try LoadMetadata or ListSubnetworks for available names, and DebugLocation for the expected layout"

// SourceMeta describes one row of the collection catalog. Name is the unique
// source key; IsReady carries the readiness flag as written in the catalog
// ("yes" marks a complete, usable source). Fields holds every column of the
// row keyed by header name, including the two above.
type SourceMeta struct {
	Name    string
	IsReady string
	Fields  map[string]string
}

// Ready reports whether the source is flagged complete in the catalog.
func (m SourceMeta) Ready() bool {
	return m.IsReady == "yes"
}

// ListSubnetworks lists the subnetworks of a named source: the non-hidden
// entries of the source's partition directory, sorted. It fails with
// ErrNotFound when the source has no partition directory under the
// collection root.
func ListSubnetworks(l *Location, source string) ([]string, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: no location given", errors.ErrConfiguration)
	}
	dir := l.NetworksDir(source)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: no networks for source %q under %s; %s",
			errors.ErrNotFound, source, l.Root(), lookupGuidance)
	}
	subnets := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		subnets = append(subnets, entry.Name())
	}
	sort.Strings(subnets)
	return subnets, nil
}

// LoadMetadata reads the collection catalog and returns one SourceMeta per
// row, in file order. With completeOnly set, rows whose readiness flag is not
// exactly "yes" are dropped. A missing catalog file is a configuration error,
// not a lookup miss: the catalog is the marker that makes a root a collection.
func LoadMetadata(l *Location, completeOnly bool) ([]SourceMeta, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: no location given", errors.ErrConfiguration)
	}
	f, err := os.Open(l.CatalogFile())
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s under %s; %s",
			errors.ErrConfiguration, CatalogFileName, l.Root(), lookupGuidance)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", CatalogFileName, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", errors.ErrSchema, CatalogFileName)
	}

	header := records[0]
	nameIdx, readyIdx := -1, -1
	for i, col := range header {
		switch col {
		case "name":
			nameIdx = i
		case "is_ready":
			readyIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: %s has no %q column", errors.ErrSchema, CatalogFileName, "name")
	}

	metas := make([]SourceMeta, 0, len(records)-1)
	for _, record := range records[1:] {
		if nameIdx >= len(record) {
			continue
		}
		meta := SourceMeta{
			Name:   record[nameIdx],
			Fields: make(map[string]string, len(header)),
		}
		for i, col := range header {
			if i < len(record) {
				meta.Fields[col] = record[i]
			}
		}
		if readyIdx >= 0 && readyIdx < len(record) {
			meta.IsReady = record[readyIdx]
		}
		if completeOnly && !meta.Ready() {
			continue
		}
		metas = append(metas, meta)
	}
	return metas, nil
}
