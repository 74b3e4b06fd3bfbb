package networks

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ekernf01/pereggrn-networks/internal/config"
	"github.com/ekernf01/pereggrn-networks/internal/errors"
	"github.com/ekernf01/pereggrn-networks/internal/logger"
)

// CatalogFileName is the marker file every network collection root must carry.
const CatalogFileName = "published_networks.csv"

// exampleSubnetwork is a partition present in the published collection; its
// absence is a bad sign but not an error.
var exampleSubnetwork = filepath.Join("cellnet_human_Hg1332", "networks", "bcell.parquet")

// Location is the validated root directory of a network collection. It
// replaces ambient process-wide state: construct one explicitly and pass it
// to catalog and constructor calls.
//
// Expected layout under the root:
//
//	<root>/published_networks.csv
//	<root>/<sourceName>/networks/<subnetworkFile>
type Location struct {
	root string
}

// NewLocation validates root and returns a Location for it. The catalog
// marker file must exist; a missing well-known example partition is only
// logged, since collections trimmed to a few sources are common.
func NewLocation(root string) (*Location, error) {
	marker := filepath.Join(root, CatalogFileName)
	if info, err := os.Stat(marker); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s is missing under %s (see DebugLocation for the expected layout)",
			errors.ErrConfiguration, CatalogFileName, root)
	}
	if _, err := os.Stat(filepath.Join(root, exampleSubnetwork)); err != nil {
		logger.Warn("checked for an example network and did not find it; this is a bad sign",
			"root", root, "example", exampleSubnetwork)
	}
	return &Location{root: root}, nil
}

// envConfig mirrors the PEREGGRN_* environment variables read at bootstrap.
type envConfig struct {
	Networks struct {
		Path string
	}
}

// LocationFromEnv bootstraps a Location from the environment. It reads an
// optional .env file plus PEREGGRN_NETWORKS_PATH, falling back to the
// collection's historical GRN_PATH variable. The process environment is never
// mutated.
func LocationFromEnv() (*Location, error) {
	var cfg envConfig
	if err := config.Load(config.EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfiguration, err)
	}
	root := cfg.Networks.Path
	if root == "" {
		root = os.Getenv("GRN_PATH")
	}
	if root == "" {
		return nil, fmt.Errorf("%w: set PEREGGRN_NETWORKS_PATH (or GRN_PATH) to the collection root",
			errors.ErrConfiguration)
	}
	return NewLocation(root)
}

// Root returns the collection root directory.
func (l *Location) Root() string {
	return l.root
}

// CatalogFile returns the path of the catalog CSV under the root.
func (l *Location) CatalogFile() string {
	return filepath.Join(l.root, CatalogFileName)
}

// NetworksDir returns the partition directory of a named source.
func (l *Location) NetworksDir(source string) string {
	return filepath.Join(l.root, source, "networks")
}

// SubnetworkPath returns the partition file path for one subnetwork of a
// named source.
func (l *Location) SubnetworkPath(source, subnetwork string) string {
	return filepath.Join(l.root, source, "networks", subnetwork)
}

// DebugLocation describes the directory layout expected under a collection
// root, for inclusion in error reports and CLI help. A nil Location is
// allowed and reported as unset.
func DebugLocation(l *Location) string {
	root := "<unset>"
	if l != nil {
		root = l.root
	}
	return fmt.Sprintf(`network collection location: %s

This package expects a folder structure like this:
  <root>
  ├── published_networks.csv
  ├── ANANSE_tissue_0.8
  │   └── networks
  │       ├── adrenal_gland.parquet
  │       ├── bone_marrow.parquet
  │       └── ...
  ├── cellnet_human_Hg1332
  │   └── networks
  │       ├── bcell.parquet
  │       ├── colon.parquet
  │       └── ...
  └── ...

Construct a Location with NewLocation(root) or via the PEREGGRN_NETWORKS_PATH
environment variable with LocationFromEnv.`, root)
}
