package integration

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	networks "github.com/ekernf01/pereggrn-networks"
	"github.com/ekernf01/pereggrn-networks/internal/duck"
)

// writePartition writes one parquet partition with the contracted
// regulator/target/weight columns.
func writePartition(t *testing.T, path string, edges []networks.Edge) {
	t.Helper()

	db, err := duck.Open()
	if err != nil {
		t.Fatalf("Failed to open duckdb: %v", err)
	}
	defer db.Close()

	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{e.Regulator, e.Target, e.Weight})
	}
	if err := duck.CreateEdgeTable(db, "fixture", false, rows); err != nil {
		t.Fatalf("Failed to load fixture rows: %v", err)
	}
	if err := duck.CopyToParquet(db, `SELECT * FROM "fixture"`, path); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// setupUnion builds a collection with one ready source holding two
// single-edge partitions, then opens it together with a one-row in-memory
// table. The resulting union holds three edges.
func setupUnion(t *testing.T) (*networks.Location, *networks.LightNetwork) {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "testsrc", "networks"), 0o755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	catalog := "name,is_ready\ntestsrc,yes\n"
	if err := os.WriteFile(filepath.Join(root, networks.CatalogFileName), []byte(catalog), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	writePartition(t, filepath.Join(root, "testsrc", "networks", "a.parquet"),
		[]networks.Edge{{Regulator: "TF1", Target: "G1", Weight: 0.5}})
	writePartition(t, filepath.Join(root, "testsrc", "networks", "b.parquet"),
		[]networks.Edge{{Regulator: "TF2", Target: "G1", Weight: 0.9}})

	l, err := networks.NewLocation(root)
	if err != nil {
		t.Fatalf("NewLocation failed: %v", err)
	}

	table := networks.TableFromEdges([]networks.Edge{
		{Regulator: "TF3", Target: "G2", Weight: 1.0},
	})
	n, err := networks.Open(networks.Options{
		Location: l,
		Source:   "testsrc",
		Table:    table,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return l, n
}

func sortEdges(edges []networks.Edge) []networks.Edge {
	out := append([]networks.Edge(nil), edges...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Regulator != out[j].Regulator {
			return out[i].Regulator < out[j].Regulator
		}
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Weight < out[j].Weight
	})
	return out
}

func TestVirtualUnion(t *testing.T) {
	_, n := setupUnion(t)

	t.Run("AllEdges", func(t *testing.T) {
		edges, err := n.GetAll()
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		want := []networks.Edge{
			{Regulator: "TF1", Target: "G1", Weight: 0.5},
			{Regulator: "TF2", Target: "G1", Weight: 0.9},
			{Regulator: "TF3", Target: "G2", Weight: 1.0},
		}
		if len(edges) != len(want) {
			t.Fatalf("Expected %d edges, got %d", len(want), len(edges))
		}
		for i := range want {
			if edges[i] != want[i] {
				t.Errorf("Edge %d: expected %+v, got %+v", i, want[i], edges[i])
			}
		}
	})

	t.Run("RegulatorsOfTarget", func(t *testing.T) {
		edges, err := n.GetRegulators("G1")
		if err != nil {
			t.Fatalf("GetRegulators failed: %v", err)
		}
		if len(edges) != 2 {
			t.Fatalf("Expected 2 edges targeting G1, got %d", len(edges))
		}
		if edges[0].Regulator != "TF1" || edges[1].Regulator != "TF2" {
			t.Errorf("Unexpected regulators: %+v", edges)
		}

		edges, err = n.GetRegulators("G2")
		if err != nil {
			t.Fatalf("GetRegulators failed: %v", err)
		}
		if len(edges) != 1 || edges[0].Regulator != "TF3" {
			t.Errorf("Expected only the in-memory edge for G2, got %+v", edges)
		}
	})

	t.Run("TargetsOfRegulator", func(t *testing.T) {
		edges, err := n.GetTargets("TF1")
		if err != nil {
			t.Fatalf("GetTargets failed: %v", err)
		}
		if len(edges) != 1 || edges[0].Target != "G1" {
			t.Errorf("Expected one edge from TF1 to G1, got %+v", edges)
		}
	})

	t.Run("DistinctRegulators", func(t *testing.T) {
		regs, err := n.GetAllRegulators()
		if err != nil {
			t.Fatalf("GetAllRegulators failed: %v", err)
		}
		want := []string{"TF1", "TF2", "TF3"}
		if len(regs) != len(want) {
			t.Fatalf("Expected %v, got %v", want, regs)
		}
		for i := range want {
			if regs[i] != want[i] {
				t.Fatalf("Expected %v, got %v", want, regs)
			}
		}
	})

	t.Run("EdgeCount", func(t *testing.T) {
		count, err := n.GetNumEdges()
		if err != nil {
			t.Fatalf("GetNumEdges failed: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3 edges, got %d", count)
		}
	})
}

// The total edge count must equal the sum of per-target query sizes: every
// edge has exactly one target, so partitioning by target loses nothing.
func TestCountMatchesPerTargetQueries(t *testing.T) {
	_, n := setupUnion(t)

	targets, err := n.GetAllOneField("target")
	if err != nil {
		t.Fatalf("GetAllOneField failed: %v", err)
	}

	var total int64
	for _, target := range targets {
		edges, err := n.GetRegulators(target)
		if err != nil {
			t.Fatalf("GetRegulators(%s) failed: %v", target, err)
		}
		total += int64(len(edges))
	}

	count, err := n.GetNumEdges()
	if err != nil {
		t.Fatalf("GetNumEdges failed: %v", err)
	}
	if total != count {
		t.Errorf("Per-target sum %d does not match count %d", total, count)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	_, n := setupUnion(t)

	out := filepath.Join(t.TempDir(), "union.parquet")
	if err := n.Save(out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := networks.Open(networks.Options{Files: []string{out}})
	if err != nil {
		t.Fatalf("Open of saved file failed: %v", err)
	}

	before, err := n.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	after, err := reloaded.GetAll()
	if err != nil {
		t.Fatalf("GetAll of saved file failed: %v", err)
	}

	before, after = sortEdges(before), sortEdges(after)
	if len(before) != len(after) {
		t.Fatalf("Expected %d edges after reload, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Edge %d changed across save: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestCopyEquivalence(t *testing.T) {
	_, n := setupUnion(t)

	c := n.Copy()
	origEdges, err := n.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	copyEdges, err := c.GetAll()
	if err != nil {
		t.Fatalf("GetAll on copy failed: %v", err)
	}
	if len(origEdges) != len(copyEdges) {
		t.Fatalf("Copy returned %d edges, original %d", len(copyEdges), len(origEdges))
	}
	for i := range origEdges {
		if origEdges[i] != copyEdges[i] {
			t.Errorf("Edge %d differs on copy: %+v vs %+v", i, origEdges[i], copyEdges[i])
		}
	}
}

func TestCatalogDiscovery(t *testing.T) {
	l, _ := setupUnion(t)

	metas, err := networks.LoadMetadata(l, true)
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	if len(metas) != 1 || metas[0].Name != "testsrc" {
		t.Fatalf("Expected testsrc in the catalog, got %+v", metas)
	}

	subnets, err := networks.ListSubnetworks(l, "testsrc")
	if err != nil {
		t.Fatalf("ListSubnetworks failed: %v", err)
	}
	if len(subnets) != 2 || subnets[0] != "a.parquet" || subnets[1] != "b.parquet" {
		t.Fatalf("Expected both partitions, got %v", subnets)
	}

	_, err = networks.ListSubnetworks(l, "absent")
	if !errors.Is(err, networks.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown source, got %v", err)
	}
}

func TestLoaderAgainstPartitions(t *testing.T) {
	l, _ := setupUnion(t)

	edges, err := networks.LoadSubnetwork(l, "testsrc", "a.parquet")
	if err != nil {
		t.Fatalf("LoadSubnetwork failed: %v", err)
	}
	if len(edges) != 1 || edges[0] != (networks.Edge{Regulator: "TF1", Target: "G1", Weight: 0.5}) {
		t.Fatalf("Unexpected edges from a.parquet: %+v", edges)
	}

	all, err := networks.LoadAllSubnetworks(l, "testsrc")
	if err != nil {
		t.Fatalf("LoadAllSubnetworks failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 edges across the source, got %d", len(all))
	}

	if err := networks.ValidateSubnetwork(l, "testsrc", "a.parquet"); err != nil {
		t.Fatalf("ValidateSubnetwork failed: %v", err)
	}
}
