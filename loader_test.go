package networks

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadSubnetwork(t *testing.T) {
	l := setupCollection(t, "testsrc")
	dir := l.NetworksDir("testsrc")

	t.Run("TwoColumnsSynthesizeWeight", func(t *testing.T) {
		writeRawParquet(t, filepath.Join(dir, "pairs.parquet"),
			"regulator VARCHAR, target VARCHAR",
			[][]any{{"TF1", "G1"}, {"TF2", "G2"}})

		edges, err := LoadSubnetwork(l, "testsrc", "pairs.parquet")
		if err != nil {
			t.Fatalf("LoadSubnetwork failed: %v", err)
		}
		if len(edges) != 2 {
			t.Fatalf("Expected 2 edges, got %d", len(edges))
		}
		for _, e := range edges {
			if e.Weight != -1 {
				t.Errorf("Expected synthesized weight -1, got %v for %v", e.Weight, e)
			}
		}
	})

	t.Run("ColumnsTakenPositionally", func(t *testing.T) {
		writeRawParquet(t, filepath.Join(dir, "renamed.parquet"),
			"tf VARCHAR, gene VARCHAR, score DOUBLE",
			[][]any{{"TF1", "G1", 0.5}})

		edges, err := LoadSubnetwork(l, "testsrc", "renamed.parquet")
		if err != nil {
			t.Fatalf("LoadSubnetwork failed: %v", err)
		}
		want := []Edge{{Regulator: "TF1", Target: "G1", Weight: 0.5}}
		if !reflect.DeepEqual(edges, want) {
			t.Errorf("Expected %v, got %v", want, edges)
		}
	})

	t.Run("CellTypeCarried", func(t *testing.T) {
		writeEdgeParquet(t, filepath.Join(dir, "tagged.parquet"), true,
			[]Edge{{Regulator: "TF1", Target: "G1", Weight: 0.5, CellType: "bcell"}})

		edges, err := LoadSubnetwork(l, "testsrc", "tagged.parquet")
		if err != nil {
			t.Fatalf("LoadSubnetwork failed: %v", err)
		}
		if len(edges) != 1 || edges[0].CellType != "bcell" {
			t.Errorf("Expected the cell_type tag to survive, got %v", edges)
		}
	})

	t.Run("ExtraColumnsIgnored", func(t *testing.T) {
		writeRawParquet(t, filepath.Join(dir, "wide.parquet"),
			"regulator VARCHAR, target VARCHAR, weight DOUBLE, rank INTEGER",
			[][]any{{"TF1", "G1", 0.5, 7}})

		edges, err := LoadSubnetwork(l, "testsrc", "wide.parquet")
		if err != nil {
			t.Fatalf("LoadSubnetwork failed: %v", err)
		}
		want := []Edge{{Regulator: "TF1", Target: "G1", Weight: 0.5}}
		if !reflect.DeepEqual(edges, want) {
			t.Errorf("Expected the fourth non-cell_type column dropped, got %v", edges)
		}
	})

	t.Run("MissingSubnetwork", func(t *testing.T) {
		_, err := LoadSubnetwork(l, "testsrc", "absent.parquet")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("NilLocation", func(t *testing.T) {
		_, err := LoadSubnetwork(nil, "testsrc", "pairs.parquet")
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("Expected ErrConfiguration, got %v", err)
		}
	})
}

func TestLoadAllSubnetworks(t *testing.T) {
	l := setupCollection(t, "testsrc")
	dir := l.NetworksDir("testsrc")
	writeEdgeParquet(t, filepath.Join(dir, "b.parquet"), false,
		[]Edge{{Regulator: "TF2", Target: "G2", Weight: 0.9}})
	writeEdgeParquet(t, filepath.Join(dir, "a.parquet"), false,
		[]Edge{{Regulator: "TF1", Target: "G1", Weight: 0.5}})

	edges, err := LoadAllSubnetworks(l, "testsrc")
	if err != nil {
		t.Fatalf("LoadAllSubnetworks failed: %v", err)
	}
	// Concatenated in ListSubnetworks order: a before b.
	want := []Edge{
		{Regulator: "TF1", Target: "G1", Weight: 0.5},
		{Regulator: "TF2", Target: "G2", Weight: 0.9},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("Expected %v, got %v", want, edges)
	}
}

func TestValidateSubnetwork(t *testing.T) {
	l := setupCollection(t, "testsrc")
	dir := l.NetworksDir("testsrc")

	t.Run("PlausibleNetworkPasses", func(t *testing.T) {
		writeEdgeParquet(t, filepath.Join(dir, "good.parquet"), false, []Edge{
			{Regulator: "TF1", Target: "G1", Weight: 0.5},
			{Regulator: "TF1", Target: "G2", Weight: 0.7},
		})
		if err := ValidateSubnetwork(l, "testsrc", "good.parquet"); err != nil {
			t.Fatalf("ValidateSubnetwork failed: %v", err)
		}
	})

	t.Run("MoreRegulatorsThanTargets", func(t *testing.T) {
		writeEdgeParquet(t, filepath.Join(dir, "bad.parquet"), false, []Edge{
			{Regulator: "TF1", Target: "G1", Weight: 0.5},
			{Regulator: "TF2", Target: "G1", Weight: 0.7},
			{Regulator: "TF3", Target: "G1", Weight: 0.9},
		})
		err := ValidateSubnetwork(l, "testsrc", "bad.parquet")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("MissingSubnetwork", func(t *testing.T) {
		err := ValidateSubnetwork(l, "testsrc", "absent.parquet")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestValidateEdges(t *testing.T) {
	ok := []Edge{
		{Regulator: "TF1", Target: "G1", Weight: 0.5},
		{Regulator: "TF2", Target: "G2", Weight: 0.7},
		{Regulator: "TF2", Target: "G3", Weight: 0.9},
	}
	if err := ValidateEdges(ok); err != nil {
		t.Errorf("ValidateEdges failed on a plausible network: %v", err)
	}

	bad := []Edge{
		{Regulator: "TF1", Target: "G1", Weight: 0.5},
		{Regulator: "TF2", Target: "G1", Weight: 0.7},
	}
	if err := ValidateEdges(bad); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}

	if err := ValidateEdges(nil); err != nil {
		t.Errorf("ValidateEdges failed on an empty network: %v", err)
	}
}
