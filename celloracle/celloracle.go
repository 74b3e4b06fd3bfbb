// Package celloracle reshapes edge lists between the long triplet format
// used across this module and the wide indicator format CellOracle expects
// as a base network: one row per target gene, one column per transcription
// factor, cells 0 or 1.
//
// These adapters run at data-preparation time only; query paths never pivot.
package celloracle

import (
	"math/rand"
	"sort"

	networks "github.com/ekernf01/pereggrn-networks"
)

// WideNetwork is a dense wide-format network. Values has one row per entry
// of Genes and one column per entry of TFs; a 1 marks a regulator-target
// relationship.
type WideNetwork struct {
	Genes  []string // target genes, row labels
	TFs    []string // transcription factors, column labels
	Values [][]float64
}

// PivotLongToWide crosstabs an edge list into a wide indicator network.
// Genes and TFs come out sorted; duplicate edges collapse into a single 1.
func PivotLongToWide(edges []networks.Edge) *WideNetwork {
	geneIdx := make(map[string]int)
	tfIdx := make(map[string]int)
	for _, e := range edges {
		if _, ok := geneIdx[e.Target]; !ok {
			geneIdx[e.Target] = 0
		}
		if _, ok := tfIdx[e.Regulator]; !ok {
			tfIdx[e.Regulator] = 0
		}
	}

	genes := make([]string, 0, len(geneIdx))
	for g := range geneIdx {
		genes = append(genes, g)
	}
	sort.Strings(genes)
	for i, g := range genes {
		geneIdx[g] = i
	}

	tfs := make([]string, 0, len(tfIdx))
	for tf := range tfIdx {
		tfs = append(tfs, tf)
	}
	sort.Strings(tfs)
	for i, tf := range tfs {
		tfIdx[tf] = i
	}

	values := make([][]float64, len(genes))
	for i := range values {
		values[i] = make([]float64, len(tfs))
	}
	for _, e := range edges {
		values[geneIdx[e.Target]][tfIdx[e.Regulator]] = 1
	}

	return &WideNetwork{Genes: genes, TFs: tfs, Values: values}
}

// ToLong converts back to an edge list. Every set cell becomes one edge of
// weight 1, emitted TF by TF in column order. Weights other than the 0/1
// indicator do not survive a round trip through the wide format.
func (w *WideNetwork) ToLong() []networks.Edge {
	var edges []networks.Edge
	for j, tf := range w.TFs {
		for i, gene := range w.Genes {
			if w.Values[i][j] == 1 {
				edges = append(edges, networks.Edge{Regulator: tf, Target: gene, Weight: 1})
			}
		}
	}
	return edges
}

// RandomNetwork draws a wide indicator network with each cell set
// independently with probability density. The same seed always yields the
// same network.
func RandomNetwork(targetGenes, tfs []string, density float64, seed int64) *WideNetwork {
	rng := rand.New(rand.NewSource(seed))
	values := make([][]float64, len(targetGenes))
	for i := range values {
		values[i] = make([]float64, len(tfs))
		for j := range values[i] {
			if rng.Float64() < density {
				values[i][j] = 1
			}
		}
	}
	return &WideNetwork{
		Genes:  append([]string(nil), targetGenes...),
		TFs:    append([]string(nil), tfs...),
		Values: values,
	}
}

// cellKey addresses one cell of a sparse wide network.
type cellKey struct {
	row, col int
}

// SparseWideNetwork stores only the cells of a wide network that differ from
// a default value. Base networks are mostly zeros, so this saves most of the
// memory of the dense form.
type SparseWideNetwork struct {
	Genes   []string
	TFs     []string
	Default float64
	cells   map[cellKey]float64
}

// Sparse converts to a sparse representation keeping only cells that differ
// from defaultValue.
func (w *WideNetwork) Sparse(defaultValue float64) *SparseWideNetwork {
	cells := make(map[cellKey]float64)
	for i, row := range w.Values {
		for j, v := range row {
			if v != defaultValue {
				cells[cellKey{i, j}] = v
			}
		}
	}
	return &SparseWideNetwork{
		Genes:   w.Genes,
		TFs:     w.TFs,
		Default: defaultValue,
		cells:   cells,
	}
}

// At returns the value of one cell.
func (s *SparseWideNetwork) At(row, col int) float64 {
	if v, ok := s.cells[cellKey{row, col}]; ok {
		return v
	}
	return s.Default
}

// NumStored returns the number of explicitly stored cells.
func (s *SparseWideNetwork) NumStored() int {
	return len(s.cells)
}

// Dense undoes Sparse, reconstructing the full value matrix.
func (s *SparseWideNetwork) Dense() *WideNetwork {
	values := make([][]float64, len(s.Genes))
	for i := range values {
		values[i] = make([]float64, len(s.TFs))
		for j := range values[i] {
			values[i][j] = s.At(i, j)
		}
	}
	return &WideNetwork{Genes: s.Genes, TFs: s.TFs, Values: values}
}
