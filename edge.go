package networks

// Edge represents one weighted regulator-target interaction
type Edge struct {
	Regulator string  // Transcription factor or other regulator gene
	Target    string  // Gene regulated by the regulator
	Weight    float64 // Interaction strength; -1 when the source carries no weights
	CellType  string  // Optional tissue or cell-type tag; "" when absent
}

// HasCellType reports whether the edge carries a cell-type tag.
func (e Edge) HasCellType() bool {
	return e.CellType != ""
}
