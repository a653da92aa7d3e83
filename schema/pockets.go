package schema

// PocketFeature is one scored feature line from a pocket detector output
// file, in file order.
type PocketFeature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Pocket is the parsed output for a single detected pocket: its stable
// 1-indexed number from the detector, its scored features and the residues
// that line it.
type Pocket struct {
	Number   int             `json:"number"`
	Features []PocketFeature `json:"features"`
	Residues []ChainRes      `json:"residues"`
}

// PocketFeatureTable holds the numeric features of all detected pockets.
// Rows follow pocket-number order fixed at scan time; Columns are the
// feature names shared by every row.
type PocketFeatureTable struct {
	Numbers []int       `json:"numbers"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// Column returns the values of the named feature column, one per pocket,
// and whether the column exists.
func (t *PocketFeatureTable) Column(name string) ([]float64, bool) {
	col := -1
	for i, c := range t.Columns {
		if c == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[col]
	}
	return out, true
}

// PocketZScoreTable is the derived per-pocket z-score table: max and median
// ESSA z-score over each pocket's residues, plus the z-normalized local
// hydrophobic density column.
type PocketZScoreTable struct {
	Numbers []int     `json:"numbers"`
	ESSAMax []float64 `json:"essa_max"`
	ESSAMed []float64 `json:"essa_med"`
	LHD     []float64 `json:"lhd"`
}

// Len returns the number of pockets in the table.
func (t *PocketZScoreTable) Len() int { return len(t.Numbers) }

// PocketRankTable holds the two pocket-number rankings produced by the rank
// engine. Both columns share the LHD filter threshold, so they always have
// equal length; row i is rank i+1.
type PocketRankTable struct {
	ByMax     []int   `json:"by_max"`
	ByMed     []int   `json:"by_med"`
	Threshold float64 `json:"threshold"`
}

// Len returns the number of ranked pockets.
func (t *PocketRankTable) Len() int { return len(t.ByMax) }
