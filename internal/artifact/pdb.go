package artifact

import (
	"fmt"

	"github.com/essalab/essa/internal/pdbio"
	"github.com/essalab/essa/schema"
)

// WriteZscorePDB writes the heavy-atom selection with each atom's residue
// z-score in the B-factor column, so the score profile can be colored onto
// the structure in a molecular viewer. Z-scores are positional over the
// scanned residues; every heavy atom of a residue carries that residue's
// score.
func WriteZscorePDB(path string, heavy *schema.Selection, res *schema.ScanResult) error {
	scoreByResIndex := make(map[int]float64, len(res.Residues))
	for pos, r := range res.Residues {
		scoreByResIndex[r.ResIndex] = res.Zscores[pos]
	}
	for i := 0; i < heavy.Len(); i++ {
		ri := heavy.Atom(i).ResIndex
		if _, ok := scoreByResIndex[ri]; !ok {
			return fmt.Errorf("residue index %d has no z-score; selection and scan disagree", ri)
		}
	}
	return pdbio.WriteFile(path, heavy, func(atomIndex int) float64 {
		return scoreByResIndex[heavy.Source.Atoms[atomIndex].ResIndex]
	})
}

// ReadZscorePDB recovers the per-residue z-score vector from an annotated
// structure, one value per residue in file order.
func ReadZscorePDB(path string) ([]float64, error) {
	s, err := pdbio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []float64
	lastRes := -1
	for i := range s.Atoms {
		if s.Atoms[i].ResIndex != lastRes {
			out = append(out, s.Atoms[i].Beta)
			lastRes = s.Atoms[i].ResIndex
		}
	}
	return out, nil
}
