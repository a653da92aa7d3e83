package core

import (
	"fmt"

	"github.com/essalab/essa/schema"
)

// buildPocketTables turns detector output into the feature table and the
// per-pocket z-score table. Residues reported by the detector that were not
// part of the scan (waters, ligands, residues without a Cα) are ignored; a
// pocket whose residues all fall outside the scan is an error, since its
// ESSA score would be undefined.
func buildPocketTables(pockets []schema.Pocket, res *schema.ScanResult) (*schema.PocketFeatureTable, *schema.PocketZScoreTable, error) {
	if len(pockets) == 0 {
		return nil, nil, fmt.Errorf("no pockets to score")
	}

	features, err := buildFeatureTable(pockets)
	if err != nil {
		return nil, nil, err
	}

	lhdRaw, ok := features.Column(schema.LHDFeature)
	if !ok {
		return nil, nil, fmt.Errorf("detector output lacks feature %q", schema.LHDFeature)
	}

	z := &schema.PocketZScoreTable{
		Numbers: features.Numbers,
		ESSAMax: make([]float64, len(pockets)),
		ESSAMed: make([]float64, len(pockets)),
		LHD:     zscores(lhdRaw),
	}
	for i, p := range pockets {
		scores := pocketResidueScores(p, res)
		if len(scores) == 0 {
			return nil, nil, fmt.Errorf("pocket %d: none of its %d residues were scanned", p.Number, len(p.Residues))
		}
		z.ESSAMax[i] = maxOf(scores)
		z.ESSAMed[i] = median(scores)
	}
	return features, z, nil
}

// buildFeatureTable assembles the shared-column feature matrix. The first
// pocket fixes the column order; later pockets must carry the same features.
func buildFeatureTable(pockets []schema.Pocket) (*schema.PocketFeatureTable, error) {
	cols := make([]string, len(pockets[0].Features))
	for i, f := range pockets[0].Features {
		cols[i] = f.Name
	}
	t := &schema.PocketFeatureTable{
		Numbers: make([]int, len(pockets)),
		Columns: cols,
		Rows:    make([][]float64, len(pockets)),
	}
	for i, p := range pockets {
		if len(p.Features) != len(cols) {
			return nil, fmt.Errorf("pocket %d has %d features, pocket %d has %d",
				p.Number, len(p.Features), pockets[0].Number, len(cols))
		}
		row := make([]float64, len(cols))
		for j, f := range p.Features {
			if f.Name != cols[j] {
				return nil, fmt.Errorf("pocket %d: feature %d is %q, expected %q", p.Number, j, f.Name, cols[j])
			}
			row[j] = f.Value
		}
		t.Numbers[i] = p.Number
		t.Rows[i] = row
	}
	return t, nil
}

// pocketResidueScores collects the ESSA z-scores of the pocket's scanned
// residues via the chain+resnum lookup. Z-scores are positional over the
// scanned residues, so residue indices translate through the residue list.
func pocketResidueScores(p schema.Pocket, res *schema.ScanResult) []float64 {
	posByResIndex := make(map[int]int, len(res.Residues))
	for pos, r := range res.Residues {
		posByResIndex[r.ResIndex] = pos
	}
	seen := make(map[int]bool, len(p.Residues))
	out := make([]float64, 0, len(p.Residues))
	for _, cr := range p.Residues {
		key := fmt.Sprintf("%s%d", cr.Chain, cr.ResNum)
		ri, ok := res.Lookup[key]
		if !ok || seen[ri] {
			continue
		}
		seen[ri] = true
		if pos, ok := posByResIndex[ri]; ok {
			out = append(out, res.Zscores[pos])
		}
	}
	return out
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
