package core

import (
	"sort"

	"github.com/essalab/essa/schema"
)

// rankPockets applies the adaptive hydrophobic-density filter and sorts the
// surviving pockets by essentiality.
//
// The filter threshold depends on how the LHD z-scores are distributed: when
// at least a quarter of the pockets (integer division) sit at or above the
// mean, any such pocket passes (threshold 0); otherwise only the pockets at
// or above the 85th percentile of the LHD column do. ESSA scores are rounded
// to one decimal and LHD to two before comparison so the ranking matches
// what the tables display, with LHD breaking ESSA ties. Sorting is stable,
// so full ties keep pocket-number order.
func rankPockets(z *schema.PocketZScoreTable) *schema.PocketRankTable {
	n := z.Len()

	aboveMean := 0
	for _, v := range z.LHD {
		if v >= 0 {
			aboveMean++
		}
	}
	threshold := 0.0
	if aboveMean < n/4 {
		threshold = percentileLinear(z.LHD, 0.85)
	}

	type entry struct {
		number int
		essa   float64
		lhd    float64
	}
	var byMax, byMed []entry
	for i := 0; i < n; i++ {
		lhd := round2(z.LHD[i])
		if z.LHD[i] < threshold {
			continue
		}
		byMax = append(byMax, entry{z.Numbers[i], round1(z.ESSAMax[i]), lhd})
		byMed = append(byMed, entry{z.Numbers[i], round1(z.ESSAMed[i]), lhd})
	}

	desc := func(s []entry) {
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].essa != s[j].essa {
				return s[i].essa > s[j].essa
			}
			return s[i].lhd > s[j].lhd
		})
	}
	desc(byMax)
	desc(byMed)

	t := &schema.PocketRankTable{
		ByMax:     make([]int, len(byMax)),
		ByMed:     make([]int, len(byMed)),
		Threshold: threshold,
	}
	for i := range byMax {
		t.ByMax[i] = byMax[i].number
		t.ByMed[i] = byMed[i].number
	}
	return t
}
