package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essalab/essa/schema"
)

func scanFixture() *schema.ScanResult {
	residues := []schema.ResidueID{
		{Chain: "A", ResNum: 1, ResIndex: 0},
		{Chain: "A", ResNum: 2, ResIndex: 1},
		{Chain: "A", ResNum: 3, ResIndex: 2},
		{Chain: "A", ResNum: 4, ResIndex: 3},
		{Chain: "B", ResNum: 1, ResIndex: 4},
	}
	return &schema.ScanResult{
		Title:    "fixture",
		Residues: residues,
		Zscores:  []float64{1.5, -0.5, 0.0, 2.0, -1.0},
		Lookup:   schema.ResidueLookup(residues),
	}
}

func pocketWith(number int, lhd float64, residues ...schema.ChainRes) schema.Pocket {
	return schema.Pocket{
		Number: number,
		Features: []schema.PocketFeature{
			{Name: "Pocket Score", Value: 0.5},
			{Name: schema.LHDFeature, Value: lhd},
		},
		Residues: residues,
	}
}

// TestBuildPocketTables tests feature assembly and per-pocket max/median
// ESSA scoring over the scanned residues.
func TestBuildPocketTables(t *testing.T) {
	pockets := []schema.Pocket{
		pocketWith(1, 10.0,
			schema.ChainRes{Chain: "A", ResNum: 1},
			schema.ChainRes{Chain: "A", ResNum: 2},
			schema.ChainRes{Chain: "A", ResNum: 4},
		),
		pocketWith(2, 20.0,
			schema.ChainRes{Chain: "A", ResNum: 3},
			schema.ChainRes{Chain: "B", ResNum: 1},
		),
	}

	features, z, err := buildPocketTables(pockets, scanFixture())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, features.Numbers)
	assert.Equal(t, []string{"Pocket Score", schema.LHDFeature}, features.Columns)
	lhd, ok := features.Column(schema.LHDFeature)
	require.True(t, ok)
	assert.Equal(t, []float64{10, 20}, lhd)

	// Pocket 1 covers z-scores {1.5, -0.5, 2.0}; pocket 2 covers {0.0, -1.0}.
	assert.InDelta(t, 2.0, z.ESSAMax[0], 1e-12)
	assert.InDelta(t, 1.5, z.ESSAMed[0], 1e-12)
	assert.InDelta(t, 0.0, z.ESSAMax[1], 1e-12)
	assert.InDelta(t, -0.5, z.ESSAMed[1], 1e-12)

	// The LHD column is standardized over the two pockets.
	assert.InDelta(t, -1.0, z.LHD[0], 1e-12)
	assert.InDelta(t, 1.0, z.LHD[1], 1e-12)
}

// TestBuildPocketTablesSkipsUnscanned tests that detector residues outside
// the scan (waters, ligands) are ignored, as are duplicate memberships.
func TestBuildPocketTablesSkipsUnscanned(t *testing.T) {
	pockets := []schema.Pocket{
		pocketWith(1, 1.0,
			schema.ChainRes{Chain: "A", ResNum: 1},
			schema.ChainRes{Chain: "A", ResNum: 1}, // duplicate
			schema.ChainRes{Chain: "C", ResNum: 99}, // never scanned
		),
		pocketWith(2, 2.0, schema.ChainRes{Chain: "A", ResNum: 4}),
	}

	_, z, err := buildPocketTables(pockets, scanFixture())
	require.NoError(t, err)
	// Only the single scanned residue contributes, once.
	assert.InDelta(t, 1.5, z.ESSAMax[0], 1e-12)
	assert.InDelta(t, 1.5, z.ESSAMed[0], 1e-12)
}

// TestBuildPocketTablesErrors tests the failure modes of table assembly.
func TestBuildPocketTablesErrors(t *testing.T) {
	res := scanFixture()

	t.Run("no pockets", func(t *testing.T) {
		_, _, err := buildPocketTables(nil, res)
		assert.Error(t, err)
	})

	t.Run("pocket with no scanned residues", func(t *testing.T) {
		pockets := []schema.Pocket{
			pocketWith(1, 1.0, schema.ChainRes{Chain: "Z", ResNum: 1}),
		}
		_, _, err := buildPocketTables(pockets, res)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pocket 1")
	})

	t.Run("missing lhd feature", func(t *testing.T) {
		pockets := []schema.Pocket{
			{
				Number:   1,
				Features: []schema.PocketFeature{{Name: "Pocket Score", Value: 1}},
				Residues: []schema.ChainRes{{Chain: "A", ResNum: 1}},
			},
		}
		_, _, err := buildPocketTables(pockets, res)
		require.Error(t, err)
		assert.Contains(t, err.Error(), schema.LHDFeature)
	})

	t.Run("feature count mismatch", func(t *testing.T) {
		pockets := []schema.Pocket{
			pocketWith(1, 1.0, schema.ChainRes{Chain: "A", ResNum: 1}),
			{
				Number:   2,
				Features: []schema.PocketFeature{{Name: schema.LHDFeature, Value: 2}},
				Residues: []schema.ChainRes{{Chain: "A", ResNum: 2}},
			},
		}
		_, _, err := buildPocketTables(pockets, res)
		assert.Error(t, err)
	})

	t.Run("feature order mismatch", func(t *testing.T) {
		pockets := []schema.Pocket{
			pocketWith(1, 1.0, schema.ChainRes{Chain: "A", ResNum: 1}),
			{
				Number: 2,
				Features: []schema.PocketFeature{
					{Name: schema.LHDFeature, Value: 2},
					{Name: "Pocket Score", Value: 0.5},
				},
				Residues: []schema.ChainRes{{Chain: "A", ResNum: 2}},
			},
		}
		_, _, err := buildPocketTables(pockets, res)
		assert.Error(t, err)
	})
}
