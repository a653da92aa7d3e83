package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/fpocket"
	"github.com/essalab/essa/internal/parquet"
	"github.com/essalab/essa/internal/pdbio"
	"github.com/essalab/essa/schema"
)

func writeStructureFile(t *testing.T, dir string, nRes int) string {
	t.Helper()
	s := syntheticStructure(nRes)
	all := s.Select("all", func(*schema.Atom) bool { return true })
	path := filepath.Join(dir, "synthetic.pdb")
	require.NoError(t, pdbio.WriteFile(path, all, nil))
	return path
}

func pipelineConfig(t *testing.T, nRes int) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		StructurePath: writeStructureFile(t, dir, nRes),
		Title:         "synthetic",
		ENM:           schema.GNM,
		NModes:        3,
		Gamma:         1.0,
		Workers:       2,
		ResultLimit:   25,
		Precision:     2,
		OutDir:        filepath.Join(dir, "out"),
		NoCache:       true,
	}
}

const corePocketFixture = `HEADER 0  - Pocket Score                      :  0.5000
HEADER 1  - Local hydrophobic density Score   : 44.0000
ATOM      1  CA  ALA A   1       0.000   0.000   0.000  1.00  0.00           C
ATOM      2  CA  ALA A   2       3.800   0.000   0.000  1.00  0.00           C
END
`

// TestGetScanResult tests the embedded scan entry point over a real file.
func TestGetScanResult(t *testing.T) {
	cfg := pipelineConfig(t, 10)
	ctx := WithSuppressProgress(context.Background())

	res, err := GetScanResult(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "synthetic", res.Title)
	assert.Len(t, res.Zscores, 10)
	assert.Equal(t, 10.0, res.Params.Cutoff)
}

// TestGetScanResultErrors tests file and setup failures of the pipeline.
func TestGetScanResultErrors(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())

	t.Run("missing file", func(t *testing.T) {
		cfg := pipelineConfig(t, 4)
		cfg.StructurePath = "/nonexistent/x.pdb"
		_, err := GetScanResult(ctx, cfg)
		assert.Error(t, err)
	})

	t.Run("ligand not in structure", func(t *testing.T) {
		cfg := pipelineConfig(t, 4)
		cfg.Ligand = "Z 999"
		_, err := GetScanResult(ctx, cfg)
		assert.ErrorIs(t, err, ErrSetup)
	})
}

// TestGetPocketResults tests the full pipeline with a pre-existing detector
// output directory.
func TestGetPocketResults(t *testing.T) {
	cfg := pipelineConfig(t, 10)
	ctx := WithSuppressProgress(context.Background())

	pocketDir := filepath.Join(t.TempDir(), "pockets_out")
	require.NoError(t, os.MkdirAll(pocketDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pocketDir, "pocket1_atm.pdb"), []byte(corePocketFixture), 0o644))

	z, ranks, err := GetPocketResults(ctx, cfg, fpocket.NewDirDetector(pocketDir))
	require.NoError(t, err)
	require.Equal(t, 1, z.Len())
	assert.Equal(t, []int{1}, z.Numbers)
	// A single pocket has a zero LHD z-score and passes the zero threshold.
	assert.Equal(t, 0.0, z.LHD[0])
	require.Equal(t, 1, ranks.Len())
	assert.Equal(t, []int{1}, ranks.ByMax)

	// The heavy-atom structure is staged for the detector.
	_, err = os.Stat(filepath.Join(cfg.OutDir, "synthetic_heavy.pdb"))
	assert.NoError(t, err)
}

// TestGetPocketResultsDefaults tests that embedded callers with no title or
// output directory still get working defaults derived from the file name.
func TestGetPocketResultsDefaults(t *testing.T) {
	cfg := pipelineConfig(t, 10)
	cfg.Title = ""
	cfg.OutDir = ""
	t.Chdir(t.TempDir())

	pocketDir := filepath.Join(t.TempDir(), "pockets_out")
	require.NoError(t, os.MkdirAll(pocketDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pocketDir, "pocket1_atm.pdb"), []byte(corePocketFixture), 0o644))

	ctx := WithSuppressProgress(context.Background())
	z, ranks, err := GetPocketResults(ctx, cfg, fpocket.NewDirDetector(pocketDir))
	require.NoError(t, err)
	assert.Equal(t, 1, z.Len())
	assert.Equal(t, 1, ranks.Len())

	assert.Equal(t, "synthetic", cfg.Title)
	assert.Equal(t, "synthetic_essa", cfg.OutDir)
	_, err = os.Stat(filepath.Join("synthetic_essa", "synthetic_heavy.pdb"))
	assert.NoError(t, err)
}

// TestGetPocketResultsToolMissing tests the soft failure when no usable
// detector exists.
func TestGetPocketResultsToolMissing(t *testing.T) {
	cfg := pipelineConfig(t, 6)
	ctx := WithSuppressProgress(context.Background())

	t.Run("nil detector", func(t *testing.T) {
		_, _, err := GetPocketResults(ctx, cfg, nil)
		assert.ErrorIs(t, err, ErrToolMissing)
	})

	t.Run("empty output dir", func(t *testing.T) {
		_, _, err := GetPocketResults(ctx, cfg, fpocket.NewDirDetector(t.TempDir()))
		assert.ErrorIs(t, err, ErrToolMissing)
	})
}

// TestExecuteScanSavesArtifacts tests the scan command path with --save.
func TestExecuteScanSavesArtifacts(t *testing.T) {
	cfg := pipelineConfig(t, 8)
	cfg.Save = true
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "scan.csv")

	require.NoError(t, ExecuteScan(WithSuppressProgress(context.Background()), cfg))

	for _, name := range []string{
		"synthetic_gnm_zs.bin",
		"synthetic_lookup.json",
		"synthetic_gnm_scan.json",
		"synthetic_gnm_zs.pdb",
		"synthetic_gnm_ensemble.json",
	} {
		_, err := os.Stat(filepath.Join(cfg.OutDir, name))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(cfg.OutputFile)
	assert.NoError(t, err)
}

// TestExecutePocketsSavesArtifacts tests that the pockets command persists
// the feature and z-score tables alongside the rankings.
func TestExecutePocketsSavesArtifacts(t *testing.T) {
	cfg := pipelineConfig(t, 10)
	cfg.Save = true
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "pockets.csv")

	pocketDir := filepath.Join(t.TempDir(), "pockets_out")
	require.NoError(t, os.MkdirAll(pocketDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pocketDir, "pocket1_atm.pdb"), []byte(corePocketFixture), 0o644))

	ctx := WithSuppressProgress(context.Background())
	require.NoError(t, ExecutePockets(ctx, cfg, fpocket.NewDirDetector(pocketDir)))

	for _, name := range []string{
		"synthetic_pocket_features.parquet",
		"synthetic_pocket_zscores.parquet",
		"synthetic_pocket_ranks.csv",
		"synthetic_ranks_max.bin",
		"synthetic_ranks_med.bin",
	} {
		_, err := os.Stat(filepath.Join(cfg.OutDir, name))
		assert.NoError(t, err, name)
	}

	rows, err := parquet.ReadPocketFeaturesParquet(filepath.Join(cfg.OutDir, "synthetic_pocket_features.parquet"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Pocket Score", rows[0].Feature)
	assert.Equal(t, 0.5, rows[0].Value)
	assert.Equal(t, schema.LHDFeature, rows[1].Feature)
	assert.Equal(t, 44.0, rows[1].Value)
}

// TestExecutePocketsFallback tests that a missing detector degrades to
// scan-only output instead of failing the command.
func TestExecutePocketsFallback(t *testing.T) {
	cfg := pipelineConfig(t, 6)
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "scan.csv")

	err := ExecutePockets(WithSuppressProgress(context.Background()), cfg, fpocket.NewDirDetector(t.TempDir()))
	require.NoError(t, err)
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rank,chain,resnum")
}
