// Package core has the analysis state machine, the perturbation scan, the
// score engine and the pocket ranking logic.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/essalab/essa/internal/artifact"
	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/outwriter"
	"github.com/essalab/essa/internal/parquet"
	"github.com/essalab/essa/internal/pdbio"
	"github.com/essalab/essa/internal/scanstore"
	"github.com/essalab/essa/schema"
)

// ExecuteScan runs the residue scan and prints results to stdout.
// It serves as the main entry point for the 'scan' command.
func ExecuteScan(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	a, res, err := runScanPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.Save {
		if err := saveScanArtifacts(cfg, a, res); err != nil {
			return err
		}
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteScan(res, cfg, duration)
}

// ExecutePockets runs the full pipeline including pocket detection and
// ranking. It serves as the main entry point for the 'pockets' command.
// When the detector is unavailable it degrades to scan-only output with a
// warning.
func ExecutePockets(ctx context.Context, cfg *contract.Config, detector contract.PocketDetector) error {
	start := time.Now()
	a, res, err := runScanPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.Save {
		if err := saveScanArtifacts(cfg, a, res); err != nil {
			return err
		}
	}

	z, ranks, err := runPocketPipeline(ctx, cfg, a, detector)
	if err != nil {
		if errors.Is(err, ErrToolMissing) {
			contract.LogWarn("pocket detection unavailable, showing scan results only", err)
			return outwriter.NewOutWriter().WriteScan(res, cfg, time.Since(start))
		}
		return err
	}
	if cfg.Save {
		if err := savePocketArtifacts(cfg, a, z, ranks); err != nil {
			return err
		}
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WritePockets(z, ranks, cfg, duration)
}

// GetScanResult runs the scan pipeline and returns the result without
// printing, for embedded callers like the MCP server.
func GetScanResult(ctx context.Context, cfg *contract.Config) (*schema.ScanResult, error) {
	_, res, err := runScanPipeline(ctx, cfg)
	return res, err
}

// GetPocketResults runs the full pipeline and returns the pocket tables
// without printing.
func GetPocketResults(ctx context.Context, cfg *contract.Config, detector contract.PocketDetector) (*schema.PocketZScoreTable, *schema.PocketRankTable, error) {
	a, _, err := runScanPipeline(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return runPocketPipeline(ctx, cfg, a, detector)
}

// runScanPipeline loads the structure, configures the analysis and runs the
// residue scan through the scan store.
func runScanPipeline(ctx context.Context, cfg *contract.Config) (*Analysis, *schema.ScanResult, error) {
	s, err := pdbio.ReadFile(cfg.StructurePath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", cfg.StructurePath, err)
	}
	// Embedded callers (MCP tools) pass configs that never went through
	// CLI validation, so Title and OutDir fall back to the structure's
	// file-derived title here.
	if cfg.Title != "" {
		s.Title = cfg.Title
	} else {
		cfg.Title = s.Title
	}
	if cfg.OutDir == "" {
		cfg.OutDir = cfg.Title + "_essa"
	}

	a := NewAnalysis(s)
	if err := a.Setup(cfg.Ligand, cfg.LigandDist); err != nil {
		return nil, nil, err
	}

	res, err := cachedScanResult(ctx, cfg, a, scanstore.Manager)
	if err != nil {
		return nil, nil, err
	}
	return a, res, nil
}

// runPocketPipeline detects pockets, maps them onto the scan and ranks
// them. The heavy-atom structure is written into the output directory for
// the detector to consume.
func runPocketPipeline(ctx context.Context, cfg *contract.Config, a *Analysis, detector contract.PocketDetector) (*schema.PocketZScoreTable, *schema.PocketRankTable, error) {
	if detector == nil || !detector.Available() {
		return nil, nil, fmt.Errorf("%w: no usable detector configured", ErrToolMissing)
	}

	if err := artifact.EnsureDir(cfg.OutDir); err != nil {
		return nil, nil, err
	}
	pdbPath := artifact.Path(cfg.OutDir, cfg.Title+"_heavy.pdb")
	if err := pdbio.WriteFile(pdbPath, a.Heavy(), nil); err != nil {
		return nil, nil, err
	}

	pockets, err := detector.Detect(ctx, pdbPath, cfg.OutDir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrToolMissing, err)
	}
	if err := a.ScanPockets(pockets); err != nil {
		return nil, nil, err
	}
	if err := a.RankPockets(); err != nil {
		return nil, nil, err
	}
	z, err := a.PocketZScores()
	if err != nil {
		return nil, nil, err
	}
	ranks, err := a.PocketRanks()
	if err != nil {
		return nil, nil, err
	}
	return z, ranks, nil
}

// saveScanArtifacts writes the persistent outputs of a completed scan into
// the output directory.
func saveScanArtifacts(cfg *contract.Config, a *Analysis, res *schema.ScanResult) error {
	if err := artifact.EnsureDir(cfg.OutDir); err != nil {
		return err
	}
	prefix := fmt.Sprintf("%s_%s", cfg.Title, res.Params.ENM)

	if err := artifact.WriteFloatsFile(artifact.Path(cfg.OutDir, prefix+"_zs.bin"), res.Zscores); err != nil {
		return err
	}
	if err := artifact.WriteLookupJSON(artifact.Path(cfg.OutDir, cfg.Title+"_lookup.json"), res.Lookup); err != nil {
		return err
	}
	if err := artifact.WriteScanResultJSON(artifact.Path(cfg.OutDir, prefix+"_scan.json"), res); err != nil {
		return err
	}
	if err := artifact.WriteZscorePDB(artifact.Path(cfg.OutDir, prefix+"_zs.pdb"), a.Heavy(), res); err != nil {
		return err
	}
	if e := a.Ensemble(); e != nil {
		if err := artifact.WriteEnsembleJSON(artifact.Path(cfg.OutDir, prefix+"_ensemble.json"), e); err != nil {
			return err
		}
	}
	return nil
}

// savePocketArtifacts writes the pocket tables into the output directory.
func savePocketArtifacts(cfg *contract.Config, a *Analysis, z *schema.PocketZScoreTable, ranks *schema.PocketRankTable) error {
	if err := artifact.EnsureDir(cfg.OutDir); err != nil {
		return err
	}
	features, err := a.PocketFeatures()
	if err != nil {
		return err
	}
	if err := parquet.WritePocketFeaturesParquet(parquet.ConvertFeatureTable(features),
		artifact.Path(cfg.OutDir, cfg.Title+"_pocket_features.parquet")); err != nil {
		return err
	}
	if err := parquet.WritePocketZScoresParquet(parquet.ConvertZScoreTable(z),
		artifact.Path(cfg.OutDir, cfg.Title+"_pocket_zscores.parquet")); err != nil {
		return err
	}
	if err := artifact.WriteRankCSV(artifact.Path(cfg.OutDir, cfg.Title+"_pocket_ranks.csv"), ranks); err != nil {
		return err
	}
	if err := artifact.WriteIntsFile(artifact.Path(cfg.OutDir, cfg.Title+"_ranks_max.bin"), ranks.ByMax); err != nil {
		return err
	}
	if err := artifact.WriteIntsFile(artifact.Path(cfg.OutDir, cfg.Title+"_ranks_med.bin"), ranks.ByMed); err != nil {
		return err
	}
	return nil
}
