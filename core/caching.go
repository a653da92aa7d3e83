package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

// currentCacheVersion defines the version of the cached scan payload
const currentCacheVersion = 1

// cacheMaxAge bounds how long a stored scan stays usable.
const cacheMaxAge = 30 * 24 * time.Hour

// cachedScanResult returns the scan result for the analysis, reusing a
// stored result for identical inputs when the store has one. The analysis
// must be in the Configured state; it ends up Scanned either way.
func cachedScanResult(ctx context.Context, cfg *contract.Config, a *Analysis, mgr contract.StoreManager) (*schema.ScanResult, error) {
	var store contract.ScanStore
	if mgr != nil {
		store = mgr.GetScanStore()
	}
	if store == nil || cfg.NoCache {
		return runScan(ctx, cfg, a)
	}

	key := generateScanKey(cfg, a)
	if res := checkCacheHit(store, key); res != nil {
		if err := a.RestoreScan(res); err == nil {
			return res, nil
		}
		// A stored scan that no longer fits the structure is stale.
	}
	return computeAndStore(ctx, cfg, a, store, key)
}

// checkCacheHit attempts to retrieve and validate a stored scan result.
func checkCacheHit(store contract.ScanStore, key string) *schema.ScanResult {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // miss
	}
	if version != currentCacheVersion {
		return nil
	}
	if time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}
	var res schema.ScanResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil
	}
	return &res
}

// computeAndStore runs the scan and persists the result.
func computeAndStore(ctx context.Context, cfg *contract.Config, a *Analysis, store contract.ScanStore, key string) (*schema.ScanResult, error) {
	res, err := runScan(ctx, cfg, a)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	return res, nil
}

// runScan performs the perturbation scan directly, without the store.
func runScan(ctx context.Context, cfg *contract.Config, a *Analysis) (*schema.ScanResult, error) {
	params := schema.ScanParams{
		ENM:    cfg.ENM,
		NModes: cfg.NModes,
		Cutoff: cfg.Cutoff,
		Gamma:  cfg.Gamma,
	}
	var progress func(done, total int)
	if !shouldSuppressProgress(ctx) {
		progress = func(done, total int) {
			contract.LogProgress("Scanned %d/%d residues", done, total)
		}
	}
	if err := a.ScanResidues(ctx, params, cfg.Workers, progress); err != nil {
		return nil, err
	}
	return a.Result()
}

// generateScanKey derives a stable key from everything that changes the
// scan's outcome: the structure's coordinates and the model parameters.
func generateScanKey(cfg *contract.Config, a *Analysis) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%s:%d:%g:%g:%s:%g:",
		cfg.Title, cfg.ENM, cfg.NModes, cfg.Cutoff, cfg.Gamma, cfg.Ligand, cfg.LigandDist)
	for i := 0; i < a.heavy.Len(); i++ {
		at := a.heavy.Atom(i)
		fmt.Fprintf(h, "%s%d%s:%.3f,%.3f,%.3f;", at.Chain, at.ResNum, at.Name,
			at.Coord[0], at.Coord[1], at.Coord[2])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
