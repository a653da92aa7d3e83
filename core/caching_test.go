package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/scanstore"
	"github.com/essalab/essa/schema"
)

func cacheTestConfig() *contract.Config {
	return &contract.Config{
		Title:   "synthetic",
		ENM:     schema.GNM,
		NModes:  3,
		Gamma:   1.0,
		Workers: 2,
	}
}

func configuredAnalysis(t *testing.T, nRes int) *Analysis {
	t.Helper()
	a := NewAnalysis(syntheticStructure(nRes))
	require.NoError(t, a.Setup("", 0))
	return a
}

// TestGenerateScanKey tests key stability and sensitivity to inputs that
// change the scan outcome.
func TestGenerateScanKey(t *testing.T) {
	cfg := cacheTestConfig()
	a := configuredAnalysis(t, 4)

	key1 := generateScanKey(cfg, a)
	key2 := generateScanKey(cfg, a)
	assert.Equal(t, key1, key2, "same inputs must hash identically")
	assert.Len(t, key1, 64)

	t.Run("parameter change", func(t *testing.T) {
		other := cacheTestConfig()
		other.NModes = 5
		assert.NotEqual(t, key1, generateScanKey(other, a))
	})

	t.Run("coordinate change", func(t *testing.T) {
		s := syntheticStructure(4)
		s.Atoms[0].Coord[0] += 0.5
		b := NewAnalysis(s)
		require.NoError(t, b.Setup("", 0))
		assert.NotEqual(t, key1, generateScanKey(cfg, b))
	})
}

// TestCachedScanResultNoStore tests the direct path when no store manager
// is wired.
func TestCachedScanResultNoStore(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	a := configuredAnalysis(t, 6)

	res, err := cachedScanResult(ctx, cacheTestConfig(), a, nil)
	require.NoError(t, err)
	assert.Len(t, res.Zscores, 6)
	assert.Equal(t, Scanned, a.State())
}

// TestCachedScanResultNoCache tests that --no-cache bypasses the store even
// when one is available.
func TestCachedScanResultNoCache(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := cacheTestConfig()
	cfg.NoCache = true

	store := &scanstore.MockScanStore{}
	mgr := &scanstore.MockStoreManager{}
	mgr.On("GetScanStore").Return(store)

	res, err := cachedScanResult(ctx, cfg, configuredAnalysis(t, 6), mgr)
	require.NoError(t, err)
	assert.Len(t, res.Zscores, 6)
	// Neither Get nor Set may be called.
	store.AssertNotCalled(t, "Get", mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestCachedScanResultMissThenStore tests the miss path: scan runs and the
// result is persisted under the derived key with the current version.
func TestCachedScanResultMissThenStore(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := cacheTestConfig()
	a := configuredAnalysis(t, 6)
	key := generateScanKey(cfg, a)

	store := &scanstore.MockScanStore{}
	store.On("Get", key).Return([]byte(nil), 0, int64(0), errors.New("not found"))
	store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)
	mgr := &scanstore.MockStoreManager{}
	mgr.On("GetScanStore").Return(store)

	res, err := cachedScanResult(ctx, cfg, a, mgr)
	require.NoError(t, err)
	assert.Len(t, res.Zscores, 6)
	store.AssertExpectations(t)
}

// TestCachedScanResultHit tests the hit path: the stored result is restored
// without re-running the scan.
func TestCachedScanResultHit(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := cacheTestConfig()

	// Produce a genuine result to store.
	src := configuredAnalysis(t, 6)
	stored, err := cachedScanResult(ctx, cfg, src, nil)
	require.NoError(t, err)
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	a := configuredAnalysis(t, 6)
	key := generateScanKey(cfg, a)
	store := &scanstore.MockScanStore{}
	store.On("Get", key).Return(payload, currentCacheVersion, time.Now().Unix(), nil)
	mgr := &scanstore.MockStoreManager{}
	mgr.On("GetScanStore").Return(store)

	res, err := cachedScanResult(ctx, cfg, a, mgr)
	require.NoError(t, err)
	assert.Equal(t, stored.Zscores, res.Zscores)
	assert.Equal(t, Scanned, a.State())
	// A restored scan carries no ensemble.
	assert.Nil(t, a.Ensemble())
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestCheckCacheHitRejections tests the validations that turn a stored
// entry into a miss.
func TestCheckCacheHitRejections(t *testing.T) {
	valid, err := json.Marshal(&schema.ScanResult{Title: "t", Zscores: []float64{1}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
	}{
		{name: "store error", data: []byte(nil), version: 0, ts: 0, err: errors.New("boom")},
		{name: "version mismatch", data: valid, version: currentCacheVersion + 1, ts: time.Now().Unix()},
		{name: "expired entry", data: valid, version: currentCacheVersion, ts: time.Now().Add(-31 * 24 * time.Hour).Unix()},
		{name: "corrupt payload", data: []byte("{"), version: currentCacheVersion, ts: time.Now().Unix()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &scanstore.MockScanStore{}
			store.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)
			assert.Nil(t, checkCacheHit(store, "key"))
		})
	}

	t.Run("fresh entry passes", func(t *testing.T) {
		store := &scanstore.MockScanStore{}
		store.On("Get", "key").Return(valid, currentCacheVersion, time.Now().Unix(), nil)
		res := checkCacheHit(store, "key")
		require.NotNil(t, res)
		assert.Equal(t, "t", res.Title)
	})
}

// TestCachedScanResultStaleRestore tests that a stored result which no
// longer fits the structure falls through to a fresh scan.
func TestCachedScanResultStaleRestore(t *testing.T) {
	ctx := WithSuppressProgress(context.Background())
	cfg := cacheTestConfig()
	a := configuredAnalysis(t, 6)
	key := generateScanKey(cfg, a)

	// A stored scan for a 3-residue structure cannot be restored here.
	payload, err := json.Marshal(&schema.ScanResult{Zscores: []float64{1, 2, 3}})
	require.NoError(t, err)

	store := &scanstore.MockScanStore{}
	store.On("Get", key).Return(payload, currentCacheVersion, time.Now().Unix(), nil)
	store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)
	mgr := &scanstore.MockStoreManager{}
	mgr.On("GetScanStore").Return(store)

	res, err := cachedScanResult(ctx, cfg, a, mgr)
	require.NoError(t, err)
	assert.Len(t, res.Zscores, 6)
	store.AssertExpectations(t)
}
