// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/essalab/essa/schema"
)

// PocketDetector defines the operations the pocket-rank pipeline needs from
// an external surface-pocket detector. This allows the core logic to be
// tested without a real fpocket executable.
type PocketDetector interface {
	// Available reports whether the detector can run on this machine.
	Available() bool

	// Detect runs pocket detection for the heavy-atom structure written at
	// pdbPath, placing detector output under workDir, and returns the parsed
	// pockets ordered by their stable pocket number.
	Detect(ctx context.Context, pdbPath, workDir string) ([]schema.Pocket, error)
}

// ScanStore defines the interface for scan result storage.
// This allows mocking the store for testing.
type ScanStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	All() ([]schema.StoredScan, error)
	Clear() error
	GetStatus() (schema.StoreStatus, error)
	Close() error
}

// StoreManager defines the interface for managing the scan store.
type StoreManager interface {
	GetScanStore() ScanStore
}
