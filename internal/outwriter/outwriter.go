// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for
// the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteScan prints residue scan results using the configured output format.
func (ow *OutWriter) WriteScan(res *schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	return WriteScanResults(res, cfg, duration)
}

// WritePockets prints pocket ranking results using the configured output format.
func (ow *OutWriter) WritePockets(z *schema.PocketZScoreTable, ranks *schema.PocketRankTable, cfg *contract.Config, duration time.Duration) error {
	return WritePocketResults(z, ranks, cfg, duration)
}

// WriteStatus prints the scan store status.
func (ow *OutWriter) WriteStatus(status schema.StoreStatus, cfg *contract.Config) error {
	return WriteStoreStatus(status, cfg)
}
