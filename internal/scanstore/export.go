package scanstore

import (
	"errors"
	"fmt"

	"github.com/essalab/essa/internal/parquet"
)

// ExecuteStoreExport exports every persisted scan to a Parquet file.
func ExecuteStoreExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetScanStore()
	if store == nil {
		return errors.New("scan store is disabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.EntryCount == 0 {
		return errors.New("no stored scans found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total stored scans: %d\n", status.EntryCount)

	scans, err := store.All()
	if err != nil {
		return fmt.Errorf("failed to retrieve stored scans: %w", err)
	}

	rows := parquet.ConvertStoredScans(scans)
	if err := parquet.WriteStoredScansParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write stored scans: %w", err)
	}
	fmt.Printf("Exported %d scans to: %s\n", len(rows), outputFile)
	return nil
}
