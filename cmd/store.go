package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/outwriter"
	"github.com/essalab/essa/internal/scanstore"
	"github.com/essalab/essa/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if err := scanstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize scan store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeCmd focused on scan store management.
//
// Note: Store subcommands use minimal initialization instead of the full
// sharedSetup used by analysis commands. This avoids structure validation
// for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage persisted scan results (improves performance)",
	Long: `Manage the scan store that persists completed residue scans.

essa stores finished scans keyed by structure coordinates and model
parameters, so repeating an analysis with identical inputs returns
instantly instead of re-running the perturbation loop.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show store statistics and connection info
  clear  - Remove all persisted scans
  export - Export persisted scans to a Parquet file

Examples:
  # Check store status
  essa store status

  # Clear the store after changing scan defaults
  essa store clear`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the scan store.

Displays:
- Backend type and connection status
- Total number of persisted scans
- Oldest and newest entry timestamps

Examples:
  # Check store status
  essa store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := scanstore.Manager.GetScanStore()
		if store == nil {
			fmt.Println("Scan store is disabled.")
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.NewOutWriter().WriteStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write store status", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted scan results",
	Long: `Delete all persisted scans from the configured backend.

Use this when:
- Scoring defaults changed and stored results are misleading
- The store may be stale or corrupted
- Benchmarking scans without reuse

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the scan table

Examples:
  # Clear SQLite store (default)
  essa store clear

  # Clear MySQL store (set connection string via env variable)
  ESSA_STORE_BACKEND=mysql ESSA_STORE_DB_CONNECT="..." essa store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := scanstore.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeExportCmd exports the store to Parquet.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted scans to a Parquet file",
	Long: `Export every persisted scan to a Parquet file for BI tooling.

The output can be loaded with Apache Spark, Pandas (via pyarrow), DuckDB,
or any other Parquet-compatible tool.

Examples:
  # Export all stored scans
  essa store export --output-file scans.parquet`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := scanstore.ExecuteStoreExport(viper.GetString("output-file")); err != nil {
			contract.LogFatal("Failed to export store", err)
		}
	},
}
