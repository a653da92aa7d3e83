// Package cmd defines the command-line interface for essa.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(pocketsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("enm", string(schema.GNM), "Elastic network model: gnm or anm")
	rootCmd.PersistentFlags().IntP("n-modes", "n", schema.DefaultNModes, "Number of low-frequency modes")
	rootCmd.PersistentFlags().Float64("cutoff", 0, "Interaction cutoff in Angstroms (0 = per-model default)")
	rootCmd.PersistentFlags().Float64("gamma", schema.DefaultGamma, "Uniform spring constant")
	rootCmd.PersistentFlags().String("lig", "", "Ligand spec as chain/resnum pairs, e.g. 'A 300 B 301'")
	rootCmd.PersistentFlags().Float64("dist", schema.DefaultLigandDist, "Ligand contact distance in Angstroms")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent scan workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("out-dir", "", "Directory for saved artifacts (default <title>_essa)")
	rootCmd.PersistentFlags().Bool("save", false, "Write scan artifacts into the output directory")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Skip the scan store and recompute from scratch")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Scan store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of pocketsCmd to Viper
	pocketsCmd.Flags().String("fpocket", "", "Path to the fpocket executable")
	pocketsCmd.Flags().String("pocket-dir", "", "Pre-existing fpocket output directory (skips running the detector)")
	if err := viper.BindPFlags(pocketsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding pockets flags", err)
	}
}
