package cmd

import (
	"github.com/spf13/cobra"

	"github.com/essalab/essa/core"
	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/fpocket"
)

// pocketsCmd performs the full pipeline including pocket ranking.
var pocketsCmd = &cobra.Command{
	Use:   "pockets <structure.pdb>",
	Short: "Rank detected binding pockets by essentiality.",
	Long: `Run the residue scan, detect surface pockets with fpocket, and rank the
pockets by the essentiality of the residues lining them.

Pockets below the adaptive local-hydrophobic-density threshold are dropped;
the rest are ranked twice, by the maximum and by the median residue z-score.
If fpocket is not installed and no --pocket-dir is given, the command
degrades to scan-only output with a warning.

Examples:
  # Detect and rank pockets (requires fpocket on PATH)
  essa pockets 1abc.pdb

  # Reuse an existing fpocket run
  essa pockets 1abc.pdb --pocket-dir 1abc_out

  # Point at a specific fpocket build
  essa pockets 1abc.pdb --fpocket /opt/fpocket/bin/fpocket`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		var detector contract.PocketDetector
		if cfg.PocketDir != "" {
			detector = fpocket.NewDirDetector(cfg.PocketDir)
		} else {
			detector = fpocket.NewLocalDetector(cfg.FpocketPath)
		}
		if err := core.ExecutePockets(rootCtx, cfg, detector); err != nil {
			contract.LogFatal("Cannot run pocket analysis", err)
		}
	},
}
