package cmd

import (
	"github.com/spf13/cobra"

	"github.com/essalab/essa/core"
	"github.com/essalab/essa/internal/contract"
)

// scanCmd performs the per-residue essentiality scan.
var scanCmd = &cobra.Command{
	Use:   "scan <structure.pdb>",
	Short: "Rank residues by essentiality z-score.",
	Long: `Perturb every residue of an elastic network model and rank residues by
how strongly their contacts stiffen the low-frequency modes.

For each residue, a model over all alpha carbons plus that residue's heavy
atoms is reduced back onto the alpha carbons and its mode spectrum compared
against the unperturbed reference. The mean eigenvalue shift per residue is
standardized into a z-score; high scores mark essential sites.

Examples:
  # Scan with the default GNM
  essa scan 1abc.pdb

  # Anisotropic model with more modes
  essa scan 1abc.pdb --enm anm --n-modes 20

  # Highlight residues near a bound ligand
  essa scan 1abc.pdb --lig "A 300" --dist 4.5

  # Export the full profile for tracking
  essa scan 1abc.pdb --output csv --output-file scores.csv

  # Keep binary, JSON and PDB artifacts
  essa scan 1abc.pdb --save --out-dir 1abc_essa`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScan(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run residue scan", err)
		}
	},
}
