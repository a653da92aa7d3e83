// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/essalab/essa/internal/contract"
)

// NewMCPServer initializes and configures the ESSA MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"ESSA Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: scan_residues ---
	s.AddTool(mcp.NewTool("scan_residues",
		mcp.WithDescription("Run an essential site scanning analysis on a PDB structure and return per-residue essentiality z-scores."),
		mcp.WithString("structure_path", mcp.Description("Path to the PDB structure file."), mcp.Required()),
		mcp.WithString("enm", mcp.Description("Elastic network model kind (gnm or anm). Defaults to 'gnm'."), mcp.Enum("gnm", "anm")),
		mcp.WithNumber("n_modes", mcp.Description("Number of low-frequency modes to use. Defaults to 10.")),
		mcp.WithNumber("cutoff", mcp.Description("Interaction cutoff in Angstroms. 0 selects the per-model default.")),
		mcp.WithString("ligand", mcp.Description("Ligand spec as chain/resnum pairs, e.g. 'A 300'.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleScanResidues)

	// --- 2. Tool: rank_pockets ---
	s.AddTool(mcp.NewTool("rank_pockets",
		mcp.WithDescription("Run the full ESSA pipeline and rank detected binding pockets by essentiality, filtered by local hydrophobic density."),
		mcp.WithString("structure_path", mcp.Description("Path to the PDB structure file."), mcp.Required()),
		mcp.WithString("enm", mcp.Description("Elastic network model kind (gnm or anm)."), mcp.Enum("gnm", "anm")),
		mcp.WithString("pocket_dir", mcp.Description("Pre-existing fpocket output directory; skips running the detector.")),
		mcp.WithString("fpocket", mcp.Description("Path to the fpocket executable.")),
	), h.handleRankPockets)

	return s
}

// StartMCPServer starts the ESSA MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
