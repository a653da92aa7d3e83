package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/essalab/essa/core"
	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/fpocket"
	"github.com/essalab/essa/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// applyStructure validates the structure path of a tool request onto a
// cloned config.
func applyStructure(cfg *contract.Config, request mcp.CallToolRequest) error {
	path := request.GetString("structure_path", "")
	if path == "" {
		return fmt.Errorf("structure_path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("structure file %q not readable: %w", path, err)
	}
	cfg.StructurePath = path
	cfg.Title = ""
	return nil
}

func (h *toolHandler) handleScanResidues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyStructure(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scan parameters: %v", err)), nil
	}
	if m := request.GetString("enm", ""); m != "" {
		cfg.ENM = schema.ENMKind(m)
	}
	if n := request.GetInt("n_modes", 0); n > 0 {
		cfg.NModes = n
	}
	if c := request.GetFloat("cutoff", 0); c > 0 {
		cfg.Cutoff = c
	}
	if lig := request.GetString("ligand", ""); lig != "" {
		cfg.Ligand = lig
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	res, err := core.GetScanResult(core.WithSuppressProgress(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRankPockets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyStructure(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid pocket parameters: %v", err)), nil
	}
	if m := request.GetString("enm", ""); m != "" {
		cfg.ENM = schema.ENMKind(m)
	}
	if d := request.GetString("pocket_dir", ""); d != "" {
		cfg.PocketDir = d
	}
	if p := request.GetString("fpocket", ""); p != "" {
		cfg.FpocketPath = p
	}

	var detector contract.PocketDetector
	if cfg.PocketDir != "" {
		detector = fpocket.NewDirDetector(cfg.PocketDir)
	} else {
		detector = fpocket.NewLocalDetector(cfg.FpocketPath)
	}

	z, ranks, err := core.GetPocketResults(core.WithSuppressProgress(ctx), cfg, detector)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pocket ranking failed: %v", err)), nil
	}

	output := struct {
		Pockets *schema.PocketZScoreTable `json:"pockets"`
		Ranks   *schema.PocketRankTable   `json:"ranks"`
	}{z, ranks}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
