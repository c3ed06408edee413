package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RefsArgs defines the input parameters for the assetgraph_refs tool.
type RefsArgs struct {
	Asset         string `json:"asset" jsonschema:"Asset path (e.g. Assets/Materials/hero.mat) or asset ID"`
	IgnoreFolders bool   `json:"ignoreFolders,omitempty" jsonschema:"If true hide references that live in ignored folders or outside the content root"`
}

// RefsHandler holds the dependencies for the refs tool.
type RefsHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_refs request. The asset becomes the
// current selection.
func (h *RefsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RefsArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Asset == "" {
		h.Logger.Warn("assetgraph_refs called with empty asset")
		return errorResult("Error: asset parameter is required"), nil, nil
	}

	id, ok := ResolveAsset(h.Controller, args.Asset)
	if !ok {
		h.Logger.Info("assetgraph_refs asset not found", "asset", args.Asset)
		return errorResult("Asset not found in graph: %s", args.Asset), nil, nil
	}
	sel, ok := h.Controller.Select(id, args.IgnoreFolders)
	if !ok {
		return errorResult("Asset not found in graph: %s", args.Asset), nil, nil
	}
	desc, err := h.Controller.Describe(id)
	if err != nil {
		return errorResult("Error: %v", err), nil, nil
	}

	h.Logger.Info("assetgraph_refs",
		"asset", sel.Path,
		"outgoing", len(sel.Outgoing),
		"incoming", len(sel.Incoming),
		"elapsed", time.Since(start),
	)

	output := FormatSelection(desc, sel, h.Controller.Paths(sel.Outgoing), h.Controller.Paths(sel.Incoming))
	return textResult(output), nil, nil
}
