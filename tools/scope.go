package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ScopeArgs defines the input parameters for the assetgraph_scope tool.
type ScopeArgs struct {
	Root string `json:"root" jsonschema:"Folder to index, inside the content root (e.g. Assets/Characters)"`
}

// ScopeHandler holds the dependencies for the scope tool.
type ScopeHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_scope request. The graph is rebuilt for the
// new root and the filters are reset.
func (h *ScopeHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScopeArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Root == "" {
		h.Logger.Warn("assetgraph_scope called with empty root")
		return errorResult("Error: root parameter is required"), nil, nil
	}

	ids, err := h.Controller.SetScopeRoot(args.Root)
	if err != nil {
		h.Logger.Warn("assetgraph_scope failed", "root", args.Root, "error", err)
		return errorResult("Scope error: %v (previous scope kept)", err), nil, nil
	}

	h.Logger.Info("assetgraph_scope",
		"root", args.Root,
		"assets", len(ids),
		"elapsed", time.Since(start),
	)

	return textResult(FormatAssetList("Scope: "+args.Root, ids, h.Controller.Paths(ids), 0)), nil, nil
}

// IgnoreArgs defines the input parameters for the assetgraph_ignore tool.
type IgnoreArgs struct {
	Folders string `json:"folders" jsonschema:"Comma-separated folder substrings to hide (e.g. Plugins,ThirdParty). Empty clears the list"`
}

// IgnoreHandler holds the dependencies for the ignore tool.
type IgnoreHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_ignore request. The list is saved and
// applied to listings immediately; graph membership follows at the next
// rebuild.
func (h *IgnoreHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args IgnoreArgs) (*mcp.CallToolResult, any, error) {
	ids, err := h.Controller.SetIgnoreList(args.Folders)
	if err != nil {
		h.Logger.Error("assetgraph_ignore failed", "error", err)
		return errorResult("Ignore list error: %v", err), nil, nil
	}

	folders := h.Controller.IgnoreList()
	h.Logger.Info("assetgraph_ignore", "folders", folders.String(), "visible", len(ids))

	header := "Ignored folders: " + folders.String()
	if len(folders) == 0 {
		header = "Ignored folders: (none)"
	}
	return textResult(FormatAssetList(header, ids, h.Controller.Paths(ids), 0)), nil, nil
}
