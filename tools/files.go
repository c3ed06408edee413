package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the assetgraph_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern" jsonschema:"Glob pattern over indexed asset paths (e.g. Assets/**/*.prefab)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of assets to list (default 200)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		h.Logger.Warn("assetgraph_files called with empty pattern")
		return errorResult("Error: pattern parameter is required"), nil, nil
	}

	ids, err := h.Controller.Glob(args.Pattern)
	if err != nil {
		h.Logger.Error("assetgraph_files failed", "pattern", args.Pattern, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("assetgraph_files",
		"pattern", args.Pattern,
		"results", len(ids),
		"elapsed", time.Since(start),
	)

	header := fmt.Sprintf("Pattern: %s", args.Pattern)
	return textResult(FormatAssetList(header, ids, h.Controller.Paths(ids), args.MaxResults)), nil, nil
}
