package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReclaimArgs defines the input parameters for the assetgraph_reclaim tool.
type ReclaimArgs struct {
	Confirm bool `json:"confirm,omitempty" jsonschema:"Must be true to delete. Without it the tool only lists what would be deleted"`
}

// ReclaimHandler holds the dependencies for the reclaim tool.
type ReclaimHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_reclaim request.
func (h *ReclaimHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReclaimArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if !args.Confirm {
		ids := h.Controller.ReclaimCandidates()
		h.Logger.Info("assetgraph_reclaim preview", "candidates", len(ids))
		header := ReclaimScopeWarning(h.Controller.Status()) +
			"Dry run: these assets reference nothing and nothing references them.\nCall again with confirm: true to delete them."
		return textResult(FormatAssetList(header, ids, h.Controller.Paths(ids), 0)), nil, nil
	}

	var summary string
	_, err := h.Controller.ReclaimUnreferenced(func(report graph.ReclaimReport) {
		summary = FormatReclaimReport(report)
	})
	if err != nil {
		h.Logger.Error("assetgraph_reclaim rebuild failed", "error", err)
		return errorResult("%sRebuild after reclaim failed: %v", summary, err), nil, nil
	}

	h.Logger.Info("assetgraph_reclaim", "elapsed", time.Since(start))
	return textResult(summary), nil, nil
}
