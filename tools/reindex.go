package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the assetgraph_reindex tool.
type ReindexArgs struct{}

// ReindexFunc is the function signature for the reindex operation.
// It is provided by main.go, which also reloads the ignore rules.
type ReindexFunc func() (stats graph.Stats, elapsed string, err error)

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	DoReindex ReindexFunc
	Logger    *slog.Logger
}

// Handle processes an assetgraph_reindex request.
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("assetgraph_reindex started")

	stats, elapsed, err := h.DoReindex()
	if err != nil {
		h.Logger.Error("assetgraph_reindex failed", "error", err)
		return errorResult("Reindex error: %v", err), nil, nil
	}

	h.Logger.Info("assetgraph_reindex complete",
		"assets", stats.Sources,
		"edges", stats.Edges,
		"elapsed", elapsed,
	)

	output := fmt.Sprintf("Reindex complete: %d assets, %d references in %s",
		stats.Sources, stats.Edges, elapsed)
	return textResult(output), nil, nil
}
