package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListArgs defines the input parameters for the assetgraph_list tool.
type ListArgs struct {
	Extension  string `json:"extension,omitempty" jsonschema:"Extension filter including the dot (e.g. .png). * or empty disables the filter"`
	RefType    string `json:"refType,omitempty" jsonschema:"Reference filter: none, no-outgoing, no-incoming or isolated"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of assets to list (default 200)"`
}

// ListHandler holds the dependencies for the list tool.
type ListHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_list request. The filters persist for
// later calls.
func (h *ListHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ListArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	refType, err := graph.ParseRefType(args.RefType)
	if err != nil {
		h.Logger.Warn("assetgraph_list called with bad refType", "refType", args.RefType)
		return errorResult("Error: %v", err), nil, nil
	}
	ext := NormalizeExtension(args.Extension)
	ids := h.Controller.SetFilter(ext, refType)
	paths := h.Controller.Paths(ids)

	h.Logger.Info("assetgraph_list",
		"extension", ext,
		"refType", refType,
		"results", len(ids),
		"elapsed", time.Since(start),
	)

	header := fmt.Sprintf("Filter: extension %s, references %s", ext, refType)
	return textResult(FormatAssetList(header, ids, paths, args.MaxResults)), nil, nil
}

// ExtensionsArgs defines the input parameters for the assetgraph_extensions tool (none required).
type ExtensionsArgs struct{}

// ExtensionsHandler holds the dependencies for the extensions tool.
type ExtensionsHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_extensions request.
func (h *ExtensionsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ExtensionsArgs) (*mcp.CallToolResult, any, error) {
	exts := h.Controller.Extensions()
	h.Logger.Info("assetgraph_extensions", "count", len(exts))
	return textResult("Extensions: " + strings.Join(exts, " ")), nil, nil
}

// NormalizeExtension maps "" to the wildcard and adds a missing leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return graph.Wildcard
	}
	if ext != graph.Wildcard && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
