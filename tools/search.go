package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgs defines the input parameters for the assetgraph_search tool.
type SearchArgs struct {
	Term       string `json:"term" jsonschema:"Case-sensitive asset name without extension. An exact match returns that asset alone, otherwise every name containing the term"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of assets to list (default 200)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	ids := h.Controller.Search(args.Term)
	paths := h.Controller.Paths(ids)

	h.Logger.Info("assetgraph_search",
		"term", args.Term,
		"results", len(ids),
		"elapsed", time.Since(start),
	)

	output := FormatAssetList(fmt.Sprintf("Name search: %q", args.Term), ids, paths, args.MaxResults)
	if len(ids) == 0 {
		if hint := FormatSuggestions(h.Controller.Suggest(args.Term, 5)); hint != "" {
			output += "\n" + hint
		}
	}
	return textResult(output), nil, nil
}

// FindArgs defines the input parameters for the assetgraph_find tool.
type FindArgs struct {
	Query      string `json:"query" jsonschema:"Search query. Plain words, quoted phrase, /regex/ or ~fuzzy"`
	Kind       string `json:"kind,omitempty" jsonschema:"Optional asset kind (e.g. Texture, Material, Prefab, Scene)"`
	PathGlob   string `json:"pathGlob,omitempty" jsonschema:"Optional glob over asset paths (e.g. Assets/Characters/**)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FindHandler holds the dependencies for the find tool.
type FindHandler struct {
	Controller *index.Controller
	Logger     *slog.Logger
}

// Handle processes an assetgraph_find request.
func (h *FindHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FindArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" && args.Kind == "" && args.PathGlob == "" {
		h.Logger.Warn("assetgraph_find called without criteria")
		return errorResult("Error: query, kind or pathGlob is required"), nil, nil
	}

	hits, total, err := h.Controller.Find(index.FindOptions{
		Query:      args.Query,
		Kind:       args.Kind,
		PathGlob:   args.PathGlob,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		h.Logger.Error("assetgraph_find failed", "query", args.Query, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("assetgraph_find",
		"query", args.Query,
		"kind", args.Kind,
		"pathGlob", args.PathGlob,
		"results", len(hits),
		"total", total,
		"elapsed", time.Since(start),
	)

	return textResult(FormatFindResults(hits, total)), nil, nil
}
