package server

import (
	"github.com/lexandro/assetgraph-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.3.0"

// Handlers groups the tool handlers registered by Setup.
type Handlers struct {
	List       *tools.ListHandler
	Search     *tools.SearchHandler
	Find       *tools.FindHandler
	Files      *tools.FilesHandler
	Refs       *tools.RefsHandler
	Scope      *tools.ScopeHandler
	Ignore     *tools.IgnoreHandler
	Extensions *tools.ExtensionsHandler
	Reclaim    *tools.ReclaimHandler
	Status     *tools.StatusHandler
	Reindex    *tools.ReindexHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(h Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "assetgraph-mcp",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server keeps an in-memory dependency graph of the project's assets (files under the content root, identified by the guid in their .meta sidecar).

Use it to answer "what uses this asset?" and "what does this asset use?" without opening files:
- assetgraph_refs shows both directions for one asset
- assetgraph_list filters the graph by extension and by reference type (e.g. isolated assets)
- assetgraph_search and assetgraph_find locate assets by name
- assetgraph_reclaim deletes assets nothing references and that reference nothing (dry run unless confirm is true)
- The graph rebuilds automatically when assets change (via filesystem watcher)`,
		},
	)

	// Register assetgraph_list tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "assetgraph_list",
		Description: `List indexed assets, filtered by extension and reference type. The filters stay active for later list calls.

Reference types:
  - none: every asset
  - no-outgoing: assets that reference nothing
  - no-incoming: assets nothing references
  - isolated: both of the above`,
	}, h.List.Handle)

	// Register assetgraph_search tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_search",
		Description: `Search asset names (file name without extension). An exact name returns that single asset; otherwise every name containing the term is listed. Case-sensitive. Suggests close names when nothing matches.`,
	}, h.Search.Handle)

	// Register assetgraph_find tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "assetgraph_find",
		Description: `Full-text search over asset names with ranking. Words inside camelCase and snake_case names are matched separately.

Query formats:
  - Plain text: word-level matching (e.g., "hero")
  - "quoted text": phrase matching over name words (e.g., "\"hero idle\"")
  - /regex/: regular expression over the lowercased name (e.g., "/^ui_.*/")
  - ~term: fuzzy matching (e.g., "~heor")

Filtering:
  - kind: Texture, Material, Prefab, Scene, Model, Audio, ...
  - pathGlob: glob over asset paths (e.g., "Assets/Characters/**").`,
	}, h.Find.Handle)

	// Register assetgraph_files tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "assetgraph_files",
		Description: `Find indexed assets by glob pattern.

Pattern examples:
  - "Assets/**/*.prefab" - every prefab
  - "Assets/Textures/*.png" - PNG files directly in Assets/Textures`,
	}, h.Files.Handle)

	// Register assetgraph_refs tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_refs",
		Description: "Show one asset's kind, the assets it references and the assets that reference it. Accepts a path or an asset ID. Set ignoreFolders to hide references in ignored folders.",
	}, h.Refs.Handle)

	// Register assetgraph_scope tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_scope",
		Description: "Rebuild the graph for a folder inside the content root. Resets the list filters. On an invalid folder the previous graph is kept.",
	}, h.Scope.Handle)

	// Register assetgraph_ignore tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_ignore",
		Description: "Set the comma-separated list of folder substrings to hide. Listings honour it at once; the graph excludes those folders from the next rebuild on. The list is saved with the project.",
	}, h.Ignore.Handle)

	// Register assetgraph_extensions tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_extensions",
		Description: "List the file extensions seen at the last build, for use as assetgraph_list filters.",
	}, h.Extensions.Handle)

	// Register assetgraph_reclaim tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_reclaim",
		Description: "Delete every asset that references nothing and that nothing references, then rebuild. Without confirm: true only the candidates are listed. Deletion cannot be undone.",
	}, h.Reclaim.Handle)

	// Register assetgraph_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_status",
		Description: "Show graph status: state, scope, filters, asset and reference counts, kinds, memory usage, and uptime.",
	}, h.Status.Handle)

	// Register assetgraph_reindex tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "assetgraph_reindex",
		Description: "Force a full rebuild of the graph. Rescans the asset catalog and reloads ignore rules.",
	}, h.Reindex.Handle)

	return mcpServer
}
