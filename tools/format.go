package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultMaxResults caps list output unless the caller asks for more.
const defaultMaxResults = 200

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// ResolveAsset accepts an asset path or an asset ID.
func ResolveAsset(controller *index.Controller, asset string) (graph.ID, bool) {
	asset = strings.TrimSpace(strings.ReplaceAll(asset, "\\", "/"))
	if asset == "" {
		return "", false
	}
	if id, ok := controller.Lookup(asset); ok {
		return id, true
	}
	id := graph.ID(asset)
	if _, ok := controller.Path(id); ok {
		return id, true
	}
	return "", false
}

// FormatAssetList formats asset paths with their IDs, one per line. Only the
// first maxResults entries are shown.
func FormatAssetList(header string, ids []graph.ID, paths []string, maxResults int) string {
	if len(ids) == 0 {
		return header + "\nNo assets."
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s\nFound %d assets:\n\n", header, len(ids)))
	for i, id := range ids {
		if i >= maxResults {
			builder.WriteString(fmt.Sprintf("  ... %d more (raise maxResults to see them)\n", len(ids)-maxResults))
			break
		}
		builder.WriteString(fmt.Sprintf("  %s  [%s]\n", paths[i], id))
	}
	return builder.String()
}

// FormatSelection formats one asset with its outgoing and incoming references.
func FormatSelection(desc index.Description, sel index.Selection, outPaths, inPaths []string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s ──\n", desc.Path))
	builder.WriteString(fmt.Sprintf("ID: %s\n", desc.ID))
	builder.WriteString(fmt.Sprintf("Kind: %s\n", desc.Kind))
	if !desc.Indexed {
		builder.WriteString("Not indexed as a source in the current scope.\n")
	}

	builder.WriteString(fmt.Sprintf("\nReferences (%d):\n", len(sel.Outgoing)))
	writeRefs(&builder, sel.Outgoing, outPaths)
	builder.WriteString(fmt.Sprintf("\nReferenced by (%d):\n", len(sel.Incoming)))
	writeRefs(&builder, sel.Incoming, inPaths)
	return builder.String()
}

func writeRefs(builder *strings.Builder, ids []graph.ID, paths []string) {
	if len(ids) == 0 {
		builder.WriteString("  (none)\n")
		return
	}
	for i, id := range ids {
		builder.WriteString(fmt.Sprintf("  %s  [%s]\n", paths[i], id))
	}
}

// FormatFindResults formats name search hits.
func FormatFindResults(hits []index.NameHit, total int) string {
	if len(hits) == 0 {
		return "No assets matched."
	}
	var builder strings.Builder
	if total > len(hits) {
		builder.WriteString(fmt.Sprintf("Found %d assets (showing %d):\n\n", total, len(hits)))
	} else {
		builder.WriteString(fmt.Sprintf("Found %d assets:\n\n", total))
	}
	for _, hit := range hits {
		builder.WriteString(fmt.Sprintf("  %s  (%s, score %.2f)  [%s]\n", hit.Path, hit.Kind, hit.Score, hit.ID))
	}
	return builder.String()
}

// FormatSuggestions formats "did you mean" names.
func FormatSuggestions(suggestions []index.Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}
	names := make([]string, 0, len(suggestions))
	seen := make(map[string]bool)
	for _, s := range suggestions {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	return "Did you mean: " + strings.Join(names, ", ") + "?"
}

// FormatReclaimReport formats the outcome of a reclaim pass.
func FormatReclaimReport(report graph.ReclaimReport) string {
	var builder strings.Builder
	if len(report.Failures) == 0 {
		builder.WriteString(fmt.Sprintf("Reclaim succeeded: deleted %d assets.\n", len(report.Deleted)))
	} else {
		builder.WriteString(fmt.Sprintf("Reclaim finished with errors: deleted %d assets, %d failed.\n",
			len(report.Deleted), len(report.Failures)))
	}
	for _, p := range report.Paths {
		builder.WriteString(fmt.Sprintf("  deleted %s\n", p))
	}
	for _, failure := range report.Failures {
		builder.WriteString(fmt.Sprintf("  FAILED  %s: %v\n", failure.Path, failure.Err))
	}
	return builder.String()
}

// ReclaimScopeWarning returns a warning when the graph covers only part of
// the content root, or "" when it covers all of it. References from assets
// outside the scope are not in the graph, so such assets can look unused.
func ReclaimScopeWarning(status index.Status) string {
	if status.ScopeRoot == status.ContentRoot {
		return ""
	}
	return fmt.Sprintf("Warning: the graph covers only %s. References from assets outside it are not seen, so assets used only from there are listed too.\n",
		status.ScopeRoot)
}

// formatKindCounts lists kinds by count, descending, then by name.
func formatKindCounts(counts map[string]int) string {
	type kindEntry struct {
		kind  string
		count int
	}
	entries := make([]kindEntry, 0, len(counts))
	for k, n := range counts {
		entries = append(entries, kindEntry{k, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].kind < entries[j].kind
	})

	var builder strings.Builder
	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("  %-20s %d assets\n", entry.kind, entry.count))
	}
	return builder.String()
}
