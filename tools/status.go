package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the assetgraph_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Controller *index.Controller
	StartTime  time.Time
	ProjectDir string
	Logger     *slog.Logger
}

// Handle processes an assetgraph_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	status := h.Controller.Status()
	uptime := time.Since(h.StartTime)

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("assetgraph_status",
		"state", status.State,
		"assets", status.Stats.Sources,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	ignored := status.IgnoreList
	if ignored == "" {
		ignored = "(none)"
	}
	selected := string(status.Selected)
	if selected == "" {
		selected = "(none)"
	}

	builder.WriteString("=== assetgraph-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Project directory: %s\n", h.ProjectDir))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("State: %s\n", status.State))
	builder.WriteString(fmt.Sprintf("Content root: %s\n", status.ContentRoot))
	builder.WriteString(fmt.Sprintf("Scope root: %s\n", status.ScopeRoot))
	builder.WriteString(fmt.Sprintf("Ignored folders: %s\n", ignored))
	builder.WriteString(fmt.Sprintf("Filter: extension %s, references %s (%d visible)\n", status.Extension, status.RefType, status.Visible))
	builder.WriteString(fmt.Sprintf("Selected: %s\n", selected))
	if !status.BuiltAt.IsZero() {
		builder.WriteString(fmt.Sprintf("Last build: %s ago, took %s\n",
			formatDuration(time.Since(status.BuiltAt)),
			status.BuildDuration.Round(time.Millisecond),
		))
	}

	builder.WriteString("\nGraph:\n")
	builder.WriteString(fmt.Sprintf("  Indexed assets:      %d\n", status.Stats.Sources))
	builder.WriteString(fmt.Sprintf("  Referenced assets:   %d\n", status.Stats.Targets))
	builder.WriteString(fmt.Sprintf("  References:          %d\n", status.Stats.Edges))
	builder.WriteString(fmt.Sprintf("  No outgoing:         %d\n", status.Stats.NoOutgoing))
	builder.WriteString(fmt.Sprintf("  No incoming:         %d\n", status.Stats.NoIncoming))
	builder.WriteString(fmt.Sprintf("  Isolated:            %d\n", status.Stats.Isolated))
	builder.WriteString(fmt.Sprintf("  Name index documents: %d\n", status.NameDocuments))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatSize(int64(memStats.Alloc)),
		formatSize(int64(memStats.HeapAlloc)),
	))

	if len(status.Kinds) > 0 {
		builder.WriteString("\nKinds:\n")
		builder.WriteString(formatKindCounts(status.Kinds))
	}

	return textResult(builder.String()), nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}

// formatSize converts bytes to a human-readable string.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
