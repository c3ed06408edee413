package tools

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/index"
)

func Test_FormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"Seconds_zero", 0, "0s"},
		{"Seconds_59", 59 * time.Second, "59s"},
		{"Minutes_5m30s", 5*time.Minute + 30*time.Second, "5m30s"},
		{"Hours_1h30m", 90 * time.Minute, "1h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.expected {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.expected)
			}
		})
	}
}

func Test_FormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.expected {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}

func Test_FormatAssetList_Empty(t *testing.T) {
	got := FormatAssetList("Header", nil, nil, 0)
	if got != "Header\nNo assets." {
		t.Errorf("unexpected output: %q", got)
	}
}

func Test_FormatReclaimReport(t *testing.T) {
	ok := FormatReclaimReport(graph.ReclaimReport{Deleted: []graph.ID{"a"}, Paths: []string{"Assets/a.png"}})
	if !strings.Contains(ok, "Reclaim succeeded: deleted 1 assets.") || !strings.Contains(ok, "deleted Assets/a.png") {
		t.Errorf("unexpected success report:\n%s", ok)
	}

	failed := FormatReclaimReport(graph.ReclaimReport{
		Failures: []graph.DeletionFailure{{ID: "b", Path: "Assets/b.png", Err: errors.New("locked")}},
	})
	if !strings.Contains(failed, "0 assets, 1 failed") || !strings.Contains(failed, "FAILED  Assets/b.png: locked") {
		t.Errorf("unexpected failure report:\n%s", failed)
	}
}

func Test_FormatSuggestions_Dedupes(t *testing.T) {
	got := FormatSuggestions([]index.Suggestion{{Name: "hero"}, {Name: "hero"}, {Name: "heron"}})
	if got != "Did you mean: hero, heron?" {
		t.Errorf("unexpected output: %q", got)
	}
	if FormatSuggestions(nil) != "" {
		t.Error("expected empty output for no suggestions")
	}
}

func Test_FormatKindCounts_Order(t *testing.T) {
	got := formatKindCounts(map[string]int{"Texture": 3, "Material": 3, "Prefab": 5})
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, want := range []string{"Prefab", "Material", "Texture"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d: expected %s, got %q", i, want, lines[i])
		}
	}
}

func Test_ReclaimScopeWarning(t *testing.T) {
	if got := ReclaimScopeWarning(index.Status{ContentRoot: "Assets", ScopeRoot: "Assets"}); got != "" {
		t.Errorf("expected no warning, got %q", got)
	}
	got := ReclaimScopeWarning(index.Status{ContentRoot: "Assets", ScopeRoot: "Assets/UI"})
	if !strings.HasPrefix(got, "Warning: the graph covers only Assets/UI.") {
		t.Errorf("unexpected warning %q", got)
	}
}
