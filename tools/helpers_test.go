package tools

import (
	"io"
	"log/slog"
	"testing"

	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/lexandro/assetgraph-mcp/prefs"
	"github.com/lexandro/assetgraph-mcp/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestProject builds a controller over:
//
//	Assets/Textures/hero.png
//	Assets/Materials/hero.mat       -> hero.png
//	Assets/Prefabs/hero.prefab      -> hero.mat
//	Assets/Textures/unused.png
//	Assets/Plugins/vendor.png
func newTestProject(t *testing.T) (*store.Memory, *index.Controller) {
	t.Helper()
	s := store.NewMemory()
	s.AddFolder("Assets")
	s.AddAsset("Assets/Textures/hero.png", "tex")
	s.AddAsset("Assets/Materials/hero.mat", "mat", "Assets/Textures/hero.png")
	s.AddAsset("Assets/Prefabs/hero.prefab", "pfb", "Assets/Materials/hero.mat")
	s.AddAsset("Assets/Textures/unused.png", "unused")
	s.AddAsset("Assets/Plugins/vendor.png", "vendor")

	c, err := index.New(s, prefs.NewMemory(""), index.Options{ContentRoot: "Assets"}, testLogger())
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return s, c
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}
