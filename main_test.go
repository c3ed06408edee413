package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexandro/assetgraph-mcp/config"
	"github.com/lexandro/assetgraph-mcp/graph"
)

func Test_applyFlags_OnlyChanged(t *testing.T) {
	saved := flagValues
	defer func() { flagValues = saved }()

	flagValues.contentRoot = "Content"
	flagValues.syncInterval = time.Minute
	flagValues.logLevel = "debug"
	flagValues.excludes = []string{"**/*.bak"}

	c := config.Default()
	c.LogLevel = "warn"
	changed := map[string]bool{"content-root": true, "sync-interval": true, "exclude": true}
	applyFlags(c, func(name string) bool { return changed[name] })

	if c.ContentRoot != "Content" {
		t.Errorf("ContentRoot = %q, want Content", c.ContentRoot)
	}
	if c.SyncInterval != time.Minute {
		t.Errorf("SyncInterval = %s, want 1m", c.SyncInterval)
	}
	if c.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, unset flag must not override", c.LogLevel)
	}
	if len(c.Excludes) != 1 || c.Excludes[0] != "**/*.bak" {
		t.Errorf("Excludes = %v", c.Excludes)
	}
}

func Test_intersect(t *testing.T) {
	got := intersect([]graph.ID{"c", "a", "b"}, []graph.ID{"a", "c"})
	if len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Errorf("intersect() = %v, want [c a]", got)
	}
}

func Test_openProject_BuildsAndReindexes(t *testing.T) {
	projectDir := t.TempDir()
	assetsDir := filepath.Join(projectDir, "Assets")
	os.MkdirAll(assetsDir, 0755)
	os.WriteFile(filepath.Join(assetsDir, "hero.png"), []byte{0x89, 'P', 'N', 'G', 0}, 0644)
	os.WriteFile(filepath.Join(assetsDir, "hero.png.meta"), []byte("fileFormatVersion: 2\nguid: 0123456789abcdef0123456789abcdef\n"), 0644)
	os.WriteFile(filepath.Join(assetsDir, "hero.mat"), []byte("%YAML 1.1\nMaterial:\n  m_Texture: {fileID: 2800000, guid: 0123456789abcdef0123456789abcdef, type: 3}\n"), 0644)
	os.WriteFile(filepath.Join(assetsDir, "hero.mat.meta"), []byte("fileFormatVersion: 2\nguid: fedcba9876543210fedcba9876543210\n"), 0644)

	c := config.Default()
	c.ProjectDir = projectDir
	if err := c.Resolve(); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	p, err := openProject(c, testLogger())
	if err != nil {
		t.Fatalf("openProject() error: %v", err)
	}
	defer p.Close()

	stats := p.controller.Status().Stats
	if stats.Sources != 2 || stats.Edges != 1 {
		t.Errorf("expected 2 assets and 1 edge, got %+v", stats)
	}

	os.WriteFile(filepath.Join(assetsDir, "notes.txt"), []byte("todo\n"), 0644)
	stats, elapsed, err := p.reindex()
	if err != nil {
		t.Fatalf("reindex() error: %v", err)
	}
	if stats.Sources != 3 {
		t.Errorf("expected 3 assets after reindex, got %d", stats.Sources)
	}
	if elapsed == "" {
		t.Error("expected elapsed time")
	}
}
