package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Matcher_DefaultPatterns_MetaSidecar(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	metaPath := filepath.Join(tmpDir, "Assets", "hero.png.meta")
	if !matcher.ShouldIgnore(metaPath) {
		t.Error("expected .meta sidecars to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_HiddenEntries(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	hiddenPath := filepath.Join(tmpDir, "Assets", ".cache", "thing.mat")
	if !matcher.ShouldIgnore(hiddenPath) {
		t.Error("expected files under hidden folders to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_TildeFolder(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	tildePath := filepath.Join(tmpDir, "Assets", "Samples~", "demo.prefab")
	if !matcher.ShouldIgnore(tildePath) {
		t.Error("expected files under tilde-suffixed folders to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_AllowsAssets(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	assetPath := filepath.Join(tmpDir, "Assets", "Materials", "skin.mat")
	if matcher.ShouldIgnore(assetPath) {
		t.Error("expected regular assets to NOT be ignored")
	}
}

func Test_Matcher_GitignoreIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("*.bak\nAssets/Generated/\n"), 0644)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "Assets", "scene.bak")) {
		t.Error("expected .gitignore pattern to ignore *.bak")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "Assets", "scene.unity")) {
		t.Error("expected scene files to NOT be ignored by .gitignore")
	}
}

func Test_Matcher_AssetgraphignoreIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, IgnoreFileName), []byte("*.draft.prefab\n"), 0644)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "Assets", "hero.draft.prefab")) {
		t.Error("expected .assetgraphignore pattern to ignore *.draft.prefab")
	}
}

func Test_Matcher_CustomPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{
		RootDir:        tmpDir,
		CustomPatterns: []string{"Assets/ThirdParty/**", "*.custom", ""},
	})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "Assets", "data.custom")) {
		t.Error("expected custom basename pattern to ignore *.custom files")
	}
	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "Assets", "ThirdParty", "Lib", "x.mat")) {
		t.Error("expected custom doublestar pattern to ignore ThirdParty tree")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "Assets", "Own", "x.mat")) {
		t.Error("expected unrelated asset to NOT be ignored")
	}
}

func Test_Matcher_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	target := filepath.Join(tmpDir, "Assets", "old.anim")
	if matcher.ShouldIgnore(target) {
		t.Fatal("expected asset to be visible before ignore file exists")
	}

	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("*.anim\n"), 0644)
	matcher.Reload()

	if !matcher.ShouldIgnore(target) {
		t.Error("expected reloaded .gitignore to take effect")
	}
}

func Test_Matcher_ShouldIgnoreDir(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	tests := []struct {
		dirName string
		ignored bool
	}{
		{".git", true},
		{"Library", true},
		{"Temp", true},
		{"Logs", true},
		{"Assets", false},
		{"Packages", false},
	}

	for _, tt := range tests {
		dirPath := filepath.Join(tmpDir, tt.dirName)
		got := matcher.ShouldIgnoreDir(dirPath)
		if got != tt.ignored {
			t.Errorf("ShouldIgnoreDir(%s) = %v, want %v", tt.dirName, got, tt.ignored)
		}
	}
}

func Test_IsIgnoreFile(t *testing.T) {
	if !IsIgnoreFile(".gitignore") || !IsIgnoreFile(IgnoreFileName) {
		t.Error("expected rule files to be recognized")
	}
	if IsIgnoreFile("hero.prefab") {
		t.Error("expected asset to not be a rule file")
	}
}
