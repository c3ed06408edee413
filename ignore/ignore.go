package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// IgnoreFileName is the project-local ignore file read next to .gitignore.
const IgnoreFileName = ".assetgraphignore"

// Matcher determines whether a project path should be skipped while the asset
// store enumerates the project. It combines default patterns, .gitignore rules,
// .assetgraphignore rules, and custom CLI patterns.
// Thread-safe: Reload() acquires a write lock, ShouldIgnore()/ShouldIgnoreDir() acquire a read lock.
type Matcher struct {
	mu             sync.RWMutex
	rootDir        string
	gitIgnore      gitignore.GitIgnore
	assetIgnore    gitignore.GitIgnore
	customPatterns []string
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir        string
	CustomPatterns []string
}

// NewMatcher creates an ignore matcher that checks default patterns, .gitignore,
// .assetgraphignore, and custom patterns.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:        options.RootDir,
		customPatterns: normalizePatterns(options.CustomPatterns),
	}
	matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	matcher.assetIgnore = loadIgnoreFile(filepath.Join(options.RootDir, IgnoreFileName), options.RootDir)
	return matcher
}

// ShouldIgnore returns true if the given path should be excluded from enumeration.
// The path should be an absolute path or relative to the root directory.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	if matchesDefaultPatterns(relativePath) {
		return true
	}

	isDir := false
	if info, err := os.Stat(absolutePath); err == nil {
		isDir = info.IsDir()
	}

	// Relative() doesn't require the file to exist on disk
	for _, gi := range []gitignore.GitIgnore{m.gitIgnore, m.assetIgnore} {
		if gi == nil {
			continue
		}
		if match := gi.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	switch filepath.Base(absolutePath) {
	case ".git", ".svn", ".hg", ".idea", ".vscode", ".vs",
		"Library", "Temp", "Obj", "Logs", "UserSettings", "MemoryCaptures":
		return true
	}
	return m.ShouldIgnore(absolutePath)
}

// matchesDefaultPatterns checks the hardcoded patterns against every path component.
func matchesDefaultPatterns(relativePath string) bool {
	parts := strings.Split(relativePath, "/")
	for _, part := range parts {
		// Hidden and tilde-suffixed entries are never imported as assets.
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
		if strings.HasSuffix(part, "~") {
			return true
		}
	}
	base := parts[len(parts)-1]
	for _, pattern := range DefaultIgnorePatterns {
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// matchesCustomPatterns checks the user-provided exclude globs against the
// relative path and its basename.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads .gitignore and .assetgraphignore from disk.
// Used when the watcher detects changes to these files.
func (m *Matcher) Reload() {
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)
	newAssetIgnore := loadIgnoreFile(filepath.Join(m.rootDir, IgnoreFileName), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
	m.assetIgnore = newAssetIgnore
}

// IsIgnoreFile reports whether a file name is one of the rule files the matcher reads.
func IsIgnoreFile(name string) bool {
	return name == ".gitignore" || name == IgnoreFileName
}

// IsIgnoreFile reports whether name is a rule file this matcher reloads.
func (m *Matcher) IsIgnoreFile(name string) bool {
	return IsIgnoreFile(name)
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
		if p == "" || !doublestar.ValidatePattern(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
