package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/ignore"
)

// Options configures a filesystem store.
type Options struct {
	ProjectDir  string // absolute project directory
	ContentRoot string // content folder relative to ProjectDir, e.g. "Assets"
	Recursive   bool   // report transitive instead of direct dependencies
	CacheSize   int    // dependency scan cache entries
	Workers     int    // parallel sidecar readers during Refresh
	Matcher     *ignore.Matcher
	Logger      *slog.Logger
}

// catalog is one consistent snapshot of the project's assets.
type catalog struct {
	ids     map[string]graph.ID // key: project-relative path
	paths   map[graph.ID]string
	guids   map[graph.ID]string // guid-backed IDs only
	folders map[string]bool
	sorted  []string
	digest  uint64
}

// FS is a graph.Store over a project directory whose assets carry .meta
// sidecars. IDs come from the sidecar guid; dependencies are the guid
// references found in text-serialized assets and their sidecars.
type FS struct {
	opts  Options
	mu    sync.RWMutex
	cat   *catalog
	cache *lru.Cache[string, scanEntry]
}

var _ graph.Store = (*FS)(nil)

// NewFS creates a filesystem store and performs the first Refresh.
func NewFS(options Options) (*FS, error) {
	if options.ContentRoot == "" {
		options.ContentRoot = "Assets"
	}
	options.ContentRoot = strings.Trim(filepath.ToSlash(options.ContentRoot), "/")
	if options.CacheSize <= 0 {
		options.CacheSize = 4096
	}
	if options.Workers <= 0 {
		options.Workers = runtime.NumCPU()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Matcher == nil {
		options.Matcher = ignore.NewMatcher(ignore.MatcherOptions{RootDir: options.ProjectDir})
	}

	cache, err := lru.New[string, scanEntry](options.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating dependency cache: %w", err)
	}

	s := &FS{opts: options, cache: cache}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// ContentRoot returns the project-relative content folder.
func (s *FS) ContentRoot() string {
	return s.opts.ContentRoot
}

// ProjectDir returns the absolute project directory.
func (s *FS) ProjectDir() string {
	return s.opts.ProjectDir
}

func (s *FS) abs(relPath string) string {
	return filepath.Join(s.opts.ProjectDir, filepath.FromSlash(relPath))
}

func (s *FS) snapshot() *catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Refresh rescans the content root and replaces the catalog.
func (s *FS) Refresh() error {
	cat, err := s.scan()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()
	s.opts.Logger.Debug("asset catalog refreshed", "assets", len(cat.sorted), "folders", len(cat.folders))
	return nil
}

// Changed reports whether the project on disk differs from the catalog
// installed by the last Refresh.
func (s *FS) Changed() (bool, error) {
	cat, err := s.scan()
	if err != nil {
		return false, err
	}
	return cat.digest != s.snapshot().digest, nil
}

type scanItem struct {
	rel   string
	isDir bool
	stamp int64
}

func (s *FS) scan() (*catalog, error) {
	rootAbs := s.abs(s.opts.ContentRoot)
	info, err := os.Stat(rootAbs)
	if err != nil {
		return nil, fmt.Errorf("content root %s: %w", s.opts.ContentRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", s.opts.ContentRoot)
	}

	var items []scanItem
	err = filepath.WalkDir(rootAbs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p != rootAbs {
			if d.IsDir() && s.opts.Matcher.ShouldIgnoreDir(p) {
				return filepath.SkipDir
			}
			if !d.IsDir() && s.opts.Matcher.ShouldIgnore(p) {
				return nil
			}
		}
		var stamp int64
		if fi, err := d.Info(); err == nil {
			stamp = fi.ModTime().UnixNano() ^ fi.Size()
		}
		rel, _ := filepath.Rel(s.opts.ProjectDir, p)
		items = append(items, scanItem{rel: filepath.ToSlash(rel), isDir: d.IsDir(), stamp: stamp})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.opts.ContentRoot, err)
	}

	ids := make([]graph.ID, len(items))
	synthetic := make([]bool, len(items))
	var group errgroup.Group
	group.SetLimit(s.opts.Workers)
	for i, item := range items {
		group.Go(func() error {
			guid, err := readMetaGUID(s.abs(item.rel) + MetaSuffix)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					s.opts.Logger.Debug("unusable sidecar", "path", item.rel, "error", err)
				}
				ids[i] = syntheticID(item.rel)
				synthetic[i] = true
				return nil
			}
			ids[i] = graph.ID(guid)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	cat := &catalog{
		ids:     make(map[string]graph.ID, len(items)),
		paths:   make(map[graph.ID]string, len(items)),
		guids:   make(map[graph.ID]string),
		folders: make(map[string]bool),
		sorted:  make([]string, 0, len(items)),
	}
	digest := xxhash.New()
	for i, item := range items {
		id := ids[i]
		if other, dup := cat.paths[id]; dup {
			s.opts.Logger.Warn("duplicate asset id, keeping first", "id", id, "path", item.rel, "kept", other)
			continue
		}
		cat.ids[item.rel] = id
		cat.paths[id] = item.rel
		if !synthetic[i] {
			cat.guids[id] = item.rel
		}
		if item.isDir {
			cat.folders[item.rel] = true
		}
		cat.sorted = append(cat.sorted, item.rel)
		fmt.Fprintf(digest, "%s|%s|%d\n", item.rel, id, item.stamp)
	}
	sort.Strings(cat.sorted)
	cat.digest = digest.Sum64()
	return cat, nil
}

func (s *FS) ResolveID(assetPath string) (graph.ID, bool) {
	id, ok := s.snapshot().ids[assetPath]
	return id, ok
}

func (s *FS) ResolvePath(id graph.ID) (string, bool) {
	p, ok := s.snapshot().paths[id]
	return p, ok
}

// Enumerate lists every asset and folder below root, sorted. The root itself
// is not included.
func (s *FS) Enumerate(root string) ([]string, error) {
	cat := s.snapshot()
	if !cat.folders[root] {
		return nil, fmt.Errorf("%s: %w", root, ErrNotFound)
	}
	prefix := root + "/"
	start := sort.SearchStrings(cat.sorted, prefix)
	var out []string
	for _, p := range cat.sorted[start:] {
		if !strings.HasPrefix(p, prefix) {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *FS) IsContainer(assetPath string) bool {
	return s.snapshot().folders[assetPath]
}

// Dependencies returns the paths of the assets assetPath references. With
// Options.Recursive the transitive closure is returned in breadth-first
// order. References to guids outside the catalog are dropped.
func (s *FS) Dependencies(assetPath string) ([]string, error) {
	cat := s.snapshot()
	id, ok := cat.ids[assetPath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", assetPath, ErrNotFound)
	}
	if cat.folders[assetPath] {
		return nil, nil
	}

	direct, err := s.direct(cat, assetPath, id)
	if err != nil {
		// Deleted or unreadable since the last Refresh: the asset stays in
		// the graph with no outgoing references.
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			s.opts.Logger.Warn("skipping unreadable asset", "path", assetPath, "error", err)
			return nil, nil
		}
		return nil, err
	}
	if !s.opts.Recursive {
		return direct, nil
	}

	seen := map[string]bool{assetPath: true}
	var out []string
	queue := direct
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		deps, err := s.direct(cat, next, cat.ids[next])
		if err != nil {
			s.opts.Logger.Debug("skipping unreadable dependency", "path", next, "error", err)
			continue
		}
		queue = append(queue, deps...)
	}
	return out, nil
}

func (s *FS) direct(cat *catalog, assetPath string, id graph.ID) ([]string, error) {
	if cat.folders[assetPath] {
		return nil, nil
	}
	guids, err := s.referencedGUIDs(assetPath, string(id))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", assetPath, err)
	}
	out := make([]string, 0, len(guids))
	for _, guid := range guids {
		if p, ok := cat.guids[graph.ID(guid)]; ok && p != assetPath {
			out = append(out, p)
		}
	}
	return out, nil
}

// Delete removes an asset (folders recursively) together with its sidecar
// and drops it from the catalog. The content root cannot be deleted.
func (s *FS) Delete(assetPath string) error {
	if assetPath == s.opts.ContentRoot || !strings.HasPrefix(assetPath, s.opts.ContentRoot+"/") {
		return fmt.Errorf("refusing to delete %s outside %s", assetPath, s.opts.ContentRoot)
	}
	cat := s.snapshot()
	if _, ok := cat.ids[assetPath]; !ok {
		return fmt.Errorf("%s: %w", assetPath, ErrNotFound)
	}

	absPath := s.abs(assetPath)
	if err := os.RemoveAll(absPath); err != nil {
		return err
	}
	if err := os.Remove(absPath + MetaSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cat.without(assetPath)
	s.cat = next
	s.cache.Remove(assetPath)
	return nil
}

// without returns a copy of the catalog minus p and everything below it.
func (c *catalog) without(p string) *catalog {
	out := &catalog{
		ids:     make(map[string]graph.ID, len(c.ids)),
		paths:   make(map[graph.ID]string, len(c.paths)),
		guids:   make(map[graph.ID]string, len(c.guids)),
		folders: make(map[string]bool, len(c.folders)),
		digest:  c.digest,
	}
	prefix := p + "/"
	for _, rel := range c.sorted {
		if rel == p || strings.HasPrefix(rel, prefix) {
			continue
		}
		id := c.ids[rel]
		out.ids[rel] = id
		out.paths[id] = rel
		if _, ok := c.guids[id]; ok {
			out.guids[id] = rel
		}
		if c.folders[rel] {
			out.folders[rel] = true
		}
		out.sorted = append(out.sorted, rel)
	}
	return out
}

// IsUnderContentRoot reports whether a project-relative path lies inside
// the content root.
func (s *FS) IsUnderContentRoot(relPath string) bool {
	relPath = path.Clean(relPath)
	return relPath == s.opts.ContentRoot || strings.HasPrefix(relPath, s.opts.ContentRoot+"/")
}
