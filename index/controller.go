// Package index owns the current asset graph and the scope and filter state
// around it. Every consumer (MCP tools, watcher, CLI) goes through the
// Controller.
package index

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/ignore"
	"github.com/lexandro/assetgraph-mcp/kind"
	"github.com/lexandro/assetgraph-mcp/store"
)

// ErrUnknownAsset is returned for IDs the current graph does not know.
var ErrUnknownAsset = errors.New("unknown asset")

// ErrNotBuilt is returned when no graph has been published yet.
var ErrNotBuilt = errors.New("graph not built")

// Preferences persists the ignore folder list between sessions.
type Preferences interface {
	IgnoreList() (string, error)
	SetIgnoreList(raw string) error
}

// State is the controller's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateBuilt
	// StateStale means a change was observed and a rebuild is pending.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateStale:
		return "stale"
	default:
		return "uninitialized"
	}
}

// Options configures a controller.
type Options struct {
	ContentRoot string // eligibility root; every scope root must lie under it
	ScopeRoot   string // initial scope, defaults to ContentRoot
}

// Controller holds the published graph and the scope state. A failed build
// never replaces the published graph.
type Controller struct {
	mu     sync.Mutex
	store  graph.Store
	prefs  Preferences
	logger *slog.Logger

	contentRoot string
	scopeRoot   string
	folders     ignore.FolderList
	ext         string
	refType     graph.RefType
	selected    graph.ID

	g             *graph.Graph
	state         State
	names         *NameIndex
	builtAt       time.Time
	buildDuration time.Duration
}

// New reads the ignore list from prefs and performs the first build.
func New(store graph.Store, prefs Preferences, options Options, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	contentRoot := cleanRoot(options.ContentRoot)
	scopeRoot := cleanRoot(options.ScopeRoot)
	if scopeRoot == "" {
		scopeRoot = contentRoot
	}

	raw, err := prefs.IgnoreList()
	if err != nil {
		return nil, fmt.Errorf("reading ignore list: %w", err)
	}

	names, err := NewNameIndex()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		store:       store,
		prefs:       prefs,
		logger:      logger,
		contentRoot: contentRoot,
		scopeRoot:   scopeRoot,
		folders:     ignore.ParseFolderList(raw),
		ext:         graph.Wildcard,
		names:       names,
	}
	if err := c.buildLocked(scopeRoot); err != nil {
		names.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the name index.
func (c *Controller) Close() error {
	return c.names.Close()
}

func cleanRoot(root string) string {
	root = strings.TrimSpace(strings.ReplaceAll(root, "\\", "/"))
	if root == "" {
		return ""
	}
	return strings.Trim(path.Clean(root), "/")
}

func (c *Controller) rules() ignore.Eligibility {
	return ignore.Eligibility{Root: c.contentRoot, Folders: c.folders}
}

// buildLocked builds scopeRoot and publishes the result. On error the
// previous graph and scope stay in place.
func (c *Controller) buildLocked(scopeRoot string) error {
	start := time.Now()
	g, err := graph.Build(c.store, scopeRoot, c.rules())
	if err != nil {
		return err
	}
	c.g = g
	c.scopeRoot = scopeRoot
	c.state = StateBuilt
	c.builtAt = time.Now()
	c.buildDuration = time.Since(start)

	entries := make([]NameEntry, 0, g.Len())
	for _, id := range g.Keys() {
		p, _ := g.Path(id)
		entries = append(entries, NameEntry{ID: id, Path: p, Kind: kind.Detect(p)})
	}
	if err := c.names.Replace(entries); err != nil {
		c.logger.Warn("name index rebuild failed", "error", err)
	}

	stats := g.Stats()
	c.logger.Info("asset graph built",
		"scope", scopeRoot,
		"assets", stats.Sources,
		"edges", stats.Edges,
		"duration", c.buildDuration,
	)
	return nil
}

// visibleLocked applies the reference-type, extension and eligibility
// filters to the published keys.
func (c *Controller) visibleLocked() []graph.ID {
	if c.g == nil {
		return nil
	}
	rules := c.rules()
	var out []graph.ID
	for _, id := range c.g.Filter(c.ext, c.refType) {
		if p, _ := c.g.Path(id); rules.IsEligible(p) {
			out = append(out, id)
		}
	}
	return out
}

// SetScopeRoot rebuilds the graph for root and resets the filters. The
// previous graph stays published if the build fails.
func (c *Controller) SetScopeRoot(root string) ([]graph.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	root = cleanRoot(root)
	if err := c.buildLocked(root); err != nil {
		return nil, err
	}
	c.ext = graph.Wildcard
	c.refType = graph.RefNone
	c.selected = ""
	return c.visibleLocked(), nil
}

// SetIgnoreList persists raw and applies it to the visible keys. Graph
// membership changes only at the next build.
func (c *Controller) SetIgnoreList(raw string) ([]graph.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prefs.SetIgnoreList(raw); err != nil {
		return nil, fmt.Errorf("saving ignore list: %w", err)
	}
	c.folders = ignore.ParseFolderList(raw)
	return c.visibleLocked(), nil
}

// IgnoreList returns the folder substrings in effect.
func (c *Controller) IgnoreList() ignore.FolderList {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(ignore.FolderList(nil), c.folders...)
}

// SetFilter replaces the extension and reference-type filters and returns
// the visible keys. It never rebuilds.
func (c *Controller) SetFilter(ext string, refType graph.RefType) []graph.ID {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ext == "" {
		ext = graph.Wildcard
	}
	c.ext = ext
	c.refType = refType
	return c.visibleLocked()
}

// Visible returns the keys passing the current filters.
func (c *Controller) Visible() []graph.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// Search matches term against asset names. See graph.Graph.SearchByName.
func (c *Controller) Search(term string) []graph.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return nil
	}
	return c.g.SearchByName(term)
}

// Glob returns the indexed assets whose path matches pattern.
func (c *Controller) Glob(pattern string) ([]graph.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return nil, ErrNotBuilt
	}
	return c.g.Glob(pattern)
}

// Find runs a full-text name query.
func (c *Controller) Find(options FindOptions) ([]NameHit, int, error) {
	return c.names.Search(options)
}

// Suggest returns up to limit indexed assets whose names resemble term.
func (c *Controller) Suggest(term string, limit int) []Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return nil
	}
	return suggestNames(c.g, c.g.Keys(), term, limit)
}

// Selection is one asset with its references.
type Selection struct {
	ID       graph.ID
	Path     string
	Outgoing []graph.ID
	Incoming []graph.ID
}

// Select makes id the current selection and returns its references. With
// ignoreFolders the references are filtered through the eligibility rules.
// The second result is false when the graph does not know id.
func (c *Controller) Select(id graph.ID, ignoreFolders bool) (Selection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return Selection{}, false
	}
	p, ok := c.g.Path(id)
	if !ok {
		return Selection{}, false
	}
	c.selected = id

	var around graph.Around
	if ignoreFolders {
		around = c.g.AroundSelection(id, c.rules())
	} else {
		around = c.g.References(id)
	}
	return Selection{ID: id, Path: p, Outgoing: around.Outgoing, Incoming: around.Incoming}, true
}

// Selected returns the current selection, if any.
func (c *Controller) Selected() (graph.ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.selected != ""
}

// Description summarises one asset.
type Description struct {
	ID        graph.ID
	Path      string
	Kind      string
	Indexed   bool // a graph key, not only a reference target
	Outgoing  int
	Incoming  int
	Synthetic bool
}

// Describe returns the summary of id, or ErrUnknownAsset.
func (c *Controller) Describe(id graph.ID) (Description, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return Description{}, ErrNotBuilt
	}
	p, ok := c.g.Path(id)
	if !ok {
		return Description{}, fmt.Errorf("%s: %w", id, ErrUnknownAsset)
	}
	assetKind := kind.Detect(p)
	if c.store.IsContainer(p) {
		assetKind = kind.Folder
	}
	return Description{
		ID:        id,
		Path:      p,
		Kind:      assetKind,
		Indexed:   c.g.Has(id),
		Outgoing:  len(c.g.Outgoing(id)),
		Incoming:  len(c.g.Incoming(id)),
		Synthetic: store.IsSynthetic(id),
	}, nil
}

// Path returns the path recorded for id in the published graph.
func (c *Controller) Path(id graph.ID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return "", false
	}
	return c.g.Path(id)
}

// Lookup resolves an asset path to its ID through the store.
func (c *Controller) Lookup(assetPath string) (graph.ID, bool) {
	return c.store.ResolveID(cleanRoot(assetPath))
}

// Paths maps ids to their recorded paths, preserving order.
func (c *Controller) Paths(ids []graph.ID) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(ids))
	for i, id := range ids {
		if c.g != nil {
			out[i], _ = c.g.Path(id)
		}
	}
	return out
}

// Extensions returns the extensions seen at the last build, wildcard first.
func (c *Controller) Extensions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return []string{graph.Wildcard}
	}
	return c.g.Extensions()
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// MarkStale records that the store changed since the last build.
func (c *Controller) MarkStale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateBuilt {
		c.state = StateStale
	}
}

// Rebuild refreshes the store and rebuilds the current scope, keeping the
// filters.
func (c *Controller) Rebuild() (graph.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Refresh(); err != nil {
		return graph.Stats{}, fmt.Errorf("refreshing store: %w", err)
	}
	if err := c.buildLocked(c.scopeRoot); err != nil {
		return graph.Stats{}, err
	}
	return c.g.Stats(), nil
}

// ReclaimCandidates lists what ReclaimUnreferenced would delete now.
func (c *Controller) ReclaimCandidates() []graph.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g == nil {
		return nil
	}
	return c.g.Candidates()
}

// ReclaimUnreferenced deletes every asset with neither outgoing nor incoming
// references, refreshes the store once and rebuilds. onComplete, if set,
// receives the report after the controller is unlocked, on the calling
// goroutine. The returned error covers the refresh and rebuild only;
// deletion failures are in the report.
func (c *Controller) ReclaimUnreferenced(onComplete func(graph.ReclaimReport)) (graph.ReclaimReport, error) {
	report, err := c.reclaim()
	if onComplete != nil {
		onComplete(report)
	}
	return report, err
}

func (c *Controller) reclaim() (graph.ReclaimReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.g == nil {
		return graph.ReclaimReport{}, ErrNotBuilt
	}
	report := graph.Reclaim(c.store, c.g)
	c.logger.Info("reclaimed unreferenced assets",
		"deleted", len(report.Deleted),
		"failed", len(report.Failures),
	)
	for _, failure := range report.Failures {
		c.logger.Warn("asset deletion failed", "path", failure.Path, "error", failure.Err)
	}

	if err := c.store.Refresh(); err != nil {
		c.state = StateStale
		return report, fmt.Errorf("refreshing store: %w", err)
	}
	if err := c.buildLocked(c.scopeRoot); err != nil {
		c.state = StateStale
		return report, err
	}
	if c.selected != "" && !c.g.Has(c.selected) {
		c.selected = ""
	}
	return report, nil
}

// Status is a point-in-time view of the controller.
type Status struct {
	State         State
	ContentRoot   string
	ScopeRoot     string
	IgnoreList    string
	Extension     string
	RefType       graph.RefType
	Selected      graph.ID
	Stats         graph.Stats
	Visible       int
	Kinds         map[string]int
	NameDocuments uint64
	BuiltAt       time.Time
	BuildDuration time.Duration
}

// Status returns the current state and graph statistics.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{
		State:         c.state,
		ContentRoot:   c.contentRoot,
		ScopeRoot:     c.scopeRoot,
		IgnoreList:    c.folders.String(),
		Extension:     c.ext,
		RefType:       c.refType,
		Selected:      c.selected,
		Kinds:         make(map[string]int),
		NameDocuments: c.names.DocumentCount(),
		BuiltAt:       c.builtAt,
		BuildDuration: c.buildDuration,
	}
	if c.g == nil {
		return status
	}
	status.Stats = c.g.Stats()
	status.Visible = len(c.visibleLocked())
	for _, id := range c.g.Keys() {
		p, _ := c.g.Path(id)
		status.Kinds[kind.Detect(p)]++
	}
	return status
}
