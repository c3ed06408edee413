// Package graph builds and queries the bidirectional asset reference index.
//
// A Graph is built in one pass from a Store's answers and is never updated
// in place: any change of scope produces a new Graph. Queries treat the
// maps as read-only and report absent keys as empty results.
package graph

import (
	"path"
	"sort"
	"strings"
)

// ID is the stable identifier of an asset, independent of its current path.
type ID string

// Wildcard is the extension filter value that disables extension filtering.
const Wildcard = "*"

// Store is the asset database the builder queries. Paths are store-relative
// and use forward slashes.
type Store interface {
	// ResolveID maps a path to its stable ID.
	ResolveID(assetPath string) (ID, bool)
	// ResolvePath maps an ID to the asset's current path.
	ResolvePath(id ID) (string, bool)
	// Enumerate lists every asset and folder below root.
	Enumerate(root string) ([]string, error)
	// IsContainer reports whether the path is a folder.
	IsContainer(assetPath string) bool
	// Dependencies lists the assets assetPath depends on, excluding itself.
	Dependencies(assetPath string) ([]string, error)
	Deleter
}

// Deleter is the part of the Store the reclaimer needs.
type Deleter interface {
	Delete(assetPath string) error
	Refresh() error
}

// Graph holds forward and reverse reference lists keyed by asset ID.
type Graph struct {
	root    string
	forward map[ID][]ID
	reverse map[ID][]ID
	keys    []ID
	paths   map[ID]string
	exts    map[string]struct{}
}

func newGraph(root string) *Graph {
	return &Graph{
		root:    root,
		forward: make(map[ID][]ID),
		reverse: make(map[ID][]ID),
		paths:   make(map[ID]string),
		exts:    map[string]struct{}{Wildcard: {}},
	}
}

// Root returns the scope root the graph was built for.
func (g *Graph) Root() string {
	return g.root
}

// Len returns the number of indexed (source) assets.
func (g *Graph) Len() int {
	return len(g.keys)
}

// Keys returns every indexed asset in build order.
func (g *Graph) Keys() []ID {
	return append([]ID(nil), g.keys...)
}

// Has reports whether id is an indexed source asset.
func (g *Graph) Has(id ID) bool {
	_, ok := g.forward[id]
	return ok
}

// Outgoing returns the assets id references. Absent ids yield nil.
func (g *Graph) Outgoing(id ID) []ID {
	return append([]ID(nil), g.forward[id]...)
}

// Incoming returns the assets that reference id. Absent ids yield nil.
func (g *Graph) Incoming(id ID) []ID {
	return append([]ID(nil), g.reverse[id]...)
}

// Path returns the path recorded for id when the graph was built. It covers
// reference targets as well as indexed sources.
func (g *Graph) Path(id ID) (string, bool) {
	p, ok := g.paths[id]
	return p, ok
}

// Extensions returns the extensions observed during the build, sorted, with
// the wildcard first.
func (g *Graph) Extensions() []string {
	out := make([]string, 0, len(g.exts))
	for ext := range g.exts {
		if ext != Wildcard {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return append([]string{Wildcard}, out...)
}

// Stats summarises a built graph.
type Stats struct {
	Sources    int // indexed assets
	Targets    int // distinct referenced assets
	Edges      int // forward edges, counting repeats
	Isolated   int
	NoIncoming int
	NoOutgoing int
}

// Stats computes summary counts for the graph.
func (g *Graph) Stats() Stats {
	s := Stats{Sources: len(g.keys), Targets: len(g.reverse)}
	for _, id := range g.keys {
		out := len(g.forward[id]) == 0
		in := len(g.reverse[id]) == 0
		s.Edges += len(g.forward[id])
		if out {
			s.NoOutgoing++
		}
		if in {
			s.NoIncoming++
		}
		if out && in {
			s.Isolated++
		}
	}
	return s
}

// Extension returns the extension of an asset path including the leading
// dot, as compared by the extension filter. Case is preserved.
func Extension(assetPath string) string {
	return path.Ext(assetPath)
}

// Stem returns the file name of an asset path without its extension.
func Stem(assetPath string) string {
	base := path.Base(assetPath)
	return strings.TrimSuffix(base, path.Ext(base))
}
