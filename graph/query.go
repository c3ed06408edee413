package graph

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/assetgraph-mcp/ignore"
)

// ByExtension returns the indexed assets whose path extension equals ext.
// The wildcard returns every key.
func (g *Graph) ByExtension(ext string) []ID {
	if ext == Wildcard || ext == "" {
		return g.Keys()
	}
	return g.filterExtension(g.keys, ext)
}

func (g *Graph) filterExtension(ids []ID, ext string) []ID {
	var out []ID
	for _, id := range ids {
		if Extension(g.paths[id]) == ext {
			out = append(out, id)
		}
	}
	return out
}

// ByReferenceType returns the indexed assets matching kind, in key order.
func (g *Graph) ByReferenceType(kind RefType) []ID {
	if kind == RefNone {
		return g.Keys()
	}
	var out []ID
	for _, id := range g.keys {
		noOut := len(g.forward[id]) == 0
		noIn := len(g.reverse[id]) == 0
		switch kind {
		case RefNoOutgoing:
			if noOut {
				out = append(out, id)
			}
		case RefNoIncoming:
			if noIn {
				out = append(out, id)
			}
		case RefIsolated:
			if noOut && noIn {
				out = append(out, id)
			}
		}
	}
	return out
}

// Filter combines the reference-type and extension filters. The reference
// set is computed first and the extension predicate applied to it.
func (g *Graph) Filter(ext string, kind RefType) []ID {
	ids := g.ByReferenceType(kind)
	if ext == Wildcard || ext == "" {
		return ids
	}
	return g.filterExtension(ids, ext)
}

// SearchByName matches term against asset file names without extension.
// The first exact, case-sensitive match is returned alone; otherwise every
// name containing term is returned in key order. An empty term returns all keys.
func (g *Graph) SearchByName(term string) []ID {
	if term == "" {
		return g.Keys()
	}
	var out []ID
	for _, id := range g.keys {
		name := Stem(g.paths[id])
		if name == term {
			return []ID{id}
		}
		if strings.Contains(name, term) {
			out = append(out, id)
		}
	}
	return out
}

// Glob returns the indexed assets whose path matches a doublestar pattern.
func (g *Graph) Glob(pattern string) ([]ID, error) {
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	var out []ID
	for _, id := range g.keys {
		if ok, err := doublestar.Match(pattern, g.paths[id]); err == nil && ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Around lists the references on either side of one asset.
type Around struct {
	Outgoing []ID
	Incoming []ID
}

// References returns the unfiltered outgoing and incoming lists of id.
func (g *Graph) References(id ID) Around {
	return Around{Outgoing: g.Outgoing(id), Incoming: g.Incoming(id)}
}

// AroundSelection returns the references of id that pass rules. Referenced
// assets are checked even when they are not indexed sources themselves.
func (g *Graph) AroundSelection(id ID, rules ignore.Eligibility) Around {
	return Around{
		Outgoing: g.eligible(g.forward[id], rules),
		Incoming: g.eligible(g.reverse[id], rules),
	}
}

func (g *Graph) eligible(ids []ID, rules ignore.Eligibility) []ID {
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if rules.IsEligible(g.paths[id]) {
			out = append(out, id)
		}
	}
	return out
}
