package graph

import (
	"errors"
	"fmt"

	"github.com/lexandro/assetgraph-mcp/ignore"
)

// ErrInvalidScope is returned when the scope root is not a folder known to
// the store or lies outside the eligibility root.
var ErrInvalidScope = errors.New("invalid scope root")

// Build enumerates every asset under scopeRoot and records, for each eligible
// non-folder asset, the IDs it depends on. Reverse edges are appended in the
// same pass, so every forward edge has exactly one matching reverse entry.
//
// Targets that cannot be resolved to an ID are dropped from both directions.
// Repeated targets are kept, one edge per occurrence. Any store failure aborts
// the build and no graph is returned.
func Build(store Store, scopeRoot string, rules ignore.Eligibility) (*Graph, error) {
	if scopeRoot == "" || !store.IsContainer(scopeRoot) {
		return nil, fmt.Errorf("%w: %q is not a folder", ErrInvalidScope, scopeRoot)
	}
	if rules.Root != "" && !isUnder(scopeRoot, rules.Root) {
		return nil, fmt.Errorf("%w: %q is outside %q", ErrInvalidScope, scopeRoot, rules.Root)
	}

	candidates, err := store.Enumerate(scopeRoot)
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", scopeRoot, err)
	}

	g := newGraph(scopeRoot)
	for _, candidate := range candidates {
		if ext := Extension(candidate); ext != "" {
			g.exts[ext] = struct{}{}
		}
		if !rules.IsEligible(candidate) || store.IsContainer(candidate) {
			continue
		}

		id, ok := store.ResolveID(candidate)
		if !ok {
			continue
		}
		if _, dup := g.forward[id]; dup {
			continue
		}

		deps, err := store.Dependencies(candidate)
		if err != nil {
			return nil, fmt.Errorf("dependencies of %s: %w", candidate, err)
		}

		refs := make([]ID, 0, len(deps))
		for _, dep := range deps {
			if dep == candidate {
				continue
			}
			target, ok := store.ResolveID(dep)
			if !ok || target == id {
				continue
			}
			refs = append(refs, target)
			g.reverse[target] = append(g.reverse[target], id)
			g.paths[target] = dep
		}

		g.forward[id] = refs
		g.paths[id] = candidate
		g.keys = append(g.keys, id)
	}
	return g, nil
}

// isUnder reports whether p equals root or lies below it as a path.
func isUnder(p, root string) bool {
	return p == root || len(p) > len(root) && p[:len(root)] == root && p[len(root)] == '/'
}
