package graph

import (
	"errors"
	"fmt"
)

// DeletionFailure records one asset the store refused to delete.
type DeletionFailure struct {
	ID   ID
	Path string
	Err  error
}

func (f DeletionFailure) Error() string {
	return fmt.Sprintf("deleting %s: %v", f.Path, f.Err)
}

func (f DeletionFailure) Unwrap() error {
	return f.Err
}

// ReclaimReport is the outcome of a reclaim pass.
type ReclaimReport struct {
	Deleted  []ID
	Paths    []string
	Failures []DeletionFailure
}

// Err returns nil when every deletion succeeded, otherwise the joined failures.
func (r ReclaimReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Candidates returns the assets a reclaim would delete: indexed assets that
// reference nothing, narrowed to those nothing references.
func (g *Graph) Candidates() []ID {
	var out []ID
	for _, id := range g.ByReferenceType(RefNoOutgoing) {
		if len(g.reverse[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Reclaim deletes every candidate through the store. A failed deletion is
// recorded and the loop continues. Reclaim does not refresh the store.
func Reclaim(store Deleter, g *Graph) ReclaimReport {
	var report ReclaimReport
	for _, id := range g.Candidates() {
		p := g.paths[id]
		if err := store.Delete(p); err != nil {
			report.Failures = append(report.Failures, DeletionFailure{ID: id, Path: p, Err: err})
			continue
		}
		report.Deleted = append(report.Deleted, id)
		report.Paths = append(report.Paths, p)
	}
	return report
}
