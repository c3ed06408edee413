package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/watcher"
)

// ruleReloader re-reads ignore rule files.
type ruleReloader interface {
	Reload()
}

// rebuilder is the part of the index controller that reacts to changes.
type rebuilder interface {
	MarkStale()
	Rebuild() (graph.Stats, error)
}

// handleWatcherEvents processes debounced file system events until ctx is
// done. Every batch triggers one full rebuild; the graph is never patched
// incrementally.
func handleWatcherEvents(
	ctx context.Context,
	events <-chan []watcher.DebouncedEvent,
	reloader ruleReloader,
	controller rebuilder,
	logger *slog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-events:
			if !ok {
				return
			}
			applyEventBatch(batch, reloader, controller, logger)
		}
	}
}

// applyEventBatch marks the graph stale and rebuilds it. Ignore rule files
// are reloaded first so the rebuild enumerates with the new rules.
func applyEventBatch(
	batch []watcher.DebouncedEvent,
	reloader ruleReloader,
	controller rebuilder,
	logger *slog.Logger,
) (graph.Stats, error) {
	reloaded := false
	for _, event := range batch {
		if event.Op == watcher.OpIgnoreRules {
			if !reloaded {
				reloader.Reload()
				reloaded = true
			}
			logger.Info("reloaded ignore rules", "trigger", filepath.Base(event.Path))
			continue
		}
		logger.Debug("asset changed", "path", event.Path, "op", event.Op)
	}

	controller.MarkStale()
	stats, err := controller.Rebuild()
	if err != nil {
		// The previous graph stays published and the state stays stale.
		logger.Warn("rebuild after change failed", "events", len(batch), "error", err)
		return stats, err
	}
	logger.Info("rebuilt after change",
		"events", len(batch),
		"assets", stats.Sources,
		"edges", stats.Edges,
	)
	return stats, nil
}
