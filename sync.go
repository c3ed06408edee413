package main

import (
	"context"
	"log/slog"
	"time"
)

// driftDetector compares the project on disk with the last refreshed catalog.
type driftDetector interface {
	Changed() (bool, error)
}

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	Drift    bool // the project changed without a watcher event
	Rebuilt  bool
	Assets   int // indexed assets after the rebuild
	Err      error
	Duration time.Duration
}

// runPeriodicSync starts a background loop that verifies the graph against
// the project on disk at the given interval. It runs until ctx is done.
func runPeriodicSync(
	ctx context.Context,
	interval time.Duration,
	detector driftDetector,
	controller rebuilder,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result := performSyncVerification(detector, controller, logger)
			switch {
			case result.Err != nil:
				logger.Warn("sync verification failed", "error", result.Err, "duration", result.Duration)
			case result.Drift:
				logger.Info("sync verification complete",
					"rebuilt", result.Rebuilt,
					"assets", result.Assets,
					"duration", result.Duration,
				)
			default:
				logger.Debug("sync verification complete, graph is in sync", "duration", result.Duration)
			}
		}
	}
}

// performSyncVerification checks for drift and, when found, marks the graph
// stale and rebuilds it in full.
func performSyncVerification(detector driftDetector, controller rebuilder, logger *slog.Logger) SyncResult {
	start := time.Now()
	var result SyncResult

	drift, err := detector.Changed()
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	if !drift {
		result.Duration = time.Since(start)
		return result
	}

	result.Drift = true
	logger.Info("sync: project changed on disk, rebuilding")
	controller.MarkStale()
	stats, err := controller.Rebuild()
	if err != nil {
		result.Err = err
	} else {
		result.Rebuilt = true
		result.Assets = stats.Sources
	}
	result.Duration = time.Since(start)
	return result
}
