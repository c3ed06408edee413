package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period before a batch of events is emitted.
const DefaultInterval = 300 * time.Millisecond

// IgnoreChecker is used by the watcher to check if a path should be ignored.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
	IsIgnoreFile(name string) bool
}

// Options configures a watcher.
type Options struct {
	ProjectDir  string        // absolute; watched non-recursively for ignore rule files
	ContentRoot string        // absolute; watched recursively
	Interval    time.Duration // debounce window, DefaultInterval when zero
	MetaSuffix  string        // sidecar suffix; sidecar events are reported for their asset
}

// Watcher provides recursive file system watching with debouncing.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	options       Options
	logger        *slog.Logger
	done          chan struct{}
	closeOnce     sync.Once
}

// NewWatcher creates a recursive file watcher on the content root. It
// registers all non-ignored subdirectories for watching.
func NewWatcher(options Options, ignoreChecker IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	if options.Interval <= 0 {
		options.Interval = DefaultInterval
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(options.Interval),
		ignoreChecker: ignoreChecker,
		options:       options,
		logger:        logger,
		done:          make(chan struct{}),
	}

	if options.ProjectDir != "" && options.ProjectDir != options.ContentRoot {
		if err := fsWatcher.Add(options.ProjectDir); err != nil {
			w.logger.Warn("failed to watch project directory", "path", options.ProjectDir, "error", err)
		}
	}

	// Walk directory tree and add all non-ignored directories to the watcher
	err = filepath.WalkDir(options.ContentRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != options.ContentRoot && ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel that receives debounced file system events.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Start begins listening for file system events. Call this in a goroutine.
// It runs until the watcher is closed.
func (w *Watcher) Start() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// inContentRoot reports whether path is the content root or below it.
func (w *Watcher) inContentRoot(path string) bool {
	return path == w.options.ContentRoot ||
		strings.HasPrefix(path, w.options.ContentRoot+string(filepath.Separator))
}

// handleEvent processes a single fsnotify event, converting it to a debounced event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !w.inContentRoot(path) {
		// Only the ignore rule files are of interest outside the content root.
		if filepath.Dir(path) == w.options.ProjectDir && w.ignoreChecker.IsIgnoreFile(filepath.Base(path)) {
			w.debouncer.Add(path, OpIgnoreRules)
		}
		return
	}

	// If a new directory was created, start watching it
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.ignoreChecker.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
				// A new folder is an asset of its own.
				w.debouncer.Add(path, OpCreate)
			}
			return
		}
	}

	// Sidecar changes can move guids and references; report them against
	// the asset they describe.
	if w.options.MetaSuffix != "" && strings.HasSuffix(path, w.options.MetaSuffix) {
		path = strings.TrimSuffix(path, w.options.MetaSuffix)
	}

	// Skip ignored files
	if w.ignoreChecker.ShouldIgnore(path) {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(path, op)
}

// Close stops the watcher and releases resources. A running Start returns
// once the underlying event channels drain; Done reports when it has.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsWatcher.Close()
		w.debouncer.Stop()
	})
	return err
}

// Done is closed when Start returns.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}
