package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/lexandro/assetgraph-mcp/config"
	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/ignore"
	"github.com/lexandro/assetgraph-mcp/index"
	"github.com/lexandro/assetgraph-mcp/prefs"
	"github.com/lexandro/assetgraph-mcp/server"
	"github.com/lexandro/assetgraph-mcp/store"
	"github.com/lexandro/assetgraph-mcp/tools"
	"github.com/lexandro/assetgraph-mcp/watcher"
)

// flagValues holds the raw command-line values. Only flags the user set
// override the environment (see applyFlags).
var flagValues struct {
	projectDir   string
	contentRoot  string
	scopeRoot    string
	excludes     []string
	recursive    bool
	watch        bool
	syncInterval time.Duration
	prefsFile    string
	cacheSize    int
	logLevel     string
	logFile      string
}

// cfg is resolved by the root PersistentPreRunE before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "assetgraph-mcp",
	Short: "MCP server for asset dependency graphs",
	Long: `assetgraph-mcp indexes the assets under a project's content root (files
with .meta sidecars carrying a guid) into a dependency graph and serves it
over MCP on stdio.

Settings come from ASSETGRAPH_* environment variables (and an optional .env
file); flags override them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	defaults := config.Default()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagValues.projectDir, "project-dir", "", "Project directory (default: current working directory)")
	pf.StringVar(&flagValues.contentRoot, "content-root", defaults.ContentRoot, "Content folder inside the project")
	pf.StringVar(&flagValues.scopeRoot, "scope", "", "Folder to index, inside the content root (default: the content root)")
	pf.StringArrayVar(&flagValues.excludes, "exclude", nil, "Extra ignore pattern (repeatable)")
	pf.BoolVar(&flagValues.recursive, "recursive", defaults.Recursive, "Record transitive instead of direct dependencies")
	pf.StringVar(&flagValues.prefsFile, "prefs-file", "", "Preferences file (default: <project>/"+prefs.DefaultFileName+")")
	pf.IntVar(&flagValues.cacheSize, "cache-size", defaults.CacheSize, "Dependency scan cache entries")
	pf.StringVar(&flagValues.logLevel, "log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	pf.StringVar(&flagValues.logFile, "log-file", "", "Log file path (default: <project>/assetgraph-mcp.log)")

	rootCmd.Flags().BoolVar(&flagValues.watch, "watch", defaults.Watch, "Rebuild when assets change on disk")
	rootCmd.Flags().DurationVar(&flagValues.syncInterval, "sync-interval", defaults.SyncInterval, "Interval of the on-disk drift check (0 disables)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	// Skip initialization for commands that do not touch a project
	switch cmd.Name() {
	case "help", "completion", "register", "unregister":
		return nil
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(loaded, cmd.Flags().Changed)
	if err := loaded.Resolve(); err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// applyFlags copies the flags the user set over c.
func applyFlags(c *config.Config, changed func(name string) bool) {
	if changed("project-dir") {
		c.ProjectDir = flagValues.projectDir
	}
	if changed("content-root") {
		c.ContentRoot = flagValues.contentRoot
	}
	if changed("scope") {
		c.ScopeRoot = flagValues.scopeRoot
	}
	if changed("exclude") {
		c.Excludes = append(c.Excludes, flagValues.excludes...)
	}
	if changed("recursive") {
		c.Recursive = flagValues.recursive
	}
	if changed("watch") {
		c.Watch = flagValues.watch
	}
	if changed("sync-interval") {
		c.SyncInterval = flagValues.syncInterval
	}
	if changed("prefs-file") {
		c.PrefsFile = flagValues.prefsFile
	}
	if changed("cache-size") {
		c.CacheSize = flagValues.cacheSize
	}
	if changed("log-level") {
		c.LogLevel = flagValues.logLevel
	}
	if changed("log-file") {
		c.LogFile = flagValues.logFile
	}
}

// project bundles the components every command works on.
type project struct {
	matcher    *ignore.Matcher
	store      *store.FS
	prefs      *prefs.File
	controller *index.Controller
}

// openProject creates the asset store and performs the initial build.
func openProject(c *config.Config, logger *slog.Logger) (*project, error) {
	matcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:        c.ProjectDir,
		CustomPatterns: c.Excludes,
	})

	fsStore, err := store.NewFS(store.Options{
		ProjectDir:  c.ProjectDir,
		ContentRoot: c.ContentRoot,
		Recursive:   c.Recursive,
		CacheSize:   c.CacheSize,
		Matcher:     matcher,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening asset store: %w", err)
	}

	preferences := prefs.NewFile(c.PrefsFile)
	controller, err := index.New(fsStore, preferences, index.Options{
		ContentRoot: c.ContentRoot,
		ScopeRoot:   c.ScopeRoot,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("building asset graph: %w", err)
	}

	return &project{matcher: matcher, store: fsStore, prefs: preferences, controller: controller}, nil
}

func (p *project) Close() error {
	return p.controller.Close()
}

// reindex reloads the ignore rules and rebuilds the graph.
func (p *project) reindex() (graph.Stats, string, error) {
	start := time.Now()
	// Reload ignore rules in case .gitignore or .assetgraphignore changed
	p.matcher.Reload()
	stats, err := p.controller.Rebuild()
	elapsed := time.Since(start).Round(time.Millisecond).String()
	return stats, elapsed, err
}

func runServe(cmd *cobra.Command, args []string) error {
	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	logger.Info("starting assetgraph-mcp",
		"project", cfg.ProjectDir,
		"contentRoot", cfg.ContentRoot,
		"scope", cfg.ScopeRoot,
		"recursive", cfg.Recursive,
	)

	startTime := time.Now()
	p, err := openProject(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer p.Close()

	status := p.controller.Status()
	logger.Info("initial build complete",
		"assets", status.Stats.Sources,
		"edges", status.Stats.Edges,
		"duration", time.Since(startTime),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start file watcher
	if cfg.Watch {
		fileWatcher, err := watcher.NewWatcher(watcher.Options{
			ProjectDir:  cfg.ProjectDir,
			ContentRoot: filepath.Join(cfg.ProjectDir, filepath.FromSlash(cfg.ContentRoot)),
			MetaSuffix:  store.MetaSuffix,
		}, p.matcher, logger)
		if err != nil {
			logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		} else {
			go fileWatcher.Start()
			go handleWatcherEvents(ctx, fileWatcher.Events(), p.matcher, p.controller, logger)
			defer fileWatcher.Close()
		}
	}

	if cfg.SyncInterval > 0 {
		go runPeriodicSync(ctx, cfg.SyncInterval, p.store, p.controller, logger)
	}

	// Create tool handlers
	handlers := server.Handlers{
		List:       &tools.ListHandler{Controller: p.controller, Logger: logger},
		Search:     &tools.SearchHandler{Controller: p.controller, Logger: logger},
		Find:       &tools.FindHandler{Controller: p.controller, Logger: logger},
		Files:      &tools.FilesHandler{Controller: p.controller, Logger: logger},
		Refs:       &tools.RefsHandler{Controller: p.controller, Logger: logger},
		Scope:      &tools.ScopeHandler{Controller: p.controller, Logger: logger},
		Ignore:     &tools.IgnoreHandler{Controller: p.controller, Logger: logger},
		Extensions: &tools.ExtensionsHandler{Controller: p.controller, Logger: logger},
		Reclaim:    &tools.ReclaimHandler{Controller: p.controller, Logger: logger},
		Status: &tools.StatusHandler{
			Controller: p.controller,
			StartTime:  startTime,
			ProjectDir: cfg.ProjectDir,
			Logger:     logger,
		},
		Reindex: &tools.ReindexHandler{DoReindex: p.reindex, Logger: logger},
	}

	// Setup and run MCP server on stdio
	mcpServer := server.Setup(handlers)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
