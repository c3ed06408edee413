// Package config resolves server settings from defaults, an optional .env
// file and ASSETGRAPH_* environment variables. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "ASSETGRAPH_"

// Config holds the resolved server settings.
type Config struct {
	ProjectDir   string
	ContentRoot  string
	ScopeRoot    string
	Excludes     []string
	Recursive    bool
	Watch        bool
	SyncInterval time.Duration
	PrefsFile    string
	CacheSize    int
	LogLevel     string
	LogFile      string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ContentRoot:  "Assets",
		Watch:        true,
		SyncInterval: 5 * time.Minute,
		CacheSize:    4096,
		LogLevel:     "info",
	}
}

// Load reads .env from the working directory if present, then applies the
// environment over Default. Values already set in the environment win over
// .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv applies environment lookups over Default.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()
	get := func(name string) string {
		return strings.TrimSpace(getenv(EnvPrefix + name))
	}

	if v := get("PROJECT_DIR"); v != "" {
		cfg.ProjectDir = v
	}
	if v := get("CONTENT_ROOT"); v != "" {
		cfg.ContentRoot = v
	}
	if v := get("SCOPE_ROOT"); v != "" {
		cfg.ScopeRoot = v
	}
	if v := get("EXCLUDE"); v != "" {
		for _, pattern := range strings.Split(v, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				cfg.Excludes = append(cfg.Excludes, pattern)
			}
		}
	}
	if v := get("PREFS_FILE"); v != "" {
		cfg.PrefsFile = v
	}
	if v := get("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := get("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	var errs []error
	if v := get("RECURSIVE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRECURSIVE: %w", EnvPrefix, err))
		}
		cfg.Recursive = b
	}
	if v := get("WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sWATCH: %w", EnvPrefix, err))
		} else {
			cfg.Watch = b
		}
	}
	if v := get("SYNC_INTERVAL"); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSYNC_INTERVAL: %w", EnvPrefix, err))
		} else {
			cfg.SyncInterval = d
		}
	}
	if v := get("CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCACHE_SIZE: %w", EnvPrefix, err))
		} else {
			cfg.CacheSize = n
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseInterval accepts a Go duration ("90s") or a bare number of seconds.
func parseInterval(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Resolve fills in the values that depend on the project directory. An empty
// ProjectDir means the current working directory.
func (c *Config) Resolve() error {
	if c.ProjectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		c.ProjectDir = wd
	}
	abs, err := filepath.Abs(c.ProjectDir)
	if err != nil {
		return fmt.Errorf("resolving project directory: %w", err)
	}
	c.ProjectDir = abs

	c.ContentRoot = cleanRel(c.ContentRoot)
	if c.ScopeRoot == "" {
		c.ScopeRoot = c.ContentRoot
	}
	c.ScopeRoot = cleanRel(c.ScopeRoot)
	if c.PrefsFile == "" {
		c.PrefsFile = filepath.Join(c.ProjectDir, ".assetgraph.toml")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.ProjectDir, "assetgraph-mcp.log")
	}
	return nil
}

func cleanRel(p string) string {
	return strings.Trim(path.Clean(filepath.ToSlash(strings.TrimSpace(p))), "/")
}

// Validate reports every inconsistent setting.
func (c *Config) Validate() error {
	var errs []error
	if c.ContentRoot == "" || c.ContentRoot == "." {
		errs = append(errs, errors.New("content root must name a folder"))
	}
	if strings.HasPrefix(c.ContentRoot, "..") {
		errs = append(errs, fmt.Errorf("content root %q escapes the project directory", c.ContentRoot))
	}
	if c.ScopeRoot != "" && c.ScopeRoot != c.ContentRoot && !strings.HasPrefix(c.ScopeRoot, c.ContentRoot+"/") {
		errs = append(errs, fmt.Errorf("scope root %q is outside content root %q", c.ScopeRoot, c.ContentRoot))
	}
	if c.SyncInterval < 0 {
		errs = append(errs, fmt.Errorf("sync interval %s is negative", c.SyncInterval))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("cache size %d must be positive", c.CacheSize))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
