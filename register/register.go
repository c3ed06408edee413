package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Scope selects which MCP client config file is written.
type Scope string

const (
	// ScopeProject writes <directory>/.mcp.json.
	ScopeProject Scope = "project"
	// ScopeUser writes ~/.claude.json.
	ScopeUser Scope = "user"
)

// ProjectDirFlag is the server flag pinned into project registrations so the
// server indexes the registered directory whatever the client's working
// directory is.
const ProjectDirFlag = "--project-dir"

// ErrNotRegistered is returned by Unregister when the entry does not exist.
var ErrNotRegistered = errors.New("server not registered")

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Options describes one registration.
type Options struct {
	Scope      Scope
	Directory  string   // project scope only; default "."
	ServerName string   // e.g. "assetgraph"
	ServerArgs []string // forwarded to the server on every start
	BinaryPath string   // default: the running executable
}

// ParseScope validates a scope argument.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeProject, ScopeUser:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown scope %q (must be \"project\" or \"user\")", s)
}

// Register adds or replaces the server entry and returns the config path
// that was written.
func Register(options Options) (string, error) {
	binaryPath := options.BinaryPath
	if binaryPath == "" {
		var err error
		if binaryPath, err = detectBinaryPath(); err != nil {
			return "", fmt.Errorf("detecting binary path: %w", err)
		}
	}

	configPath, err := resolveConfigPath(options.Scope, options.Directory)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}

	serverArgs := options.ServerArgs
	if options.Scope == ScopeProject {
		serverArgs = pinProjectDir(serverArgs, filepath.Dir(configPath))
	}

	entry := buildEntry(binaryPath, serverArgs)
	if err := writeConfig(configPath, options.ServerName, entry); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return configPath, nil
}

// Unregister removes the server entry and returns the config path that was
// written.
func Unregister(options Options) (string, error) {
	configPath, err := resolveConfigPath(options.Scope, options.Directory)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}

	config, servers, err := readConfig(configPath)
	if err != nil {
		return "", err
	}
	if _, ok := servers[options.ServerName]; !ok {
		return "", fmt.Errorf("%q in %s: %w", options.ServerName, configPath, ErrNotRegistered)
	}
	delete(servers, options.ServerName)

	if err := saveConfig(configPath, config); err != nil {
		return "", err
	}
	return configPath, nil
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

// SplitArgs splits command arguments at the "--" separator. dash is the
// index of the first argument after the separator, or -1 when there was none
// (cobra's ArgsLenAtDash).
func SplitArgs(args []string, dash int) (positional, forwarded []string) {
	if dash < 0 || dash > len(args) {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// pinProjectDir adds --project-dir unless the forwarded args already set it.
func pinProjectDir(serverArgs []string, dir string) []string {
	for _, arg := range serverArgs {
		if arg == ProjectDirFlag || strings.HasPrefix(arg, ProjectDirFlag+"=") {
			return serverArgs
		}
	}
	return append([]string{ProjectDirFlag, dir}, serverArgs...)
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope Scope, directory string) (string, error) {
	switch scope {
	case ScopeProject:
		if directory == "" {
			directory = "."
		}
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	case ScopeUser:
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(homeDir, ".claude.json"), nil
	}
	return "", fmt.Errorf("unknown scope %q", scope)
}

func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	if runtime.GOOS == "windows" {
		args := []string{"/C", binaryPath}
		args = append(args, serverArgs...)
		return mcpServerEntry{
			Command: "cmd",
			Args:    args,
		}
	}
	return mcpServerEntry{
		Command: binaryPath,
		Args:    slices.Clone(serverArgs),
	}
}

// readConfig loads configPath, or an empty config when the file does not
// exist. servers is the "mcpServers" object inside config.
func readConfig(configPath string) (config map[string]any, servers map[string]any, err error) {
	config = map[string]any{}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, nil, fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}

	raw, ok := config["mcpServers"]
	if !ok {
		raw = map[string]any{}
		config["mcpServers"] = raw
	}
	servers, ok = raw.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("mcpServers in %s is not an object", configPath)
	}
	return config, servers, nil
}

func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	config, servers, err := readConfig(configPath)
	if err != nil {
		return err
	}
	servers[serverName] = entry
	return saveConfig(configPath, config)
}

// saveConfig writes config atomically: temp file in the same directory, then
// rename.
func saveConfig(configPath string, config map[string]any) error {
	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	configDir := filepath.Dir(configPath)
	tmpFile, err := os.CreateTemp(configDir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", configDir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, configPath, err)
	}
	return nil
}
