package register

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func Test_DeriveServerName(t *testing.T) {
	tests := []struct {
		name       string
		binaryPath string
		want       string
	}{
		{"strip -mcp suffix", "rest-api-mcp", "rest-api"},
		{"strip .exe and -mcp", "assetgraph-mcp.exe", "assetgraph"},
		{"no -mcp suffix passthrough", "myserver", "myserver"},
		{"only .exe suffix", "myserver.exe", "myserver"},
		{"assetgraph-mcp", "assetgraph-mcp", "assetgraph"},
		{"full path stripped to base", "/usr/local/bin/assetgraph-mcp", "assetgraph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveServerName(tt.binaryPath)
			if got != tt.want {
				t.Errorf("DeriveServerName(%q) = %q, want %q", tt.binaryPath, got, tt.want)
			}
		})
	}
}

func Test_ParseScope(t *testing.T) {
	for _, s := range []string{"project", "user"} {
		if _, err := ParseScope(s); err != nil {
			t.Errorf("ParseScope(%q) error: %v", s, err)
		}
	}
	if _, err := ParseScope("global"); err == nil {
		t.Error("expected error for unknown scope")
	}
}

func Test_SplitArgs(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		dash          int
		wantPos       []string
		wantForwarded []string
	}{
		{"no args", nil, -1, nil, nil},
		{"directory only", []string{"mydir"}, -1, []string{"mydir"}, nil},
		{"directory and server args", []string{"mydir", "--watch=false"}, 1, []string{"mydir"}, []string{"--watch=false"}},
		{"just separator and args", []string{"--log-level", "debug"}, 0, nil, []string{"--log-level", "debug"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPos, gotForwarded := SplitArgs(tt.args, tt.dash)
			if !sliceEqual(gotPos, tt.wantPos) {
				t.Errorf("SplitArgs() positional = %v, want %v", gotPos, tt.wantPos)
			}
			if !sliceEqual(gotForwarded, tt.wantForwarded) {
				t.Errorf("SplitArgs() forwarded = %v, want %v", gotForwarded, tt.wantForwarded)
			}
		})
	}
}

func Test_pinProjectDir(t *testing.T) {
	got := pinProjectDir([]string{"--watch=false"}, "/projects/game")
	want := []string{"--project-dir", "/projects/game", "--watch=false"}
	if !sliceEqual(got, want) {
		t.Errorf("pinProjectDir() = %v, want %v", got, want)
	}

	explicit := []string{"--project-dir=/elsewhere"}
	if got := pinProjectDir(explicit, "/projects/game"); !sliceEqual(got, explicit) {
		t.Errorf("pinProjectDir() must keep an explicit flag, got %v", got)
	}
}

func Test_Register_Project(t *testing.T) {
	tmpDir := t.TempDir()

	configPath, err := Register(Options{
		Scope:      ScopeProject,
		Directory:  tmpDir,
		ServerName: "assetgraph",
		ServerArgs: []string{"--log-level", "debug"},
		BinaryPath: "/usr/local/bin/assetgraph-mcp",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if configPath != filepath.Join(tmpDir, ".mcp.json") {
		t.Errorf("configPath = %q", configPath)
	}

	entry := readEntry(t, configPath, "assetgraph")
	args, _ := entry["args"].([]interface{})
	if runtime.GOOS == "windows" {
		return
	}
	if entry["command"] != "/usr/local/bin/assetgraph-mcp" {
		t.Errorf("command = %v", entry["command"])
	}
	if len(args) != 4 || args[0] != "--project-dir" || args[1] != tmpDir || args[2] != "--log-level" {
		t.Errorf("args = %v, want [--project-dir %s --log-level debug]", args, tmpDir)
	}
}

func Test_Unregister(t *testing.T) {
	tmpDir := t.TempDir()
	options := Options{Scope: ScopeProject, Directory: tmpDir, ServerName: "assetgraph", BinaryPath: "/bin/assetgraph-mcp"}

	if _, err := Unregister(options); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if _, err := Register(options); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	configPath, err := Unregister(options)
	if err != nil {
		t.Fatalf("Unregister() error: %v", err)
	}

	data, _ := os.ReadFile(configPath)
	var config map[string]interface{}
	json.Unmarshal(data, &config)
	servers := config["mcpServers"].(map[string]interface{})
	if _, ok := servers["assetgraph"]; ok {
		t.Error("expected assetgraph entry to be removed")
	}
}

func Test_writeConfig_CreatesNewFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mcp.json")

	entry := mcpServerEntry{Command: "/usr/bin/myserver", Args: []string{"--project-dir", "/tmp"}}
	if err := writeConfig(configPath, "myserver", entry); err != nil {
		t.Fatalf("writeConfig() error: %v", err)
	}

	serverEntry := readEntry(t, configPath, "myserver")
	if serverEntry["command"] != "/usr/bin/myserver" {
		t.Errorf("command = %v, want /usr/bin/myserver", serverEntry["command"])
	}
}

func Test_writeConfig_UpdatesExistingEntry(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mcp.json")

	// Write initial config with two entries
	initial := map[string]interface{}{
		"mcpServers": map[string]interface{}{
			"other-server": map[string]interface{}{
				"command": "/usr/bin/other",
			},
			"myserver": map[string]interface{}{
				"command": "/old/path",
			},
		},
	}
	initialData, _ := json.MarshalIndent(initial, "", "  ")
	os.WriteFile(configPath, initialData, 0644)

	// Update myserver entry
	entry := mcpServerEntry{Command: "/new/path", Args: []string{"--flag"}}
	if err := writeConfig(configPath, "myserver", entry); err != nil {
		t.Fatalf("writeConfig() error: %v", err)
	}

	// Other entry preserved
	otherEntry := readEntry(t, configPath, "other-server")
	if otherEntry["command"] != "/usr/bin/other" {
		t.Errorf("other-server command changed unexpectedly: %v", otherEntry["command"])
	}

	// Updated entry
	myEntry := readEntry(t, configPath, "myserver")
	if myEntry["command"] != "/new/path" {
		t.Errorf("myserver command = %v, want /new/path", myEntry["command"])
	}
}

func Test_writeConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mcp.json")

	os.WriteFile(configPath, []byte("not valid json{{{"), 0644)

	entry := mcpServerEntry{Command: "/usr/bin/myserver"}
	err := writeConfig(configPath, "myserver", entry)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func Test_writeConfig_ServersNotObject(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mcp.json")

	os.WriteFile(configPath, []byte(`{"mcpServers": []}`), 0644)

	if err := writeConfig(configPath, "myserver", mcpServerEntry{Command: "x"}); err == nil {
		t.Fatal("expected error when mcpServers is not an object")
	}
}

func Test_buildEntry(t *testing.T) {
	binaryPath := "/usr/local/bin/assetgraph-mcp"
	serverArgs := []string{"--project-dir", "/projects"}

	entry := buildEntry(binaryPath, serverArgs)

	if runtime.GOOS == "windows" {
		if entry.Command != "cmd" {
			t.Errorf("command = %q, want \"cmd\"", entry.Command)
		}
		if len(entry.Args) < 2 || entry.Args[0] != "/C" || entry.Args[1] != binaryPath {
			t.Errorf("args = %v, want [/C %s --project-dir /projects]", entry.Args, binaryPath)
		}
	} else {
		if entry.Command != binaryPath {
			t.Errorf("command = %q, want %q", entry.Command, binaryPath)
		}
		if !sliceEqual(entry.Args, serverArgs) {
			t.Errorf("args = %v, want %v", entry.Args, serverArgs)
		}
	}
}

func Test_buildEntry_NoArgs(t *testing.T) {
	binaryPath := "/usr/local/bin/assetgraph-mcp"

	entry := buildEntry(binaryPath, nil)

	if runtime.GOOS == "windows" {
		if len(entry.Args) != 2 || entry.Args[0] != "/C" || entry.Args[1] != binaryPath {
			t.Errorf("args = %v, want [/C %s]", entry.Args, binaryPath)
		}
	} else {
		if entry.Command != binaryPath {
			t.Errorf("command = %q, want %q", entry.Command, binaryPath)
		}
		if entry.Args != nil {
			t.Errorf("args = %v, want nil", entry.Args)
		}
	}
}

func Test_resolveConfigPath_Project(t *testing.T) {
	got, err := resolveConfigPath(ScopeProject, ".")
	if err != nil {
		t.Fatalf("resolveConfigPath() error: %v", err)
	}

	absDir, _ := filepath.Abs(".")
	want := filepath.Join(absDir, ".mcp.json")
	if got != want {
		t.Errorf("resolveConfigPath(project, .) = %q, want %q", got, want)
	}
}

func Test_resolveConfigPath_User(t *testing.T) {
	got, err := resolveConfigPath(ScopeUser, "")
	if err != nil {
		t.Fatalf("resolveConfigPath() error: %v", err)
	}

	homeDir, _ := os.UserHomeDir()
	want := filepath.Join(homeDir, ".claude.json")
	if got != want {
		t.Errorf("resolveConfigPath(user, ) = %q, want %q", got, want)
	}
}

func readEntry(t *testing.T, configPath, name string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	var config map[string]interface{}
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	servers, ok := config["mcpServers"].(map[string]interface{})
	if !ok {
		t.Fatal("mcpServers not found or not an object")
	}
	entry, ok := servers[name].(map[string]interface{})
	if !ok {
		t.Fatalf("%s entry not found or not an object", name)
	}
	return entry
}

func sliceEqual(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
