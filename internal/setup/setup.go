// Package setup registers the MCP server in a desktop MCP client's
// configuration file.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ServerName is the key the server is registered under
const ServerName = "lab-report-explainer"

// ClientConfig is the subset of the client config file we manage. Unknown
// top-level keys are preserved in Extra.
type ClientConfig struct {
	MCPServers map[string]ServerEntry     `json:"mcpServers"`
	Extra      map[string]json.RawMessage `json:"-"`
}

// ServerEntry launches one MCP server
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options controls Register
type Options struct {
	BinaryPath string
	ConfigFile string // passed to the server as --config
	Env        map[string]string
}

// Status describes the current registration
type Status struct {
	ConfigPath string
	Registered bool
	Entry      ServerEntry
	Issues     []string
}

// DefaultClientConfigPath returns the per-OS location of the desktop
// client's claude_desktop_config.json.
func DefaultClientConfigPath() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Claude", "claude_desktop_config.json"), nil
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, "Claude", "claude_desktop_config.json"), nil
	}
}

// Load reads a client config. A missing file yields an empty config.
func Load(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		MCPServers: make(map[string]ServerEntry),
		Extra:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.Extra); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := cfg.Extra["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(cfg.Extra, "mcpServers")
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]ServerEntry)
	}
	return cfg, nil
}

// Save writes the config, creating its directory when needed
func Save(path string, cfg *ClientConfig) error {
	out := make(map[string]any, len(cfg.Extra)+1)
	for k, v := range cfg.Extra {
		out[k] = v
	}
	out["mcpServers"] = cfg.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Register adds or replaces the server entry in the client config at path
func Register(path string, opts Options) (ServerEntry, error) {
	binary := opts.BinaryPath
	if binary == "" {
		found, err := findBinary()
		if err != nil {
			return ServerEntry{}, err
		}
		binary = found
	}
	if abs, err := filepath.Abs(binary); err == nil {
		binary = abs
	}

	cfg, err := Load(path)
	if err != nil {
		return ServerEntry{}, err
	}

	entry := ServerEntry{Command: binary, Args: []string{"mcp"}, Env: opts.Env}
	if opts.ConfigFile != "" {
		entry.Args = append(entry.Args, "--config", opts.ConfigFile)
	}
	cfg.MCPServers[ServerName] = entry

	if err := Save(path, cfg); err != nil {
		return ServerEntry{}, err
	}
	return entry, nil
}

// Unregister removes the server entry. It reports whether one existed.
func Unregister(path string) (bool, error) {
	cfg, err := Load(path)
	if err != nil {
		return false, err
	}
	if _, ok := cfg.MCPServers[ServerName]; !ok {
		return false, nil
	}
	delete(cfg.MCPServers, ServerName)
	return true, Save(path, cfg)
}

// GetStatus inspects the registration at path
func GetStatus(path string) (*Status, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	status := &Status{ConfigPath: path, Issues: []string{}}
	entry, ok := cfg.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "server is not registered")
		return status, nil
	}

	status.Registered = true
	status.Entry = entry
	info, err := os.Stat(entry.Command)
	switch {
	case err != nil:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary not found: %s", entry.Command))
	case info.Mode()&0o111 == 0 && runtime.GOOS != "windows":
		status.Issues = append(status.Issues, fmt.Sprintf("server binary is not executable: %s", entry.Command))
	}
	return status, nil
}

func findBinary() (string, error) {
	if exe, err := os.Executable(); err == nil {
		return exe, nil
	}
	if path, err := exec.LookPath("labreport"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("labreport binary not found; pass --binary")
}
