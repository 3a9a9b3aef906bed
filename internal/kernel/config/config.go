// Package config loads the kernel's YAML configuration file: server
// binding, provider defaults, dispatcher containment, and logging,
// following internal/agent/options.go's Default*/merge* pattern.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level kernel configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Provider   ProviderConfig   `yaml:"provider"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the realtime (websocket) transport demo.
type ServerConfig struct {
	// Addr is the listen address for the realtime channel, e.g. ":8090".
	Addr string `yaml:"addr"`
}

// ProviderConfig supplies the defaults a newly created agent inherits
// when its own fields are left blank.
type ProviderConfig struct {
	Kind            string  `yaml:"kind"`
	Model           string  `yaml:"model"`
	Endpoint        string  `yaml:"endpoint"`
	CredentialEnv   string  `yaml:"credential_env"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// DispatcherConfig configures the tool dispatcher's containment surface.
type DispatcherConfig struct {
	// ProjectsBase is the directory project bindings resolve under.
	ProjectsBase string `yaml:"projects_base"`
	// MaxDepth bounds tool/delegation recursion.
	MaxDepth int `yaml:"max_depth"`
	// ExtraBlockedCommands are additional regexps layered onto the
	// dispatcher's compiled-in command blocklist, hot-reloadable.
	ExtraBlockedCommands []string `yaml:"extra_blocked_commands"`
}

// LoggingConfig configures the process-wide slog.Logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the baseline configuration used when no file is
// present and as the base merge* starts from.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8090"},
		Provider: ProviderConfig{
			Kind:            "anthropic",
			Model:           "claude-sonnet-4-20250514",
			CredentialEnv:   "ANTHROPIC_API_KEY",
			Temperature:     0.7,
			MaxOutputTokens: 4096,
		},
		Dispatcher: DispatcherConfig{
			ProjectsBase: "/projects",
			MaxDepth:     5,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and parses a YAML config file at path, merging it over
// DefaultConfig. A missing file is not an error: the defaults are
// returned as-is, matching a fresh single-binary deployment.
func Load(path string) (Config, error) {
	base := DefaultConfig()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return merge(base, override), nil
}

func merge(base, override Config) Config {
	merged := base

	if override.Server.Addr != "" {
		merged.Server.Addr = override.Server.Addr
	}

	if override.Provider.Kind != "" {
		merged.Provider.Kind = override.Provider.Kind
	}
	if override.Provider.Model != "" {
		merged.Provider.Model = override.Provider.Model
	}
	if override.Provider.Endpoint != "" {
		merged.Provider.Endpoint = override.Provider.Endpoint
	}
	if override.Provider.CredentialEnv != "" {
		merged.Provider.CredentialEnv = override.Provider.CredentialEnv
	}
	if override.Provider.Temperature != 0 {
		merged.Provider.Temperature = override.Provider.Temperature
	}
	if override.Provider.MaxOutputTokens != 0 {
		merged.Provider.MaxOutputTokens = override.Provider.MaxOutputTokens
	}

	if override.Dispatcher.ProjectsBase != "" {
		merged.Dispatcher.ProjectsBase = override.Dispatcher.ProjectsBase
	}
	if override.Dispatcher.MaxDepth != 0 {
		merged.Dispatcher.MaxDepth = override.Dispatcher.MaxDepth
	}
	if len(override.Dispatcher.ExtraBlockedCommands) > 0 {
		merged.Dispatcher.ExtraBlockedCommands = override.Dispatcher.ExtraBlockedCommands
	}

	if override.Logging.Level != "" {
		merged.Logging.Level = override.Logging.Level
	}
	if override.Logging.JSON {
		merged.Logging.JSON = true
	}

	return merged
}

// Logger builds a *slog.Logger from cfg.Logging.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.Logging.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// Credential resolves the provider credential for the configured
// CredentialEnv variable, returning "" if unset.
func (p ProviderConfig) Credential() string {
	if p.CredentialEnv == "" {
		return ""
	}
	return os.Getenv(p.CredentialEnv)
}

// reloadInterval is how often cmd/kernel's watcher debounces successive
// fsnotify events for the same file before re-reading it.
const reloadInterval = 200 * time.Millisecond

// ReloadDebounce exposes reloadInterval to callers outside the package.
func ReloadDebounce() time.Duration { return reloadInterval }
