/**
 * CONTEXT:   Server configuration for the debugging-control daemon
 * INPUT:     Configuration file, environment variables, and built-in defaults
 * OUTPUT:    Validated Config ready for session manager and transport startup
 * BUSINESS:  Centralized, load-once configuration for transports, policy, engine and logging
 * CHANGE:    Initial port of the daemon configuration pattern to the debug-session domain
 * RISK:      Low - configuration management with validation and defaults
 */

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration object, loaded once at process start and
// treated as read-only thereafter by every component that holds a reference.
type Config struct {
	Server      ServerConfig      `json:"server"`
	Stdio       StdioConfig       `json:"stdio"`
	Policy      PolicyConfig      `json:"policy"`
	Engine      EngineConfig      `json:"engine"`
	Logging     LoggingConfig     `json:"logging"`
	History     HistoryConfig     `json:"history"`
	Health      HealthConfig      `json:"health"`
	Performance PerformanceConfig `json:"performance"`
}

// ServerConfig configures the canonical TCP line-delimited JSON transport.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StdioConfig configures the interface-compatible stdio transport variant.
type StdioConfig struct {
	Enabled bool `json:"enabled"`
}

// PolicyConfig gates the security-sensitive operations: process launch,
// attach, and which filesystem subtree targets may be created from.
type PolicyConfig struct {
	AllowLaunch bool   `json:"allow_launch"`
	AllowAttach bool   `json:"allow_attach"`
	AllowedRoot string `json:"allowed_root"`
}

// EngineConfig lists where the startup bootstrapper should look for the
// native debugger shared library, tried in order until one loads.
type EngineConfig struct {
	LibraryPaths []string `json:"library_paths"`
}

// LoggingConfig controls the structured logger and where app.log lands.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	LogDir string `json:"log_dir"`
}

// HistoryConfig controls the optional Kuzu-backed session history store.
type HistoryConfig struct {
	Enabled      bool   `json:"enabled"`
	DatabasePath string `json:"database_path"`
}

// HealthConfig controls the side-channel HTTP health/metrics mux.
type HealthConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// PerformanceConfig tunes the Event Buffer and Event Pump.
type PerformanceConfig struct {
	EventBufferCapacity  int           `json:"event_buffer_capacity"`
	DefaultPollLimit     int           `json:"default_poll_limit"`
	PumpPollTimeout      time.Duration `json:"pump_poll_timeout"`
	TerminateJoinTimeout time.Duration `json:"terminate_join_timeout"`
}

const envPrefix = "LLDBMCP_"

/**
 * CONTEXT:   Default configuration values
 * INPUT:     None
 * OUTPUT:    Config populated with production-ready defaults
 * BUSINESS:  Allow zero-configuration startup while permitting overrides
 * CHANGE:    Initial defaults for the debug-session domain
 * RISK:      Low
 */
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8765,
		},
		Stdio: StdioConfig{Enabled: false},
		Policy: PolicyConfig{
			AllowLaunch: true,
			AllowAttach: true,
			AllowedRoot: "",
		},
		Engine: EngineConfig{
			LibraryPaths: []string{
				"/usr/lib/llvm-18/lib/liblldb.so",
				"/usr/lib/llvm-17/lib/liblldb.so",
				"/usr/lib/x86_64-linux-gnu/liblldb.so",
				"/usr/local/lib/liblldb.so",
				"/Library/Developer/CommandLineTools/Library/PrivateFrameworks/LLDB.framework/LLDB",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			LogDir: "logs",
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "logs/history.kuzu",
		},
		Health: HealthConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8766,
		},
		Performance: PerformanceConfig{
			EventBufferCapacity:  1024,
			DefaultPollLimit:     32,
			PumpPollTimeout:      1 * time.Second,
			TerminateJoinTimeout: 1 * time.Second,
		},
	}
}

/**
 * CONTEXT:   Load configuration from file with environment and default fallback
 * INPUT:     Path to a JSON configuration file, may be empty
 * OUTPUT:    Validated Config or an error describing what failed
 * BUSINESS:  File-based configuration overlay on top of built-in defaults
 * CHANGE:    Initial loader for the debug-session domain
 * RISK:      Medium - file I/O and JSON parsing with validation
 */
func Load(configPath string) (*Config, error) {
	cfg := NewDefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file %s: %w", configPath, err)
			}
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", configPath, err)
		}
	}

	applyEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvironment overlays LLDBMCP_-prefixed environment variables on top
// of whatever the file provided.
func applyEnvironment(cfg *Config) {
	if v := os.Getenv(envPrefix + "HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(envPrefix + "PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv(envPrefix + "LOG_DIR"); v != "" {
		cfg.Logging.LogDir = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "ALLOWED_ROOT"); v != "" {
		cfg.Policy.AllowedRoot = v
	}
	if v := os.Getenv(envPrefix + "ALLOW_LAUNCH"); v != "" {
		cfg.Policy.AllowLaunch = v == "true" || v == "1"
	}
	if v := os.Getenv(envPrefix + "ALLOW_ATTACH"); v != "" {
		cfg.Policy.AllowAttach = v == "true" || v == "1"
	}
}

/**
 * CONTEXT:   Validate configuration for internal consistency
 * INPUT:     None, validates the receiver's own fields
 * OUTPUT:    Error describing the first invalid field, nil if the config is usable
 * BUSINESS:  Ensure the daemon can start successfully with the resolved configuration
 * CHANGE:    Initial validation for the debug-session domain
 * RISK:      Low - validation only, no side effects beyond directory creation
 */
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Health.Enabled && (c.Health.Port <= 0 || c.Health.Port > 65535) {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}
	if c.Logging.LogDir == "" {
		return fmt.Errorf("logging.log_dir cannot be empty")
	}
	if err := os.MkdirAll(c.Logging.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log dir %s: %w", c.Logging.LogDir, err)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug|info|warn|error, got %s", c.Logging.Level)
	}
	if c.History.Enabled {
		dir := filepath.Dir(c.History.DatabasePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history database dir %s: %w", dir, err)
		}
	}
	if c.Performance.EventBufferCapacity <= 0 {
		return fmt.Errorf("performance.event_buffer_capacity must be positive, got %d", c.Performance.EventBufferCapacity)
	}
	if c.Performance.DefaultPollLimit <= 0 {
		return fmt.Errorf("performance.default_poll_limit must be positive, got %d", c.Performance.DefaultPollLimit)
	}
	if c.Performance.PumpPollTimeout <= 0 {
		return fmt.Errorf("performance.pump_poll_timeout must be positive, got %v", c.Performance.PumpPollTimeout)
	}
	if len(c.Engine.LibraryPaths) == 0 {
		return fmt.Errorf("engine.library_paths must list at least one candidate path")
	}
	return nil
}

// TranscriptPath returns the per-session transcript file path for sessionID.
func (c *Config) TranscriptPath(sessionID string) string {
	return filepath.Join(c.Logging.LogDir, "transcript_"+sessionID+".log")
}

// EngineLogPath returns the native engine's own trace-log path for sessionID.
func (c *Config) EngineLogPath(sessionID string) string {
	return filepath.Join(c.Logging.LogDir, "lldb_"+sessionID+".log")
}

// AppLogPath returns the server lifecycle/audit log path.
func (c *Config) AppLogPath() string {
	return filepath.Join(c.Logging.LogDir, "app.log")
}
