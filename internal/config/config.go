// Package config provides configuration management for the gateway.
// Configuration starts from built-in defaults, is overlaid by an optional
// JSON file, and then environment variables override selected fields; the
// OS keyring fills in credentials the environment leaves unset.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/tokencap/gateway/internal/security"
)

// Config represents the gateway's full runtime configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Ledger   LedgerConfig   `json:"ledger"`
	Upstream UpstreamConfig `json:"upstream"`
}

// ServerConfig contains listen and project-identity settings.
type ServerConfig struct {
	// Host is the listen address, e.g. "0.0.0.0".
	Host string `json:"host"`

	// Port is the listen port.
	Port int `json:"port"`

	// DefaultProjectID is used when a request supplies no
	// X-Tokencap-Project-Id header and no project_id query parameter.
	DefaultProjectID string `json:"default_project_id"`
}

// LedgerConfig contains the Ledger Store's database settings.
type LedgerConfig struct {
	// DatabasePath is the single-file SQLite database path.
	DatabasePath string `json:"database_path"`
}

// UpstreamConfig contains server-configured fallback credentials and
// timeouts for the upstream provider adapters.
type UpstreamConfig struct {
	OpenAIAPIKey    string `json:"-"`
	AnthropicAPIKey string `json:"-"`

	// DefaultMaxOutputTokens is the configurable fallback used by the
	// output estimation ladder when a request specifies no max and the
	// model has no documented default.
	DefaultMaxOutputTokens int `json:"default_max_output_tokens"`

	ConnectTimeoutSeconds int `json:"connect_timeout_seconds"`
	TotalTimeoutSeconds   int `json:"total_timeout_seconds"`
}

var (
	current *Config
	mu      sync.RWMutex
)

// DefaultConfig returns the gateway's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8089,
			DefaultProjectID: "default",
		},
		Ledger: LedgerConfig{
			DatabasePath: "./tokencap.db",
		},
		Upstream: UpstreamConfig{
			DefaultMaxOutputTokens: 4096,
			ConnectTimeoutSeconds:  30,
			TotalTimeoutSeconds:    300,
		},
	}
}

// Load reads the configuration file at path, overlaying it onto the
// defaults, then applies environment-variable overrides for credentials
// that should never be persisted to disk. If path does not exist, the
// defaults (plus environment overrides) are returned.
func Load(path string) (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	applyKeyringFallback(cfg)
	current = cfg
	return cfg, nil
}

// Save writes cfg to path as indented JSON. Credential fields are tagged
// `json:"-"` and are never written to disk.
func Save(cfg *Config, path string) error {
	mu.Lock()
	defer mu.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	current = cfg
	return nil
}

// Get returns the most recently loaded configuration, or the defaults if
// Load has not been called yet.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if current != nil {
		return current
	}
	return DefaultConfig()
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TOKENCAP_OPENAI_API_KEY"); v != "" {
		cfg.Upstream.OpenAIAPIKey = v
	}
	if v := os.Getenv("TOKENCAP_ANTHROPIC_API_KEY"); v != "" {
		cfg.Upstream.AnthropicAPIKey = v
	}
	if v := os.Getenv("TOKENCAP_DB_PATH"); v != "" {
		cfg.Ledger.DatabasePath = v
	}
	if v := os.Getenv("TOKENCAP_DEFAULT_PROJECT_ID"); v != "" {
		cfg.Server.DefaultProjectID = v
	}
	if v := os.Getenv("TOKENCAP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// applyKeyringFallback fills in any credential left empty by the
// environment from the OS keyring, for operators who manage provider
// keys with `security.SetAPIKey` instead of process environment
// variables. Environment variables always win when both are set.
func applyKeyringFallback(cfg *Config) {
	if cfg.Upstream.OpenAIAPIKey == "" {
		if key, err := security.GetAPIKey("openai"); err == nil && key != "" {
			cfg.Upstream.OpenAIAPIKey = key
		}
	}
	if cfg.Upstream.AnthropicAPIKey == "" {
		if key, err := security.GetAPIKey("anthropic"); err == nil && key != "" {
			cfg.Upstream.AnthropicAPIKey = key
		}
	}
}
