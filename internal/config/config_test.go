package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func init() {
	keyring.MockInit()
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Server.Port != 8089 {
		t.Errorf("expected port 8089, got %d", cfg.Server.Port)
	}
	if cfg.Server.DefaultProjectID != "default" {
		t.Errorf("expected default project id \"default\", got %q", cfg.Server.DefaultProjectID)
	}
	if cfg.Upstream.DefaultMaxOutputTokens != 4096 {
		t.Errorf("expected default max output tokens 4096, got %d", cfg.Upstream.DefaultMaxOutputTokens)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	current = nil
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8089 {
		t.Errorf("expected defaults when file is absent, got %+v", cfg)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	current = nil
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Server.DefaultProjectID = "acme"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current = nil
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Port != 9100 || loaded.Server.DefaultProjectID != "acme" {
		t.Errorf("round-trip mismatch: %+v", loaded)
	}
}

func TestSaveNeverPersistsCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Upstream.OpenAIAPIKey = "sk-should-not-be-written"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(raw), "sk-should-not-be-written") {
		t.Error("credential leaked into persisted config file")
	}
}

func TestEnvOverridesApplyOnLoad(t *testing.T) {
	current = nil
	t.Setenv("TOKENCAP_OPENAI_API_KEY", "sk-from-env")
	t.Setenv("TOKENCAP_DEFAULT_PROJECT_ID", "env-project")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.OpenAIAPIKey != "sk-from-env" {
		t.Errorf("expected env override for OpenAIAPIKey, got %q", cfg.Upstream.OpenAIAPIKey)
	}
	if cfg.Server.DefaultProjectID != "env-project" {
		t.Errorf("expected env override for DefaultProjectID, got %q", cfg.Server.DefaultProjectID)
	}
}

func TestKeyringFallback_UsedWhenEnvAbsent(t *testing.T) {
	current = nil
	if err := keyring.Set("tokencap-gateway", "anthropic", "sk-from-keyring"); err != nil {
		t.Fatalf("keyring.Set: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.AnthropicAPIKey != "sk-from-keyring" {
		t.Errorf("expected keyring fallback for AnthropicAPIKey, got %q", cfg.Upstream.AnthropicAPIKey)
	}
}

func TestEnvTakesPrecedenceOverKeyring(t *testing.T) {
	current = nil
	if err := keyring.Set("tokencap-gateway", "openai", "sk-from-keyring"); err != nil {
		t.Fatalf("keyring.Set: %v", err)
	}
	t.Setenv("TOKENCAP_OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.OpenAIAPIKey != "sk-from-env" {
		t.Errorf("expected env to win over keyring, got %q", cfg.Upstream.OpenAIAPIKey)
	}
}
