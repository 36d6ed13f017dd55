package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Provider != "mock" || cfg.ServerAddr != DefaultServerAddr || cfg.WorkspaceRoot != DefaultWorkspaceRoot {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout() != DefaultTimeout {
		t.Fatalf("unexpected timeout %v", cfg.Timeout())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"llm":{"provider":"ollama","model":"llama3.2"},"workspace_root":"/tmp/ws","timeout_seconds":30}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3.2" {
		t.Fatalf("unexpected llm: %+v", cfg.LLM)
	}
	if cfg.WorkspaceRoot != "/tmp/ws" || cfg.ServerAddr != DefaultServerAddr {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Timeout())
	}
}

func TestLoadLeavesProviderToFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"llm":{"provider":"","model":"m"},"workspace_root":"ws"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM == nil || cfg.LLM.Provider != "" || cfg.LLM.Model != "m" {
		t.Fatalf("unexpected llm: %+v", cfg.LLM)
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"timeout_seconds":-1}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("VOICECODE_TEST_KEY", "from-env")
	if got := (LLMConfig{APIKey: "inline", APIKeyEnv: "VOICECODE_TEST_KEY"}).ResolveAPIKey(); got != "inline" {
		t.Fatalf("got %q", got)
	}
	if got := (LLMConfig{APIKeyEnv: "VOICECODE_TEST_KEY"}).ResolveAPIKey(); got != "from-env" {
		t.Fatalf("got %q", got)
	}
}
