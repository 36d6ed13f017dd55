package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	DefaultServerAddr    = ":8080"
	DefaultWorkspaceRoot = "GeneratedApp"
	DefaultTimeout       = 5 * time.Minute
)

// Config holds process settings, read from a JSON file.
type Config struct {
	LLM            *LLMConfig `json:"llm,omitempty"`
	ServerAddr     string     `json:"server_addr,omitempty"`
	WorkspaceRoot  string     `json:"workspace_root,omitempty"`
	TimeoutSeconds int        `json:"timeout_seconds,omitempty"`
	Verbose        bool       `json:"verbose,omitempty"`
}

// LLMConfig 模型配置；api_key 为空时从 api_key_env 指定的环境变量读取。
type LLMConfig struct {
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
}

// Default returns a config that runs against the mock model.
func Default() Config {
	return Config{
		LLM:           &LLMConfig{Provider: "mock"},
		ServerAddr:    DefaultServerAddr,
		WorkspaceRoot: DefaultWorkspaceRoot,
	}
}

// Load reads JSON config from disk. A missing file yields Default().
// llm.provider may be left empty here and supplied by a command-line flag.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.LLM == nil {
		cfg.LLM = &LLMConfig{}
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = DefaultServerAddr
	}
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = DefaultWorkspaceRoot
	}
	if cfg.TimeoutSeconds < 0 {
		return Config{}, fmt.Errorf("timeout_seconds must be positive, got %d", cfg.TimeoutSeconds)
	}
	return cfg, nil
}

// Timeout is the per-call model timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveAPIKey prefers the inline key, then the named environment variable.
func (l LLMConfig) ResolveAPIKey() string {
	if l.APIKey != "" {
		return l.APIKey
	}
	if l.APIKeyEnv != "" {
		return os.Getenv(l.APIKeyEnv)
	}
	return ""
}
