package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"voicecode/config"
	"voicecode/generator"
	"voicecode/logging"
)

var (
	configPath string
	verbose    bool

	// 覆盖配置文件中的模型设置
	llmProvider string
	llmModel    string
	llmBaseURL  string
	llmAPIKey   string

	workspaceRoot string
)

var rootCmd = &cobra.Command{
	Use:   "voicecode",
	Short: "Generate and edit small HTML/CSS/JS apps with an LLM",
	Long: `voicecode asks a language model for a small web app (index.html,
style.css, app.js), writes it to a workspace directory, and applies
follow-up edits as region patches so untouched code stays intact.

Examples:
  voicecode serve --addr :8080
  voicecode generate "a todo list with a dark theme"
  voicecode generate --edit "make the button red"
  voicecode serve --provider ollama --model llama3.2`,
	SilenceUsage: true,
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.json", "path to config.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")

	rootCmd.PersistentFlags().StringVar(&llmProvider, "provider", "", "LLM provider: openai, deepseek, ollama, mock")
	rootCmd.PersistentFlags().StringVar(&llmModel, "model", "", "model name")
	rootCmd.PersistentFlags().StringVar(&llmBaseURL, "base-url", "", "OpenAI-compatible endpoint")
	rootCmd.PersistentFlags().StringVar(&llmAPIKey, "api-key", "", "API key (or set api_key_env in config)")
	rootCmd.PersistentFlags().StringVar(&workspaceRoot, "workspace", "", "workspace root directory (overrides config.workspace_root)")
}

// loadConfig 读取配置文件，再用命令行参数覆盖。
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.LLM == nil {
		cfg.LLM = &config.LLMConfig{}
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmBaseURL != "" {
		cfg.LLM.BaseURL = llmBaseURL
	}
	if llmAPIKey != "" {
		cfg.LLM.APIKey = llmAPIKey
	}
	if workspaceRoot != "" {
		cfg.WorkspaceRoot = workspaceRoot
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Verbose)
}

func buildAgent(cfg config.Config, logger *slog.Logger) (*generator.Agent, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, logger)
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key_env in config")
	}
	switch cfg.LLM.Provider {
	case "mock":
		return generator.MockLLM{}, nil
	case "openai", "deepseek", "ollama":
		// 三者都走 OpenAI 兼容接口；deepseek 需填写 base_url，ollama 默认本机地址。
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.ResolveAPIKey(),
			BaseURL:  cfg.LLM.BaseURL,
			Timeout:  cfg.Timeout(),
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
