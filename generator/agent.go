package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voicecode/logging"
	"voicecode/model"
)

// Agent 负责调用模型并把原始输出解释为结构化结果。
type Agent struct {
	llm      LLMClient
	provider string
	logger   *slog.Logger
}

func NewAgent(llm LLMClient, logger *slog.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	provider := "custom"
	switch c := llm.(type) {
	case *OpenAILLM:
		provider = c.Provider
	case MockLLM:
		provider = "mock"
	}
	return &Agent{
		llm:      llm,
		provider: provider,
		logger:   logging.OrNop(logger).With("component", "agent"),
	}, nil
}

// Generate 根据是否有 current 文件决定生成或编辑模式。
// 模型调用失败时不会产生任何结果，调用方也就不会写盘。
func (a *Agent) Generate(ctx context.Context, request string, current []model.FileArtifact) (model.GenerationResult, error) {
	prompt := BuildGeneratePrompt(request)
	if len(current) > 0 {
		p, err := BuildEditPrompt(request, current)
		if err != nil {
			return model.GenerationResult{}, err
		}
		prompt = p
	}

	start := time.Now()
	a.logger.Info("calling model", "provider", a.provider, "mode", prompt.Mode, "files", len(current))
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.Error("model call failed", "provider", a.provider, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return model.GenerationResult{}, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return model.GenerationResult{}, &TransportError{Provider: a.provider, Err: err}
	}
	a.logger.Debug("model replied", "elapsed", time.Since(start), "bytes", len(raw))

	result, err := Interpret(raw)
	if err != nil {
		a.logger.Warn("model output rejected", "error", err)
		return model.GenerationResult{}, err
	}
	a.logger.Info("model result", "kind", result.Kind, "files", len(result.Files), "edits", len(result.Edits))
	return result, nil
}
