package generator

import (
	"context"
	"time"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。返回模型的原始文本。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// DefaultTimeout bounds one model call. Generation of a whole app is slow, so
// it is generous; there is no retry.
const DefaultTimeout = 5 * time.Minute

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}
