package llm

import (
	"github.com/pk049/Email-agent/internal/config"
	"github.com/sashabaranov/go-openai"
)

// NewClient creates the OpenAI-compatible client used as the reasoning
// capability.
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return openai.NewClientWithConfig(clientCfg)
}
