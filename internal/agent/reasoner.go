package agent

import (
	"context"

	"github.com/pk049/Email-agent/internal/llm"
	"github.com/pk049/Email-agent/internal/logger"

	"github.com/sashabaranov/go-openai"
)

// Reasoner invokes the reasoning capability over the full log plus the
// system directive and returns exactly one new message.
type Reasoner struct {
	client       llm.Client
	model        string
	systemPrompt string
}

// NewReasoner builds a reasoner; an empty prompt falls back to the default
// mailbox directive.
func NewReasoner(client llm.Client, model, systemPrompt string) *Reasoner {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &Reasoner{client: client, model: model, systemPrompt: systemPrompt}
}

// Step runs one reasoning invocation. The system directive is prepended to
// the invocation view only when the log carries none; stored history is
// never mutated. Invocation errors never propagate: they come back as a
// synthetic assistant message with diagnostic text and no tool calls, so
// the router always ends the turn.
func (r *Reasoner) Step(ctx context.Context, log []openai.ChatCompletionMessage, tools []openai.Tool) openai.ChatCompletionMessage {
	view := log
	if !hasSystemMessage(log) {
		view = Append([]openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: r.systemPrompt,
		}}, log...)
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: view,
		Tools:    tools,
	})
	if err != nil {
		logger.L.Error("reasoning invocation failed", "error", err)
		return diagnosticMessage(err)
	}
	if len(resp.Choices) == 0 {
		logger.L.Error("reasoning invocation returned no choices")
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: "I could not produce a response for that request. Please try again.",
		}
	}
	return resp.Choices[0].Message
}

func diagnosticMessage(err error) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "I ran into a problem while processing your request: " + err.Error(),
	}
}

func hasSystemMessage(log []openai.ChatCompletionMessage) bool {
	for _, m := range log {
		if m.Role == openai.ChatMessageRoleSystem {
			return true
		}
	}
	return false
}
