// Package agent implements the turn loop: the state machine alternating
// reasoning steps with tool execution over an append-only message log.
package agent

import "github.com/sashabaranov/go-openai"

// Append combines a log with newly produced messages, returning a fresh
// slice. The inputs are never mutated; callers own the returned value.
func Append(log []openai.ChatCompletionMessage, delta ...openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(log)+len(delta))
	out = append(out, log...)
	out = append(out, delta...)
	return out
}

// UserMessage builds a user log entry.
func UserMessage(text string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}
}

// FinalText returns the text of the last assistant message carrying no
// pending tool calls, or "" when the log holds none.
func FinalText(log []openai.ChatCompletionMessage) string {
	for i := len(log) - 1; i >= 0; i-- {
		m := log[i]
		if m.Role == openai.ChatMessageRoleAssistant && len(m.ToolCalls) == 0 {
			return m.Content
		}
	}
	return ""
}
