package agent

import "github.com/sashabaranov/go-openai"

// Decision is the router's verdict on the message the reasoner just
// produced.
type Decision int

const (
	// Done ends the turn; the last assistant message is the reply.
	Done Decision = iota
	// Continue hands the pending tool calls to the executor.
	Continue
)

// Route inspects the latest message: an assistant message with pending tool
// calls continues into execution, anything else ends the turn. Purely
// structural, no I/O.
func Route(last openai.ChatCompletionMessage) Decision {
	if last.Role == openai.ChatMessageRoleAssistant && len(last.ToolCalls) > 0 {
		return Continue
	}
	return Done
}
