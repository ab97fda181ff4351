package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pk049/Email-agent/internal/logger"
	"github.com/pk049/Email-agent/internal/ops"

	"github.com/sashabaranov/go-openai"
)

// Executor resolves and runs tool-call requests against the operation
// registry.
type Executor struct {
	registry *ops.Registry
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *ops.Registry) *Executor {
	return &Executor{registry: registry}
}

// Run executes every request and returns exactly one result message per
// request, tagged with its call id. Sibling requests run concurrently, but
// results are emitted in request order regardless of completion order. An
// unresolvable name or failing operation becomes an error payload the
// reasoner can react to on the next cycle; nothing here faults the loop.
func (e *Executor) Run(ctx context.Context, calls []openai.ToolCall) []openai.ChatCompletionMessage {
	results := make([]openai.ChatCompletionMessage, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call openai.ToolCall) {
			defer wg.Done()
			results[i] = openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    e.execute(ctx, call),
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			}
		}(i, call)
	}
	wg.Wait()

	return results
}

func (e *Executor) execute(ctx context.Context, call openai.ToolCall) string {
	name := call.Function.Name

	op, found := e.registry.Resolve(name)
	if !found {
		logger.L.Warn("tool call named unknown operation", "operation", name, "call_id", call.ID)
		return ops.Encode(nil, fmt.Errorf("unknown operation %q", name))
	}

	args := map[string]any{}
	if raw := call.Function.Arguments; raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			logger.L.Warn("tool call carried malformed arguments", "operation", name, "call_id", call.ID, "error", err)
			return ops.Encode(nil, fmt.Errorf("could not parse arguments for %s: %v", name, err))
		}
	}

	payload, err := op.Run(ctx, args)
	if err != nil {
		logger.L.Warn("operation reported failure", "operation", name, "call_id", call.ID, "error", err)
	}
	return ops.Encode(payload, err)
}
