package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pk049/Email-agent/internal/ops"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func echoCall(id, value string) openai.ToolCall {
	return openai.ToolCall{
		ID:       id,
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: "echo", Arguments: `{"value":"` + value + `"}`},
	}
}

func executorRegistry(t *testing.T) *ops.Registry {
	t.Helper()
	reg, err := ops.NewRegistry(
		&ops.Operation{
			Name: "echo",
			Run: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return map[string]any{"value": args["value"]}, nil
			},
		},
		&ops.Operation{
			Name: "slow_echo",
			Run: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				time.Sleep(30 * time.Millisecond)
				return map[string]any{"value": args["value"]}, nil
			},
		},
	)
	require.NoError(t, err)
	return reg
}

// Every request yields exactly one result with its own call id, even when
// the name is unknown.
func TestExecutor_UnknownOperation(t *testing.T) {
	e := NewExecutor(executorRegistry(t))

	results := e.Run(context.Background(), []openai.ToolCall{{
		ID:       "call_x",
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: "does_not_exist", Arguments: `{}`},
	}})

	require.Len(t, results, 1)
	require.Equal(t, "call_x", results[0].ToolCallID)
	require.Equal(t, "does_not_exist", results[0].Name)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(results[0].Content), &payload))
	require.Equal(t, false, payload["success"])
	require.Contains(t, payload["error"], "unknown operation")
}

func TestExecutor_MalformedArguments(t *testing.T) {
	e := NewExecutor(executorRegistry(t))

	results := e.Run(context.Background(), []openai.ToolCall{{
		ID:       "call_bad",
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: "echo", Arguments: `{not json`},
	}})

	require.Len(t, results, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(results[0].Content), &payload))
	require.Equal(t, false, payload["success"])
	require.Contains(t, payload["error"], "could not parse arguments")
}

// Results come back in request order even when an earlier request finishes
// last.
func TestExecutor_ResultOrderMatchesRequestOrder(t *testing.T) {
	e := NewExecutor(executorRegistry(t))

	calls := []openai.ToolCall{
		{
			ID:       "call_slow",
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: "slow_echo", Arguments: `{"value":"first"}`},
		},
		echoCall("call_fast", "second"),
		echoCall("call_third", "third"),
	}

	results := e.Run(context.Background(), calls)
	require.Len(t, results, 3)
	require.Equal(t, "call_slow", results[0].ToolCallID)
	require.Equal(t, "call_fast", results[1].ToolCallID)
	require.Equal(t, "call_third", results[2].ToolCallID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(results[0].Content), &payload))
	require.Equal(t, "first", payload["value"])
}

func TestExecutor_NoArguments(t *testing.T) {
	e := NewExecutor(executorRegistry(t))

	results := e.Run(context.Background(), []openai.ToolCall{{
		ID:       "call_empty",
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: "echo"},
	}})

	require.Len(t, results, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(results[0].Content), &payload))
	require.Equal(t, true, payload["success"])
}
