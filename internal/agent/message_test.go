package agent

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestAppend_PreservesOrderAndInputs(t *testing.T) {
	log := []openai.ChatCompletionMessage{
		UserMessage("one"),
		{Role: openai.ChatMessageRoleAssistant, Content: "two"},
	}
	delta := []openai.ChatCompletionMessage{
		UserMessage("three"),
		{Role: openai.ChatMessageRoleAssistant, Content: "four"},
	}

	combined := Append(log, delta...)
	require.Len(t, combined, 4)
	require.Equal(t, "one", combined[0].Content)
	require.Equal(t, "two", combined[1].Content)
	require.Equal(t, "three", combined[2].Content)
	require.Equal(t, "four", combined[3].Content)

	// The original log is untouched, including when the result is appended
	// to afterwards.
	_ = append(combined, UserMessage("five"))
	require.Len(t, log, 2)
	require.Equal(t, "two", log[1].Content)
}

func TestAppend_EmptyDelta(t *testing.T) {
	log := []openai.ChatCompletionMessage{UserMessage("only")}
	combined := Append(log)
	require.Len(t, combined, 1)
}

func TestFinalText(t *testing.T) {
	log := []openai.ChatCompletionMessage{
		UserMessage("count unread"),
		{Role: openai.ChatMessageRoleAssistant, ToolCalls: []openai.ToolCall{{ID: "call_1"}}},
		{Role: openai.ChatMessageRoleTool, ToolCallID: "call_1", Content: `{"success":true}`},
		{Role: openai.ChatMessageRoleAssistant, Content: "You have 5 unread emails."},
	}
	require.Equal(t, "You have 5 unread emails.", FinalText(log))
	require.Empty(t, FinalText(log[:3]))
	require.Empty(t, FinalText(nil))
}
