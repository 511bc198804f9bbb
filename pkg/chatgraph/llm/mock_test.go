package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
)

func TestMockClient_FixedResponse(t *testing.T) {
	mock := llm.NewMockClient("Hello, world!")

	resp, err := mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestMockClient_SequentialResponses(t *testing.T) {
	mock := llm.NewMockClient("").WithResponses("first", "second")

	for _, want := range []string{"first", "second", "first"} {
		resp, err := mock.Complete(context.Background(), llm.CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
}

func TestMockClient_WithError(t *testing.T) {
	expectedErr := errors.New("rate limited")
	mock := llm.NewMockClient("").WithError(expectedErr)

	_, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	assert.Equal(t, expectedErr, err)
}

func TestMockClient_ScriptedToolCalls(t *testing.T) {
	mock := llm.NewMockClient("").WithScript(
		llm.ToolCallResponse("call-1", "get_data", `{}`),
		llm.TextResponse("done"),
	)

	resp, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_data", resp.ToolCalls[0].Name)
	assert.Equal(t, "call-1", resp.ToolCalls[0].ID)
	assert.Equal(t, "tool_calls", resp.FinishReason)

	resp, err = mock.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "done", resp.Content)
}

func TestMockClient_CallTracking(t *testing.T) {
	mock := llm.NewMockClient("response")

	assert.Nil(t, mock.LastCall())

	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "first"}},
	})
	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "second"}},
	})

	assert.Equal(t, 2, mock.CallCount())
	require.NotNil(t, mock.LastCall())
	assert.Equal(t, "second", mock.LastCall().Messages[0].Content)

	mock.Reset()
	assert.Equal(t, 0, mock.CallCount())
}
