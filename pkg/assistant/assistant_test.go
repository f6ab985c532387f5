package assistant

import (
	"context"
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementolabs/memento-go/pkg/core"
	fileStore "github.com/mementolabs/memento-go/pkg/store/file"
)

// scriptedChat returns canned responses in order and records every request.
type scriptedChat struct {
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
}

func (s *scriptedChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			}},
		},
	}
}

func toolCallResponse(id, name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{
					{
						ID:   id,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      name,
							Arguments: arguments,
						},
					},
				},
			}},
		},
	}
}

func setupAssistant(t *testing.T, chat *scriptedChat) (*Assistant, *core.Client) {
	t.Helper()

	st, err := fileStore.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	memories := core.NewClientWithStore(&core.Config{
		Storage: core.StorageConfig{Provider: "file"},
	}, st)

	a, err := newWithChat(chat, "gpt-4o-mini", memories)
	require.NoError(t, err)
	return a, memories
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(&core.Config{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestNewSession(t *testing.T) {
	a, _ := setupAssistant(t, &scriptedChat{})

	first := a.NewSession("alice")
	second := a.NewSession("alice")

	assert.Equal(t, "alice", first.UserID)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, first.messages, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, first.messages[0].Role)
}

func TestChat_PlainReply(t *testing.T) {
	chat := &scriptedChat{responses: []openai.ChatCompletionResponse{
		textResponse("Hello! I can store and recall memories for you."),
	}}
	a, _ := setupAssistant(t, chat)

	reply, err := a.Chat(context.Background(), a.NewSession("alice"), "hi")
	require.NoError(t, err)
	assert.Contains(t, reply, "store and recall")

	require.Len(t, chat.requests, 1)
	assert.Len(t, chat.requests[0].Tools, 6)
}

func TestChat_ToolCallRoundTrip(t *testing.T) {
	chat := &scriptedChat{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call_1", "store_memory",
			`{"text": "remember my dentist appointment is next tuesday #health"}`),
		textResponse("Saved your dentist appointment."),
	}}
	a, memories := setupAssistant(t, chat)

	session := a.NewSession("alice")
	reply, err := a.Chat(context.Background(), session, "remember my dentist appointment is next tuesday #health")
	require.NoError(t, err)
	assert.Equal(t, "Saved your dentist appointment.", reply)

	// The tool result went back to the model as a tool message.
	require.Len(t, chat.requests, 2)
	second := chat.requests[1].Messages
	last := second[len(second)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)

	// And the memory was actually persisted for the session's user.
	stored, err := memories.Search(context.Background(), "alice", core.WithQuery("dentist"))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, []string{"health"}, stored[0].Tags)
}

func TestExecuteTool_DeleteAndList(t *testing.T) {
	a, memories := setupAssistant(t, &scriptedChat{})
	ctx := context.Background()

	memory, err := memories.Store(ctx, "alice", "note to delete")
	require.NoError(t, err)

	out, err := a.executeTool(ctx, "alice", "delete_memory",
		`{"memory_id": `+jsonNumber(memory.ID)+`}`)
	require.NoError(t, err)
	var deleted map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &deleted))
	assert.Equal(t, true, deleted["deleted"])

	out, err = a.executeTool(ctx, "alice", "list_memory_users", "{}")
	require.NoError(t, err)
	var listed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Equal(t, float64(1), listed["user_count"])
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	a, _ := setupAssistant(t, &scriptedChat{})

	_, err := a.executeTool(context.Background(), "alice", "drop_all_memories", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestChatToolNames(t *testing.T) {
	var names []string
	for _, tool := range chatTools() {
		names = append(names, tool.Function.Name)
	}
	assert.ElementsMatch(t, []string{
		"store_memory",
		"recall_memories",
		"get_memory_summary",
		"parse_memory_command",
		"delete_memory",
		"list_memory_users",
	}, names)
}

func jsonNumber(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}
