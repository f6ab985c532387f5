package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementolabs/memento-go/pkg/core"
	fileStore "github.com/mementolabs/memento-go/pkg/store/file"
)

func setupTools(t *testing.T) *MemoryTools {
	t.Helper()

	st, err := fileStore.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &core.Config{
		Storage: core.StorageConfig{Provider: "file"},
	}
	return NewMemoryTools(core.NewClientWithStore(cfg, st))
}

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// callTool invokes a handler and decodes its JSON text payload.
func callTool(t *testing.T, handler toolHandler, args map[string]interface{}) map[string]interface{} {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected a text result")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestStoreMemory_ParsesNaturalLanguage(t *testing.T) {
	tools := setupTools(t)

	payload := callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id": "alice",
		"text":    "Hey Memento, remember that my important project deadline is Friday #urgent",
	})

	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["memory_id"])
	assert.Equal(t, "work", payload["category"])
	assert.Equal(t, float64(8), payload["importance"])
	assert.Equal(t, []interface{}{"urgent"}, payload["tags"])
	assert.NotEmpty(t, payload["location"])
}

func TestStoreMemory_ExplicitArgumentsOverrideParsed(t *testing.T) {
	tools := setupTools(t)

	payload := callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id":    "alice",
		"text":       "remember my project deadline #urgent",
		"category":   "personal",
		"tags":       []interface{}{"custom"},
		"importance": float64(3),
	})

	assert.Equal(t, "personal", payload["category"])
	assert.Equal(t, []interface{}{"custom"}, payload["tags"])
	assert.Equal(t, float64(3), payload["importance"])
}

func TestStoreMemory_RequiresUserID(t *testing.T) {
	tools := setupTools(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"text": "remember this"}

	_, err := tools.HandleStoreMemory(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")
}

func TestRecallMemories_RoundTrip(t *testing.T) {
	tools := setupTools(t)

	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id": "alice",
		"text":    "remember that my dentist appointment is next tuesday",
	})
	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id": "alice",
		"text":    "remember the work standup moved to 10am",
	})

	payload := callTool(t, tools.HandleRecallMemories, map[string]interface{}{
		"user_id": "alice",
		"query":   "Hey Memento, find dentist",
	})

	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["count"])

	query, ok := payload["query"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "dentist", query["parsed_query"])
}

func TestRecallMemories_ExplicitFiltersOverrideParsed(t *testing.T) {
	tools := setupTools(t)

	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id":  "alice",
		"text":     "remember the quarterly report",
		"category": "work",
	})
	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id":  "alice",
		"text":     "remember the quarterly checkup",
		"category": "personal",
	})

	payload := callTool(t, tools.HandleRecallMemories, map[string]interface{}{
		"user_id":  "alice",
		"query":    "what about quarterly",
		"category": "personal",
	})

	assert.Equal(t, float64(1), payload["count"])
	memories, ok := payload["memories"].([]interface{})
	require.True(t, ok)
	first := memories[0].(map[string]interface{})
	assert.Equal(t, "personal", first["category"])
}

func TestRecallMemories_LimitArgument(t *testing.T) {
	tools := setupTools(t)

	for i := 0; i < 5; i++ {
		callTool(t, tools.HandleStoreMemory, map[string]interface{}{
			"user_id": "alice",
			"text":    "remember another meeting note",
		})
	}

	payload := callTool(t, tools.HandleRecallMemories, map[string]interface{}{
		"user_id": "alice",
		"query":   "find my meetings",
		"limit":   float64(2),
	})

	assert.Equal(t, float64(2), payload["count"])
}

func TestMemorySummary(t *testing.T) {
	tools := setupTools(t)

	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id":  "alice",
		"text":     "remember the design review",
		"category": "work",
	})
	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id":  "alice",
		"text":     "remember to call mom",
		"category": "personal",
	})

	payload := callTool(t, tools.HandleMemorySummary, map[string]interface{}{
		"user_id": "alice",
	})

	assert.Equal(t, "alice", payload["user_id"])
	assert.Equal(t, float64(2), payload["total_memories"])

	categories, ok := payload["categories"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), categories["work"])
	assert.Equal(t, float64(1), categories["personal"])
}

func TestParseCommand_StoreAndRecall(t *testing.T) {
	tools := setupTools(t)

	payload := callTool(t, tools.HandleParseCommand, map[string]interface{}{
		"text":         "Hey Memento, remember my dentist appointment is next Tuesday #health",
		"command_type": "store",
	})
	assert.Equal(t, "store", payload["command_type"])
	parsed, ok := payload["parsed"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, parsed["content"], "dentist")

	payload = callTool(t, tools.HandleParseCommand, map[string]interface{}{
		"text":         "what did I store this week",
		"command_type": "recall",
	})
	parsed, ok = payload["parsed"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), parsed["days_back"])
}

func TestParseCommand_RejectsUnknownType(t *testing.T) {
	tools := setupTools(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"text":         "remember this",
		"command_type": "summarize",
	}

	_, err := tools.HandleParseCommand(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command type")
}

func TestDeleteMemory(t *testing.T) {
	tools := setupTools(t)

	stored := callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id": "alice",
		"text":    "remember something temporary",
	})
	id := stored["memory_id"].(float64)

	payload := callTool(t, tools.HandleDeleteMemory, map[string]interface{}{
		"user_id":   "alice",
		"memory_id": id,
	})
	assert.Equal(t, true, payload["success"])

	payload = callTool(t, tools.HandleDeleteMemory, map[string]interface{}{
		"user_id":   "alice",
		"memory_id": id,
	})
	assert.Equal(t, false, payload["success"])
}

func TestListUsers(t *testing.T) {
	tools := setupTools(t)

	payload := callTool(t, tools.HandleListUsers, map[string]interface{}{})
	assert.Equal(t, float64(0), payload["user_count"])

	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id": "alice",
		"text":    "remember a note",
	})
	callTool(t, tools.HandleStoreMemory, map[string]interface{}{
		"user_id": "bob",
		"text":    "remember a note",
	})

	payload = callTool(t, tools.HandleListUsers, map[string]interface{}{})
	assert.Equal(t, float64(2), payload["user_count"])
	assert.ElementsMatch(t, []interface{}{"alice", "bob"}, payload["users"])
}
