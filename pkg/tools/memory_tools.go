// Package tools exposes the Memento memory operations as MCP tools.
//
// Every per-user tool requires an explicit user_id argument: the tool layer
// never guesses an identity, and the schemas here must stay in sync with the
// assistant's chat tool definitions.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mementolabs/memento-go/pkg/core"
)

// MemoryTools wires the Memento client into an MCP server.
type MemoryTools struct {
	client *core.Client
}

// NewMemoryTools creates the tool set around a client.
func NewMemoryTools(client *core.Client) *MemoryTools {
	return &MemoryTools{client: client}
}

// Register attaches every memory tool to the supplied MCP server instance.
func (t *MemoryTools) Register(srv *server.MCPServer) {
	srv.AddTool(buildStoreMemoryTool(), t.HandleStoreMemory)
	srv.AddTool(buildRecallMemoriesTool(), t.HandleRecallMemories)
	srv.AddTool(buildMemorySummaryTool(), t.HandleMemorySummary)
	srv.AddTool(buildParseCommandTool(), t.HandleParseCommand)
	srv.AddTool(buildDeleteMemoryTool(), t.HandleDeleteMemory)
	srv.AddTool(buildListUsersTool(), t.HandleListUsers)
}

// ---------------------------------------------------------------------------
// Tool builders (schema only, no execution logic)
// ---------------------------------------------------------------------------

func buildStoreMemoryTool() mcp.Tool {
	return mcp.NewTool(
		"store_memory",
		mcp.WithDescription("Stores a memory for a user. Accepts natural language: category, tags and importance are auto-detected from the text unless given explicitly."),
		mcp.WithString("user_id",
			mcp.Description("Unique identifier for the user owning the memory"),
			mcp.Required(),
		),
		mcp.WithString("text",
			mcp.Description("The memory content or natural language command to store"),
			mcp.Required(),
		),
		mcp.WithString("category",
			mcp.Description("Optional category (auto-detected if not provided)"),
		),
		mcp.WithArray("tags",
			mcp.Description("Optional tags (auto-extracted from #hashtags if not provided)"),
		),
		mcp.WithNumber("importance",
			mcp.Description("Importance level 1-10 (auto-detected if not provided)"),
		),
	)
}

func buildRecallMemoriesTool() mcp.Tool {
	return mcp.NewTool(
		"recall_memories",
		mcp.WithDescription("Searches a user's memories using a natural language query with time-based and category-based filtering."),
		mcp.WithString("user_id",
			mcp.Description("Unique identifier for the user"),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Natural language query or search text"),
			mcp.Required(),
		),
		mcp.WithString("category",
			mcp.Description("Optional exact category filter"),
		),
		mcp.WithNumber("days_back",
			mcp.Description("Optional number of days to look back"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of memories to return (default 10)"),
		),
	)
}

func buildMemorySummaryTool() mcp.Tool {
	return mcp.NewTool(
		"get_memory_summary",
		mcp.WithDescription("Returns counts by category and recent activity for a user's stored memories."),
		mcp.WithString("user_id",
			mcp.Description("Unique identifier for the user"),
			mcp.Required(),
		),
	)
}

func buildParseCommandTool() mcp.Tool {
	return mcp.NewTool(
		"parse_memory_command",
		mcp.WithDescription("Parses a natural language command to understand memory storage or recall intent."),
		mcp.WithString("text",
			mcp.Description("Natural language command to parse"),
			mcp.Required(),
		),
		mcp.WithString("command_type",
			mcp.Description("Type of command to parse"),
			mcp.Enum("store", "recall"),
			mcp.Required(),
		),
	)
}

func buildDeleteMemoryTool() mcp.Tool {
	return mcp.NewTool(
		"delete_memory",
		mcp.WithDescription("Deletes one memory by ID from a user's store."),
		mcp.WithString("user_id",
			mcp.Description("Unique identifier for the user"),
			mcp.Required(),
		),
		mcp.WithNumber("memory_id",
			mcp.Description("ID of the memory to delete"),
			mcp.Required(),
		),
	)
}

func buildListUsersTool() mcp.Tool {
	return mcp.NewTool(
		"list_memory_users",
		mcp.WithDescription("Lists all users who have stored memories. Admin/debug tool."),
	)
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

// HandleStoreMemory parses the text, lets explicit arguments override parsed
// values, and stores the memory.
func (t *MemoryTools) HandleStoreMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	userID, _ := args["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("user_id parameter is required")
	}
	text, _ := args["text"].(string)
	if text == "" {
		return nil, fmt.Errorf("text parameter is required")
	}

	parsed := t.client.Interpreter().ParseStore(text)

	content := parsed.Content
	if content == "" {
		content = text
	}
	category := parsed.Category
	if v, ok := args["category"].(string); ok && v != "" {
		category = v
	}
	tags := parsed.Tags
	if raw, ok := args["tags"].([]interface{}); ok {
		tags = nil
		for _, item := range raw {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
	}
	importance := parsed.Importance
	if v, ok := numberArg(args, "importance"); ok {
		importance = v
	}

	memory, err := t.client.Store(ctx, userID, content,
		core.WithCategory(category),
		core.WithTags(tags...),
		core.WithImportance(importance),
	)
	if err != nil {
		return nil, err
	}

	return jsonResult(map[string]interface{}{
		"success":    true,
		"memory_id":  memory.ID,
		"content":    memory.Content,
		"category":   memory.Category,
		"tags":       memory.Tags,
		"importance": memory.Importance,
		"location":   t.client.Location(userID),
		"message":    fmt.Sprintf("Memory stored successfully with ID %d", memory.ID),
	})
}

// HandleRecallMemories parses the query for time and category hints, lets
// explicit arguments override them, and searches.
func (t *MemoryTools) HandleRecallMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	userID, _ := args["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("user_id parameter is required")
	}
	queryText, _ := args["query"].(string)
	if queryText == "" {
		return nil, fmt.Errorf("query parameter is required")
	}

	parsed := t.client.Interpreter().ParseRecall(queryText)

	category := parsed.Category
	if v, ok := args["category"].(string); ok && v != "" {
		category = v
	}
	daysBack := parsed.DaysBack
	if v, ok := numberArg(args, "days_back"); ok {
		daysBack = v
	}
	limit := t.client.SearchLimit()
	if v, ok := numberArg(args, "limit"); ok && v > 0 {
		limit = v
	}

	memories, err := t.client.Search(ctx, userID,
		core.WithQuery(parsed.Query),
		core.WithSearchCategory(category),
		core.WithDaysBack(daysBack),
		core.WithSearchLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	return jsonResult(map[string]interface{}{
		"success": true,
		"query": map[string]interface{}{
			"text":         queryText,
			"parsed_query": parsed.Query,
			"category":     category,
			"days_back":    daysBack,
		},
		"memories": memories,
		"count":    len(memories),
		"location": t.client.Location(userID),
	})
}

// HandleMemorySummary aggregates one user's stored memories.
func (t *MemoryTools) HandleMemorySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, _ := req.GetArguments()["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("user_id parameter is required")
	}

	summary, err := t.client.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return jsonResult(summary)
}

// HandleParseCommand exposes the interpreter without touching storage.
func (t *MemoryTools) HandleParseCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	text, _ := args["text"].(string)
	if text == "" {
		return nil, fmt.Errorf("text parameter is required")
	}
	commandType, _ := args["command_type"].(string)

	var parsed interface{}
	switch commandType {
	case "store":
		parsed = t.client.Interpreter().ParseStore(text)
	case "recall":
		parsed = t.client.Interpreter().ParseRecall(text)
	default:
		return nil, fmt.Errorf("unknown command type: %s", commandType)
	}

	return jsonResult(map[string]interface{}{
		"command_type":  commandType,
		"original_text": text,
		"parsed":        parsed,
	})
}

// HandleDeleteMemory removes one memory by ID.
func (t *MemoryTools) HandleDeleteMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	userID, _ := args["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("user_id parameter is required")
	}
	id, ok := numberArg(args, "memory_id")
	if !ok {
		return nil, fmt.Errorf("memory_id parameter is required")
	}

	deleted, err := t.client.Delete(ctx, userID, int64(id))
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Memory %d deleted", id)
	if !deleted {
		message = fmt.Sprintf("Memory %d not found", id)
	}
	return jsonResult(map[string]interface{}{
		"success":   deleted,
		"memory_id": id,
		"message":   message,
	})
}

// HandleListUsers enumerates every user with stored memories.
func (t *MemoryTools) HandleListUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := t.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]interface{}{
		"users":      users,
		"user_count": len(users),
	})
}

// jsonResult marshals v into an indented text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// numberArg reads a numeric argument that may arrive as a JSON float64 or a
// string.
func numberArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
	}
	return 0, false
}
