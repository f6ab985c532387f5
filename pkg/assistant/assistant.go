// Package assistant provides a chat loop that lets an OpenAI-compatible
// model read and write Memento memories through tool calls.
//
// The assistant binds each session to one user up front: the model never
// chooses an identity, it only operates on the session owner's memories.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/mementolabs/memento-go/pkg/core"
)

// maxToolRounds bounds the tool-call loop for a single user turn.
const maxToolRounds = 5

const systemPrompt = `You are Memento, a personal memory assistant. You help the user store and recall memories using the provided tools. Store memories when the user shares something worth keeping, recall them when asked, and answer concisely using only what the tools return.`

// completionClient is the slice of the OpenAI client the assistant needs.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Assistant drives tool-calling conversations against the memory client.
type Assistant struct {
	memories *core.Client
	chat     completionClient
	model    string
	node     *snowflake.Node
}

// Session is one user's conversation, carrying the running message history.
type Session struct {
	// ID is a snowflake identifier for the session.
	ID string

	// UserID owns every memory operation performed in this session.
	UserID string

	messages []openai.ChatCompletionMessage
}

// New creates an assistant for the configured chat provider.
func New(cfg *core.Config, memories *core.Client) (*Assistant, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", core.ErrInvalidConfig)
	}

	chatConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		chatConfig.BaseURL = cfg.OpenAI.BaseURL
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	return &Assistant{
		memories: memories,
		chat:     openai.NewClientWithConfig(chatConfig),
		model:    cfg.OpenAI.Model,
		node:     node,
	}, nil
}

// newWithChat builds an assistant around an existing completion client.
// Used by tests to avoid the network.
func newWithChat(chat completionClient, model string, memories *core.Client) (*Assistant, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}
	return &Assistant{memories: memories, chat: chat, model: model, node: node}, nil
}

// NewSession starts a conversation bound to one user.
func (a *Assistant) NewSession(userID string) *Session {
	return &Session{
		ID:     a.node.Generate().String(),
		UserID: userID,
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		},
	}
}

// Chat sends one user message, resolves any tool calls the model makes, and
// returns the model's final text reply.
func (a *Assistant) Chat(ctx context.Context, session *Session, text string) (string, error) {
	session.messages = append(session.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: session.messages,
			Tools:    chatTools(),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("chat completion returned no choices")
		}

		message := resp.Choices[0].Message
		session.messages = append(session.messages, message)

		if len(message.ToolCalls) == 0 {
			return message.Content, nil
		}

		for _, call := range message.ToolCalls {
			output, err := a.executeTool(ctx, session.UserID, call.Function.Name, call.Function.Arguments)
			if err != nil {
				output = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			session.messages = append(session.messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("tool call loop exceeded %d rounds", maxToolRounds)
}

// toolArgs covers the argument shapes of every memory tool. The session
// supplies the user identity, so no tool takes a user_id.
type toolArgs struct {
	Text        string   `json:"text"`
	Query       string   `json:"query"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Importance  int      `json:"importance"`
	DaysBack    int      `json:"days_back"`
	Limit       int      `json:"limit"`
	MemoryID    int64    `json:"memory_id"`
	CommandType string   `json:"command_type"`
}

// executeTool dispatches one model tool call against the memory client and
// returns a JSON payload for the tool message.
func (a *Assistant) executeTool(ctx context.Context, userID, name, rawArgs string) (string, error) {
	var args toolArgs
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
	}

	switch name {
	case "store_memory":
		if args.Text == "" {
			return "", fmt.Errorf("text is required")
		}
		parsed := a.memories.Interpreter().ParseStore(args.Text)
		content := parsed.Content
		if content == "" {
			content = args.Text
		}
		category := parsed.Category
		if args.Category != "" {
			category = args.Category
		}
		tags := parsed.Tags
		if args.Tags != nil {
			tags = args.Tags
		}
		importance := parsed.Importance
		if args.Importance != 0 {
			importance = args.Importance
		}
		memory, err := a.memories.Store(ctx, userID, content,
			core.WithCategory(category),
			core.WithTags(tags...),
			core.WithImportance(importance),
		)
		if err != nil {
			return "", err
		}
		return marshalResult(map[string]interface{}{
			"memory_id":  memory.ID,
			"category":   memory.Category,
			"tags":       memory.Tags,
			"importance": memory.Importance,
		})

	case "recall_memories":
		parsed := a.memories.Interpreter().ParseRecall(args.Query)
		category := parsed.Category
		if args.Category != "" {
			category = args.Category
		}
		daysBack := parsed.DaysBack
		if args.DaysBack != 0 {
			daysBack = args.DaysBack
		}
		limit := a.memories.SearchLimit()
		if args.Limit > 0 {
			limit = args.Limit
		}
		memories, err := a.memories.Search(ctx, userID,
			core.WithQuery(parsed.Query),
			core.WithSearchCategory(category),
			core.WithDaysBack(daysBack),
			core.WithSearchLimit(limit),
		)
		if err != nil {
			return "", err
		}
		return marshalResult(map[string]interface{}{
			"memories": memories,
			"count":    len(memories),
		})

	case "get_memory_summary":
		summary, err := a.memories.Summary(ctx, userID)
		if err != nil {
			return "", err
		}
		return marshalResult(summary)

	case "parse_memory_command":
		switch args.CommandType {
		case "store":
			return marshalResult(a.memories.Interpreter().ParseStore(args.Text))
		case "recall":
			return marshalResult(a.memories.Interpreter().ParseRecall(args.Text))
		default:
			return "", fmt.Errorf("unknown command type: %s", args.CommandType)
		}

	case "delete_memory":
		deleted, err := a.memories.Delete(ctx, userID, args.MemoryID)
		if err != nil {
			return "", err
		}
		return marshalResult(map[string]interface{}{
			"deleted":   deleted,
			"memory_id": args.MemoryID,
		})

	case "list_memory_users":
		users, err := a.memories.ListUsers(ctx)
		if err != nil {
			return "", err
		}
		return marshalResult(map[string]interface{}{
			"users":      users,
			"user_count": len(users),
		})

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func marshalResult(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// chatTools declares the memory tools for the chat model. Names track the
// MCP tool set; schemas omit user_id because the session supplies it.
func chatTools() []openai.Tool {
	return []openai.Tool{
		toolDef("store_memory",
			"Store a memory for the current user. Category, tags and importance are auto-detected from the text unless given.",
			map[string]jsonschema.Definition{
				"text":       {Type: jsonschema.String, Description: "The memory content to store"},
				"category":   {Type: jsonschema.String, Description: "Optional category"},
				"tags":       {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}, Description: "Optional tags"},
				"importance": {Type: jsonschema.Integer, Description: "Importance level 1-10"},
			},
			[]string{"text"},
		),
		toolDef("recall_memories",
			"Search the current user's memories with optional category and time filters.",
			map[string]jsonschema.Definition{
				"query":     {Type: jsonschema.String, Description: "Search text"},
				"category":  {Type: jsonschema.String, Description: "Optional exact category filter"},
				"days_back": {Type: jsonschema.Integer, Description: "Optional number of days to look back"},
				"limit":     {Type: jsonschema.Integer, Description: "Maximum number of results"},
			},
			[]string{"query"},
		),
		toolDef("get_memory_summary",
			"Get counts by category and recent activity for the current user's memories.",
			map[string]jsonschema.Definition{},
			nil,
		),
		toolDef("parse_memory_command",
			"Parse a natural language command to understand memory storage or recall intent.",
			map[string]jsonschema.Definition{
				"text":         {Type: jsonschema.String, Description: "Command to parse"},
				"command_type": {Type: jsonschema.String, Enum: []string{"store", "recall"}, Description: "Type of command"},
			},
			[]string{"text", "command_type"},
		),
		toolDef("delete_memory",
			"Delete one of the current user's memories by ID.",
			map[string]jsonschema.Definition{
				"memory_id": {Type: jsonschema.Integer, Description: "ID of the memory to delete"},
			},
			[]string{"memory_id"},
		),
		toolDef("list_memory_users",
			"List all users who have stored memories.",
			map[string]jsonschema.Definition{},
			nil,
		),
	}
}

func toolDef(name, description string, props map[string]jsonschema.Definition, required []string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: props,
				Required:   required,
			},
		},
	}
}
