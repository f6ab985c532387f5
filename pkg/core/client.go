package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mementolabs/memento-go/pkg/interpreter"
	"github.com/mementolabs/memento-go/pkg/store"
	fileStore "github.com/mementolabs/memento-go/pkg/store/file"
	postgresStore "github.com/mementolabs/memento-go/pkg/store/postgres"
	sqliteStore "github.com/mementolabs/memento-go/pkg/store/sqlite"
)

// Client is the main Memento client for per-user memory management.
//
// It validates arguments, delegates persistence to the configured storage
// backend, and carries the natural-language interpreter used by the tool
// boundary. Every per-user operation requires an explicit userID; the client
// never guesses one and never holds per-session state, so it is safe to
// share across request handlers.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	memory, _ := client.Store(ctx, "user_001", "standup moved to 10am",
//	    core.WithCategory("work"),
//	    core.WithTags("standup"),
//	)
type Client struct {
	// config contains the client configuration.
	config *Config

	// store is the storage backend for memory persistence.
	store store.Store

	// interp parses natural-language commands at the tool boundary.
	interp interpreter.Interpreter
}

// NewClient creates a new Memento client for the configured backend.
//
// Parameters:
//   - cfg: Configuration selecting and configuring the storage backend
//
// Returns a new Client instance, or an error if initialization fails.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(&cfg.Storage)
	if err != nil {
		return nil, NewMemoryError("NewClient", err)
	}

	return &Client{
		config: cfg,
		store:  st,
		interp: interpreter.NewKeyword(),
	}, nil
}

// NewClientWithStore creates a client around an existing backend. Mainly
// useful for tests and for callers that construct backends themselves.
func NewClientWithStore(cfg *Config, st store.Store) *Client {
	return &Client{
		config: cfg,
		store:  st,
		interp: interpreter.NewKeyword(),
	}
}

// initStore builds the storage backend named by the configuration.
func initStore(cfg *StorageConfig) (store.Store, error) {
	switch cfg.Provider {
	case "file":
		return fileStore.New(cfg.File.DataDir)
	case "sqlite":
		return sqliteStore.New(&sqliteStore.Config{
			DBPath: cfg.SQLite.DBPath,
			Table:  cfg.SQLite.Table,
		})
	case "postgres":
		return postgresStore.New(&postgresStore.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
			Table:    cfg.Postgres.Table,
			SSLMode:  cfg.Postgres.SSLMode,
		})
	default:
		return nil, fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// Interpreter returns the natural-language command interpreter.
func (c *Client) Interpreter() interpreter.Interpreter {
	return c.interp
}

// SearchLimit returns the default result cap for the tool boundary.
func (c *Client) SearchLimit() int {
	if c.config != nil && c.config.SearchLimit > 0 {
		return c.config.SearchLimit
	}
	return 10
}

// Store persists a new memory for the user and returns it with its assigned
// ID and timestamps.
//
// It fails with ErrValidation when userID or content is empty, and with
// ErrPersistence when the backend cannot read-and-rewrite the user's
// container safely.
func (c *Client) Store(ctx context.Context, userID, content string, opts ...StoreOption) (*Memory, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewMemoryError("Store", fmt.Errorf("%w: user id is required", ErrValidation))
	}
	if strings.TrimSpace(content) == "" {
		return nil, NewMemoryError("Store", fmt.Errorf("%w: content is required", ErrValidation))
	}

	options := applyStoreOptions(opts)
	record := &store.Memory{
		Content:    content,
		Category:   options.Category,
		Tags:       options.Tags,
		Importance: options.Importance,
		Metadata:   options.Metadata,
	}

	if _, err := c.store.Store(ctx, userID, record); err != nil {
		return nil, NewMemoryError("Store", fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	return fromStoreMemory(record), nil
}

// Search returns the user's memories matching every given filter, sorted
// newest first with importance breaking ties. A user with no stored
// memories yields an empty slice, not an error.
func (c *Client) Search(ctx context.Context, userID string, opts ...SearchOption) ([]*Memory, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewMemoryError("Search", fmt.Errorf("%w: user id is required", ErrValidation))
	}

	options := applySearchOptions(opts)
	results, err := c.store.Search(ctx, userID, &store.SearchQuery{
		Query:    options.Query,
		Category: options.Category,
		DaysBack: options.DaysBack,
		Limit:    options.Limit,
	})
	if err != nil {
		return nil, NewMemoryError("Search", err)
	}
	return fromStoreMemories(results), nil
}

// Summary aggregates the user's memories. A user with no stored memories
// yields a zero-valued summary.
func (c *Client) Summary(ctx context.Context, userID string) (*MemorySummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewMemoryError("Summary", fmt.Errorf("%w: user id is required", ErrValidation))
	}

	summary, err := c.store.Summary(ctx, userID)
	if err != nil {
		return nil, NewMemoryError("Summary", err)
	}
	return fromStoreSummary(summary), nil
}

// Delete removes the memory with the given ID, returning false when no such
// ID exists for the user.
func (c *Client) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, NewMemoryError("Delete", fmt.Errorf("%w: user id is required", ErrValidation))
	}

	deleted, err := c.store.Delete(ctx, userID, id)
	if err != nil {
		return false, NewMemoryError("Delete", fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	return deleted, nil
}

// ListUsers enumerates every user with stored memories, reading recorded
// user IDs from the containers rather than filenames.
func (c *Client) ListUsers(ctx context.Context) ([]string, error) {
	users, err := c.store.ListUsers(ctx)
	if err != nil {
		return nil, NewMemoryError("ListUsers", err)
	}
	return users, nil
}

// Location returns the backend-specific storage location for a user.
func (c *Client) Location(userID string) string {
	return c.store.Location(userID)
}

// Close releases backend resources.
func (c *Client) Close() error {
	return c.store.Close()
}
