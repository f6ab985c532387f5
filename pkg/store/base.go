// Package store provides interfaces and types for memory storage backends.
//
// It defines the Store interface that all storage implementations must satisfy,
// along with the memory record and container types shared by the backends.
package store

import (
	"context"
	"errors"
	"time"
)

// DefaultSearchLimit caps Search results when the query does not set a limit.
const DefaultSearchLimit = 50

// ErrCorruptContainer indicates that a user's container exists but cannot be
// read or parsed. Read paths treat it as "skip this entry"; write paths
// surface it, since rewriting on top of a container we cannot read would
// silently drop history.
var ErrCorruptContainer = errors.New("corrupt memory container")

// Memory represents a single memory record owned by one user.
//
// This type is defined in the store package to avoid circular dependencies
// with the core package. It mirrors the core.Memory structure.
type Memory struct {
	// ID is the identifier of the memory. IDs are unique within one user's
	// record set and assigned monotonically (max existing + 1); they are not
	// globally unique across users.
	ID int64 `json:"id"`

	// Content is the text content of the memory. Never empty.
	Content string `json:"content"`

	// Category is a short label grouping the memory ("work", "personal",
	// "tasks", "ideas", ...). Defaults to "general".
	Category string `json:"category"`

	// Tags are short labels attached to the memory. Order is preserved for
	// display but carries no matching semantics.
	Tags []string `json:"tags"`

	// Importance ranges 1-10, default 5.
	Importance int `json:"importance"`

	// Metadata contains additional structured information. The store never
	// inspects it; it is persisted and returned verbatim.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the memory was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the memory was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFile is the durable container holding all of one user's memories.
//
// A container is either fully absent (the user has stored nothing yet) or a
// complete, internally consistent snapshot. Backends must never let a reader
// observe a partially written container.
type UserFile struct {
	// UserID is the owning identifier, stored raw as the caller supplied it.
	UserID string `json:"user_id"`

	// LastUpdated is the timestamp of the last successful write.
	LastUpdated time.Time `json:"last_updated"`

	// TotalMemories always equals len(Memories).
	TotalMemories int `json:"total_memories"`

	// Memories is the full record set. Position carries no meaning.
	Memories []*Memory `json:"memories"`
}

// SearchQuery contains the conjunctive filters applied by Search.
type SearchQuery struct {
	// Query, if non-empty, requires a case-insensitive substring match
	// against the content, the category, or any tag of a record.
	Query string

	// Category, if non-empty, requires an exact category match.
	Category string

	// DaysBack, if positive, requires created_at >= now - DaysBack days.
	DaysBack int

	// Limit truncates the result after filtering and sorting.
	// Zero means DefaultSearchLimit.
	Limit int
}

// Summary aggregates one user's stored memories.
type Summary struct {
	// UserID is the user the summary describes.
	UserID string `json:"user_id"`

	// TotalMemories is the number of stored records.
	TotalMemories int `json:"total_memories"`

	// Categories maps category label to record count.
	Categories map[string]int `json:"categories"`

	// RecentMemories counts records created within the last 7 days.
	RecentMemories int `json:"recent_memories"`

	// Location is the backend-specific storage location of the container.
	Location string `json:"location"`
}

// Store defines the interface for per-user memory storage backends.
//
// Implementations must guarantee user isolation: no operation on one user's
// records may read or write another user's records. Search, Summary and
// ListUsers treat a malformed container as "skip" rather than failing the
// call; Store and Delete fail loudly instead, because silently dropping
// history on a failed write is unacceptable.
type Store interface {
	// Store persists a new memory for the user. It assigns the next per-user
	// ID, sets CreatedAt and UpdatedAt, and returns the assigned ID.
	Store(ctx context.Context, userID string, memory *Memory) (int64, error)

	// Search returns the user's memories matching all filters in q, sorted
	// newest first with importance breaking ties. A user with no container
	// yields an empty result, not an error.
	Search(ctx context.Context, userID string, q *SearchQuery) ([]*Memory, error)

	// Summary aggregates the user's memories. A user with no container
	// yields a zero-valued summary, not an error.
	Summary(ctx context.Context, userID string) (*Summary, error)

	// Delete removes the memory with the given ID. It returns false, not an
	// error, when no such ID exists for the user.
	Delete(ctx context.Context, userID string, id int64) (bool, error)

	// ListUsers enumerates the user IDs recorded inside every readable
	// container under the storage root.
	ListUsers(ctx context.Context) ([]string, error)

	// Location returns the backend-specific storage location for a user.
	Location(userID string) string

	// Close releases backend resources.
	Close() error
}
