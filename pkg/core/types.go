// Package core provides the main Memento client and memory management functionality.
package core

import "time"

// DefaultCategory is assigned when neither the caller nor the interpreter
// provides a category.
const DefaultCategory = "general"

// Memory represents a single memory stored for one user.
//
// Example:
//
//	memory := &core.Memory{
//	    ID:         1,
//	    Content:    "dentist appointment next Tuesday",
//	    Category:   "personal",
//	    Tags:       []string{"health"},
//	    Importance: 8,
//	}
type Memory struct {
	// ID is unique within the owning user's record set and assigned
	// monotonically (max existing + 1). IDs are not global.
	ID int64 `json:"id"`

	// Content is the text content of the memory.
	Content string `json:"content"`

	// Category is a short grouping label, defaulting to "general".
	Category string `json:"category"`

	// Tags are short labels preserved in insertion order for display.
	Tags []string `json:"tags"`

	// Importance ranges 1-10 with a default of 5.
	Importance int `json:"importance"`

	// Metadata is an open-ended key/value map, opaque to the store: it is
	// persisted and returned verbatim, never interpreted.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the memory was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the memory was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// MemorySummary aggregates one user's stored memories.
type MemorySummary struct {
	// UserID is the user the summary describes.
	UserID string `json:"user_id"`

	// TotalMemories is the number of stored records.
	TotalMemories int `json:"total_memories"`

	// Categories maps category label to record count.
	Categories map[string]int `json:"categories"`

	// RecentMemories counts records created within the last 7 days.
	RecentMemories int `json:"recent_memories"`

	// Location is the backend-specific storage location for the user.
	Location string `json:"location"`
}
