package core

import "github.com/mementolabs/memento-go/pkg/store"

// toStoreMemory converts a core memory to its store representation.
func toStoreMemory(m *Memory) *store.Memory {
	return &store.Memory{
		ID:         m.ID,
		Content:    m.Content,
		Category:   m.Category,
		Tags:       m.Tags,
		Importance: m.Importance,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// fromStoreMemory converts a store memory to its core representation.
func fromStoreMemory(m *store.Memory) *Memory {
	return &Memory{
		ID:         m.ID,
		Content:    m.Content,
		Category:   m.Category,
		Tags:       m.Tags,
		Importance: m.Importance,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// fromStoreMemories converts a slice of store memories.
func fromStoreMemories(memories []*store.Memory) []*Memory {
	out := make([]*Memory, len(memories))
	for i, m := range memories {
		out[i] = fromStoreMemory(m)
	}
	return out
}

// fromStoreSummary converts a store summary to its core representation.
func fromStoreSummary(s *store.Summary) *MemorySummary {
	return &MemorySummary{
		UserID:         s.UserID,
		TotalMemories:  s.TotalMemories,
		Categories:     s.Categories,
		RecentMemories: s.RecentMemories,
		Location:       s.Location,
	}
}
