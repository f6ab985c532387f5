// Package core provides the main Memento client and memory management functionality.
package core

// StoreOption is a function type for configuring Store operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type StoreOption func(*StoreOptions)

// StoreOptions contains configuration options for Store operations.
type StoreOptions struct {
	// Category is the grouping label for the memory. Empty means
	// DefaultCategory.
	Category string

	// Tags are labels attached to the memory.
	Tags []string

	// Importance ranges 1-10. Zero means the default of 5.
	Importance int

	// Metadata contains additional metadata about the memory.
	Metadata map[string]interface{}
}

// WithCategory sets the category for Store operations.
//
// Example:
//
//	memory, _ := client.Store(ctx, "user_001", "standup at 10", core.WithCategory("work"))
func WithCategory(category string) StoreOption {
	return func(opts *StoreOptions) {
		opts.Category = category
	}
}

// WithTags sets the tags for Store operations.
func WithTags(tags ...string) StoreOption {
	return func(opts *StoreOptions) {
		opts.Tags = tags
	}
}

// WithImportance sets the importance (1-10) for Store operations.
func WithImportance(importance int) StoreOption {
	return func(opts *StoreOptions) {
		opts.Importance = importance
	}
}

// WithMetadata sets opaque metadata for Store operations.
//
// Example:
//
//	memory, _ := client.Store(ctx, "user_001", "note",
//	    core.WithMetadata(map[string]interface{}{"source": "chat"}),
//	)
func WithMetadata(metadata map[string]interface{}) StoreOption {
	return func(opts *StoreOptions) {
		opts.Metadata = metadata
	}
}

// applyStoreOptions applies Store options and fills defaults.
func applyStoreOptions(opts []StoreOption) *StoreOptions {
	options := &StoreOptions{
		Importance: 5,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Category == "" {
		options.Category = DefaultCategory
	}
	if options.Importance < 1 {
		options.Importance = 1
	}
	if options.Importance > 10 {
		options.Importance = 10
	}
	return options
}

// SearchOption is a function type for configuring Search operations.
type SearchOption func(*SearchOptions)

// SearchOptions contains configuration options for Search operations.
type SearchOptions struct {
	// Query requires a case-insensitive substring match against content,
	// category, or any tag.
	Query string

	// Category requires an exact category match.
	Category string

	// DaysBack restricts results to records created within the window.
	DaysBack int

	// Limit caps the number of results. Zero means the store default.
	Limit int
}

// WithQuery sets the substring query for Search operations.
//
// Example:
//
//	results, _ := client.Search(ctx, "user_001", core.WithQuery("dentist"))
func WithQuery(query string) SearchOption {
	return func(opts *SearchOptions) {
		opts.Query = query
	}
}

// WithSearchCategory sets an exact category filter for Search operations.
func WithSearchCategory(category string) SearchOption {
	return func(opts *SearchOptions) {
		opts.Category = category
	}
}

// WithDaysBack restricts Search results to the last n days.
func WithDaysBack(days int) SearchOption {
	return func(opts *SearchOptions) {
		opts.DaysBack = days
	}
}

// WithSearchLimit caps the number of Search results.
func WithSearchLimit(limit int) SearchOption {
	return func(opts *SearchOptions) {
		opts.Limit = limit
	}
}

// applySearchOptions applies Search options.
func applySearchOptions(opts []SearchOption) *SearchOptions {
	options := &SearchOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
