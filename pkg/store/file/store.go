// Package file implements the per-user JSON file storage backend.
//
// Each user owns exactly one JSON document under a fixed root directory. The
// document holds the user's complete memory snapshot and is rewritten in full
// on every mutation: the new snapshot is written to a temporary file in the
// same directory and atomically renamed onto the final location, so a reader
// only ever observes the last fully committed snapshot or none at all. This
// whole-snapshot rewrite is a deliberate scaling limit: the store targets
// personal-notes volumes, not high-throughput logs, and the atomic-rewrite
// contract must be preserved even if an index is added later.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mementolabs/memento-go/pkg/store"
)

// fileExtension is appended to every derived container filename.
const fileExtension = ".json"

// Store implements store.Store using one JSON file per user.
//
// Mutations on the same user are serialized through an in-process mutex keyed
// by the resolved container path, so concurrent Store/Delete calls cannot
// lose updates through the read-modify-write cycle.
type Store struct {
	// root is the fixed directory holding every user container. Derived
	// paths never escape it.
	root string

	// mu guards locks.
	mu sync.Mutex

	// locks holds one mutex per resolved container path.
	locks map[string]*sync.Mutex
}

// New creates a file store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file.New: storage root is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file.New: %w", err)
	}
	return &Store{
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Location returns the container path derived from userID.
//
// The path combines a sanitized form of the identifier with a short content
// hash of the original, unsanitized identifier: two raw identifiers that
// sanitize to the same string still resolve to different files, and
// adversarial input (path separators, traversal sequences, control
// characters) cannot make the result escape the storage root.
func (s *Store) Location(userID string) string {
	return filepath.Join(s.root, userFileName(userID))
}

// Store persists a new memory for the user, assigning the next per-user ID.
func (s *Store) Store(ctx context.Context, userID string, memory *store.Memory) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	snapshot, err := s.load(userID)
	if err != nil {
		// A store must not silently drop history: a container we cannot
		// read-and-rewrite safely fails the call.
		return 0, fmt.Errorf("load container for %q: %w", userID, err)
	}

	var maxID int64
	for _, m := range snapshot.Memories {
		if m.ID > maxID {
			maxID = m.ID
		}
	}

	now := time.Now()
	memory.ID = maxID + 1
	memory.CreatedAt = now
	memory.UpdatedAt = now

	snapshot.Memories = append(snapshot.Memories, memory)

	if err := s.save(userID, snapshot); err != nil {
		return 0, err
	}

	log.Debug("stored memory", "user", userID, "id", memory.ID)
	return memory.ID, nil
}

// Search returns the user's memories matching every filter in q.
//
// A container that is missing yields an empty result. A container that is
// unreadable or malformed is logged and skipped, also yielding an empty
// result, so one corrupt file never breaks a caller's read path.
func (s *Store) Search(ctx context.Context, userID string, q *store.SearchQuery) ([]*store.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q == nil {
		q = &store.SearchQuery{}
	}

	snapshot, err := s.load(userID)
	if err != nil {
		log.Warn("skipping unreadable container", "user", userID, "error", err)
		return []*store.Memory{}, nil
	}

	cutoff := time.Time{}
	if q.DaysBack > 0 {
		cutoff = time.Now().AddDate(0, 0, -q.DaysBack)
	}

	matched := make([]*store.Memory, 0, len(snapshot.Memories))
	for _, m := range snapshot.Memories {
		if q.Category != "" && m.Category != q.Category {
			continue
		}
		if !cutoff.IsZero() && m.CreatedAt.Before(cutoff) {
			continue
		}
		if q.Query != "" && !matchesQuery(m, q.Query) {
			continue
		}
		matched = append(matched, m)
	}

	sortMemories(matched)

	limit := q.Limit
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Summary aggregates the user's snapshot. Missing or unreadable containers
// yield a zero-valued summary.
func (s *Store) Summary(ctx context.Context, userID string) (*store.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &store.Summary{
		UserID:     userID,
		Categories: make(map[string]int),
		Location:   s.Location(userID),
	}

	snapshot, err := s.load(userID)
	if err != nil {
		log.Warn("skipping unreadable container", "user", userID, "error", err)
		return summary, nil
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	for _, m := range snapshot.Memories {
		category := m.Category
		if category == "" {
			category = "general"
		}
		summary.Categories[category]++
		if !m.CreatedAt.Before(weekAgo) {
			summary.RecentMemories++
		}
	}
	summary.TotalMemories = len(snapshot.Memories)
	return summary, nil
}

// Delete removes the memory with the given ID and rewrites the snapshot
// atomically. It returns false when the ID is absent.
func (s *Store) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	snapshot, err := s.load(userID)
	if err != nil {
		return false, fmt.Errorf("load container for %q: %w", userID, err)
	}

	kept := snapshot.Memories[:0]
	found := false
	for _, m := range snapshot.Memories {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return false, nil
	}

	snapshot.Memories = kept
	if err := s.save(userID, snapshot); err != nil {
		return false, err
	}
	return true, nil
}

// ListUsers returns the user_id recorded inside every readable container
// under the storage root. Unreadable or malformed containers are skipped
// with a warning so one corrupt file never breaks the listing.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}

	users := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, entry.Name()))
		if err != nil {
			log.Warn("skipping unreadable container", "file", entry.Name(), "error", err)
			continue
		}
		var snapshot store.UserFile
		if err := json.Unmarshal(data, &snapshot); err != nil {
			log.Warn("skipping malformed container", "file", entry.Name(), "error", err)
			continue
		}
		if snapshot.UserID == "" {
			continue
		}
		users = append(users, snapshot.UserID)
	}
	sort.Strings(users)
	return users, nil
}

// Close releases store resources. The file store holds no open handles.
func (s *Store) Close() error {
	return nil
}

// lockUser acquires the mutex for the user's resolved path and returns the
// matching unlock function.
func (s *Store) lockUser(userID string) func() {
	path := s.Location(userID)

	s.mu.Lock()
	lock, ok := s.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[path] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// load reads the user's container, returning an empty snapshot when the
// container does not exist yet. A container that exists but cannot be read
// or parsed is reported as store.ErrCorruptContainer; callers decide whether
// that is fatal (Store, Delete) or skippable (Search, Summary).
func (s *Store) load(userID string) (*store.UserFile, error) {
	data, err := os.ReadFile(s.Location(userID))
	if os.IsNotExist(err) {
		return &store.UserFile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorruptContainer, err)
	}

	var snapshot store.UserFile
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorruptContainer, err)
	}
	return &snapshot, nil
}

// save writes the full snapshot atomically: marshal to a temporary file in
// the storage root, sync, then rename onto the final location. A crash
// between the temporary write and the rename leaves the previous snapshot
// intact.
func (s *Store) save(userID string, snapshot *store.UserFile) error {
	snapshot.UserID = userID
	snapshot.LastUpdated = time.Now()
	snapshot.TotalMemories = len(snapshot.Memories)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode container for %q: %w", userID, err)
	}

	tmp, err := os.CreateTemp(s.root, ".memento-*.tmp")
	if err != nil {
		return fmt.Errorf("write container for %q: %w", userID, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write container for %q: %w", userID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write container for %q: %w", userID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write container for %q: %w", userID, err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write container for %q: %w", userID, err)
	}
	if err := os.Rename(tmpPath, s.Location(userID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("commit container for %q: %w", userID, err)
	}
	return nil
}
