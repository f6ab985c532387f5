// Package sqlite implements the memory store on SQLite.
//
// SQLite suits local development and single-machine deployments. All of one
// user's records live in a shared table keyed by (user_id, id); tags and
// metadata are stored as JSON text. Durability of individual writes is
// delegated to SQLite's WAL journal, so no snapshot-rewrite machinery is
// needed here.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mementolabs/memento-go/pkg/store"
)

// Store implements store.Store using a SQLite database.
type Store struct {
	// db is the SQLite database connection.
	db *sql.DB

	// dbPath is the database file location, reported in summaries.
	dbPath string

	// table is the name of the table storing memories.
	table string
}

// Config contains configuration for creating a SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// Table is the name of the table to use. Defaults to "memories".
	Table string
}

// New creates a SQLite store, creating the database file and table when
// they do not exist yet.
func New(cfg *Config) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("sqlite.New: database path is required")
	}
	table := cfg.Table
	if table == "" {
		table = "memories"
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	s := &Store{db: db, dbPath: cfg.DBPath, table: table}
	if err := s.initTables(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// initTables initializes the database table structure.
func (s *Store) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			user_id TEXT NOT NULL,
			id INTEGER NOT NULL,
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			tags TEXT NOT NULL DEFAULT '[]',
			importance INTEGER NOT NULL DEFAULT 5,
			metadata TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, id)
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_user_created ON %s(user_id, created_at)
	`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}
	return nil
}

// Store inserts a new memory, assigning id = max(existing)+1 for the user
// inside a transaction so concurrent writers cannot race the assignment.
func (s *Store) Store(ctx context.Context, userID string, memory *store.Memory) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("Store: %w", err)
	}
	defer tx.Rollback()

	var maxID int64
	row := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s WHERE user_id = ?", s.table),
		userID,
	)
	if err := row.Scan(&maxID); err != nil {
		return 0, fmt.Errorf("Store: %w", err)
	}

	now := time.Now()
	memory.ID = maxID + 1
	memory.CreatedAt = now
	memory.UpdatedAt = now

	tagsJSON, err := json.Marshal(memory.Tags)
	if err != nil {
		return 0, fmt.Errorf("Store: %w", err)
	}
	metadataJSON, err := json.Marshal(memory.Metadata)
	if err != nil {
		return 0, fmt.Errorf("Store: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`
			INSERT INTO %s (user_id, id, content, category, tags, importance, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.table),
		userID, memory.ID, memory.Content, memory.Category,
		string(tagsJSON), memory.Importance, string(metadataJSON),
		memory.CreatedAt, memory.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("Store: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("Store: %w", err)
	}
	return memory.ID, nil
}

// Search returns the user's memories matching every filter in q, newest
// first with importance breaking ties.
func (s *Store) Search(ctx context.Context, userID string, q *store.SearchQuery) ([]*store.Memory, error) {
	if q == nil {
		q = &store.SearchQuery{}
	}

	query := fmt.Sprintf(
		"SELECT id, content, category, tags, importance, metadata, created_at, updated_at FROM %s WHERE user_id = ?",
		s.table,
	)
	args := []interface{}{userID}

	if q.Category != "" {
		query += " AND category = ?"
		args = append(args, q.Category)
	}
	if q.DaysBack > 0 {
		query += " AND created_at >= ?"
		args = append(args, time.Now().AddDate(0, 0, -q.DaysBack))
	}
	if q.Query != "" {
		// Matches content, category, or the JSON tag list, mirroring the
		// file backend's substring semantics.
		query += " AND (LOWER(content) LIKE ? OR LOWER(category) LIKE ? OR LOWER(tags) LIKE ?)"
		pattern := "%" + strings.ToLower(q.Query) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	query += " ORDER BY created_at DESC, importance DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer rows.Close()

	memories := make([]*store.Memory, 0)
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			log.Warn("skipping malformed memory row", "user", userID, "error", err)
			continue
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return memories, nil
}

// Summary aggregates the user's records.
func (s *Store) Summary(ctx context.Context, userID string) (*store.Summary, error) {
	summary := &store.Summary{
		UserID:     userID,
		Categories: make(map[string]int),
		Location:   s.Location(userID),
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT category, COUNT(*) FROM %s WHERE user_id = ? GROUP BY category", s.table),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("Summary: %w", err)
		}
		if category == "" {
			category = "general"
		}
		summary.Categories[category] += count
		summary.TotalMemories += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = ? AND created_at >= ?", s.table),
		userID, weekAgo,
	)
	if err := row.Scan(&summary.RecentMemories); err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}
	return summary, nil
}

// Delete removes the memory with the given ID, returning false when absent.
func (s *Store) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND id = ?", s.table),
		userID, id,
	)
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}
	return affected > 0, nil
}

// ListUsers returns every distinct user id present in the table.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT DISTINCT user_id FROM %s ORDER BY user_id", s.table),
	)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("ListUsers: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return users, nil
}

// Location reports the table holding the user's records.
func (s *Store) Location(userID string) string {
	return fmt.Sprintf("sqlite://%s#%s", s.dbPath, s.table)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanMemory decodes one row into a memory record.
func scanMemory(rows *sql.Rows) (*store.Memory, error) {
	var m store.Memory
	var tagsJSON string
	var metadataJSON sql.NullString

	err := rows.Scan(&m.ID, &m.Content, &m.Category, &tagsJSON,
		&m.Importance, &metadataJSON, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &m, nil
}
