// Package postgres implements the memory store on PostgreSQL.
//
// It carries the same (user_id, id) keyed table as the SQLite backend with
// tags and metadata held in JSONB columns, and is intended for deployments
// where several server processes share one store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/lib/pq"

	"github.com/mementolabs/memento-go/pkg/store"
)

// Store implements store.Store using a PostgreSQL database.
type Store struct {
	db    *sql.DB
	table string
	dsn   string
}

// Config contains PostgreSQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Table    string
	SSLMode  string
}

// New creates a PostgreSQL store, creating the table when it does not exist.
func New(cfg *Config) (*Store, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	table := cfg.Table
	if table == "" {
		table = "memories"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	s := &Store{
		db:    db,
		table: table,
		dsn:   fmt.Sprintf("postgres://%s:%d/%s", cfg.Host, cfg.Port, cfg.DBName),
	}
	if err := s.initTables(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// initTables initializes the database table.
func (s *Store) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			user_id VARCHAR(255) NOT NULL,
			id BIGINT NOT NULL,
			content TEXT NOT NULL,
			category VARCHAR(64) NOT NULL DEFAULT 'general',
			tags JSONB NOT NULL DEFAULT '[]',
			importance INT NOT NULL DEFAULT 5,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, id)
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: create table: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_user_created ON %s(user_id, created_at)
	`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("initTables: create index: %w", err)
	}
	return nil
}

// Store inserts a new memory, assigning id = max(existing)+1 for the user
// inside a transaction.
func (s *Store) Store(ctx context.Context, userID string, memory *store.Memory) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("Store: %w", err)
	}
	defer tx.Rollback()

	// Lock the user's newest row so concurrent writers serialize on the id
	// assignment. FOR UPDATE cannot wrap an aggregate, hence the LIMIT 1 form.
	var maxID int64
	row := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE user_id = $1 ORDER BY id DESC LIMIT 1 FOR UPDATE", s.table),
		userID,
	)
	if err := row.Scan(&maxID); err != nil && err != sql.ErrNoRows {
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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
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

// Search returns the user's memories matching every filter in q.
func (s *Store) Search(ctx context.Context, userID string, q *store.SearchQuery) ([]*store.Memory, error) {
	if q == nil {
		q = &store.SearchQuery{}
	}

	query := fmt.Sprintf(
		"SELECT id, content, category, tags, importance, metadata, created_at, updated_at FROM %s WHERE user_id = $1",
		s.table,
	)
	args := []interface{}{userID}
	arg := 2

	if q.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", arg)
		args = append(args, q.Category)
		arg++
	}
	if q.DaysBack > 0 {
		query += fmt.Sprintf(" AND created_at >= $%d", arg)
		args = append(args, time.Now().AddDate(0, 0, -q.DaysBack))
		arg++
	}
	if q.Query != "" {
		query += fmt.Sprintf(
			" AND (content ILIKE $%d OR category ILIKE $%d OR tags::text ILIKE $%d)",
			arg, arg+1, arg+2,
		)
		pattern := "%" + strings.ToLower(q.Query) + "%"
		args = append(args, pattern, pattern, pattern)
		arg += 3
	}

	limit := q.Limit
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, importance DESC LIMIT $%d", arg)
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
		fmt.Sprintf("SELECT category, COUNT(*) FROM %s WHERE user_id = $1 GROUP BY category", s.table),
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
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = $1 AND created_at >= $2", s.table),
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
		fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND id = $2", s.table),
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
	return fmt.Sprintf("%s#%s", s.dsn, s.table)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanMemory decodes one row into a memory record.
func scanMemory(rows *sql.Rows) (*store.Memory, error) {
	var m store.Memory
	var tagsJSON []byte
	var metadataJSON []byte

	err := rows.Scan(&m.ID, &m.Content, &m.Category, &tagsJSON,
		&m.Importance, &metadataJSON, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsJSON, &m.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if len(metadataJSON) > 0 && string(metadataJSON) != "null" {
		if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &m, nil
}
