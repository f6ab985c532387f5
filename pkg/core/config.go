// Package core provides the main Memento client and memory management functionality.
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a Memento client.
//
// Example:
//
//	config := &core.Config{
//	    Storage: core.StorageConfig{
//	        Provider: "file",
//	        File:     core.FileConfig{DataDir: "./memento_memories"},
//	    },
//	}
type Config struct {
	// Storage contains storage backend configuration.
	Storage StorageConfig `json:"storage"`

	// OpenAI contains chat/completions configuration for the assistant.
	OpenAI OpenAIConfig `json:"openai"`

	// SearchLimit is the default result cap applied at the tool boundary.
	SearchLimit int `json:"search_limit"`
}

// StorageConfig selects and configures the storage backend.
//
// Supported providers: file, sqlite, postgres.
type StorageConfig struct {
	// Provider is the storage backend name (file, sqlite, postgres).
	Provider string `json:"provider"`

	// File configures the JSON file-per-user backend.
	File FileConfig `json:"file,omitempty"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteConfig `json:"sqlite,omitempty"`

	// Postgres configures the PostgreSQL backend.
	Postgres PostgresConfig `json:"postgres,omitempty"`
}

// FileConfig configures the JSON file-per-user backend.
type FileConfig struct {
	// DataDir is the fixed root directory holding every user container.
	DataDir string `json:"data_dir"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string `json:"db_path"`

	// Table is the memories table name.
	Table string `json:"table"`
}

// PostgresConfig configures the PostgreSQL backend.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Table    string `json:"table"`
	SSLMode  string `json:"ssl_mode"`
}

// OpenAIConfig configures the assistant's chat/completions boundary.
type OpenAIConfig struct {
	// APIKey is the API key for the chat provider.
	APIKey string `json:"api_key"`

	// Model is the chat model name.
	Model string `json:"model"`

	// BaseURL overrides the provider's default endpoint (optional).
	BaseURL string `json:"base_url,omitempty"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for a .env or .env.example file (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - MEMENTO_STORAGE_PROVIDER (file, sqlite, postgres; default file)
//   - MEMENTO_DATA_DIR (file backend root; default ./memento_memories)
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD,
//     POSTGRES_DATABASE, POSTGRES_TABLE, POSTGRES_SSLMODE
//   - OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL
//   - MEMENTO_SEARCH_LIMIT (default 10)
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("MEMENTO_STORAGE_PROVIDER", "file")

	port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
	searchLimit, _ := strconv.Atoi(getEnvOrDefault("MEMENTO_SEARCH_LIMIT", "10"))

	config := &Config{
		Storage: StorageConfig{
			Provider: provider,
			File: FileConfig{
				DataDir: getEnvOrDefault("MEMENTO_DATA_DIR", "./memento_memories"),
			},
			SQLite: SQLiteConfig{
				DBPath: getEnvOrDefault("SQLITE_PATH", "./memento.db"),
				Table:  getEnvOrDefault("SQLITE_TABLE", "memories"),
			},
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     port,
				User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: os.Getenv("POSTGRES_PASSWORD"),
				DBName:   getEnvOrDefault("POSTGRES_DATABASE", "memento"),
				Table:    getEnvOrDefault("POSTGRES_TABLE", "memories"),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			},
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		SearchLimit: searchLimit,
	}

	return config, nil
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}
	return &config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Provider {
	case "file":
		if c.Storage.File.DataDir == "" {
			return NewMemoryError("Validate", fmt.Errorf("%w: data dir is required", ErrInvalidConfig))
		}
	case "sqlite":
		if c.Storage.SQLite.DBPath == "" {
			return NewMemoryError("Validate", fmt.Errorf("%w: sqlite path is required", ErrInvalidConfig))
		}
	case "postgres":
		if c.Storage.Postgres.Host == "" || c.Storage.Postgres.DBName == "" {
			return NewMemoryError("Validate", fmt.Errorf("%w: postgres host and database are required", ErrInvalidConfig))
		}
	default:
		return NewMemoryError("Validate", fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, c.Storage.Provider))
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search checks the current directory first, then walks up to 5 parent
// directories, returning the first match.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
