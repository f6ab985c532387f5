package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_ReadsVariables(t *testing.T) {
	t.Setenv("MEMENTO_STORAGE_PROVIDER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("SQLITE_TABLE", "test_memories")
	t.Setenv("MEMENTO_SEARCH_LIMIT", "25")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	config, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", config.Storage.Provider)
	assert.Equal(t, "/tmp/test.db", config.Storage.SQLite.DBPath)
	assert.Equal(t, "test_memories", config.Storage.SQLite.Table)
	assert.Equal(t, 25, config.SearchLimit)
	assert.Equal(t, "gpt-4o", config.OpenAI.Model)
}

func TestLoadConfigFromEnv_FileProviderDefaults(t *testing.T) {
	t.Setenv("MEMENTO_STORAGE_PROVIDER", "file")
	t.Setenv("MEMENTO_DATA_DIR", "./data")

	config, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "file", config.Storage.Provider)
	assert.Equal(t, "./data", config.Storage.File.DataDir)
	require.NoError(t, config.Validate())
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"storage": {
			"provider": "postgres",
			"postgres": {
				"host": "db.internal",
				"port": 5433,
				"user": "memento",
				"db_name": "memories",
				"table": "memories",
				"ssl_mode": "require"
			}
		},
		"search_limit": 20
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	config, err := LoadConfigFromJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", config.Storage.Provider)
	assert.Equal(t, "db.internal", config.Storage.Postgres.Host)
	assert.Equal(t, 5433, config.Storage.Postgres.Port)
	assert.Equal(t, 20, config.SearchLimit)
	require.NoError(t, config.Validate())
}

func TestLoadConfigFromJSON_MissingFile(t *testing.T) {
	_, err := LoadConfigFromJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid file config",
			config: &Config{Storage: StorageConfig{
				Provider: "file",
				File:     FileConfig{DataDir: "./data"},
			}},
		},
		{
			name: "file config without data dir",
			config: &Config{Storage: StorageConfig{
				Provider: "file",
			}},
			wantErr: true,
		},
		{
			name: "sqlite config without path",
			config: &Config{Storage: StorageConfig{
				Provider: "sqlite",
			}},
			wantErr: true,
		},
		{
			name: "postgres config without host",
			config: &Config{Storage: StorageConfig{
				Provider: "postgres",
				Postgres: PostgresConfig{DBName: "memento"},
			}},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			config:  &Config{Storage: StorageConfig{Provider: "redis"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
