package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/remotetable/protocol/sql"
	"github.com/guileen/remotetable/remote"
	"github.com/guileen/remotetable/types"
)

func TestDefaultRemoteConfig(t *testing.T) {
	config := DefaultRemoteConfig()
	assert.Equal(t, sql.SQLite, config.DatabaseType)
	assert.Equal(t, ":memory:", config.SQLitePath)
	assert.Equal(t, remote.DefaultStreamChunkSize, config.StreamChunkSize)
	assert.Equal(t, ":8080", config.ServerAddr)
}

func TestLoadRemoteConfig(t *testing.T) {
	t.Run("FromEnv", func(t *testing.T) {
		t.Setenv("REMOTE_DB_TYPE", "postgresql")
		t.Setenv("REMOTE_HOST", "db.internal")
		t.Setenv("REMOTE_PORT", "5433")
		t.Setenv("REMOTE_USER", "reader")
		t.Setenv("REMOTE_PASSWORD", "secret")
		t.Setenv("REMOTE_DATABASE", "analytics")
		t.Setenv("REMOTE_POOL_MAX_SIZE", "8")
		t.Setenv("REMOTE_STREAM_CHUNK_SIZE", "512")
		t.Setenv("SERVER_ADDR", ":9090")

		config, err := LoadRemoteConfig()
		require.NoError(t, err)
		assert.Equal(t, sql.Postgres, config.DatabaseType)
		assert.Equal(t, ":9090", config.ServerAddr)

		opts, ok := config.ConnectionOptions().(*remote.PostgresOptions)
		require.True(t, ok)
		assert.Equal(t, &remote.PostgresOptions{
			Host: "db.internal", Port: 5433, Username: "reader", Password: "secret",
			Database: "analytics", PoolMaxSize: 8, ChunkSize: 512,
		}, opts)
		assert.Equal(t, 512, opts.StreamChunkSize())
	})

	t.Run("InvalidNumbersKeepDefaults", func(t *testing.T) {
		t.Setenv("REMOTE_PORT", "not-a-port")
		t.Setenv("REMOTE_STREAM_CHUNK_SIZE", "-1")

		config, err := LoadRemoteConfig()
		require.NoError(t, err)
		assert.Equal(t, 5432, config.Port)
		assert.Equal(t, remote.DefaultStreamChunkSize, config.StreamChunkSize)
	})

	t.Run("UnknownDatabaseType", func(t *testing.T) {
		t.Setenv("REMOTE_DB_TYPE", "db2")
		_, err := LoadRemoteConfig()
		assert.Error(t, err)
	})

	t.Run("DialectWithoutDriver", func(t *testing.T) {
		t.Setenv("REMOTE_DB_TYPE", "oracle")
		config, err := LoadRemoteConfig()
		require.NoError(t, err)
		assert.Equal(t, sql.Oracle, config.ConnectionOptions().DatabaseType())
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTables(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		path := writeFile(t, "tables.json", `{"tables": [
			{"name": "users", "sql": "SELECT id, name FROM users",
			 "columns": [{"name": "id", "type": "bigint"}, {"name": "name", "type": "text", "nullable": true}],
			 "transform": {"rename": ["user_id", "user_name"]}}
		]}`)
		tables, err := LoadTables(path)
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, "users", tables[0].Name)
		assert.Equal(t, types.ColumnTypeBigInt, tables[0].Columns[0].Type)
		assert.True(t, tables[0].Columns[1].Nullable)
		assert.Equal(t, []string{"user_id", "user_name"}, tables[0].Transform.Rename)
	})

	t.Run("YAML", func(t *testing.T) {
		path := writeFile(t, "tables.yaml", `
tables:
  - name: orders
    sql: SELECT * FROM orders
    transform:
      stringify: [amount]
`)
		tables, err := LoadTables(path)
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, "SELECT * FROM orders", tables[0].SQL)
		assert.Equal(t, []string{"amount"}, tables[0].Transform.Stringify)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := LoadTables(writeFile(t, "t.json", `{"tables": [{"name": "x"}]}`))
		assert.ErrorIs(t, err, types.ErrInvalidDefinition)

		_, err = LoadTables(writeFile(t, "t.json", `{"tables": [
			{"name": "x", "sql": "SELECT 1"}, {"name": "X", "sql": "SELECT 2"}]}`))
		assert.ErrorIs(t, err, types.ErrInvalidDefinition)

		_, err = LoadTables(writeFile(t, "t.json", `{`))
		assert.Error(t, err)

		_, err = LoadTables(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}
