// Package config loads server and remote connection settings from the
// environment and table definitions from a file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/guileen/remotetable/protocol/sql"
	"github.com/guileen/remotetable/remote"
	"github.com/guileen/remotetable/types"
)

// RemoteConfig holds the remote database and server settings
type RemoteConfig struct {
	DatabaseType sql.DatabaseType

	// Postgres
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	PoolMaxSize int

	// SQLite
	SQLitePath string

	// Rows per record batch
	StreamChunkSize int

	ServerAddr string
	// TablesFile lists the tables to expose (JSON or YAML)
	TablesFile string
}

// DefaultRemoteConfig returns the default configuration
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		DatabaseType:    sql.SQLite,
		Host:            "localhost",
		Port:            5432,
		Database:        "postgres",
		PoolMaxSize:     4,
		SQLitePath:      ":memory:",
		StreamChunkSize: remote.DefaultStreamChunkSize,
		ServerAddr:      ":8080",
		TablesFile:      "tables.json",
	}
}

// LoadRemoteConfig loads configuration from environment variables.
// Invalid values keep their defaults, except an unknown database type.
func LoadRemoteConfig() (RemoteConfig, error) {
	config := DefaultRemoteConfig()

	if dbType := os.Getenv("REMOTE_DB_TYPE"); dbType != "" {
		t, err := sql.ParseDatabaseType(dbType)
		if err != nil {
			return config, fmt.Errorf("REMOTE_DB_TYPE: %w", err)
		}
		config.DatabaseType = t
	}

	if host := os.Getenv("REMOTE_HOST"); host != "" {
		config.Host = host
	}
	if portStr := os.Getenv("REMOTE_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port < 65536 {
			config.Port = port
		}
	}
	if user := os.Getenv("REMOTE_USER"); user != "" {
		config.User = user
	}
	config.Password = os.Getenv("REMOTE_PASSWORD")
	if database := os.Getenv("REMOTE_DATABASE"); database != "" {
		config.Database = database
	}
	if path := os.Getenv("REMOTE_SQLITE_PATH"); path != "" {
		config.SQLitePath = path
	}

	if sizeStr := os.Getenv("REMOTE_POOL_MAX_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			config.PoolMaxSize = size
		}
	}
	if chunkStr := os.Getenv("REMOTE_STREAM_CHUNK_SIZE"); chunkStr != "" {
		if chunk, err := strconv.Atoi(chunkStr); err == nil && chunk > 0 {
			config.StreamChunkSize = chunk
		}
	}

	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		config.ServerAddr = addr
	}
	if file := os.Getenv("REMOTE_TABLES_FILE"); file != "" {
		config.TablesFile = file
	}

	return config, nil
}

// ConnectionOptions converts the configuration to the options of its database type
func (c RemoteConfig) ConnectionOptions() remote.ConnectionOptions {
	switch c.DatabaseType {
	case sql.Postgres:
		return &remote.PostgresOptions{
			Host:        c.Host,
			Port:        c.Port,
			Username:    c.User,
			Password:    c.Password,
			Database:    c.Database,
			PoolMaxSize: c.PoolMaxSize,
			ChunkSize:   c.StreamChunkSize,
		}
	case sql.SQLite:
		return &remote.SQLiteOptions{Path: c.SQLitePath, ChunkSize: c.StreamChunkSize}
	default:
		return &remote.DialectOptions{Type: c.DatabaseType, ChunkSize: c.StreamChunkSize}
	}
}

// tablesFile is the document LoadTables reads
type tablesFile struct {
	Tables []types.TableDefinition `json:"tables" yaml:"tables"`
}

// LoadTables reads table definitions from path. Files ending in .yaml or
// .yml are YAML; anything else is JSON.
func LoadTables(path string) ([]types.TableDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}

	var doc tablesFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse tables file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(doc.Tables))
	for _, t := range doc.Tables {
		if t.Name == "" || t.SQL == "" {
			return nil, fmt.Errorf("%s: %w: every table needs a name and sql", path, types.ErrInvalidDefinition)
		}
		key := strings.ToLower(t.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%s: %w: duplicate table %s", path, types.ErrInvalidDefinition, t.Name)
		}
		seen[key] = struct{}{}
	}
	return doc.Tables, nil
}
