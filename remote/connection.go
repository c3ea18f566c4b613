// Package remote executes a single-partition scan against a remote SQL
// source. It decides how much filtering and limiting the remote side can
// take, reconciles the declared table schema with the schema an optional
// transform produces, and streams Arrow record batches lazily.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/physical"
	"github.com/guileen/remotetable/protocol/sql"
	"github.com/guileen/remotetable/types"
)

// DefaultStreamChunkSize is the number of rows per record batch a connection
// produces when the options do not say otherwise
const DefaultStreamChunkSize = 2048

// Connection runs SQL against a remote database. Implementations are shared
// between tables and executions and must be safe for concurrent use.
type Connection interface {
	// Infer runs sql without fetching rows and reports the remote schema
	// together with the arrow schema its batches would carry.
	Infer(ctx context.Context, sql string) (*types.RemoteSchema, *arrow.Schema, error)
	// Query runs sql with the pushed down filters and limit. Filters and
	// columns use declared names; records carry the declared schema
	// projected by projection.
	Query(ctx context.Context, opts ConnectionOptions, sql string, declared *arrow.Schema,
		projection []int, filters []expr.Expr, limit *int) (physical.RecordStream, error)
}

// ConnectionOptions configure one remote database
type ConnectionOptions interface {
	DatabaseType() sql.DatabaseType
	StreamChunkSize() int
}

func chunkSize(n int) int {
	if n <= 0 {
		return DefaultStreamChunkSize
	}
	return n
}

// PostgresOptions configure a PostgreSQL connection pool
type PostgresOptions struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Database    string
	PoolMaxSize int
	ChunkSize   int
}

func (o *PostgresOptions) DatabaseType() sql.DatabaseType { return sql.Postgres }
func (o *PostgresOptions) StreamChunkSize() int           { return chunkSize(o.ChunkSize) }

// ConnString renders the options as a pgx connection URL
func (o *PostgresOptions) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", o.Host, o.Port),
		Path:   "/" + o.Database,
	}
	if o.Username != "" {
		u.User = url.UserPassword(o.Username, o.Password)
	}
	if o.PoolMaxSize > 0 {
		u.RawQuery = url.Values{"pool_max_conns": []string{strconv.Itoa(o.PoolMaxSize)}}.Encode()
	}
	return u.String()
}

// SQLiteOptions configure a SQLite database file; ":memory:" opens a
// private in-memory database
type SQLiteOptions struct {
	Path      string
	ChunkSize int
}

func (o *SQLiteOptions) DatabaseType() sql.DatabaseType { return sql.SQLite }
func (o *SQLiteOptions) StreamChunkSize() int           { return chunkSize(o.ChunkSize) }

// DialectOptions carry only a dialect, for connections supplied by the
// embedding application (MySQL, Oracle, DM)
type DialectOptions struct {
	Type      sql.DatabaseType
	ChunkSize int
}

func (o *DialectOptions) DatabaseType() sql.DatabaseType { return o.Type }
func (o *DialectOptions) StreamChunkSize() int           { return chunkSize(o.ChunkSize) }
