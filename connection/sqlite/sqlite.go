// Package sqlite implements remote.Connection over database/sql with the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/memory"
	_ "modernc.org/sqlite"

	"github.com/guileen/remotetable/connection/batch"
	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/logger"
	"github.com/guileen/remotetable/physical"
	dialect "github.com/guileen/remotetable/protocol/sql"
	"github.com/guileen/remotetable/remote"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// Connection runs remote queries on a SQLite database
type Connection struct {
	db  *sql.DB
	mem memory.Allocator
}

var _ remote.Connection = (*Connection)(nil)

// Open opens the database at opts.Path
func Open(ctx context.Context, opts *remote.SQLiteOptions) (*Connection, error) {
	const op = "sqlite.Open"
	path := opts.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, rerrors.NewConnectionError(op, err)
	}
	if path == ":memory:" {
		// every pooled connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, rerrors.NewConnectionError(op, err)
	}
	logger.Info("Opened SQLite database", logger.Component("sqlite"), "path", path)
	return New(db), nil
}

// New wraps an open database
func New(db *sql.DB) *Connection {
	return &Connection{db: db, mem: memory.DefaultAllocator}
}

// WithAllocator sets the allocator record batches are built with
func (c *Connection) WithAllocator(mem memory.Allocator) *Connection {
	c.mem = mem
	return c
}

// DB returns the underlying database handle
func (c *Connection) DB() *sql.DB { return c.db }

func (c *Connection) Close() error { return c.db.Close() }

// Infer reads the declared column types of query's result
func (c *Connection) Infer(ctx context.Context, query string) (*types.RemoteSchema, *arrow.Schema, error) {
	const op = "sqlite.Infer"
	probe := query
	if dialect.SQLite.SupportsRewriteWithFiltersLimit(query) {
		zero := 0
		rewritten, err := dialect.BuildQuery(dialect.SQLite, query, nil, nil, nil, &zero)
		if err != nil {
			return nil, nil, rerrors.Wrap(err, rerrors.ErrCodeInvalidArgument, op)
		}
		probe = rewritten
	}

	rows, err := c.db.QueryContext(ctx, probe)
	if err != nil {
		return nil, nil, rerrors.NewConnectionError(op, err)
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, rerrors.NewConnectionError(op, err)
	}
	remoteSchema := &types.RemoteSchema{Fields: make([]types.RemoteField, len(columnTypes))}
	for i, ct := range columnTypes {
		nullable, ok := ct.Nullable()
		remoteSchema.Fields[i] = types.RemoteField{
			Name:     ct.Name(),
			Type:     declaredType(ct.DatabaseTypeName()),
			Nullable: nullable || !ok,
		}
	}
	return remoteSchema, remoteSchema.ArrowSchema(), nil
}

// declaredType maps SQLite type affinity names; INTEGER columns hold 64 bit values
func declaredType(name string) types.RemoteType {
	base := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	switch base {
	case "INTEGER", "INT":
		return "bigint"
	case "REAL", "FLOAT", "DOUBLE", "DOUBLE PRECISION":
		// sqlite stores every floating point value as an 8-byte IEEE float
		return "double"
	case "":
		return "text"
	default:
		return types.RemoteType(strings.ToLower(name))
	}
}

// Query runs query with projection, filters and limit pushed down when the
// statement allows it
func (c *Connection) Query(ctx context.Context, opts remote.ConnectionOptions, query string, declared *arrow.Schema,
	projection []int, filters []expr.Expr, limit *int) (physical.RecordStream, error) {
	const op = "sqlite.Query"
	text, columns, err := batch.PlanQuery(dialect.SQLite, query, declared, projection, filters, limit)
	if err != nil {
		return nil, err
	}
	schema, err := remote.ProjectSchema(declared, projection)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Executing remote query", logger.Component("sqlite"), "sql", text)
	rows, err := c.db.QueryContext(ctx, text)
	if err != nil {
		return nil, rerrors.NewConnectionError(op, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, rerrors.NewConnectionError(op, err)
	}
	return batch.NewRowStream(ctx, c.mem, &rowSource{rows: rows, width: len(cols)}, schema, columns, opts.StreamChunkSize()), nil
}

// rowSource scans database/sql rows into untyped values
type rowSource struct {
	rows  *sql.Rows
	width int
}

func (r *rowSource) Next() bool   { return r.rows.Next() }
func (r *rowSource) Err() error   { return r.rows.Err() }
func (r *rowSource) Close() error { return r.rows.Close() }

func (r *rowSource) Values() ([]any, error) {
	values := make([]any, r.width)
	ptrs := make([]any, r.width)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}
