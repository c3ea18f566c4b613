// Package postgres implements remote.Connection over a pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guileen/remotetable/connection/batch"
	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/logger"
	"github.com/guileen/remotetable/physical"
	"github.com/guileen/remotetable/protocol/sql"
	"github.com/guileen/remotetable/remote"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// Connection runs remote queries on a PostgreSQL pool
type Connection struct {
	pool *pgxpool.Pool
	mem  memory.Allocator
}

var _ remote.Connection = (*Connection)(nil)

// Connect opens a pool and checks it with a ping
func Connect(ctx context.Context, opts *remote.PostgresOptions) (*Connection, error) {
	const op = "postgres.Connect"
	config, err := pgxpool.ParseConfig(opts.ConnString())
	if err != nil {
		return nil, rerrors.Wrapf(err, rerrors.ErrCodeInvalidArgument, op, "failed to parse config")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, rerrors.NewConnectionError(op, fmt.Errorf("failed to create pool: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, rerrors.NewConnectionError(op, fmt.Errorf("failed to ping database: %w", err))
	}

	logger.Info("Connected to PostgreSQL", logger.Component("postgres"), "host", opts.Host, "database", opts.Database)
	return &Connection{pool: pool, mem: memory.DefaultAllocator}, nil
}

// WithAllocator sets the allocator record batches are built with
func (c *Connection) WithAllocator(mem memory.Allocator) *Connection {
	c.mem = mem
	return c
}

// Close closes the pool
func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

// Infer reads the result description of query without fetching rows
func (c *Connection) Infer(ctx context.Context, query string) (*types.RemoteSchema, *arrow.Schema, error) {
	const op = "postgres.Infer"
	probe := query
	if sql.Postgres.SupportsRewriteWithFiltersLimit(query) {
		zero := 0
		rewritten, err := sql.BuildQuery(sql.Postgres, query, nil, nil, nil, &zero)
		if err != nil {
			return nil, nil, rerrors.Wrap(err, rerrors.ErrCodeInvalidArgument, op)
		}
		probe = rewritten
	}

	rows, err := c.pool.Query(ctx, probe)
	if err != nil {
		return nil, nil, rerrors.NewConnectionError(op, err)
	}
	defer rows.Close()

	typeMap := pgtype.NewMap()
	fields := rows.FieldDescriptions()
	remoteSchema := &types.RemoteSchema{Fields: make([]types.RemoteField, len(fields))}
	for i, fd := range fields {
		name := "text"
		if t, ok := typeMap.TypeForOID(fd.DataTypeOID); ok {
			name = t.Name
		}
		remoteSchema.Fields[i] = types.RemoteField{Name: fd.Name, Type: types.RemoteType(name), Nullable: true}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, rerrors.NewConnectionError(op, err)
	}
	return remoteSchema, remoteSchema.ArrowSchema(), nil
}

// Query runs query with projection, filters and limit pushed down when the
// statement allows it
func (c *Connection) Query(ctx context.Context, opts remote.ConnectionOptions, query string, declared *arrow.Schema,
	projection []int, filters []expr.Expr, limit *int) (physical.RecordStream, error) {
	const op = "postgres.Query"
	text, columns, err := batch.PlanQuery(sql.Postgres, query, declared, projection, filters, limit)
	if err != nil {
		return nil, err
	}
	schema, err := remote.ProjectSchema(declared, projection)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Executing remote query", logger.Component("postgres"), "sql", text)
	rows, err := c.pool.Query(ctx, text)
	if err != nil {
		return nil, rerrors.NewConnectionError(op, err)
	}
	return batch.NewRowStream(ctx, c.mem, &rowSource{rows: rows}, schema, columns, opts.StreamChunkSize()), nil
}

// rowSource adapts pgx rows, normalizing values pgx decodes into pgtype structs
type rowSource struct {
	rows pgx.Rows
}

func (r *rowSource) Next() bool { return r.rows.Next() }
func (r *rowSource) Err() error { return r.rows.Err() }

func (r *rowSource) Close() error {
	r.rows.Close()
	return nil
}

func (r *rowSource) Values() ([]any, error) {
	values, err := r.rows.Values()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if values[i], err = normalize(v); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil, nil
		}
		f, err := x.Float64Value()
		if err != nil {
			return nil, err
		}
		return f.Float64, nil
	case [16]byte:
		return uuid.UUID(x).String(), nil
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case pgtype.Time:
		if !x.Valid {
			return nil, nil
		}
		return time.Duration(x.Microseconds * int64(time.Microsecond)).String(), nil
	case pgtype.Interval:
		if !x.Valid {
			return nil, nil
		}
		return fmt.Sprintf("%d months %d days %dus", x.Months, x.Days, x.Microseconds), nil
	default:
		return v, nil
	}
}
