package remote

import (
	"context"
	"errors"

	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/logger"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// FilterPushdown tells the query engine how a scan treats one filter
type FilterPushdown int

const (
	// PushdownUnsupported filters are evaluated by the engine
	PushdownUnsupported FilterPushdown = iota
	// PushdownInexact filters are pushed but the engine re-checks the rows
	PushdownInexact
	// PushdownExact filters are fully evaluated by the remote database
	PushdownExact
)

func (p FilterPushdown) String() string {
	switch p {
	case PushdownExact:
		return "Exact"
	case PushdownInexact:
		return "Inexact"
	default:
		return "Unsupported"
	}
}

// Table is a remote query exposed to the engine as a table. It produces a
// TableExec for every scan.
type Table struct {
	opts      ConnectionOptions
	sql       string
	declared  *arrow.Schema
	remote    *types.RemoteSchema
	transform Transform
	conn      Connection
	schema    *arrow.Schema
}

// TableOption configures a Table
type TableOption func(*Table)

// WithDeclaredSchema fixes the declared schema instead of inferring it
func WithDeclaredSchema(schema *arrow.Schema) TableOption {
	return func(t *Table) { t.declared = schema }
}

// WithRemoteSchema supplies the remote schema instead of inferring it
func WithRemoteSchema(remote *types.RemoteSchema) TableOption {
	return func(t *Table) { t.remote = remote }
}

// WithTransform sets the transform applied to every batch
func WithTransform(transform Transform) TableOption {
	return func(t *Table) { t.transform = transform }
}

// NewTable creates a table over sql. Schemas not given as options are
// inferred through conn.
func NewTable(ctx context.Context, opts ConnectionOptions, sql string, conn Connection, options ...TableOption) (*Table, error) {
	const op = "NewTable"
	if opts == nil || conn == nil {
		return nil, rerrors.NewInvalidArgumentf(op, "connection and options are required")
	}
	t := &Table{opts: opts, sql: sql, conn: conn}
	for _, o := range options {
		o(t)
	}

	if t.declared == nil || t.remote == nil {
		remote, inferred, err := conn.Infer(ctx, sql)
		if err != nil {
			var re *rerrors.RemoteError
			if !errors.As(err, &re) {
				err = rerrors.NewConnectionError(op, err)
			}
			return nil, err
		}
		if t.remote == nil {
			t.remote = remote
		}
		if t.declared == nil {
			t.declared = inferred
		}
		logger.DebugContext(ctx, "Inferred remote schema",
			"db_type", opts.DatabaseType().String(), "remote_schema", t.remote.String())
	}

	schema, err := TransformSchema(t.declared, t.transform, t.remote)
	if err != nil {
		return nil, err
	}
	t.schema = schema
	return t, nil
}

// Schema returns the schema the engine sees, after the transform
func (t *Table) Schema() *arrow.Schema             { return t.schema }
func (t *Table) DeclaredSchema() *arrow.Schema     { return t.declared }
func (t *Table) RemoteSchema() *types.RemoteSchema { return t.remote }
func (t *Table) SQL() string                       { return t.sql }
func (t *Table) Options() ConnectionOptions        { return t.opts }
func (t *Table) Connection() Connection            { return t.conn }

// SupportsFiltersPushdown reports for every filter whether the remote
// database can evaluate it. A filter is exact when the dialect accepts a
// rewritten query and the filter, renamed to declared columns, renders in
// the dialect.
func (t *Table) SupportsFiltersPushdown(filters []expr.Expr) []FilterPushdown {
	result := make([]FilterPushdown, len(filters))
	if !allowLimitPushdown(t.opts, t.sql) {
		return result
	}
	dialect := t.opts.DatabaseType()
	for i, f := range filters {
		rewritten, err := RewriteFilters([]expr.Expr{f}, t.schema, t.declared)
		if err != nil {
			continue
		}
		if _, err := dialect.Unparse(rewritten[0]); err != nil {
			continue
		}
		result[i] = PushdownExact
	}
	return result
}

// Scan builds the plan node reading the table. projection indexes Schema();
// filters should be those SupportsFiltersPushdown reported as exact.
func (t *Table) Scan(projection []int, filters []expr.Expr, limit *int) (*TableExec, error) {
	return NewTableExec(t.opts, t.sql, t.declared, t.remote, projection, filters, limit, t.transform, t.conn)
}
