package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/physical"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// TableExec is the physical plan node scanning one remote query. A node is
// immutable once built; WithFetch returns a new node.
type TableExec struct {
	opts       ConnectionOptions
	sql        string
	declared   *arrow.Schema
	remote     *types.RemoteSchema
	projection []int
	filters    []expr.Expr
	limit      *int
	transform  Transform
	conn       Connection

	schema *arrow.Schema
	props  physical.Properties
}

var _ physical.ExecutionPlan = (*TableExec)(nil)
var _ physical.Displayer = (*TableExec)(nil)

// NewTableExec builds a scan node. filters are expressed against the
// transformed schema; projection indexes it. The output schema is computed
// here, so a transform incompatible with the declared schema fails now
// rather than at the first pull.
func NewTableExec(
	opts ConnectionOptions,
	sql string,
	declared *arrow.Schema,
	remote *types.RemoteSchema,
	projection []int,
	filters []expr.Expr,
	limit *int,
	transform Transform,
	conn Connection,
) (*TableExec, error) {
	const op = "NewTableExec"
	if opts == nil {
		return nil, rerrors.NewInvalidArgumentf(op, "connection options are required")
	}
	if conn == nil {
		return nil, rerrors.NewInvalidArgumentf(op, "connection is required")
	}
	if declared == nil {
		return nil, rerrors.NewInvalidArgumentf(op, "declared schema is required")
	}
	if limit != nil && *limit < 0 {
		return nil, rerrors.NewInvalidArgumentf(op, "limit must not be negative, got %d", *limit)
	}
	seen := make(map[string]struct{}, declared.NumFields())
	for _, f := range declared.Fields() {
		if _, ok := seen[f.Name]; ok {
			return nil, rerrors.NewSchemaMismatchf(op, "duplicate declared column %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	transformed, err := TransformSchema(declared, transform, remote)
	if err != nil {
		return nil, err
	}
	schema, err := ProjectSchema(transformed, projection)
	if err != nil {
		return nil, err
	}

	e := &TableExec{
		opts:      opts,
		sql:       sql,
		declared:  declared,
		remote:    remote,
		filters:   append([]expr.Expr(nil), filters...),
		limit:     copyLimit(limit),
		transform: transform,
		conn:      conn,
		schema:    schema,
		props: physical.Properties{
			Partitioning: physical.UnknownPartitioning(1),
			Emission:     physical.Incremental,
			Boundedness:  physical.Bounded,
		},
	}
	if projection != nil {
		e.projection = append([]int{}, projection...)
	}
	return e, nil
}

func (e *TableExec) Name() string                       { return "RemoteTableExec" }
func (e *TableExec) Schema() *arrow.Schema              { return e.schema }
func (e *TableExec) Properties() physical.Properties    { return e.props }
func (e *TableExec) Children() []physical.ExecutionPlan { return nil }
func (e *TableExec) Options() ConnectionOptions         { return e.opts }
func (e *TableExec) SQL() string                        { return e.sql }
func (e *TableExec) DeclaredSchema() *arrow.Schema      { return e.declared }
func (e *TableExec) RemoteSchema() *types.RemoteSchema  { return e.remote }
func (e *TableExec) Filters() []expr.Expr               { return append([]expr.Expr(nil), e.filters...) }
func (e *TableExec) Transform() Transform               { return e.transform }
func (e *TableExec) Connection() Connection             { return e.conn }

// Projection returns the projected column indices, nil when every column is scanned
func (e *TableExec) Projection() []int {
	if e.projection == nil {
		return nil
	}
	return append([]int{}, e.projection...)
}

// WithNewChildren returns the node itself; a scan has no children
func (e *TableExec) WithNewChildren(_ []physical.ExecutionPlan) (physical.ExecutionPlan, error) {
	return e, nil
}

// WithFetch returns a copy of the node with only its limit replaced. It
// refuses when the dialect cannot append a limit to the node's SQL.
func (e *TableExec) WithFetch(limit *int) (physical.ExecutionPlan, bool) {
	if limit != nil && *limit < 0 {
		return nil, false
	}
	if !allowLimitPushdown(e.opts, e.sql) {
		return nil, false
	}
	n := *e
	n.limit = copyLimit(limit)
	return &n, true
}

// Fetch returns the node's limit
func (e *TableExec) Fetch() *int { return copyLimit(e.limit) }

// Execute returns the stream of partition 0 without doing any I/O; the
// remote query starts on the first Next. Any other partition is a caller
// bug and panics.
func (e *TableExec) Execute(ctx context.Context, partition int) (physical.RecordStream, error) {
	if partition != 0 {
		panic(rerrors.NewContractViolationf("TableExec.Execute",
			"RemoteTableExec has a single partition, got partition %d", partition))
	}
	return newLazyStream(ctx, e), nil
}

func (e *TableExec) String() string {
	return e.DisplayAs(physical.DisplayDefault)
}

// DisplayAs renders the node for EXPLAIN. The verbose form adds the SQL and
// projection.
func (e *TableExec) DisplayAs(format physical.DisplayFormat) string {
	var sb strings.Builder
	sb.WriteString("RemoteTableExec: limit=")
	if e.limit != nil {
		sb.WriteString("Some(" + strconv.Itoa(*e.limit) + ")")
	} else {
		sb.WriteString("None")
	}
	sb.WriteString(", filters=[")
	for i, f := range e.filters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.String())
	}
	sb.WriteString("]")
	if format == physical.DisplayVerbose {
		fmt.Fprintf(&sb, ", db_type=%s, sql=%q, projection=%v", e.opts.DatabaseType(), e.sql, e.projection)
	}
	return sb.String()
}
