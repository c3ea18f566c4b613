package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/physical"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/protocol/sql"
	"github.com/guileen/remotetable/types"
)

const usersSQL = "SELECT id, name FROM users"

func filtersMatching(expected ...string) any {
	return mock.MatchedBy(func(filters []expr.Expr) bool {
		if len(filters) != len(expected) {
			return false
		}
		for i, f := range filters {
			if f.String() != expected[i] {
				return false
			}
		}
		return true
	})
}

func TestNewTableExecValidation(t *testing.T) {
	declared := idNameSchema("id", "name")
	conn := &MockConnection{}
	dup := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	tests := []struct {
		name  string
		build func() (*TableExec, error)
		check func(error) bool
	}{
		{"nil connection", func() (*TableExec, error) {
			return NewTableExec(pgOptions(), usersSQL, declared, nil, nil, nil, nil, nil, nil)
		}, rerrors.IsInvalidArgument},
		{"nil options", func() (*TableExec, error) {
			return NewTableExec(nil, usersSQL, declared, nil, nil, nil, nil, nil, conn)
		}, rerrors.IsInvalidArgument},
		{"nil declared schema", func() (*TableExec, error) {
			return NewTableExec(pgOptions(), usersSQL, nil, nil, nil, nil, nil, nil, conn)
		}, rerrors.IsInvalidArgument},
		{"negative limit", func() (*TableExec, error) {
			return NewTableExec(pgOptions(), usersSQL, declared, nil, nil, nil, intPtr(-1), nil, conn)
		}, rerrors.IsInvalidArgument},
		{"duplicate declared names", func() (*TableExec, error) {
			return NewTableExec(pgOptions(), usersSQL, dup, nil, nil, nil, nil, nil, conn)
		}, rerrors.IsSchemaMismatch},
		{"projection out of range", func() (*TableExec, error) {
			return NewTableExec(pgOptions(), usersSQL, declared, nil, []int{5}, nil, nil, nil, conn)
		}, rerrors.IsSchemaMismatch},
		{"transform incompatible with remote schema", func() (*TableExec, error) {
			remote := types.NewRemoteSchema(types.RemoteField{Name: "only", Type: "int"})
			return NewTableExec(pgOptions(), usersSQL, declared, remote, nil, nil, nil, &renameTransform{}, conn)
		}, rerrors.IsSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.build()
			require.Error(t, err)
			assert.Nil(t, e)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestTableExecPlanContract(t *testing.T) {
	conn := &MockConnection{}
	filters := []expr.Expr{expr.Gt(expr.Col("id"), expr.Lit(10))}
	e, err := NewTableExec(pgOptions(), usersSQL, idNameSchema("id", "name"), nil, []int{1}, filters, nil, nil, conn)
	require.NoError(t, err)

	assert.Equal(t, "RemoteTableExec", e.Name())
	assert.Equal(t, []string{"name"}, fieldNames(e.Schema()))
	assert.Equal(t, physical.Properties{
		Partitioning: physical.UnknownPartitioning(1),
		Emission:     physical.Incremental,
		Boundedness:  physical.Bounded,
	}, e.Properties())
	assert.Empty(t, e.Children())

	same, err := e.WithNewChildren([]physical.ExecutionPlan{e})
	require.NoError(t, err)
	assert.Same(t, e, same)

	assert.Nil(t, e.Fetch())
	assert.Equal(t, "RemoteTableExec: limit=None, filters=[id > 10]", e.String())

	// mutating the caller's slices does not leak into the node
	filters[0] = expr.Lit(true)
	assert.Equal(t, "RemoteTableExec: limit=None, filters=[id > 10]", e.String())
}

func TestTableExecWithFetch(t *testing.T) {
	conn := &MockConnection{}
	e, err := NewTableExec(pgOptions(), usersSQL, idNameSchema("id", "name"), nil, nil, nil, nil, nil, conn)
	require.NoError(t, err)

	n, ok := e.WithFetch(intPtr(5))
	require.True(t, ok)
	require.NotNil(t, n.Fetch())
	assert.Equal(t, 5, *n.Fetch())
	assert.Nil(t, e.Fetch(), "receiver must not change")
	assert.Equal(t, "RemoteTableExec: limit=Some(5), filters=[]", n.String())
	assert.True(t, e.Schema().Equal(n.Schema()))
	assert.Equal(t, e.Properties(), n.Properties())

	cleared, ok := n.WithFetch(nil)
	require.True(t, ok)
	assert.Nil(t, cleared.Fetch())

	_, ok = e.WithFetch(intPtr(-3))
	assert.False(t, ok)
}

func TestTableExecWithFetchRefused(t *testing.T) {
	conn := &MockConnection{}
	tests := []struct {
		name string
		opts ConnectionOptions
		sql  string
	}{
		{"multiple statements", pgOptions(), "SELECT 1; SELECT 2"},
		{"locking clause", pgOptions(), "SELECT * FROM users FOR UPDATE"},
		{"mysql order without limit", &DialectOptions{Type: sql.MySQL}, "select id, name from users order by id"},
		{"not a query", &SQLiteOptions{Path: ":memory:"}, "DELETE FROM users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewTableExec(tt.opts, tt.sql, idNameSchema("id", "name"), nil, nil, nil, intPtr(3), nil, conn)
			require.NoError(t, err)
			n, ok := e.WithFetch(intPtr(5))
			assert.False(t, ok)
			assert.Nil(t, n)
			assert.Equal(t, 3, *e.Fetch())
		})
	}
}

func TestTableExecDisplayVerbose(t *testing.T) {
	e, err := NewTableExec(pgOptions(), usersSQL, idNameSchema("id", "name"), nil, []int{0}, nil, intPtr(2), nil, &MockConnection{})
	require.NoError(t, err)
	assert.Equal(t,
		`RemoteTableExec: limit=Some(2), filters=[], db_type=postgres, sql="SELECT id, name FROM users", projection=[0]`,
		e.DisplayAs(physical.DisplayVerbose))
	assert.Equal(t, "RemoteTableExec: limit=Some(2), filters=[]\n", physical.DisplayPlan(e, physical.DisplayDefault))
}

func TestTableExecExecuteOtherPartitionPanics(t *testing.T) {
	e, err := NewTableExec(pgOptions(), usersSQL, idNameSchema("id", "name"), nil, nil, nil, nil, nil, &MockConnection{})
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, rerrors.IsContractViolation(err))
	}()
	e.Execute(context.Background(), 1)
}

func TestExecuteEndToEnd(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	declared := idNameSchema("id", "name")
	projected, err := ProjectSchema(declared, []int{1})
	require.NoError(t, err)

	conn := &MockConnection{}
	conn.On("Query", mock.Anything, mock.Anything, usersSQL, declared, []int{1}, filtersMatching("id > 10"), intPtr(5)).
		Return(physical.NewSliceStream(projected, []arrow.Record{
			buildRecord(mem, projected, []string{"k", "l"}),
			buildRecord(mem, projected, []string{"m"}),
		}), nil).Once()

	e, err := NewTableExec(pgOptions(), usersSQL, declared, nil, []int{1},
		[]expr.Expr{expr.Gt(expr.Col("id"), expr.Lit(10))}, intPtr(5), nil, conn)
	require.NoError(t, err)

	records, err := physical.Collect(context.Background(), e, 0)
	require.NoError(t, err)
	defer physical.ReleaseAll(records)

	require.Len(t, records, 2)
	assert.Equal(t, int64(3), physical.CountRows(records))
	for _, r := range records {
		assert.True(t, r.Schema().Equal(e.Schema()))
	}
	assert.Equal(t, "m", records[1].Column(0).(*array.String).Value(0))
	conn.AssertExpectations(t)
}

func TestExecuteLimitNotForwardedWhenPolicyRefuses(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	declared := idNameSchema("id", "name")
	query := "select id, name from users order by id"
	opts := &DialectOptions{Type: sql.MySQL}

	conn := &MockConnection{}
	conn.On("Query", mock.Anything, opts, query, declared, []int(nil), filtersMatching(), (*int)(nil)).
		Return(physical.NewSliceStream(declared, nil), nil).Once()

	e, err := NewTableExec(opts, query, declared, nil, nil, nil, intPtr(5), nil, conn)
	require.NoError(t, err)

	records, err := physical.Collect(context.Background(), e, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	conn.AssertExpectations(t)
}

func TestExecuteWithRenameTransform(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	declared := idNameSchema("raw_id", "raw_name")
	remote := types.NewRemoteSchema(
		types.RemoteField{Name: "raw_id", Type: "bigint"},
		types.RemoteField{Name: "raw_name", Type: "text", Nullable: true},
	)
	transform := &renameTransform{names: map[int]string{0: "id", 1: "name"}}

	conn := &MockConnection{}
	conn.On("Query", mock.Anything, mock.Anything, usersSQL, declared, []int(nil), filtersMatching("raw_name = 'x'"), (*int)(nil)).
		Return(physical.NewSliceStream(declared, []arrow.Record{
			buildRecord(mem, declared, []int64{7}, []string{"x"}),
		}), nil).Once()

	e, err := NewTableExec(pgOptions(), usersSQL, declared, remote, nil,
		[]expr.Expr{expr.Eq(expr.Col("name"), expr.Lit("x"))}, nil, transform, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, fieldNames(e.Schema()))

	records, err := physical.Collect(context.Background(), e, 0)
	require.NoError(t, err)
	defer physical.ReleaseAll(records)

	require.Len(t, records, 1)
	assert.Equal(t, []string{"id", "name"}, fieldNames(records[0].Schema()))
	assert.Equal(t, int64(7), records[0].Column(0).(*array.Int64).Value(0))
	conn.AssertExpectations(t)
}

func TestExecuteWithTransformOverRemoteSchema(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	// the remote side returns raw_id/raw_name; the transform delivers the declared names
	declared := idNameSchema("id", "name")
	remote := types.NewRemoteSchema(
		types.RemoteField{Name: "raw_id", Type: "bigint"},
		types.RemoteField{Name: "raw_name", Type: "text", Nullable: true},
	)
	projected, err := ProjectSchema(declared, []int{1})
	require.NoError(t, err)

	conn := &MockConnection{}
	conn.On("Query", mock.Anything, mock.Anything, usersSQL, declared, []int{1}, filtersMatching("name = 'x'"), (*int)(nil)).
		Return(physical.NewSliceStream(projected, []arrow.Record{
			buildRecord(mem, projected, []string{"x", "x"}),
		}), nil).Once()

	e, err := NewTableExec(pgOptions(), usersSQL, declared, remote, []int{1},
		[]expr.Expr{expr.Eq(expr.Col("name"), expr.Lit("x"))}, nil, &renameTransform{}, conn)
	require.NoError(t, err)

	records, err := physical.Collect(context.Background(), e, 0)
	require.NoError(t, err)
	defer physical.ReleaseAll(records)

	require.Len(t, records, 1)
	assert.True(t, records[0].Schema().Equal(projected))
	assert.Equal(t, int64(2), records[0].NumRows())
	conn.AssertExpectations(t)
}

func TestExecuteRetagsRecordsWithOutputSchema(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	declared := idNameSchema("id", "name")
	wire := idNameSchema("ID", "NAME")

	conn := &MockConnection{}
	conn.On("Query", mock.Anything, mock.Anything, usersSQL, declared, []int(nil), filtersMatching(), (*int)(nil)).
		Return(physical.NewSliceStream(wire, []arrow.Record{
			buildRecord(mem, wire, []int64{1}, []string{"a"}),
		}), nil).Once()

	e, err := NewTableExec(pgOptions(), usersSQL, declared, nil, nil, nil, nil, nil, conn)
	require.NoError(t, err)

	records, err := physical.Collect(context.Background(), e, 0)
	require.NoError(t, err)
	defer physical.ReleaseAll(records)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"id", "name"}, fieldNames(records[0].Schema()))
}

func TestExecuteRejectsMistypedRecords(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	declared := idNameSchema("id", "name")
	wrong := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.String},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	conn := &MockConnection{}
	conn.On("Query", mock.Anything, mock.Anything, usersSQL, declared, []int(nil), filtersMatching(), (*int)(nil)).
		Return(physical.NewSliceStream(wrong, []arrow.Record{
			buildRecord(mem, wrong, []string{"1"}, []string{"a"}),
		}), nil).Once()

	e, err := NewTableExec(pgOptions(), usersSQL, declared, nil, nil, nil, nil, nil, conn)
	require.NoError(t, err)

	_, err = physical.Collect(context.Background(), e, 0)
	require.Error(t, err)
	assert.True(t, rerrors.IsSchemaMismatch(err))
	assert.False(t, errors.Is(err, physical.EOF))
}
