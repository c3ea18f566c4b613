package transform

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"

	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/physical"
	"github.com/guileen/remotetable/remote"
	"github.com/guileen/remotetable/types"
)

// staticConnection serves one record per query, projected in process
type staticConnection struct {
	schema *arrow.Schema
	build  func() arrow.Record
}

func (c *staticConnection) Infer(_ context.Context, _ string) (*types.RemoteSchema, *arrow.Schema, error) {
	return nil, c.schema, nil
}

func (c *staticConnection) Query(_ context.Context, _ remote.ConnectionOptions, _ string, declared *arrow.Schema,
	projection []int, _ []expr.Expr, _ *int) (physical.RecordStream, error) {
	rec := c.build()
	defer rec.Release()
	projected, err := remote.ProjectSchema(declared, projection)
	if err != nil {
		return nil, err
	}
	cols := make([]arrow.Array, 0, projected.NumFields())
	for i := 0; i < projected.NumFields(); i++ {
		idx := i
		if projection != nil {
			idx = projection[i]
		}
		cols = append(cols, rec.Column(idx))
	}
	return physical.NewSliceStream(projected, []arrow.Record{array.NewRecord(projected, cols, rec.NumRows())}), nil
}
