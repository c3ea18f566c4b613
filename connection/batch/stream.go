package batch

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/memory"

	"github.com/guileen/remotetable/physical"
	rerrors "github.com/guileen/remotetable/remote/errors"
)

// RowSource is a cursor over driver rows
type RowSource interface {
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}

// RowStream reads a RowSource in chunks of rows and emits one record per chunk
type RowStream struct {
	ctx     context.Context
	source  RowSource
	schema  *arrow.Schema
	columns []int
	chunk   int
	builder *Builder
	done    bool
	closed  bool
}

// NewRowStream streams source as records of schema. columns gives, for every
// field of schema, the position of its value in a source row.
func NewRowStream(ctx context.Context, mem memory.Allocator, source RowSource, schema *arrow.Schema, columns []int, chunk int) *RowStream {
	if chunk <= 0 {
		chunk = 1024
	}
	return &RowStream{
		ctx:     ctx,
		source:  source,
		schema:  schema,
		columns: columns,
		chunk:   chunk,
		builder: NewBuilder(mem, schema),
	}
}

func (s *RowStream) Schema() *arrow.Schema { return s.schema }

func (s *RowStream) Next() (arrow.Record, error) {
	const op = "RowStream.Next"
	if s.done {
		return nil, physical.EOF
	}
	if err := s.ctx.Err(); err != nil {
		s.done = true
		return nil, rerrors.NewConnectionError(op, err)
	}

	row := make([]any, len(s.columns))
	for s.builder.Len() < s.chunk && s.source.Next() {
		values, err := s.source.Values()
		if err != nil {
			s.done = true
			return nil, rerrors.NewConnectionError(op, err)
		}
		for i, idx := range s.columns {
			if idx >= len(values) {
				s.done = true
				return nil, rerrors.NewSchemaMismatchf(op, "remote row has %d columns, column %q expects position %d",
					len(values), s.schema.Field(i).Name, idx)
			}
			row[i] = values[idx]
		}
		if err := s.builder.Append(row); err != nil {
			s.done = true
			return nil, rerrors.Wrap(err, rerrors.ErrCodeSchemaMismatch, op)
		}
	}

	if s.builder.Len() < s.chunk {
		// source exhausted or failed
		s.done = true
		if err := s.source.Err(); err != nil {
			return nil, rerrors.NewConnectionError(op, err)
		}
		if s.builder.Len() == 0 {
			return nil, physical.EOF
		}
	}
	return s.builder.NewRecord(), nil
}

func (s *RowStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	s.builder.Release()
	return s.source.Close()
}
