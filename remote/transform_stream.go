package remote

import (
	"errors"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"

	"github.com/guileen/remotetable/physical"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// TransformStream applies a Transform to every batch of a connection stream.
// Input batches carry the projected declared schema; output batches carry
// the projected transformed schema.
type TransformStream struct {
	input     physical.RecordStream
	transform Transform
	declared  *arrow.Schema
	remote    *types.RemoteSchema
	indices   []int
	schema    *arrow.Schema
}

// NewTransformStream wraps input. projection holds the declared index of
// each input column, nil meaning all columns in declared order.
func NewTransformStream(input physical.RecordStream, t Transform, declared *arrow.Schema,
	projection []int, remote *types.RemoteSchema) (*TransformStream, error) {
	transformed, err := TransformSchema(declared, t, remote)
	if err != nil {
		return nil, err
	}
	schema, err := ProjectSchema(transformed, projection)
	if err != nil {
		return nil, err
	}
	return &TransformStream{
		input:     input,
		transform: t,
		declared:  declared,
		remote:    remote,
		indices:   projectionIndices(projection, declared.NumFields()),
		schema:    schema,
	}, nil
}

func (s *TransformStream) Schema() *arrow.Schema { return s.schema }
func (s *TransformStream) Close() error          { return s.input.Close() }

func (s *TransformStream) Next() (arrow.Record, error) {
	rec, err := s.input.Next()
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	const op = "TransformStream.Next"
	if int(rec.NumCols()) != len(s.indices) {
		return nil, rerrors.NewSchemaMismatchf(op, "batch has %d columns, expected %d", rec.NumCols(), len(s.indices))
	}

	cols := make([]arrow.Array, 0, len(s.indices))
	release := func() {
		for _, c := range cols {
			c.Release()
		}
	}
	for i, idx := range s.indices {
		out, err := s.transform.TransformColumn(idx, s.declared.Field(idx), rec.Column(i), s.remote.Field(idx))
		if err != nil {
			release()
			var re *rerrors.RemoteError
			if errors.As(err, &re) {
				return nil, err
			}
			return nil, rerrors.NewTransformError(op, err)
		}
		cols = append(cols, out)
		want := s.schema.Field(i)
		if int64(out.Len()) != rec.NumRows() {
			release()
			return nil, rerrors.NewTransformErrorf(op, "column %q has %d rows, batch has %d", want.Name, out.Len(), rec.NumRows())
		}
		if !arrow.TypeEqual(out.DataType(), want.Type) {
			release()
			return nil, rerrors.NewTransformErrorf(op, "column %q has type %s, expected %s", want.Name, out.DataType(), want.Type)
		}
	}

	result := array.NewRecord(s.schema, cols, rec.NumRows())
	release()
	return result, nil
}
