package remote

import (
	"github.com/apache/arrow/go/v13/arrow"

	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// TransformSchema computes the schema produced by applying t to the declared
// schema. Without a transform the declared schema itself is returned.
func TransformSchema(declared *arrow.Schema, t Transform, remote *types.RemoteSchema) (*arrow.Schema, error) {
	const op = "TransformSchema"
	if t == nil {
		return declared, nil
	}
	if remote != nil && remote.NumFields() != declared.NumFields() {
		return nil, rerrors.NewSchemaMismatchf(op, "remote schema has %d columns, declared schema has %d",
			remote.NumFields(), declared.NumFields())
	}

	fields := make([]arrow.Field, declared.NumFields())
	seen := make(map[string]int, len(fields))
	for i := range fields {
		f, err := t.TransformField(i, declared.Field(i), remote.Field(i))
		if err != nil {
			return nil, rerrors.Wrapf(err, rerrors.ErrCodeSchemaMismatch, op,
				"transform rejected column %q", declared.Field(i).Name)
		}
		if f.Name == "" {
			return nil, rerrors.NewSchemaMismatchf(op, "transform produced an empty name for column %d", i)
		}
		if prev, ok := seen[f.Name]; ok {
			return nil, rerrors.NewSchemaMismatchf(op, "transform produced duplicate column %q at %d and %d", f.Name, prev, i)
		}
		seen[f.Name] = i
		fields[i] = f
	}
	return arrow.NewSchema(fields, schemaMetadata(declared)), nil
}

// ProjectSchema selects the fields at projection. A nil projection keeps
// every field.
func ProjectSchema(schema *arrow.Schema, projection []int) (*arrow.Schema, error) {
	if projection == nil {
		return schema, nil
	}
	fields := make([]arrow.Field, len(projection))
	for i, idx := range projection {
		if idx < 0 || idx >= schema.NumFields() {
			return nil, rerrors.NewSchemaMismatchf("ProjectSchema",
				"projection index %d out of range for %d columns", idx, schema.NumFields())
		}
		fields[i] = schema.Field(idx)
	}
	return arrow.NewSchema(fields, schemaMetadata(schema)), nil
}

func schemaMetadata(s *arrow.Schema) *arrow.Metadata {
	if !s.HasMetadata() {
		return nil
	}
	md := s.Metadata()
	return &md
}

// projectionIndices returns the declared index of every output column
func projectionIndices(projection []int, n int) []int {
	if projection != nil {
		return projection
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
