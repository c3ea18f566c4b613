package transform

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"

	"github.com/guileen/remotetable/types"
)

// Stringify delivers the named columns as utf8 text. Binary values are
// base64 encoded, timestamps use RFC 3339.
type Stringify struct {
	columns map[string]struct{}
	mem     memory.Allocator
}

func NewStringify(columns ...string) *Stringify {
	s := &Stringify{columns: make(map[string]struct{}, len(columns)), mem: memory.DefaultAllocator}
	for _, c := range columns {
		s.columns[c] = struct{}{}
	}
	return s
}

// WithAllocator sets the allocator output columns are built with
func (s *Stringify) WithAllocator(mem memory.Allocator) *Stringify {
	s.mem = mem
	return s
}

func (s *Stringify) selected(field arrow.Field) bool {
	_, ok := s.columns[field.Name]
	return ok
}

func (s *Stringify) TransformField(_ int, field arrow.Field, _ *types.RemoteField) (arrow.Field, error) {
	if s.selected(field) {
		field.Type = arrow.BinaryTypes.String
	}
	return field, nil
}

func (s *Stringify) TransformColumn(_ int, field arrow.Field, col arrow.Array, _ *types.RemoteField) (arrow.Array, error) {
	if !s.selected(field) || col.DataType().ID() == arrow.STRING {
		col.Retain()
		return col, nil
	}

	b := array.NewStringBuilder(s.mem)
	defer b.Release()
	b.Reserve(col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			b.AppendNull()
			continue
		}
		v, err := formatValue(col, i)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field.Name, err)
		}
		b.Append(v)
	}
	return b.NewArray(), nil
}

func formatValue(col arrow.Array, i int) (string, error) {
	switch a := col.(type) {
	case *array.Boolean:
		return strconv.FormatBool(a.Value(i)), nil
	case *array.Int8:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int16:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10), nil
	case *array.Uint64:
		return strconv.FormatUint(a.Value(i), 10), nil
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(i)), 'g', -1, 32), nil
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'g', -1, 64), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Binary:
		return base64.StdEncoding.EncodeToString(a.Value(i)), nil
	case *array.Date32:
		return a.Value(i).ToTime().Format("2006-01-02"), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format("2006-01-02T15:04:05.999999999Z07:00"), nil
	default:
		return "", fmt.Errorf("cannot convert %s to string", col.DataType())
	}
}
