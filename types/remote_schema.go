package types

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
)

// RemoteType is the type name a remote database reports for a column
type RemoteType string

// RemoteField describes one column as the remote database returns it
type RemoteField struct {
	Name     string     `json:"name"`
	Type     RemoteType `json:"type"`
	Nullable bool       `json:"nullable"`
}

// RemoteSchema is the wire schema of a remote query result
type RemoteSchema struct {
	Fields []RemoteField `json:"fields"`
}

// NewRemoteSchema creates a RemoteSchema from fields
func NewRemoteSchema(fields ...RemoteField) *RemoteSchema {
	return &RemoteSchema{Fields: fields}
}

// NumFields returns the number of columns; a nil schema has none
func (s *RemoteSchema) NumFields() int {
	if s == nil {
		return 0
	}
	return len(s.Fields)
}

// Field returns the field at position i, or nil when the schema is absent or shorter
func (s *RemoteSchema) Field(i int) *RemoteField {
	if s == nil || i < 0 || i >= len(s.Fields) {
		return nil
	}
	return &s.Fields[i]
}

// ArrowSchema derives the arrow schema batches of this remote schema carry
func (s *RemoteSchema) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, s.NumFields())
	for _, f := range s.Fields {
		dt, _ := ParseRemoteType(f.Type).ArrowType()
		fields = append(fields, arrow.Field{Name: f.Name, Type: dt, Nullable: f.Nullable})
	}
	return arrow.NewSchema(fields, nil)
}

func (s *RemoteSchema) String() string {
	if s == nil {
		return "<none>"
	}
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
