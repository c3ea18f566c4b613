package types

import (
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
)

// ColumnDefinition defines a declared table column
type ColumnDefinition struct {
	Name        string     `json:"name" yaml:"name"`
	Type        ColumnType `json:"type" yaml:"type"`
	Nullable    bool       `json:"nullable" yaml:"nullable"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// TransformDefinition configures the row/column transform applied after the remote query
type TransformDefinition struct {
	// Rename gives the output name of every declared column, by position
	Rename []string `json:"rename,omitempty" yaml:"rename,omitempty"`
	// Stringify lists declared columns delivered as utf8
	Stringify []string `json:"stringify,omitempty" yaml:"stringify,omitempty"`
}

// TableDefinition describes one remote table exposed to the query engine
type TableDefinition struct {
	Name        string               `json:"name" yaml:"name"`
	SQL         string               `json:"sql" yaml:"sql"`
	Columns     []ColumnDefinition   `json:"columns,omitempty" yaml:"columns,omitempty"`
	Transform   *TransformDefinition `json:"transform,omitempty" yaml:"transform,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
}

// ArrowSchema converts the declared columns into an arrow schema.
// It returns nil without error when no columns are declared.
func (t *TableDefinition) ArrowSchema() (*arrow.Schema, error) {
	if len(t.Columns) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(t.Columns))
	fields := make([]arrow.Field, 0, len(t.Columns))
	for _, col := range t.Columns {
		if col.Name == "" {
			return nil, fmt.Errorf("table %s: %w: empty column name", t.Name, ErrInvalidDefinition)
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("table %s: %w: duplicate column %s", t.Name, ErrInvalidDefinition, col.Name)
		}
		seen[col.Name] = struct{}{}
		dt, ok := col.Type.ArrowType()
		if !ok {
			return nil, fmt.Errorf("table %s: %w: column %s has unknown type %q", t.Name, ErrInvalidDefinition, col.Name, col.Type)
		}
		fields = append(fields, arrow.Field{Name: col.Name, Type: dt, Nullable: col.Nullable})
	}
	return arrow.NewSchema(fields, nil), nil
}

// ColumnsFromSchema describes an arrow schema as column definitions
func ColumnsFromSchema(schema *arrow.Schema) []ColumnDefinition {
	cols := make([]ColumnDefinition, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = ColumnDefinition{
			Name:     f.Name,
			Type:     ColumnTypeFromArrow(f.Type),
			Nullable: f.Nullable,
		}
	}
	return cols
}

// Error types
var (
	ErrTableNotFound     = fmt.Errorf("table not found")
	ErrColumnNotFound    = fmt.Errorf("column not found")
	ErrInvalidDefinition = fmt.Errorf("invalid table definition")
)
