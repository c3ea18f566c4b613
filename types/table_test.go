package types

import (
	"errors"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableDefinitionArrowSchema(t *testing.T) {
	def := &TableDefinition{
		Name: "users",
		SQL:  "SELECT * FROM users",
		Columns: []ColumnDefinition{
			{Name: "id", Type: ColumnTypeBigSerial},
			{Name: "name", Type: ColumnTypeVarchar, Nullable: true},
			{Name: "created_at", Type: ColumnTypeTimestamp},
		},
	}

	schema, err := def.ArrowSchema()
	require.NoError(t, err)
	require.Equal(t, 3, schema.NumFields())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, schema.Field(0).Type)
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(1).Type)
	assert.True(t, schema.Field(1).Nullable)
	assert.Equal(t, arrow.FixedWidthTypes.Timestamp_us, schema.Field(2).Type)
}

func TestTableDefinitionArrowSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		cols []ColumnDefinition
	}{
		{"duplicate", []ColumnDefinition{{Name: "a", Type: ColumnTypeInteger}, {Name: "a", Type: ColumnTypeText}}},
		{"unknown type", []ColumnDefinition{{Name: "a", Type: "geometry"}}},
		{"empty name", []ColumnDefinition{{Name: "", Type: ColumnTypeText}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &TableDefinition{Name: "t", Columns: tt.cols}
			_, err := def.ArrowSchema()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDefinition))
		})
	}
}

func TestTableDefinitionWithoutColumns(t *testing.T) {
	def := &TableDefinition{Name: "t", SQL: "SELECT 1"}
	schema, err := def.ArrowSchema()
	require.NoError(t, err)
	assert.Nil(t, schema)
}

func TestParseRemoteType(t *testing.T) {
	tests := map[RemoteType]ColumnType{
		"int4":                        ColumnTypeInteger,
		"INTEGER":                     ColumnTypeInteger,
		"int8":                        ColumnTypeBigInt,
		"character varying(255)":      ColumnTypeVarchar,
		"NUMERIC(10,2)":               ColumnTypeNumeric,
		"timestamp without time zone": ColumnTypeTimestamp,
		"bool":                        ColumnTypeBoolean,
		"BLOB":                        ColumnTypeBinary,
		"":                            ColumnTypeText,
		"geometry":                    ColumnTypeText,
		"int unsigned":                ColumnTypeBigInt,
		"INT(10) UNSIGNED ZEROFILL":   ColumnTypeBigInt,
		"smallint unsigned":           ColumnTypeInteger,
		"tinyint(3) unsigned":         ColumnTypeSmallInt,
		"bigint unsigned":             ColumnTypeBigInt,
		"double unsigned":             ColumnTypeDouble,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseRemoteType(in), "remote type %q", in)
	}
}

func TestRemoteSchema(t *testing.T) {
	var absent *RemoteSchema
	assert.Equal(t, 0, absent.NumFields())
	assert.Nil(t, absent.Field(0))
	assert.Equal(t, "<none>", absent.String())

	rs := NewRemoteSchema(
		RemoteField{Name: "raw_id", Type: "int8"},
		RemoteField{Name: "raw_name", Type: "text", Nullable: true},
	)
	assert.Equal(t, 2, rs.NumFields())
	assert.Equal(t, "raw_name", rs.Field(1).Name)
	assert.Nil(t, rs.Field(2))
	assert.Equal(t, "[raw_id:int8, raw_name:text]", rs.String())

	schema := rs.ArrowSchema()
	assert.Equal(t, arrow.PrimitiveTypes.Int64, schema.Field(0).Type)
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(1).Type)
	assert.True(t, schema.Field(1).Nullable)
}
