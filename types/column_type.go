package types

import (
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
)

// ColumnType represents the data type of a table column
type ColumnType string

const (
	ColumnTypeString    ColumnType = "string"
	ColumnTypeNumber    ColumnType = "number"
	ColumnTypeBoolean   ColumnType = "boolean"
	ColumnTypeDate      ColumnType = "date"
	ColumnTypeTimestamp ColumnType = "timestamp"
	ColumnTypeJSON      ColumnType = "json"
	ColumnTypeUUID      ColumnType = "uuid"
	ColumnTypeText      ColumnType = "text"
	ColumnTypeBinary    ColumnType = "binary"

	ColumnTypeSmallInt ColumnType = "smallint"
	ColumnTypeInteger  ColumnType = "integer"
	ColumnTypeBigInt   ColumnType = "bigint"
	ColumnTypeReal     ColumnType = "real"
	ColumnTypeDouble   ColumnType = "double"
	ColumnTypeNumeric  ColumnType = "numeric"
	ColumnTypeVarchar  ColumnType = "varchar"
	ColumnTypeChar     ColumnType = "char"
	ColumnTypeJSONB    ColumnType = "jsonb"

	// PostgreSQL SERIAL types
	ColumnTypeSerial      ColumnType = "serial"
	ColumnTypeBigSerial   ColumnType = "bigserial"
	ColumnTypeSmallSerial ColumnType = "smallserial"
)

// IsValidColumnType checks if a column type is valid
func IsValidColumnType(typ ColumnType) bool {
	switch typ {
	case ColumnTypeString, ColumnTypeNumber, ColumnTypeBoolean,
		ColumnTypeDate, ColumnTypeTimestamp, ColumnTypeJSON,
		ColumnTypeUUID, ColumnTypeText, ColumnTypeBinary,
		ColumnTypeSmallInt, ColumnTypeInteger, ColumnTypeBigInt,
		ColumnTypeReal, ColumnTypeDouble, ColumnTypeNumeric,
		ColumnTypeVarchar, ColumnTypeChar, ColumnTypeJSONB,
		ColumnTypeSerial, ColumnTypeBigSerial, ColumnTypeSmallSerial:
		return true
	default:
		return false
	}
}

// MapSerialType converts SERIAL types to their underlying integer types
func MapSerialType(typ ColumnType) ColumnType {
	switch typ {
	case ColumnTypeSerial:
		return ColumnTypeInteger
	case ColumnTypeBigSerial:
		return ColumnTypeBigInt
	case ColumnTypeSmallSerial:
		return ColumnTypeSmallInt
	default:
		return typ
	}
}

// ArrowType returns the arrow data type batches carry for a column of this type.
// Numeric is carried as float64; json, uuid and character types as utf8.
func (typ ColumnType) ArrowType() (arrow.DataType, bool) {
	switch MapSerialType(typ) {
	case ColumnTypeString, ColumnTypeText, ColumnTypeVarchar, ColumnTypeChar,
		ColumnTypeJSON, ColumnTypeJSONB, ColumnTypeUUID:
		return arrow.BinaryTypes.String, true
	case ColumnTypeSmallInt:
		return arrow.PrimitiveTypes.Int16, true
	case ColumnTypeInteger:
		return arrow.PrimitiveTypes.Int32, true
	case ColumnTypeBigInt:
		return arrow.PrimitiveTypes.Int64, true
	case ColumnTypeReal:
		return arrow.PrimitiveTypes.Float32, true
	case ColumnTypeDouble, ColumnTypeNumber, ColumnTypeNumeric:
		return arrow.PrimitiveTypes.Float64, true
	case ColumnTypeBoolean:
		return arrow.FixedWidthTypes.Boolean, true
	case ColumnTypeDate:
		return arrow.FixedWidthTypes.Date32, true
	case ColumnTypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us, true
	case ColumnTypeBinary:
		return arrow.BinaryTypes.Binary, true
	default:
		return nil, false
	}
}

// ColumnTypeFromArrow maps an arrow data type back to a column type
func ColumnTypeFromArrow(dt arrow.DataType) ColumnType {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return ColumnTypeText
	case arrow.INT8, arrow.INT16, arrow.UINT8:
		return ColumnTypeSmallInt
	case arrow.INT32, arrow.UINT16:
		return ColumnTypeInteger
	case arrow.INT64, arrow.UINT32, arrow.UINT64:
		return ColumnTypeBigInt
	case arrow.FLOAT32:
		return ColumnTypeReal
	case arrow.FLOAT64:
		return ColumnTypeDouble
	case arrow.BOOL:
		return ColumnTypeBoolean
	case arrow.DATE32, arrow.DATE64:
		return ColumnTypeDate
	case arrow.TIMESTAMP:
		return ColumnTypeTimestamp
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return ColumnTypeBinary
	default:
		return ColumnTypeJSON
	}
}

// ParseRemoteType maps a type name reported by a remote database (Postgres
// typname, MySQL/SQLite/Oracle declared type) to a column type. Unknown names
// map to ColumnTypeText so values still round-trip as strings.
func ParseRemoteType(name RemoteType) ColumnType {
	n := strings.ToLower(strings.TrimSpace(string(name)))
	// MySQL: "int(10) unsigned zerofill"
	unsigned := false
	if i := strings.Index(n, " unsigned"); i >= 0 {
		n, unsigned = n[:i], true
	}
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}

	if unsigned {
		// the unsigned range needs the next wider signed type
		switch n {
		case "smallint":
			return ColumnTypeInteger
		case "int", "integer":
			return ColumnTypeBigInt
		}
	}

	switch n {
	case "int2", "smallint", "tinyint", "smallserial":
		return ColumnTypeSmallInt
	case "int4", "int", "integer", "mediumint", "serial":
		return ColumnTypeInteger
	case "int8", "bigint", "bigserial":
		return ColumnTypeBigInt
	case "float4", "real", "float", "binary_float":
		return ColumnTypeReal
	case "float8", "double", "double precision", "binary_double":
		return ColumnTypeDouble
	case "numeric", "decimal", "number", "dec":
		return ColumnTypeNumeric
	case "bool", "boolean", "bit":
		return ColumnTypeBoolean
	case "date":
		return ColumnTypeDate
	case "timestamp", "timestamptz", "datetime", "timestamp without time zone",
		"timestamp with time zone":
		return ColumnTypeTimestamp
	case "bytea", "blob", "binary", "varbinary", "longblob", "raw":
		return ColumnTypeBinary
	case "json":
		return ColumnTypeJSON
	case "jsonb":
		return ColumnTypeJSONB
	case "uuid":
		return ColumnTypeUUID
	case "varchar", "character varying", "varchar2", "nvarchar", "nvarchar2":
		return ColumnTypeVarchar
	case "char", "character", "bpchar", "nchar":
		return ColumnTypeChar
	default:
		return ColumnTypeText
	}
}
