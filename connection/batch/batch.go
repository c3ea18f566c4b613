// Package batch turns the row-oriented results of database drivers into
// Arrow record streams.
package batch

import (
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
)

// Builder accumulates rows into records of one schema
type Builder struct {
	schema *arrow.Schema
	rb     *array.RecordBuilder
	rows   int
}

func NewBuilder(mem memory.Allocator, schema *arrow.Schema) *Builder {
	return &Builder{schema: schema, rb: array.NewRecordBuilder(mem, schema)}
}

// Append adds one row; values are in schema order
func (b *Builder) Append(values []any) error {
	for i, v := range values {
		if err := appendValue(b.rb.Field(i), v); err != nil {
			return &ConversionError{Column: b.schema.Field(i).Name, Row: b.rows, Err: err}
		}
	}
	b.rows++
	return nil
}

// Len returns the number of rows appended since the last NewRecord
func (b *Builder) Len() int { return b.rows }

// NewRecord returns the accumulated rows as a record and resets the builder
func (b *Builder) NewRecord() arrow.Record {
	n := b.rows
	b.rows = 0
	if b.schema.NumFields() == 0 {
		return array.NewRecord(b.schema, nil, int64(n))
	}
	return b.rb.NewRecord()
}

func (b *Builder) Release() { b.rb.Release() }

// ConversionError reports a value that does not fit its arrow column
type ConversionError struct {
	Column string
	Row    int
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("column %s row %d: %v", e.Column, e.Row, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
