package physical

import (
	"github.com/apache/arrow/go/v13/arrow"
)

// SliceStream streams a fixed list of records
type SliceStream struct {
	schema  *arrow.Schema
	records []arrow.Record
	pos     int
}

// NewSliceStream takes ownership of records; each one is handed out once
func NewSliceStream(schema *arrow.Schema, records []arrow.Record) *SliceStream {
	return &SliceStream{schema: schema, records: records}
}

func (s *SliceStream) Schema() *arrow.Schema { return s.schema }

func (s *SliceStream) Next() (arrow.Record, error) {
	if s.pos >= len(s.records) {
		return nil, EOF
	}
	rec := s.records[s.pos]
	s.records[s.pos] = nil
	s.pos++
	return rec, nil
}

// Close releases records that were never handed out
func (s *SliceStream) Close() error {
	for i := s.pos; i < len(s.records); i++ {
		if s.records[i] != nil {
			s.records[i].Release()
			s.records[i] = nil
		}
	}
	s.pos = len(s.records)
	return nil
}

// ErrorStream fails on the first Next and is exhausted afterwards
type ErrorStream struct {
	schema *arrow.Schema
	err    error
}

func NewErrorStream(schema *arrow.Schema, err error) *ErrorStream {
	return &ErrorStream{schema: schema, err: err}
}

func (s *ErrorStream) Schema() *arrow.Schema { return s.schema }

func (s *ErrorStream) Next() (arrow.Record, error) {
	if err := s.err; err != nil {
		s.err = nil
		return nil, err
	}
	return nil, EOF
}

func (s *ErrorStream) Close() error { return nil }
