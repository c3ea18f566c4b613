package remote

import (
	"context"
	"errors"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/guileen/remotetable/logger"
	"github.com/guileen/remotetable/metrics"
	"github.com/guileen/remotetable/physical"
	rerrors "github.com/guileen/remotetable/remote/errors"
)

// lazyStream defers the remote query to the first Next. Setup resolves to
// the connection stream (wrapped by the transform stage when configured),
// which is then read through transparently.
type lazyStream struct {
	exec        *TableExec
	ctx         context.Context
	cancel      context.CancelFunc
	executionID string

	inner   physical.RecordStream
	started bool
	done    bool
	closed  bool
}

func newLazyStream(ctx context.Context, e *TableExec) *lazyStream {
	id := uuid.NewString()
	ctx = logger.WithContextValue(ctx, logger.ExecutionIDKey, id)
	ctx, cancel := context.WithCancel(ctx)
	return &lazyStream{exec: e, ctx: ctx, cancel: cancel, executionID: id}
}

func (s *lazyStream) Schema() *arrow.Schema { return s.exec.schema }

func (s *lazyStream) Next() (arrow.Record, error) {
	if s.done {
		return nil, physical.EOF
	}
	if !s.started {
		s.started = true
		inner, err := s.setup()
		if err != nil {
			s.finish()
			return nil, err
		}
		s.inner = inner
	}

	rec, err := s.inner.Next()
	if err != nil {
		s.finish()
		if !errors.Is(err, physical.EOF) {
			rerrors.LogWarning(s.ctx, err)
		}
		return nil, err
	}
	out, err := s.conform(rec)
	if err != nil {
		s.finish()
		return nil, err
	}
	metrics.BatchesTotal.WithLabelValues(s.dbType()).Inc()
	return out, nil
}

// Close cancels the stream context, aborting an in-flight query, and closes
// the connection stream. Calling it more than once is a no-op.
func (s *lazyStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	s.cancel()
	if s.inner != nil {
		return s.inner.Close()
	}
	return nil
}

// finish marks the stream exhausted after the end or a terminal error
func (s *lazyStream) finish() {
	s.done = true
}

func (s *lazyStream) dbType() string { return s.exec.opts.DatabaseType().String() }

func (s *lazyStream) setup() (physical.RecordStream, error) {
	const op = "RemoteTableExec.setup"
	e := s.exec
	start := time.Now()

	transformed, err := TransformSchema(e.declared, e.transform, e.remote)
	if err != nil {
		return nil, s.setupFailed(err)
	}
	filters, err := RewriteFilters(e.filters, transformed, e.declared)
	if err != nil {
		return nil, s.setupFailed(err)
	}
	limit := effectiveLimit(s.ctx, e.opts, e.sql, e.limit)

	logger.DebugContext(s.ctx, "Starting remote query",
		logger.Component("remote"),
		"db_type", s.dbType(),
		"filters", len(filters),
		"limit_pushed", limit != nil,
		"transform", e.transform != nil)

	stream, err := e.conn.Query(s.ctx, e.opts, e.sql, e.declared, e.projection, filters, limit)
	if err != nil {
		var re *rerrors.RemoteError
		if !errors.As(err, &re) {
			err = rerrors.NewConnectionError(op, err)
		}
		return nil, s.setupFailed(err)
	}

	if e.transform != nil {
		ts, err := NewTransformStream(stream, e.transform, e.declared, e.projection, e.remote)
		if err != nil {
			if cerr := stream.Close(); cerr != nil {
				err = multierror.Append(err, cerr)
			}
			return nil, s.setupFailed(err)
		}
		stream = ts
	}

	metrics.QueriesTotal.WithLabelValues(s.dbType(), "success").Inc()
	metrics.QuerySetupDuration.WithLabelValues(s.dbType()).Observe(time.Since(start).Seconds())
	return stream, nil
}

func (s *lazyStream) setupFailed(err error) error {
	metrics.QueriesTotal.WithLabelValues(s.dbType(), "error").Inc()
	rerrors.LogWarning(s.ctx, err)
	return err
}

// conform tags rec with the node's output schema. Records whose columns
// disagree with it in count or type are rejected.
func (s *lazyStream) conform(rec arrow.Record) (arrow.Record, error) {
	schema := s.exec.schema
	if rec.Schema() == schema {
		return rec, nil
	}
	if int(rec.NumCols()) != schema.NumFields() {
		rec.Release()
		return nil, rerrors.NewSchemaMismatchf("RemoteTableExec.Next",
			"remote batch has %d columns, expected %d", rec.NumCols(), schema.NumFields())
	}
	for i, f := range schema.Fields() {
		if !arrow.TypeEqual(f.Type, rec.Column(i).DataType()) {
			rec.Release()
			return nil, rerrors.NewSchemaMismatchf("RemoteTableExec.Next",
				"remote column %d has type %s, expected %s", i, rec.Column(i).DataType(), f.Type)
		}
	}
	out := array.NewRecord(schema, rec.Columns(), rec.NumRows())
	rec.Release()
	return out, nil
}
