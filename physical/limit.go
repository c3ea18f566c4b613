package physical

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
)

// GlobalLimitExec caps the number of rows produced by a single-partition
// input. On construction it offers the limit to the input through WithFetch;
// the limit is still enforced locally because a node accepting a fetch may
// return more rows than asked for.
type GlobalLimitExec struct {
	input  ExecutionPlan
	fetch  int
	pushed bool
}

// NewGlobalLimitExec builds a limit over input
func NewGlobalLimitExec(input ExecutionPlan, fetch int) (*GlobalLimitExec, error) {
	if fetch < 0 {
		return nil, fmt.Errorf("negative fetch %d", fetch)
	}
	if n := input.Properties().Partitioning.Count; n != 1 {
		return nil, fmt.Errorf("global limit requires a single input partition, got %d", n)
	}
	l := &GlobalLimitExec{input: input, fetch: fetch}
	limit := fetch
	if pushed, ok := input.WithFetch(&limit); ok {
		l.input = pushed
		l.pushed = true
	}
	return l, nil
}

// Pushed reports whether the input accepted the fetch limit
func (l *GlobalLimitExec) Pushed() bool { return l.pushed }

func (l *GlobalLimitExec) Name() string              { return "GlobalLimitExec" }
func (l *GlobalLimitExec) Schema() *arrow.Schema     { return l.input.Schema() }
func (l *GlobalLimitExec) Properties() Properties    { return l.input.Properties() }
func (l *GlobalLimitExec) Children() []ExecutionPlan { return []ExecutionPlan{l.input} }
func (l *GlobalLimitExec) String() string            { return fmt.Sprintf("GlobalLimitExec: fetch=%d", l.fetch) }

func (l *GlobalLimitExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("GlobalLimitExec expects 1 child, got %d", len(children))
	}
	n, err := NewGlobalLimitExec(children[0], l.fetch)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (l *GlobalLimitExec) WithFetch(limit *int) (ExecutionPlan, bool) {
	if limit == nil {
		return nil, false
	}
	fetch := *limit
	if l.fetch < fetch {
		fetch = l.fetch
	}
	n, err := NewGlobalLimitExec(l.input, fetch)
	if err != nil {
		return nil, false
	}
	return n, true
}

func (l *GlobalLimitExec) Fetch() *int {
	f := l.fetch
	return &f
}

func (l *GlobalLimitExec) Execute(ctx context.Context, partition int) (RecordStream, error) {
	if partition != 0 {
		return nil, fmt.Errorf("GlobalLimitExec invalid partition %d", partition)
	}
	input, err := l.input.Execute(ctx, 0)
	if err != nil {
		return nil, err
	}
	return &limitStream{input: input, remaining: int64(l.fetch)}, nil
}

type limitStream struct {
	input     RecordStream
	remaining int64
}

func (s *limitStream) Schema() *arrow.Schema { return s.input.Schema() }

func (s *limitStream) Next() (arrow.Record, error) {
	if s.remaining <= 0 {
		return nil, EOF
	}
	rec, err := s.input.Next()
	if err != nil {
		return nil, err
	}
	if rec.NumRows() <= s.remaining {
		s.remaining -= rec.NumRows()
		return rec, nil
	}
	sliced := rec.NewSlice(0, s.remaining)
	rec.Release()
	s.remaining = 0
	return sliced, nil
}

func (s *limitStream) Close() error { return s.input.Close() }
