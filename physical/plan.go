// Package physical defines the contract between a host query engine and the
// execution nodes it schedules: plan nodes, their cached properties and the
// record streams they produce.
package physical

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v13/arrow"
)

// EOF is returned by RecordStream.Next when the stream is exhausted
var EOF = io.EOF

// ExecutionPlan is a node of a physical plan
type ExecutionPlan interface {
	fmt.Stringer

	Name() string
	Schema() *arrow.Schema
	Properties() Properties
	Children() []ExecutionPlan
	// WithNewChildren returns a node with its children replaced. Leaf nodes
	// return themselves.
	WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error)
	// Execute starts partition and returns its stream. The stream is bound to
	// ctx; cancelling ctx aborts in-flight work.
	Execute(ctx context.Context, partition int) (RecordStream, error)
	// WithFetch returns a copy of the node producing at most *limit rows, or
	// false when the node cannot honor a fetch limit.
	WithFetch(limit *int) (ExecutionPlan, bool)
	// Fetch returns the node's fetch limit, nil when unlimited
	Fetch() *int
}

// Displayer is implemented by nodes with a custom explain rendering
type Displayer interface {
	DisplayAs(format DisplayFormat) string
}

// RecordStream is a pull-based stream of record batches. Next returns EOF at
// the end; the caller owns every returned record and must Release it.
type RecordStream interface {
	Schema() *arrow.Schema
	Next() (arrow.Record, error)
	Close() error
}

type PartitioningKind int

const (
	PartitioningUnknown PartitioningKind = iota
	PartitioningRoundRobin
	PartitioningHash
)

// Partitioning describes how a node's output is split
type Partitioning struct {
	Kind  PartitioningKind
	Count int
}

// UnknownPartitioning returns n partitions with no known distribution
func UnknownPartitioning(n int) Partitioning {
	return Partitioning{Kind: PartitioningUnknown, Count: n}
}

func (p Partitioning) String() string {
	switch p.Kind {
	case PartitioningRoundRobin:
		return fmt.Sprintf("RoundRobinBatch(%d)", p.Count)
	case PartitioningHash:
		return fmt.Sprintf("Hash(%d)", p.Count)
	default:
		return fmt.Sprintf("UnknownPartitioning(%d)", p.Count)
	}
}

// EmissionType tells whether output is produced as input arrives or only at the end
type EmissionType int

const (
	Incremental EmissionType = iota
	Final
	Both
)

func (e EmissionType) String() string {
	switch e {
	case Final:
		return "Final"
	case Both:
		return "Both"
	default:
		return "Incremental"
	}
}

// Boundedness tells whether a node's output is finite
type Boundedness int

const (
	Bounded Boundedness = iota
	Unbounded
)

func (b Boundedness) String() string {
	if b == Unbounded {
		return "Unbounded"
	}
	return "Bounded"
}

// Properties are computed once per node and cached
type Properties struct {
	Partitioning Partitioning
	Emission     EmissionType
	Boundedness  Boundedness
}

type DisplayFormat int

const (
	DisplayDefault DisplayFormat = iota
	DisplayVerbose
)
