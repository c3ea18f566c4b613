package physical

import (
	"context"
	"errors"

	"github.com/apache/arrow/go/v13/arrow"
	"golang.org/x/sync/errgroup"
)

// Drain reads stream to the end and closes it. On error every record read
// so far is released.
func Drain(stream RecordStream) ([]arrow.Record, error) {
	var records []arrow.Record
	for {
		rec, err := stream.Next()
		if errors.Is(err, EOF) {
			break
		}
		if err != nil {
			ReleaseAll(records)
			stream.Close()
			return nil, err
		}
		records = append(records, rec)
	}
	if err := stream.Close(); err != nil {
		ReleaseAll(records)
		return nil, err
	}
	return records, nil
}

// Collect executes one partition of plan and returns all of its records
func Collect(ctx context.Context, plan ExecutionPlan, partition int) ([]arrow.Record, error) {
	stream, err := plan.Execute(ctx, partition)
	if err != nil {
		return nil, err
	}
	return Drain(stream)
}

// CollectAll executes every partition of plan concurrently and returns the
// records in partition order. The first failure cancels the other partitions.
func CollectAll(ctx context.Context, plan ExecutionPlan) ([]arrow.Record, error) {
	n := plan.Properties().Partitioning.Count
	parts := make([][]arrow.Record, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			records, err := Collect(gctx, plan, i)
			if err != nil {
				return err
			}
			parts[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, p := range parts {
			ReleaseAll(p)
		}
		return nil, err
	}

	var all []arrow.Record
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}

// ReleaseAll releases every record
func ReleaseAll(records []arrow.Record) {
	for _, r := range records {
		if r != nil {
			r.Release()
		}
	}
}

// CountRows sums the row counts of records
func CountRows(records []arrow.Record) int64 {
	var n int64
	for _, r := range records {
		n += r.NumRows()
	}
	return n
}
