package introspect

import (
	"context"

	"entgen/internal/core"

	"golang.org/x/sync/errgroup"
)

// BatchSize is the number of tables detailed on one pooled connection.
const BatchSize = 10

// InBatches partitions tables into fixed-size batches and runs fn for
// each batch on its own worker. Within a batch fn reads sequentially;
// batches run in parallel. The first failure cancels the shared
// context so waiting workers abort early; already-running workers
// finish, and the caller discards their results.
func InBatches(ctx context.Context, tables []*core.Table, fn func(ctx context.Context, batch []*core.Table) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(tables); start += BatchSize {
		end := min(start+BatchSize, len(tables))
		batch := tables[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, batch)
		})
	}
	return g.Wait()
}
