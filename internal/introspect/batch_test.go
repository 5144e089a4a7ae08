package introspect

import (
	"context"
	"errors"
	"sync"
	"testing"

	"entgen/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTables(n int) []*core.Table {
	tables := make([]*core.Table, n)
	for i := range tables {
		tables[i] = &core.Table{TableName: string(rune('A' + i))}
	}
	return tables
}

func TestInBatchesPartitioning(t *testing.T) {
	tests := []struct {
		name        string
		tables      int
		wantBatches int
	}{
		{name: "empty", tables: 0, wantBatches: 0},
		{name: "single partial batch", tables: 3, wantBatches: 1},
		{name: "exact batch", tables: 10, wantBatches: 1},
		{name: "one over", tables: 11, wantBatches: 2},
		{name: "several batches", tables: 25, wantBatches: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			var sizes []int
			seen := 0

			err := InBatches(context.Background(), makeTables(tt.tables), func(_ context.Context, batch []*core.Table) error {
				mu.Lock()
				defer mu.Unlock()
				sizes = append(sizes, len(batch))
				seen += len(batch)
				return nil
			})
			require.NoError(t, err)
			assert.Len(t, sizes, tt.wantBatches)
			assert.Equal(t, tt.tables, seen, "every table must be visited exactly once")
			for _, size := range sizes {
				assert.LessOrEqual(t, size, BatchSize)
			}
		})
	}
}

func TestInBatchesErrorPropagates(t *testing.T) {
	boom := errors.New("catalog query failed")

	err := InBatches(context.Background(), makeTables(25), func(_ context.Context, batch []*core.Table) error {
		if batch[0].TableName == "A" {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestInBatchesFirstErrorWins(t *testing.T) {
	boom := errors.New("first batch failed")

	// Later batches observe the cancelled context and return its
	// error, but the surfaced error is the one that caused it.
	err := InBatches(context.Background(), makeTables(200), func(ctx context.Context, batch []*core.Table) error {
		if batch[0].TableName == "A" {
			return boom
		}
		return ctx.Err()
	})
	assert.ErrorIs(t, err, boom)
}

func TestInBatchesHonorsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := InBatches(ctx, makeTables(30), func(ctx context.Context, batch []*core.Table) error {
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}
