package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// pagedSource serves n items in pages driven by the cursor
func pagedSource(n int) func(context.Context, syncdomain.BatchRequest) ([]int, error) {
	return func(_ context.Context, req syncdomain.BatchRequest) ([]int, error) {
		var page []int
		for i := req.Start; i <= n && i < req.Start+req.Count; i++ {
			page = append(page, i)
		}
		return page, nil
	}
}

func TestCollectPages(t *testing.T) {
	ctx := context.Background()

	t.Run("walks until the empty page", func(t *testing.T) {
		// 60 items at 25 per page: 25, 25, 10, then the empty probe
		fetches := 0
		fetch := pagedSource(60)
		counted := func(ctx context.Context, req syncdomain.BatchRequest) ([]int, error) {
			fetches++
			return fetch(ctx, req)
		}

		first, err := syncdomain.NewBatchRequest(1, 25, 100)
		require.NoError(t, err)

		var got []int
		err = collectPages(ctx, first, counted, func(page []int) error {
			got = append(got, page...)
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, got, 60)
		assert.Equal(t, 4, fetches)
	})

	t.Run("exact multiple still probes once more", func(t *testing.T) {
		fetches := 0
		fetch := pagedSource(50)
		counted := func(ctx context.Context, req syncdomain.BatchRequest) ([]int, error) {
			fetches++
			return fetch(ctx, req)
		}

		first, err := syncdomain.NewBatchRequest(1, 25, 100)
		require.NoError(t, err)
		require.NoError(t, collectPages(ctx, first, counted, func([]int) error { return nil }))
		assert.Equal(t, 3, fetches)
	})

	t.Run("empty window makes exactly one fetch", func(t *testing.T) {
		fetches := 0
		first, err := syncdomain.NewBatchRequest(1, 25, 100)
		require.NoError(t, err)

		err = collectPages(ctx, first, func(context.Context, syncdomain.BatchRequest) ([]int, error) {
			fetches++
			return nil, nil
		}, func([]int) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 1, fetches)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		first, err := syncdomain.NewBatchRequest(1, 25, 100)
		require.NoError(t, err)
		err = collectPages(cancelled, first, pagedSource(60), func([]int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
