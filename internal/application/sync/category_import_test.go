package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

func singlePage[T any](items []T) func(context.Context, syncdomain.BatchRequest) ([]T, error) {
	return func(_ context.Context, req syncdomain.BatchRequest) ([]T, error) {
		if req.Start > 1 {
			return nil, nil
		}
		return items, nil
	}
}

func TestSyncCategories(t *testing.T) {
	ctx := context.Background()

	remote := []syncdomain.RemoteCategory{
		{ID: "2|PRODUCTS", ParentID: "1|PRODUCTS", ShortDescription: "Jumpers"},
		{ID: "1|PRODUCTS", ShortDescription: "Knitwear"},
		{ID: "3|DEPARTMENTS", ShortDescription: "Back office"},
		{ID: "4|PRODUCTS", WebID: "already-there", ShortDescription: "Hats"},
	}

	t.Run("imports parents before children and skips foreign namespaces", func(t *testing.T) {
		f := newFixture(&fakeGateway{categories: singlePage(remote)}, Config{})

		result, err := f.svc.SyncCategories(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalCount)
		assert.Equal(t, 2, result.ImportedCount)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Equal(t, syncdomain.StatusSuccess, result.Status)

		parent, err := f.categories.FindByEskimoID(ctx, "1|PRODUCTS")
		require.NoError(t, err)
		child, err := f.categories.FindByEskimoID(ctx, "2|PRODUCTS")
		require.NoError(t, err)
		assert.Equal(t, parent.ID, child.ParentID)

		_, err = f.categories.FindByEskimoID(ctx, "3|DEPARTMENTS")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		f := newFixture(&fakeGateway{categories: singlePage(remote)}, Config{})

		_, err := f.svc.SyncCategories(ctx)
		require.NoError(t, err)

		result, err := f.svc.SyncCategories(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.ImportedCount)
		assert.Equal(t, 3, result.SkippedCount)

		all, _, err := f.categories.FindAll(ctx, 0, 100)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("orphaned child lands at the top level", func(t *testing.T) {
		orphans := []syncdomain.RemoteCategory{
			{ID: "9|PRODUCTS", ParentID: "404|PRODUCTS", ShortDescription: "Lost"},
			{ID: "1|PRODUCTS", ShortDescription: "Knitwear"},
		}
		var written []syncdomain.IdentifierMapping
		gw := &fakeGateway{
			categories: singlePage(orphans),
			categoryWriteBack: func(_ context.Context, batch []syncdomain.IdentifierMapping) (int, error) {
				written = append(written, batch...)
				return 200, nil
			},
		}
		f := newFixture(gw, Config{})

		result, err := f.svc.SyncCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.ImportedCount)
		assert.Zero(t, result.FailedCount)
		assert.Equal(t, syncdomain.StatusSuccess, result.Status)

		orphan, err := f.categories.FindByEskimoID(ctx, "9|PRODUCTS")
		require.NoError(t, err)
		assert.Empty(t, orphan.ParentID)
		assert.Len(t, written, 2)
	})

	t.Run("writes local ids back to the remote", func(t *testing.T) {
		var written []syncdomain.IdentifierMapping
		gw := &fakeGateway{
			categories: singlePage(remote),
			categoryWriteBack: func(_ context.Context, batch []syncdomain.IdentifierMapping) (int, error) {
				written = append(written, batch...)
				return 200, nil
			},
		}
		f := newFixture(gw, Config{})

		_, err := f.svc.SyncCategories(ctx)
		require.NoError(t, err)
		require.Len(t, written, 2)
		for _, m := range written {
			local, err := f.categories.FindByEskimoID(ctx, m.EskimoID)
			require.NoError(t, err)
			assert.Equal(t, local.ID, m.WebID)
		}
	})

	t.Run("concurrent run is rejected", func(t *testing.T) {
		f := newFixture(&fakeGateway{categories: singlePage(remote)}, Config{})

		acquired, err := f.lease.Acquire(ctx, OpCatalogSync, f.svc.cfg.LeaseTTL)
		require.NoError(t, err)
		require.True(t, acquired)

		_, err = f.svc.SyncCategories(ctx)
		assert.ErrorIs(t, err, shared.ErrSyncInProgress)

		require.NoError(t, f.lease.Release(ctx, OpCatalogSync))
		_, err = f.svc.SyncCategories(ctx)
		assert.NoError(t, err)
	})
}

func TestSyncNewCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("does not re-queue mappings for already-local categories", func(t *testing.T) {
		remote := []syncdomain.RemoteCategory{
			{ID: "1|PRODUCTS", ShortDescription: "Knitwear"},
			{ID: "2|PRODUCTS", ShortDescription: "Jumpers"},
		}
		var written []syncdomain.IdentifierMapping
		gw := &fakeGateway{
			categories: singlePage(remote),
			categoryWriteBack: func(_ context.Context, batch []syncdomain.IdentifierMapping) (int, error) {
				written = append(written, batch...)
				return 200, nil
			},
		}
		f := newFixture(gw, Config{})

		_, err := f.svc.SyncCategories(ctx)
		require.NoError(t, err)
		require.Len(t, written, 2)
		written = nil

		result, err := f.svc.SyncNewCategories(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.ImportedCount)
		assert.Equal(t, 2, result.SkippedCount)
		assert.Empty(t, written)
	})
}

func TestSyncCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("imports one category and writes its mapping back", func(t *testing.T) {
		var written []syncdomain.IdentifierMapping
		gw := &fakeGateway{
			categoryByID: func(_ context.Context, id syncdomain.Ident) (*syncdomain.RemoteCategory, error) {
				return &syncdomain.RemoteCategory{ID: id, ShortDescription: "Knitwear"}, nil
			},
			categoryWriteBack: func(_ context.Context, batch []syncdomain.IdentifierMapping) (int, error) {
				written = append(written, batch...)
				return 200, nil
			},
		}
		f := newFixture(gw, Config{})

		result, err := f.svc.SyncCategory(ctx, "1|PRODUCTS")
		require.NoError(t, err)
		assert.Equal(t, 1, result.ImportedCount)
		require.Len(t, written, 1)

		local, err := f.categories.FindByEskimoID(ctx, "1|PRODUCTS")
		require.NoError(t, err)
		assert.Equal(t, local.ID, written[0].WebID)
	})

	t.Run("rejects a category outside the product namespace", func(t *testing.T) {
		gw := &fakeGateway{
			categoryByID: func(_ context.Context, id syncdomain.Ident) (*syncdomain.RemoteCategory, error) {
				return &syncdomain.RemoteCategory{ID: id, ShortDescription: "Back office"}, nil
			},
		}
		f := newFixture(gw, Config{})

		result, err := f.svc.SyncCategory(ctx, "3|DEPARTMENTS")
		require.NoError(t, err)
		assert.Equal(t, 1, result.FailedCount)
		assert.Equal(t, syncdomain.StatusFailed, result.Status)
	})

	t.Run("unknown category surfaces no-data", func(t *testing.T) {
		f := newFixture(&fakeGateway{}, Config{})

		_, err := f.svc.SyncCategory(ctx, "404|PRODUCTS")
		assert.ErrorIs(t, err, syncdomain.ErrNoData)
	})
}

func TestCategoryMappingWriteback(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*fixture, *[]syncdomain.IdentifierMapping) {
		t.Helper()
		written := &[]syncdomain.IdentifierMapping{}
		gw := &fakeGateway{
			categories: singlePage([]syncdomain.RemoteCategory{
				{ID: "1|PRODUCTS", ShortDescription: "Knitwear"},
				{ID: "2|PRODUCTS", ParentID: "1|PRODUCTS", ShortDescription: "Jumpers"},
			}),
			categoryWriteBack: func(_ context.Context, batch []syncdomain.IdentifierMapping) (int, error) {
				*written = append(*written, batch...)
				return 200, nil
			},
		}
		f := newFixture(gw, Config{})
		_, err := f.svc.SyncCategories(ctx)
		require.NoError(t, err)
		*written = nil
		return f, written
	}

	t.Run("push re-sends every local mapping", func(t *testing.T) {
		f, written := seed(t)

		result, err := f.svc.PushCategoryMappings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
		assert.Equal(t, 2, result.ImportedCount)
		require.Len(t, *written, 2)
		for _, m := range *written {
			local, err := f.categories.FindByEskimoID(ctx, m.EskimoID)
			require.NoError(t, err)
			assert.Equal(t, local.ID, m.WebID)
		}
	})

	t.Run("reset clears every remote mapping", func(t *testing.T) {
		f, written := seed(t)

		result, err := f.svc.ResetCategoryMappings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
		require.Len(t, *written, 2)
		for _, m := range *written {
			assert.Equal(t, "0", m.WebID)
		}
	})

	t.Run("rejected batch is recorded per mapping", func(t *testing.T) {
		f, written := seed(t)
		f.gateway.categoryWriteBack = func(_ context.Context, batch []syncdomain.IdentifierMapping) (int, error) {
			*written = append(*written, batch...)
			return 500, nil
		}

		result, err := f.svc.PushCategoryMappings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.FailedCount)
		assert.Zero(t, result.ImportedCount)
		assert.Equal(t, syncdomain.StatusFailed, result.Status)
	})
}
