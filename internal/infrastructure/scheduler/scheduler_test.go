package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/config"
)

type stubRunner struct {
	calls []string
	err   error
}

func (r *stubRunner) record(name string) (*syncdomain.Result, error) {
	r.calls = append(r.calls, name)
	if r.err != nil {
		return nil, r.err
	}
	return &syncdomain.Result{Status: syncdomain.StatusSuccess}, nil
}

func (r *stubRunner) SyncCategories(context.Context) (*syncdomain.Result, error) {
	return r.record("categories")
}

func (r *stubRunner) SyncProducts(context.Context) (*syncdomain.Result, error) {
	return r.record("products")
}

func (r *stubRunner) SyncModifiedProducts(_ context.Context, unit string, amount int64) (*syncdomain.Result, error) {
	return r.record("modified")
}

func (r *stubRunner) SyncSkus(_ context.Context, unit string, amount int64) (*syncdomain.Result, error) {
	return r.record("skus")
}

func (r *stubRunner) ExportPendingOrders(context.Context) (*syncdomain.Result, error) {
	return r.record("orders")
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:              true,
		CatalogCronSchedule:  "0 2 * * *",
		ModifiedCronSchedule: "*/30 * * * *",
		OrderCronSchedule:    "*/15 * * * *",
		ModifiedWindowHours:  1,
		JobTimeout:           time.Minute,
	}
}

func TestNewScheduler(t *testing.T) {
	t.Run("accepts valid cron schedules", func(t *testing.T) {
		s, err := New(testConfig(), &stubRunner{}, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, s)
	})

	t.Run("rejects a malformed schedule", func(t *testing.T) {
		cfg := testConfig()
		cfg.CatalogCronSchedule = "not-a-schedule"
		_, err := New(cfg, &stubRunner{}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestCatalogJobOrdering(t *testing.T) {
	runner := &stubRunner{}
	s, err := New(testConfig(), runner, zap.NewNop())
	require.NoError(t, err)

	_, err = s.runCatalogSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"categories", "products"}, runner.calls)
}

func TestModifiedJobCoversProductsAndSkus(t *testing.T) {
	runner := &stubRunner{}
	s, err := New(testConfig(), runner, zap.NewNop())
	require.NoError(t, err)

	_, err = s.runModifiedSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"modified", "skus"}, runner.calls)
}

func TestWrapSwallowsLeaseSkip(t *testing.T) {
	runner := &stubRunner{err: shared.ErrSyncInProgress}
	s, err := New(testConfig(), runner, zap.NewNop())
	require.NoError(t, err)

	// Must not panic or propagate; the next scheduled fire retries
	s.wrap("orders", runner.ExportPendingOrders)()
	assert.Equal(t, []string{"orders"}, runner.calls)
}
