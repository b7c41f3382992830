package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/catalog"
	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
)

// Lease operation names. One lease per sync family: catalog imports share a
// lease so category and product passes cannot interleave, while order export
// runs independently.
const (
	OpCatalogSync  = "catalog"
	OpCustomerSync = "customer"
	OpOrderExport  = "order-export"
)

// Config holds the tunables of the sync engine
type Config struct {
	// WriteBackBatchSize is the number of identifier mappings per write-back call
	WriteBackBatchSize int
	// WriteBackDelay is the pause between write-back batches
	WriteBackDelay time.Duration
	// LeaseTTL bounds how long a crashed run can hold its lease
	LeaseTTL time.Duration
	// CouponMode selects how multiple coupons combine on order export
	CouponMode trade.CouponMode
	// OrderExportLimit caps the orders processed per export pass
	OrderExportLimit int
	// CustomerPrefix leads every exported order's external identifier
	CustomerPrefix string
	// GuestCustomerID is the local customer used when an order's own
	// customer cannot be resolved. Empty disables the fallback.
	GuestCustomerID string
}

// Service orchestrates catalog import, customer linking and order export
// against the remote EPOS system.
type Service struct {
	gateway    syncdomain.Gateway
	lease      syncdomain.Lease
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	variants   catalog.VariantRepository
	customers  trade.CustomerRepository
	orders     trade.OrderRepository
	cfg        Config
	writeBack  *reconciler
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates the sync service
func NewService(
	gateway syncdomain.Gateway,
	lease syncdomain.Lease,
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	variants catalog.VariantRepository,
	customers trade.CustomerRepository,
	orders trade.OrderRepository,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 30 * time.Minute
	}
	if cfg.OrderExportLimit <= 0 {
		cfg.OrderExportLimit = syncdomain.MaxOrderRecords
	}
	if !cfg.CouponMode.IsValid() {
		cfg.CouponMode = trade.CouponModeSequential
	}
	log := logger.Named("sync")
	return &Service{
		gateway:    gateway,
		lease:      lease,
		categories: categories,
		products:   products,
		variants:   variants,
		customers:  customers,
		orders:     orders,
		cfg:        cfg,
		writeBack:  newReconciler(cfg.WriteBackBatchSize, cfg.WriteBackDelay, log),
		logger:     log,
		now:        time.Now,
	}
}

// withLease runs fn under the named lease. A held lease fails fast with
// ErrSyncInProgress rather than queueing behind the running pass.
func (s *Service) withLease(ctx context.Context, operation string, fn func(context.Context) (*syncdomain.Result, error)) (*syncdomain.Result, error) {
	acquired, err := s.lease.Acquire(ctx, operation, s.cfg.LeaseTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.ErrSyncInProgress
	}
	defer func() {
		if err := s.lease.Release(context.WithoutCancel(ctx), operation); err != nil {
			s.logger.Warn("lease release failed", zap.String("operation", operation), zap.Error(err))
		}
	}()

	return fn(ctx)
}
