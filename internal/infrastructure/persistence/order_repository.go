package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/persistence/models"
)

// OrderRepository implements trade.OrderRepository using GORM. Orders load
// and save as aggregates with items, coupons and refunds.
type OrderRepository struct {
	db *gorm.DB
}

var _ trade.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) preload(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Coupons").
		Preload("Refunds").
		Preload("Refunds.Items")
}

// Save persists a new order with its lines
func (r *OrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID retrieves an order by local ID
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.preload(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves an order by its order number
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.preload(ctx).First(&model, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindExportable retrieves paid orders that have not been exported yet,
// oldest first.
func (r *OrderRepository) FindExportable(ctx context.Context, limit int) ([]*trade.Order, error) {
	var rows []models.OrderModel
	if err := r.preload(ctx).
		Where("status IN ?", []string{
			string(trade.OrderStatusProcessing),
			string(trade.OrderStatusCompleted),
		}).
		Where("eskimo_ref = '' OR eskimo_ref = '0'").
		Order("placed_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*trade.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindAll retrieves orders with pagination
func (r *OrderRepository) FindAll(ctx context.Context, offset, limit int) ([]*trade.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := r.preload(ctx).
		Order("placed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*trade.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Update persists changes to an order and replaces its line sets
func (r *OrderRepository) Update(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ?", model.ID).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		for _, del := range []any{
			&models.OrderItemModel{},
			&models.CouponModel{},
			&models.RefundModel{},
		} {
			if err := tx.Delete(del, "order_id = ?", model.ID).Error; err != nil {
				return err
			}
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		if len(model.Coupons) > 0 {
			if err := tx.Create(&model.Coupons).Error; err != nil {
				return err
			}
		}
		if len(model.Refunds) > 0 {
			if err := tx.Create(&model.Refunds).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
