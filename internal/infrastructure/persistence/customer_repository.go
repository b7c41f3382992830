package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/persistence/models"
)

// CustomerRepository implements trade.CustomerRepository using GORM
type CustomerRepository struct {
	db *gorm.DB
}

var _ trade.CustomerRepository = (*CustomerRepository)(nil)

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Save persists a new customer
func (r *CustomerRepository) Save(ctx context.Context, customer *trade.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID retrieves a customer by local ID
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*trade.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail retrieves a customer by email
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*trade.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEskimoID retrieves a customer by remote customer ID
func (r *CustomerRepository) FindByEskimoID(ctx context.Context, eskimoID string) (*trade.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "eskimo_id = ?", eskimoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll retrieves customers with pagination
func (r *CustomerRepository) FindAll(ctx context.Context, offset, limit int) ([]*trade.Customer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*trade.Customer, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Update persists changes to a customer
func (r *CustomerRepository) Update(ctx context.Context, customer *trade.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	result := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("id = ?", model.ID).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
