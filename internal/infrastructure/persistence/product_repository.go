package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ontiuk/eskimo-sync/internal/domain/catalog"
	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/persistence/models"
)

// ProductRepository implements catalog.ProductRepository using GORM. Products
// load and save as aggregates with their variants.
type ProductRepository struct {
	db *gorm.DB
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Save persists a new product with its variants
func (r *ProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID retrieves a product by its local ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("Variants").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEskimoID retrieves a product by its remote identifier
func (r *ProductRepository) FindByEskimoID(ctx context.Context, eskimoID syncdomain.Ident) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("Variants").
		First(&model, "eskimo_id = ?", eskimoID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySkuCode retrieves the product carrying a SKU code, either directly on
// a simple product or through one of its variants.
func (r *ProductRepository) FindBySkuCode(ctx context.Context, code string) (*catalog.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).Preload("Variants").
		First(&model, "sku_code = ?", code).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var variant models.VariantModel
	if err := r.db.WithContext(ctx).First(&variant, "sku_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, variant.ProductID)
}

// FindByCategory retrieves products in a category with pagination
func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID string, offset, limit int) ([]*catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("category_id = ?", categoryID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := query.Preload("Variants").
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// FindAll retrieves products with pagination
func (r *ProductRepository) FindAll(ctx context.Context, offset, limit int) ([]*catalog.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Preload("Variants").
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Update persists changes to a product and replaces its variant set
func (r *ProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProductModel{}).
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

		if err := tx.Delete(&models.VariantModel{}, "product_id = ?", model.ID).Error; err != nil {
			return err
		}
		if len(model.Variants) > 0 {
			if err := tx.Create(&model.Variants).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a product and its variants
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.VariantModel{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// VariantRepository implements catalog.VariantRepository using GORM
type VariantRepository struct {
	db *gorm.DB
}

var _ catalog.VariantRepository = (*VariantRepository)(nil)

// NewVariantRepository creates a new variant repository
func NewVariantRepository(db *gorm.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// FindBySkuCode retrieves a variant by SKU code
func (r *VariantRepository) FindBySkuCode(ctx context.Context, code string) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).First(&model, "sku_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEskimoSkuID retrieves a variant by its remote SKU identifier
func (r *VariantRepository) FindByEskimoSkuID(ctx context.Context, eskimoSkuID syncdomain.Ident) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).First(&model, "eskimo_sku_id = ?", eskimoSkuID.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Update persists changes to a variant
func (r *VariantRepository) Update(ctx context.Context, variant *catalog.Variant) error {
	model := models.VariantModelFromDomain(variant)
	result := r.db.WithContext(ctx).Model(&models.VariantModel{}).
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
