package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ontiuk/eskimo-sync/internal/domain/catalog"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// CategoryModel is the GORM model for product categories
type CategoryModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	EskimoID  string    `gorm:"uniqueIndex;type:varchar(100);not null"`
	ParentID  string    `gorm:"index;type:varchar(36)"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Slug      string    `gorm:"index;type:varchar(255);not null"`
	Body      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the model to a domain entity
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		ID:        m.ID,
		EskimoID:  syncdomain.Ident(m.EskimoID),
		ParentID:  m.ParentID,
		Name:      m.Name,
		Slug:      m.Slug,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CategoryModelFromDomain converts a domain entity to the model
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	return &CategoryModel{
		ID:        c.ID,
		EskimoID:  c.EskimoID.String(),
		ParentID:  c.ParentID,
		Name:      c.Name,
		Slug:      c.Slug,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ProductModel is the GORM model for products
type ProductModel struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	EskimoID      string          `gorm:"uniqueIndex;type:varchar(100);not null"`
	CategoryID    string          `gorm:"index;type:varchar(36);not null"`
	Type          string          `gorm:"type:varchar(20);not null"`
	Status        string          `gorm:"type:varchar(20);not null"`
	Title         string          `gorm:"type:varchar(255);not null"`
	Slug          string          `gorm:"index;type:varchar(255);not null"`
	Excerpt       string          `gorm:"type:text"`
	Body          string          `gorm:"type:text"`
	SkuCode       string          `gorm:"index;type:varchar(100)"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RegularPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxClass      string          `gorm:"type:varchar(20)"`
	Stock         int             `gorm:"not null;default:0"`
	DefaultColour string          `gorm:"type:varchar(100)"`
	DefaultSize   string          `gorm:"type:varchar(100)"`
	Variants      []VariantModel  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName specifies the table name
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain entity. Attribute axes are derived
// rather than stored, so they are rebuilt after the variants load.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ID:            m.ID,
		EskimoID:      syncdomain.Ident(m.EskimoID),
		CategoryID:    m.CategoryID,
		Type:          catalog.ProductType(m.Type),
		Status:        catalog.ProductStatus(m.Status),
		Title:         m.Title,
		Slug:          m.Slug,
		Excerpt:       m.Excerpt,
		Body:          m.Body,
		SkuCode:       m.SkuCode,
		Price:         m.Price,
		RegularPrice:  m.RegularPrice,
		TaxClass:      m.TaxClass,
		Stock:         m.Stock,
		DefaultColour: m.DefaultColour,
		DefaultSize:   m.DefaultSize,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for i := range m.Variants {
		p.Variants = append(p.Variants, m.Variants[i].ToDomain())
	}
	p.RebuildAttributes()
	return p
}

// ProductModelFromDomain converts a domain entity to the model
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		ID:            p.ID,
		EskimoID:      p.EskimoID.String(),
		CategoryID:    p.CategoryID,
		Type:          p.Type.String(),
		Status:        string(p.Status),
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		Body:          p.Body,
		SkuCode:       p.SkuCode,
		Price:         p.Price,
		RegularPrice:  p.RegularPrice,
		TaxClass:      p.TaxClass,
		Stock:         p.Stock,
		DefaultColour: p.DefaultColour,
		DefaultSize:   p.DefaultSize,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, v := range p.Variants {
		m.Variants = append(m.Variants, *VariantModelFromDomain(v))
	}
	return m
}

// VariantModel is the GORM model for product variants
type VariantModel struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"`
	ProductID    string          `gorm:"index;type:varchar(36);not null"`
	EskimoSkuID  string          `gorm:"index;type:varchar(100)"`
	SkuCode      string          `gorm:"uniqueIndex;type:varchar(100);not null"`
	Colour       string          `gorm:"type:varchar(100)"`
	Size         string          `gorm:"type:varchar(100)"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RegularPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxClass     string          `gorm:"type:varchar(20)"`
	Stock        int             `gorm:"not null;default:0"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName specifies the table name
func (VariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the model to a domain entity
func (m *VariantModel) ToDomain() *catalog.Variant {
	return &catalog.Variant{
		ID:           m.ID,
		ProductID:    m.ProductID,
		EskimoSkuID:  syncdomain.Ident(m.EskimoSkuID),
		SkuCode:      m.SkuCode,
		Colour:       m.Colour,
		Size:         m.Size,
		Price:        m.Price,
		RegularPrice: m.RegularPrice,
		TaxClass:     m.TaxClass,
		Stock:        m.Stock,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// VariantModelFromDomain converts a domain entity to the model
func VariantModelFromDomain(v *catalog.Variant) *VariantModel {
	return &VariantModel{
		ID:           v.ID,
		ProductID:    v.ProductID,
		EskimoSkuID:  v.EskimoSkuID.String(),
		SkuCode:      v.SkuCode,
		Colour:       v.Colour,
		Size:         v.Size,
		Price:        v.Price,
		RegularPrice: v.RegularPrice,
		TaxClass:     v.TaxClass,
		Stock:        v.Stock,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
