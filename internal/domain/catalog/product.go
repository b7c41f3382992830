package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// ProductType distinguishes single-SKU products from multi-variant ones
type ProductType string

const (
	// ProductTypeSimple is a product backed by exactly one SKU
	ProductTypeSimple ProductType = "simple"
	// ProductTypeVariable is a product backed by two or more SKUs, one
	// variant each
	ProductTypeVariable ProductType = "variable"
)

// IsValid checks if the product type is valid
func (t ProductType) IsValid() bool {
	return t == ProductTypeSimple || t == ProductTypeVariable
}

// String returns the string representation
func (t ProductType) String() string {
	return string(t)
}

// ProductStatus represents the publication state of a product
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusHidden    ProductStatus = "hidden"
)

// IsValid checks if the product status is valid
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusHidden:
		return true
	default:
		return false
	}
}

// Product is a sellable product in the local store, mirrored from a remote
// EPOS product plus its SKUs. Simple products carry the single SKU's code,
// price and stock directly; variable products carry them on Variants.
type Product struct {
	ID            string          `json:"id"`
	EskimoID      sync.Ident      `json:"eskimo_id"`
	CategoryID    string          `json:"category_id"`
	Type          ProductType     `json:"type"`
	Status        ProductStatus   `json:"status"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Excerpt       string          `json:"excerpt,omitempty"`
	Body          string          `json:"body,omitempty"`
	SkuCode       string          `json:"sku_code,omitempty"`
	Price         decimal.Decimal `json:"price"`
	RegularPrice  decimal.Decimal `json:"regular_price"`
	TaxClass      string          `json:"tax_class"`
	Stock         int             `json:"stock"`
	Attributes    []Attribute     `json:"attributes,omitempty"`
	DefaultColour string          `json:"default_colour,omitempty"`
	DefaultSize   string          `json:"default_size,omitempty"`
	Variants      []*Variant      `json:"variants,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Attribute names for the two variation axes the remote SKUs carry
const (
	AttributeColour = "colour"
	AttributeSize   = "size"
)

// Attribute is one variation axis of a product with its value list
type Attribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// NewProduct creates a local product shell. SKU data is attached afterwards
// via SetSimple or AddVariant, which also fixes the product type.
func NewProduct(eskimoID sync.Ident, categoryID, title, excerpt, body string) (*Product, error) {
	title = strings.TrimSpace(title)
	if eskimoID.IsZero() {
		return nil, sync.ErrValidation
	}
	if title == "" {
		return nil, sync.ErrMissingTitle
	}
	if categoryID == "" {
		return nil, sync.ErrCategoryNotMapped
	}
	now := time.Now()
	return &Product{
		ID:         uuid.New().String(),
		EskimoID:   eskimoID,
		CategoryID: categoryID,
		Status:     ProductStatusPublished,
		Title:      title,
		Slug:       Slugify(title),
		Excerpt:    excerpt,
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetSimple makes the product a simple product backed by one SKU
func (p *Product) SetSimple(skuCode string, price, regular decimal.Decimal, taxClass string, stock int) {
	p.Type = ProductTypeSimple
	p.SkuCode = skuCode
	p.Price = price
	p.RegularPrice = regular
	p.TaxClass = taxClass
	p.Stock = stock
	p.Variants = nil
	p.UpdatedAt = time.Now()
}

// AddVariant appends a variant and marks the product variable. Duplicate SKU
// codes within one product are rejected.
func (p *Product) AddVariant(v *Variant) error {
	for _, existing := range p.Variants {
		if existing.SkuCode == v.SkuCode {
			return sync.ErrDuplicateSku
		}
	}
	p.Type = ProductTypeVariable
	p.SkuCode = ""
	v.ProductID = p.ID
	p.Variants = append(p.Variants, v)
	p.UpdatedAt = time.Now()
	return nil
}

// SetAttributes fixes the colour/size pair of a simple product and rebuilds
// the single-value attribute axes from it
func (p *Product) SetAttributes(colour, size string) {
	p.DefaultColour = colour
	p.DefaultSize = size
	p.RebuildAttributes()
}

// RebuildAttributes derives the colour and size axes. A variable product
// lists the distinct values across its variants with the default pair taken
// from the first variant; a simple product carries single-value axes from
// its own colour/size pair.
func (p *Product) RebuildAttributes() {
	colours := []string{p.DefaultColour}
	sizes := []string{p.DefaultSize}
	if p.Type == ProductTypeVariable && len(p.Variants) > 0 {
		colours = colours[:0]
		sizes = sizes[:0]
		for _, v := range p.Variants {
			colours = appendDistinct(colours, v.Colour)
			sizes = appendDistinct(sizes, v.Size)
		}
		p.DefaultColour = p.Variants[0].Colour
		p.DefaultSize = p.Variants[0].Size
	}

	p.Attributes = nil
	if len(colours) > 0 && colours[0] != "" {
		p.Attributes = append(p.Attributes, Attribute{Name: AttributeColour, Options: colours})
	}
	if len(sizes) > 0 && sizes[0] != "" {
		p.Attributes = append(p.Attributes, Attribute{Name: AttributeSize, Options: sizes})
	}
}

// appendDistinct appends value unless it is empty or already present
func appendDistinct(values []string, value string) []string {
	if value == "" {
		return values
	}
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

// UpdateStock replaces the stock level of a simple product
func (p *Product) UpdateStock(stock int) {
	p.Stock = stock
	p.UpdatedAt = time.Now()
}

// UpdatePrices replaces the sell and regular price of a simple product
func (p *Product) UpdatePrices(price, regular decimal.Decimal) {
	p.Price = price
	p.RegularPrice = regular
	p.UpdatedAt = time.Now()
}

// UpdateTaxClass replaces the tax class of a simple product
func (p *Product) UpdateTaxClass(taxClass string) {
	p.TaxClass = taxClass
	p.UpdatedAt = time.Now()
}

// VariantBySku returns the variant carrying the SKU code, or nil
func (p *Product) VariantBySku(code string) *Variant {
	for _, v := range p.Variants {
		if v.SkuCode == code {
			return v
		}
	}
	return nil
}

// TotalStock returns the stock across the product, summing variants for a
// variable product.
func (p *Product) TotalStock() int {
	if p.Type != ProductTypeVariable {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// InStock reports whether any stock remains
func (p *Product) InStock() bool {
	return p.TotalStock() > 0
}

// ---------------------------------------------------------------------------
// Variant
// ---------------------------------------------------------------------------

// Variant is one purchasable variation of a variable product, backed by a
// single remote SKU. EskimoSkuID joins it back to the remote SKU record.
type Variant struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	EskimoSkuID  sync.Ident      `json:"eskimo_sku_id"`
	SkuCode      string          `json:"sku_code"`
	Colour       string          `json:"colour,omitempty"`
	Size         string          `json:"size,omitempty"`
	Price        decimal.Decimal `json:"price"`
	RegularPrice decimal.Decimal `json:"regular_price"`
	TaxClass     string          `json:"tax_class"`
	Stock        int             `json:"stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewVariant creates a variant from remote SKU data
func NewVariant(eskimoSkuID sync.Ident, skuCode, colour, size string, price, regular decimal.Decimal, taxClass string, stock int) (*Variant, error) {
	if skuCode == "" {
		return nil, sync.ErrValidation
	}
	now := time.Now()
	return &Variant{
		ID:           uuid.New().String(),
		EskimoSkuID:  eskimoSkuID,
		SkuCode:      skuCode,
		Colour:       colour,
		Size:         size,
		Price:        price,
		RegularPrice: regular,
		TaxClass:     taxClass,
		Stock:        stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdatePricing refreshes price, tax class and stock from a remote SKU
func (v *Variant) UpdatePricing(price, regular decimal.Decimal, taxClass string, stock int) {
	v.Price = price
	v.RegularPrice = regular
	v.TaxClass = taxClass
	v.Stock = stock
	v.UpdatedAt = time.Now()
}

// UpdateStock replaces the variant's stock level
func (v *Variant) UpdateStock(stock int) {
	v.Stock = stock
	v.UpdatedAt = time.Now()
}

// UpdatePrices replaces the variant's sell and regular price
func (v *Variant) UpdatePrices(price, regular decimal.Decimal) {
	v.Price = price
	v.RegularPrice = regular
	v.UpdatedAt = time.Now()
}

// UpdateTaxClass replaces the variant's tax class
func (v *Variant) UpdateTaxClass(taxClass string) {
	v.TaxClass = taxClass
	v.UpdatedAt = time.Now()
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

// ProductRepository defines persistence operations for products and their
// variants. Save and Update persist the variant set with the product.
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByEskimoID(ctx context.Context, eskimoID sync.Ident) (*Product, error)
	FindBySkuCode(ctx context.Context, code string) (*Product, error)
	FindByCategory(ctx context.Context, categoryID string, offset, limit int) ([]*Product, int64, error)
	FindAll(ctx context.Context, offset, limit int) ([]*Product, int64, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}

// VariantRepository defines variant lookups that cut across products
type VariantRepository interface {
	FindBySkuCode(ctx context.Context, code string) (*Variant, error)
	FindByEskimoSkuID(ctx context.Context, eskimoSkuID sync.Ident) (*Variant, error)
	Update(ctx context.Context, variant *Variant) error
}
