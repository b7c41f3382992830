package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
)

// CustomerModel is the GORM model for customers
type CustomerModel struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)"`
	EskimoID         string    `gorm:"index;type:varchar(100)"`
	Email            string    `gorm:"uniqueIndex;type:varchar(255);not null"`
	FirstName        string    `gorm:"type:varchar(100)"`
	Surname          string    `gorm:"type:varchar(100)"`
	Company          string    `gorm:"type:varchar(255)"`
	Phone            string    `gorm:"type:varchar(50)"`
	BillingName      string    `gorm:"type:varchar(255)"`
	BillingLine1     string    `gorm:"type:varchar(255)"`
	BillingLine2     string    `gorm:"type:varchar(255)"`
	BillingCity      string    `gorm:"type:varchar(100)"`
	BillingPostCode  string    `gorm:"type:varchar(20)"`
	BillingCountry   string    `gorm:"type:varchar(2)"`
	ShippingName     string    `gorm:"type:varchar(255)"`
	ShippingLine1    string    `gorm:"type:varchar(255)"`
	ShippingLine2    string    `gorm:"type:varchar(255)"`
	ShippingCity     string    `gorm:"type:varchar(100)"`
	ShippingPostCode string    `gorm:"type:varchar(20)"`
	ShippingCountry  string    `gorm:"type:varchar(2)"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a domain entity
func (m *CustomerModel) ToDomain() *trade.Customer {
	return &trade.Customer{
		ID:        m.ID,
		EskimoID:  m.EskimoID,
		Email:     m.Email,
		FirstName: m.FirstName,
		Surname:   m.Surname,
		Company:   m.Company,
		Phone:     m.Phone,
		Billing: trade.Address{
			Name:     m.BillingName,
			Line1:    m.BillingLine1,
			Line2:    m.BillingLine2,
			City:     m.BillingCity,
			PostCode: m.BillingPostCode,
			Country:  m.BillingCountry,
		},
		Shipping: trade.Address{
			Name:     m.ShippingName,
			Line1:    m.ShippingLine1,
			Line2:    m.ShippingLine2,
			City:     m.ShippingCity,
			PostCode: m.ShippingPostCode,
			Country:  m.ShippingCountry,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CustomerModelFromDomain converts a domain entity to the model
func CustomerModelFromDomain(c *trade.Customer) *CustomerModel {
	return &CustomerModel{
		ID:               c.ID,
		EskimoID:         c.EskimoID,
		Email:            c.Email,
		FirstName:        c.FirstName,
		Surname:          c.Surname,
		Company:          c.Company,
		Phone:            c.Phone,
		BillingName:      c.Billing.Name,
		BillingLine1:     c.Billing.Line1,
		BillingLine2:     c.Billing.Line2,
		BillingCity:      c.Billing.City,
		BillingPostCode:  c.Billing.PostCode,
		BillingCountry:   c.Billing.Country,
		ShippingName:     c.Shipping.Name,
		ShippingLine1:    c.Shipping.Line1,
		ShippingLine2:    c.Shipping.Line2,
		ShippingCity:     c.Shipping.City,
		ShippingPostCode: c.Shipping.PostCode,
		ShippingCountry:  c.Shipping.Country,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// OrderModel is the GORM model for orders
type OrderModel struct {
	ID               string           `gorm:"primaryKey;type:varchar(36)"`
	Number           string           `gorm:"uniqueIndex;type:varchar(50);not null"`
	CustomerID       string           `gorm:"index;type:varchar(36);not null"`
	Status           string           `gorm:"index;type:varchar(20);not null"`
	EskimoRef        string           `gorm:"index;type:varchar(100)"`
	Currency         string           `gorm:"type:varchar(3);not null"`
	Total            decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ShippingTotal    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	BillingName      string           `gorm:"type:varchar(255)"`
	BillingLine1     string           `gorm:"type:varchar(255)"`
	BillingLine2     string           `gorm:"type:varchar(255)"`
	BillingCity      string           `gorm:"type:varchar(100)"`
	BillingPostCode  string           `gorm:"type:varchar(20)"`
	BillingCountry   string           `gorm:"type:varchar(2)"`
	ShippingName     string           `gorm:"type:varchar(255)"`
	ShippingLine1    string           `gorm:"type:varchar(255)"`
	ShippingLine2    string           `gorm:"type:varchar(255)"`
	ShippingCity     string           `gorm:"type:varchar(100)"`
	ShippingPostCode string           `gorm:"type:varchar(20)"`
	ShippingCountry  string           `gorm:"type:varchar(2)"`
	Items            []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Coupons          []CouponModel    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Refunds          []RefundModel    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt         time.Time        `gorm:"index;not null"`
	CreatedAt        time.Time        `gorm:"not null"`
	UpdatedAt        time.Time        `gorm:"not null"`
}

// TableName specifies the table name
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model to a domain entity
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		ID:            m.ID,
		Number:        m.Number,
		CustomerID:    m.CustomerID,
		Status:        trade.OrderStatus(m.Status),
		EskimoRef:     m.EskimoRef,
		Currency:      m.Currency,
		Total:         m.Total,
		ShippingTotal: m.ShippingTotal,
		Billing: trade.Address{
			Name:     m.BillingName,
			Line1:    m.BillingLine1,
			Line2:    m.BillingLine2,
			City:     m.BillingCity,
			PostCode: m.BillingPostCode,
			Country:  m.BillingCountry,
		},
		Shipping: trade.Address{
			Name:     m.ShippingName,
			Line1:    m.ShippingLine1,
			Line2:    m.ShippingLine2,
			City:     m.ShippingCity,
			PostCode: m.ShippingPostCode,
			Country:  m.ShippingCountry,
		},
		PlacedAt:  m.PlacedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for i := range m.Items {
		o.Items = append(o.Items, m.Items[i].ToDomain())
	}
	for i := range m.Coupons {
		o.Coupons = append(o.Coupons, m.Coupons[i].ToDomain())
	}
	for i := range m.Refunds {
		o.Refunds = append(o.Refunds, m.Refunds[i].ToDomain())
	}
	return o
}

// OrderModelFromDomain converts a domain entity to the model
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		ID:               o.ID,
		Number:           o.Number,
		CustomerID:       o.CustomerID,
		Status:           string(o.Status),
		EskimoRef:        o.EskimoRef,
		Currency:         o.Currency,
		Total:            o.Total,
		ShippingTotal:    o.ShippingTotal,
		BillingName:      o.Billing.Name,
		BillingLine1:     o.Billing.Line1,
		BillingLine2:     o.Billing.Line2,
		BillingCity:      o.Billing.City,
		BillingPostCode:  o.Billing.PostCode,
		BillingCountry:   o.Billing.Country,
		ShippingName:     o.Shipping.Name,
		ShippingLine1:    o.Shipping.Line1,
		ShippingLine2:    o.Shipping.Line2,
		ShippingCity:     o.Shipping.City,
		ShippingPostCode: o.Shipping.PostCode,
		ShippingCountry:  o.Shipping.Country,
		PlacedAt:         o.PlacedAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	for _, item := range o.Items {
		m.Items = append(m.Items, *OrderItemModelFromDomain(item))
	}
	for _, c := range o.Coupons {
		m.Coupons = append(m.Coupons, *CouponModelFromDomain(c))
	}
	for _, r := range o.Refunds {
		m.Refunds = append(m.Refunds, *RefundModelFromDomain(r))
	}
	return m
}

// OrderItemModel is the GORM model for order line items
type OrderItemModel struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `gorm:"index;type:varchar(36);not null"`
	SkuCode   string          `gorm:"index;type:varchar(100);not null"`
	Qty       int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxClass  string          `gorm:"type:varchar(20)"`
}

// TableName specifies the table name
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the model to a domain entity
func (m *OrderItemModel) ToDomain() *trade.OrderItem {
	return &trade.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		SkuCode:   m.SkuCode,
		Qty:       m.Qty,
		UnitPrice: m.UnitPrice,
		LineTotal: m.LineTotal,
		TaxClass:  m.TaxClass,
	}
}

// OrderItemModelFromDomain converts a domain entity to the model
func OrderItemModelFromDomain(i *trade.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:        i.ID,
		OrderID:   i.OrderID,
		SkuCode:   i.SkuCode,
		Qty:       i.Qty,
		UnitPrice: i.UnitPrice,
		LineTotal: i.LineTotal,
		TaxClass:  i.TaxClass,
	}
}

// CouponModel is the GORM model for order coupons
type CouponModel struct {
	ID      string          `gorm:"primaryKey;type:varchar(36)"`
	OrderID string          `gorm:"index;type:varchar(36);not null"`
	Code    string          `gorm:"type:varchar(50);not null"`
	Type    string          `gorm:"type:varchar(10);not null"`
	Amount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName specifies the table name
func (CouponModel) TableName() string {
	return "order_coupons"
}

// ToDomain converts the model to a domain entity
func (m *CouponModel) ToDomain() *trade.Coupon {
	return &trade.Coupon{
		ID:      m.ID,
		OrderID: m.OrderID,
		Code:    m.Code,
		Type:    trade.CouponType(m.Type),
		Amount:  m.Amount,
	}
}

// CouponModelFromDomain converts a domain entity to the model
func CouponModelFromDomain(c *trade.Coupon) *CouponModel {
	return &CouponModel{
		ID:      c.ID,
		OrderID: c.OrderID,
		Code:    c.Code,
		Type:    string(c.Type),
		Amount:  c.Amount,
	}
}

// RefundModel is the GORM model for order refunds
type RefundModel struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)"`
	OrderID   string            `gorm:"index;type:varchar(36);not null"`
	Amount    decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Reason    string            `gorm:"type:varchar(255)"`
	EskimoRef string            `gorm:"type:varchar(100)"`
	Items     []RefundItemModel `gorm:"foreignKey:RefundID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"not null"`
}

// TableName specifies the table name
func (RefundModel) TableName() string {
	return "order_refunds"
}

// ToDomain converts the model to a domain entity
func (m *RefundModel) ToDomain() *trade.Refund {
	r := &trade.Refund{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Reason:    m.Reason,
		EskimoRef: m.EskimoRef,
		CreatedAt: m.CreatedAt,
	}
	for i := range m.Items {
		r.Items = append(r.Items, m.Items[i].ToDomain())
	}
	return r
}

// RefundModelFromDomain converts a domain entity to the model
func RefundModelFromDomain(r *trade.Refund) *RefundModel {
	m := &RefundModel{
		ID:        r.ID,
		OrderID:   r.OrderID,
		Amount:    r.Amount,
		Reason:    r.Reason,
		EskimoRef: r.EskimoRef,
		CreatedAt: r.CreatedAt,
	}
	for _, item := range r.Items {
		m.Items = append(m.Items, *RefundItemModelFromDomain(item))
	}
	return m
}

// RefundItemModel is the GORM model for returned refund lines
type RefundItemModel struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)"`
	RefundID  string          `gorm:"index;type:varchar(36);not null"`
	SkuCode   string          `gorm:"index;type:varchar(100);not null"`
	Qty       int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName specifies the table name
func (RefundItemModel) TableName() string {
	return "order_refund_items"
}

// ToDomain converts the model to a domain entity
func (m *RefundItemModel) ToDomain() *trade.RefundItem {
	return &trade.RefundItem{
		ID:        m.ID,
		RefundID:  m.RefundID,
		SkuCode:   m.SkuCode,
		Qty:       m.Qty,
		UnitPrice: m.UnitPrice,
	}
}

// RefundItemModelFromDomain converts a domain entity to the model
func RefundItemModelFromDomain(i *trade.RefundItem) *RefundItemModel {
	return &RefundItemModel{
		ID:        i.ID,
		RefundID:  i.RefundID,
		SkuCode:   i.SkuCode,
		Qty:       i.Qty,
		UnitPrice: i.UnitPrice,
	}
}
