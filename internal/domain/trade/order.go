package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

// OrderStatus represents the lifecycle state of a local order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusCancelled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// Exportable reports whether an order in this status may be exported to the
// remote system. Only paid orders qualify.
func (s OrderStatus) Exportable() bool {
	return s == OrderStatusProcessing || s == OrderStatusCompleted
}

// Order is a local store order. EskimoRef is set once the order has been
// exported; a non-empty ref blocks any further export of the same order.
type Order struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	CustomerID    string          `json:"customer_id"`
	Status        OrderStatus     `json:"status"`
	EskimoRef     string          `json:"eskimo_ref,omitempty"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	Billing       Address         `json:"billing"`
	Shipping      Address         `json:"shipping"`
	Items         []*OrderItem    `json:"items"`
	Coupons       []*Coupon       `json:"coupons,omitempty"`
	Refunds       []*Refund       `json:"refunds,omitempty"`
	PlacedAt      time.Time       `json:"placed_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewOrder creates a local order shell
func NewOrder(number, customerID, currency string, placedAt time.Time) (*Order, error) {
	if number == "" || customerID == "" {
		return nil, sync.ErrValidation
	}
	now := time.Now()
	return &Order{
		ID:         uuid.New().String(),
		Number:     number,
		CustomerID: customerID,
		Status:     OrderStatusPending,
		Currency:   currency,
		PlacedAt:   placedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AddItem appends a line item and extends the order total
func (o *Order) AddItem(skuCode string, qty int, unitPrice decimal.Decimal, taxClass string) error {
	if skuCode == "" || qty <= 0 {
		return sync.ErrValidation
	}
	item := &OrderItem{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		SkuCode:   skuCode,
		Qty:       qty,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(qty))),
		TaxClass:  taxClass,
	}
	o.Items = append(o.Items, item)
	o.Total = o.Total.Add(item.LineTotal)
	o.UpdatedAt = time.Now()
	return nil
}

// SetShippingTotal records the delivery charge on the order
func (o *Order) SetShippingTotal(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return sync.ErrValidation
	}
	o.ShippingTotal = amount
	o.UpdatedAt = time.Now()
	return nil
}

// AddCoupon attaches a coupon to the order
func (o *Order) AddCoupon(c *Coupon) {
	c.OrderID = o.ID
	o.Coupons = append(o.Coupons, c)
	o.UpdatedAt = time.Now()
}

// AddRefund records a refund against the order
func (o *Order) AddRefund(amount decimal.Decimal, reason string) (*Refund, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, sync.ErrValidation
	}
	r := &Refund{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	o.Refunds = append(o.Refunds, r)
	o.UpdatedAt = r.CreatedAt
	return r, nil
}

// Exported reports whether the order already carries a remote reference
func (o *Order) Exported() bool {
	return o.EskimoRef != "" && o.EskimoRef != "0"
}

// MarkExported records the remote reference after a successful export
func (o *Order) MarkExported(ref string) error {
	if ref == "" || ref == "0" {
		return sync.ErrValidation
	}
	if o.Exported() {
		return sync.ErrAlreadyExported
	}
	o.EskimoRef = ref
	o.UpdatedAt = time.Now()
	return nil
}

// PendingRefunds returns refunds not yet exported as returns
func (o *Order) PendingRefunds() []*Refund {
	var out []*Refund
	for _, r := range o.Refunds {
		if !r.Exported() {
			out = append(out, r)
		}
	}
	return out
}

// OrderItem is a purchased line on a local order
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	SkuCode   string          `json:"sku_code"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	TaxClass  string          `json:"tax_class,omitempty"`
}

// Refund is a recorded refund on a local order. EskimoRef is set once the
// refund has been exported as a return.
type Refund struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
	EskimoRef string          `json:"eskimo_ref,omitempty"`
	Items     []*RefundItem   `json:"items,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AddItem records a returned line on the refund. Quantities are positive
// counts of units handed back.
func (r *Refund) AddItem(skuCode string, qty int, unitPrice decimal.Decimal) error {
	if skuCode == "" || qty <= 0 {
		return sync.ErrValidation
	}
	r.Items = append(r.Items, &RefundItem{
		ID:        uuid.New().String(),
		RefundID:  r.ID,
		SkuCode:   skuCode,
		Qty:       qty,
		UnitPrice: unitPrice,
	})
	return nil
}

// RefundItem is one returned line on a refund
type RefundItem struct {
	ID        string          `json:"id"`
	RefundID  string          `json:"refund_id"`
	SkuCode   string          `json:"sku_code"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Exported reports whether the refund has been exported as a return
func (r *Refund) Exported() bool {
	return r.EskimoRef != "" && r.EskimoRef != "0"
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// OrderRepository defines persistence operations for orders. Reads load the
// full aggregate: items, coupons and refunds.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindExportable(ctx context.Context, limit int) ([]*Order, error)
	FindAll(ctx context.Context, offset, limit int) ([]*Order, int64, error)
	Update(ctx context.Context, order *Order) error
}
