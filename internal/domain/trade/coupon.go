package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Coupons
// ---------------------------------------------------------------------------

// CouponType distinguishes percentage coupons from fixed-amount ones
type CouponType string

const (
	// CouponTypePercent discounts by a percentage of the amount it applies to
	CouponTypePercent CouponType = "percent"
	// CouponTypeFixed discounts by an absolute amount
	CouponTypeFixed CouponType = "fixed"
)

// IsValid checks if the coupon type is valid
func (t CouponType) IsValid() bool {
	return t == CouponTypePercent || t == CouponTypeFixed
}

// CouponMode controls how multiple coupons on one order combine
type CouponMode string

const (
	// CouponModeSequential applies each coupon to the running discounted
	// total, so percentage coupons compound
	CouponModeSequential CouponMode = "sequential"
	// CouponModeIndependent applies every coupon to the original total
	CouponModeIndependent CouponMode = "independent"
)

// IsValid checks if the coupon mode is valid
func (m CouponMode) IsValid() bool {
	return m == CouponModeSequential || m == CouponModeIndependent
}

// Coupon is a discount applied to a local order
type Coupon struct {
	ID      string          `json:"id"`
	OrderID string          `json:"order_id"`
	Code    string          `json:"code"`
	Type    CouponType      `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
}

// NewCoupon creates a coupon. For percentage coupons Amount is the percentage
// (10 means 10%); for fixed coupons it is the discount in major units.
func NewCoupon(code string, kind CouponType, amount decimal.Decimal) (*Coupon, error) {
	if code == "" || !kind.IsValid() || amount.LessThanOrEqual(decimal.Zero) {
		return nil, sync.ErrValidation
	}
	if kind == CouponTypePercent && amount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, sync.ErrValidation
	}
	return &Coupon{
		ID:     uuid.New().String(),
		Code:   code,
		Type:   kind,
		Amount: amount,
	}, nil
}

// minorUnits converts a major-unit amount to integer minor units
func minorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// discountMinor computes the coupon's discount against a base amount in minor
// units. Percentage discounts round half-up at the minor-unit boundary.
func (c *Coupon) discountMinor(base int64) int64 {
	switch c.Type {
	case CouponTypePercent:
		return decimal.NewFromInt(base).
			Mul(c.Amount).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case CouponTypeFixed:
		return minorUnits(c.Amount)
	default:
		return 0
	}
}

// ApplyCoupons returns the unit price after applying the coupons in order.
// Discounts work at unit-price precision so line totals stay exact multiples
// of the discounted unit. All arithmetic runs in integer minor units so
// repeated percentage discounts cannot accumulate fractional drift. The
// result never drops below zero.
func ApplyCoupons(unitPrice decimal.Decimal, coupons []*Coupon, mode CouponMode) decimal.Decimal {
	base := minorUnits(unitPrice)
	running := base
	for _, c := range coupons {
		switch mode {
		case CouponModeIndependent:
			running -= c.discountMinor(base)
		default:
			running -= c.discountMinor(running)
		}
	}
	if running < 0 {
		running = 0
	}
	return decimal.New(running, -2)
}
