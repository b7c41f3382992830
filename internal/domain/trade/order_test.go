package trade

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

func testOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("1001", "cust-1", "GBP", time.Now())
	require.NoError(t, err)
	require.NoError(t, o.AddItem("SKU-1", 2, decimal.RequireFromString("10.00"), "standard"))
	return o
}

func TestOrderTotals(t *testing.T) {
	o := testOrder(t)
	assert.Equal(t, "20.00", o.Total.StringFixed(2))

	require.NoError(t, o.AddItem("SKU-2", 1, decimal.RequireFromString("5.50"), ""))
	assert.Equal(t, "25.50", o.Total.StringFixed(2))
}

func TestOrderShippingTotal(t *testing.T) {
	o := testOrder(t)
	assert.True(t, o.ShippingTotal.IsZero())

	require.NoError(t, o.SetShippingTotal(decimal.RequireFromString("4.95")))
	assert.Equal(t, "4.95", o.ShippingTotal.StringFixed(2))

	assert.ErrorIs(t, o.SetShippingTotal(decimal.RequireFromString("-1.00")), sync.ErrValidation)
	assert.Equal(t, "4.95", o.ShippingTotal.StringFixed(2))
}

func TestOrderExportGuard(t *testing.T) {
	o := testOrder(t)
	assert.False(t, o.Exported())

	require.NoError(t, o.MarkExported("ESK-77"))
	assert.True(t, o.Exported())
	assert.Equal(t, "ESK-77", o.EskimoRef)

	assert.ErrorIs(t, o.MarkExported("ESK-78"), sync.ErrAlreadyExported)
	assert.Equal(t, "ESK-77", o.EskimoRef)
}

func TestOrderMarkExportedRejectsEmptyRef(t *testing.T) {
	o := testOrder(t)
	assert.ErrorIs(t, o.MarkExported(""), sync.ErrValidation)
	assert.ErrorIs(t, o.MarkExported("0"), sync.ErrValidation)
	assert.False(t, o.Exported())
}

func TestOrderStatusExportable(t *testing.T) {
	assert.True(t, OrderStatusProcessing.Exportable())
	assert.True(t, OrderStatusCompleted.Exportable())
	assert.False(t, OrderStatusPending.Exportable())
	assert.False(t, OrderStatusCancelled.Exportable())
	assert.False(t, OrderStatusRefunded.Exportable())
}

func TestOrderPendingRefunds(t *testing.T) {
	o := testOrder(t)
	r1, err := o.AddRefund(decimal.RequireFromString("5.00"), "damaged")
	require.NoError(t, err)
	_, err = o.AddRefund(decimal.RequireFromString("2.00"), "")
	require.NoError(t, err)

	assert.Len(t, o.PendingRefunds(), 2)

	r1.EskimoRef = "RET-1"
	assert.Len(t, o.PendingRefunds(), 1)
}

func TestRefundItems(t *testing.T) {
	o := testOrder(t)
	r, err := o.AddRefund(decimal.RequireFromString("5.00"), "damaged")
	require.NoError(t, err)

	require.NoError(t, r.AddItem("SKU-1", 1, decimal.RequireFromString("5.00")))
	require.Len(t, r.Items, 1)
	assert.Equal(t, r.ID, r.Items[0].RefundID)
	assert.Equal(t, 1, r.Items[0].Qty)

	assert.ErrorIs(t, r.AddItem("", 1, decimal.RequireFromString("5.00")), sync.ErrValidation)
	assert.ErrorIs(t, r.AddItem("SKU-1", 0, decimal.RequireFromString("5.00")), sync.ErrValidation)
	assert.Len(t, r.Items, 1)
}

func TestCustomerLink(t *testing.T) {
	c, err := NewCustomer("jo@example.com", "Jo", "Bloggs")
	require.NoError(t, err)
	assert.False(t, c.Linked())

	assert.ErrorIs(t, c.Link("0"), sync.ErrValidation)
	require.NoError(t, c.Link("ESK-C-9"))
	assert.True(t, c.Linked())
	assert.Equal(t, "Jo Bloggs", c.FullName())
}
