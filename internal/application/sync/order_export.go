package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
)

// ExportOrder exports one paid order to the remote system. An order that
// already carries a remote reference is rejected, never re-sent.
func (s *Service) ExportOrder(ctx context.Context, orderID string) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpOrderExport, func(ctx context.Context) (*syncdomain.Result, error) {
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{TotalCount: 1}
		if err := s.exportOrder(ctx, order); err != nil {
			if isReconciliationErr(err) {
				result.Fail(order.Number, err.Error())
				result.Finalize(s.now())
				return result, err
			}
			return nil, err
		}
		result.ImportedCount++
		result.Finalize(s.now())
		return result, nil
	})
}

// ExportPendingOrders exports every paid, not-yet-exported order, oldest
// first, up to the configured limit. A failing order is recorded and the
// pass continues with the next one.
func (s *Service) ExportPendingOrders(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpOrderExport, func(ctx context.Context) (*syncdomain.Result, error) {
		orders, err := s.orders.FindExportable(ctx, s.cfg.OrderExportLimit)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{TotalCount: len(orders)}
		for _, order := range orders {
			if err := s.exportOrder(ctx, order); err != nil {
				if isReconciliationErr(err) {
					result.Fail(order.Number, err.Error())
					continue
				}
				return nil, err
			}
			result.ImportedCount++
		}

		result.Finalize(s.now())
		s.logger.Info("order export finished",
			zap.Int("total", result.TotalCount),
			zap.Int("exported", result.ImportedCount),
			zap.Int("failed", result.FailedCount),
		)
		return result, nil
	})
}

func (s *Service) exportOrder(ctx context.Context, order *trade.Order) error {
	if order.Exported() {
		return syncdomain.ErrAlreadyExported
	}
	if !order.Status.Exportable() {
		return syncdomain.ErrOrderNotExportable
	}

	customer, err := s.ensureCustomerLinked(ctx, order.CustomerID)
	if err != nil {
		return err
	}

	payload := s.buildOrderInsert(order, customer)
	status, err := s.gateway.InsertOrder(ctx, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: remote rejected order %s with status %d",
			syncdomain.ErrReconciliation, order.Number, status)
	}

	ref := s.remoteOrderRef(ctx, payload.ExternalIdentifier)
	if err := order.MarkExported(ref); err != nil {
		return err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}

	s.logger.Info("order exported",
		zap.String("order_number", order.Number),
		zap.String("eskimo_ref", ref),
	)
	return nil
}

// remoteOrderRef resolves the remote ID of a just-exported order. The insert
// endpoint returns only a status, so the ref comes from a follow-up lookup,
// falling back to an external-identifier search. When both fail the external
// identifier itself serves as the marker, which still blocks re-export.
func (s *Service) remoteOrderRef(ctx context.Context, externalID string) string {
	remote, err := s.gateway.WebsiteOrder(ctx, externalID)
	if err == nil && remote.ID != "" {
		return remote.ID
	}

	found, searchErr := s.gateway.SearchOrders(ctx, syncdomain.OrderSearch{ExternalIdentifier: externalID})
	if searchErr == nil && len(found) > 0 && found[0].ID != "" {
		return found[0].ID
	}

	s.logger.Warn("exported order lookup failed, using external identifier",
		zap.String("external_id", externalID),
		zap.Error(err),
	)
	return externalID
}

// orderExternalID builds the identifier the remote files the order under:
// customer prefix, remote customer ID, local customer ID, local order ID.
func (s *Service) orderExternalID(order *trade.Order, customer *trade.Customer) string {
	return fmt.Sprintf("%s%s-%s-%s", s.cfg.CustomerPrefix, customer.EskimoID, customer.ID, order.ID)
}

// buildOrderInsert derives the remote payload from a local order. Coupons
// apply per line item at unit-price precision; line items without a SKU code
// are skipped. Invoice amount and amount paid both carry the discounted cart
// total plus the shipping total. The delivery address is omitted when it
// duplicates the invoice address.
func (s *Service) buildOrderInsert(order *trade.Order, customer *trade.Customer) syncdomain.OrderInsert {
	invoice := addressedFrom(order.Billing, customer.FullName())
	delivery := addressedFrom(order.Shipping, customer.FullName())

	payload := syncdomain.OrderInsert{
		OrderType:          syncdomain.OrderTypeSale,
		ExternalIdentifier: s.orderExternalID(order, customer),
		CustomerID:         customer.EskimoID,
		OrderDate:          order.PlacedAt,
		InvoiceAddress:     invoice,
	}
	if !order.Shipping.IsZero() && !delivery.Equal(invoice) {
		payload.DeliveryAddress = delivery
	}

	cartTotal := decimal.Zero
	for _, item := range order.Items {
		if item.SkuCode == "" {
			s.logger.Warn("order item without sku skipped",
				zap.String("order_number", order.Number),
			)
			continue
		}
		unit := trade.ApplyCoupons(item.UnitPrice, order.Coupons, s.cfg.CouponMode)
		line := unit.Mul(decimal.NewFromInt(int64(item.Qty)))
		cartTotal = cartTotal.Add(line)
		payload.Items = append(payload.Items, syncdomain.OrderItem{
			SkuCode:   item.SkuCode,
			Qty:       item.Qty,
			UnitPrice: unit,
			LineTotal: line,
		})
	}

	total := cartTotal.Add(order.ShippingTotal)
	payload.InvoiceAmount = total
	payload.AmountPaid = total
	return payload
}

// ExportOrderReturns exports the order's pending refunds as remote returns,
// one insert per refund carrying the returned line items. Refunds already
// exported are left alone; an order with nothing pending is rejected, and a
// refund whose lines all drop out is recorded as failed.
func (s *Service) ExportOrderReturns(ctx context.Context, orderID string) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpOrderExport, func(ctx context.Context) (*syncdomain.Result, error) {
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !order.Exported() {
			return nil, syncdomain.ErrOrderNotExportable
		}

		pending := order.PendingRefunds()
		if len(pending) == 0 {
			return nil, syncdomain.ErrNoReturns
		}

		customer, err := s.ensureCustomerLinked(ctx, order.CustomerID)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{TotalCount: len(pending)}
		for i, refund := range pending {
			externalID := fmt.Sprintf("%s-R%d", s.orderExternalID(order, customer), i+1)

			items, err := s.returnItems(ctx, order, refund)
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				result.Fail(externalID, syncdomain.ErrNoReturns.Error())
				continue
			}

			payload := syncdomain.OrderInsert{
				OrderType:          syncdomain.OrderTypeReturn,
				ExternalIdentifier: externalID,
				CustomerID:         customer.EskimoID,
				OrderDate:          refund.CreatedAt,
				InvoiceAmount:      refund.Amount.Neg(),
				AmountPaid:         refund.Amount.Neg(),
				InvoiceAddress:     addressedFrom(order.Billing, customer.FullName()),
				Items:              items,
			}

			status, err := s.gateway.InsertOrder(ctx, payload)
			if err != nil {
				return nil, err
			}
			if status != http.StatusOK {
				result.Fail(externalID, fmt.Sprintf("remote rejected return with status %d", status))
				continue
			}

			refund.EskimoRef = s.remoteOrderRef(ctx, externalID)
			result.ImportedCount++
		}

		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
		result.Finalize(s.now())
		return result, nil
	})
}

// returnItems builds the exportable lines of a refund. A line needs a
// strictly positive quantity, a product known locally and a SKU the remote
// still recognises; lines failing any of these are dropped with a warning.
func (s *Service) returnItems(ctx context.Context, order *trade.Order, refund *trade.Refund) ([]syncdomain.OrderItem, error) {
	var out []syncdomain.OrderItem
	for _, item := range refund.Items {
		if item.SkuCode == "" || item.Qty <= 0 {
			continue
		}

		if _, err := s.products.FindBySkuCode(ctx, item.SkuCode); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("refund line product unknown, dropping",
					zap.String("order_number", order.Number),
					zap.String("sku_code", item.SkuCode),
				)
				continue
			}
			return nil, err
		}
		if _, err := s.gateway.SkuByCode(ctx, item.SkuCode); err != nil {
			if errors.Is(err, syncdomain.ErrNoData) {
				s.logger.Warn("refund line sku unknown remotely, dropping",
					zap.String("order_number", order.Number),
					zap.String("sku_code", item.SkuCode),
				)
				continue
			}
			return nil, err
		}

		out = append(out, syncdomain.OrderItem{
			SkuCode:   item.SkuCode,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))),
		})
	}
	return out, nil
}

// addressedFrom builds a named remote address block
func addressedFrom(a trade.Address, fallbackName string) *syncdomain.RemoteAddressed {
	name := a.Name
	if name == "" {
		name = fallbackName
	}
	return &syncdomain.RemoteAddressed{
		Name: name,
		RemoteAddress: syncdomain.RemoteAddress{
			Line1:    a.Line1,
			Line2:    a.Line2,
			City:     a.City,
			PostCode: a.PostCode,
			Country:  a.Country,
		},
	}
}

// isReconciliationErr reports whether the error is a per-order business
// failure rather than a transport or storage fault
func isReconciliationErr(err error) bool {
	return errors.Is(err, syncdomain.ErrReconciliation)
}
