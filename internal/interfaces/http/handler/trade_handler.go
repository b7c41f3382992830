package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/ontiuk/eskimo-sync/internal/application/sync"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/interfaces/http/dto"
)

// TradeSyncService is the application surface the trade routes drive
type TradeSyncService interface {
	LinkCustomer(ctx context.Context, customerID string) (*syncdomain.Result, error)
	CustomerExists(ctx context.Context, email string) (*appsync.CustomerMatch, error)
	ExportOrder(ctx context.Context, orderID string) (*syncdomain.Result, error)
	ExportPendingOrders(ctx context.Context) (*syncdomain.Result, error)
	ExportOrderReturns(ctx context.Context, orderID string) (*syncdomain.Result, error)
}

// TradeHandler exposes the customer linking and order export routes
type TradeHandler struct {
	BaseHandler
	svc TradeSyncService
}

// NewTradeHandler creates a trade handler
func NewTradeHandler(svc TradeSyncService, log *zap.Logger) *TradeHandler {
	return &TradeHandler{
		BaseHandler: NewBaseHandler(log),
		svc:         svc,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *TradeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/customers/:id", h.LinkCustomer)
		sync.GET("/customers/exists", h.CustomerExists)
	}

	export := rg.Group("/export")
	{
		export.POST("/orders", h.ExportPendingOrders)
		export.POST("/orders/:id", h.ExportOrder)
		export.POST("/orders/:id/returns", h.ExportOrderReturns)
	}
}

// LinkCustomer reconciles one local customer with the remote system
// POST /sync/customers/:id
func (h *TradeHandler) LinkCustomer(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.LinkCustomer(c.Request.Context(), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CustomerExists checks whether the remote system holds a customer with the
// given email
// GET /sync/customers/exists?email=
func (h *TradeHandler) CustomerExists(c *gin.Context) {
	var req dto.ExistsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	match, err := h.svc.CustomerExists(c.Request.Context(), req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, match)
}

// ExportPendingOrders exports every unexported paid order, oldest first
// POST /export/orders
func (h *TradeHandler) ExportPendingOrders(c *gin.Context) {
	result, err := h.svc.ExportPendingOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExportOrder exports a single order by local ID
// POST /export/orders/:id
func (h *TradeHandler) ExportOrder(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.ExportOrder(c.Request.Context(), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExportOrderReturns exports the pending refunds of an order as returns
// POST /export/orders/:id/returns
func (h *TradeHandler) ExportOrderReturns(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.ExportOrderReturns(c.Request.Context(), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
