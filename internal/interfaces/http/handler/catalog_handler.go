package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/interfaces/http/dto"
)

// CatalogSyncService is the application surface the catalog routes drive
type CatalogSyncService interface {
	SyncCategories(ctx context.Context) (*syncdomain.Result, error)
	SyncNewCategories(ctx context.Context) (*syncdomain.Result, error)
	SyncCategory(ctx context.Context, id syncdomain.Ident) (*syncdomain.Result, error)
	SyncChildCategories(ctx context.Context, parentID syncdomain.Ident) (*syncdomain.Result, error)
	PushCategoryMappings(ctx context.Context) (*syncdomain.Result, error)
	ResetCategoryMappings(ctx context.Context) (*syncdomain.Result, error)
	SyncProducts(ctx context.Context) (*syncdomain.Result, error)
	SyncProductRange(ctx context.Context, start, count int) (*syncdomain.Result, error)
	SyncModifiedProducts(ctx context.Context, unit string, amount int64) (*syncdomain.Result, error)
	SyncProduct(ctx context.Context, id syncdomain.Ident, path syncdomain.ImportPath) (*syncdomain.Result, error)
	PushProductMappings(ctx context.Context) (*syncdomain.Result, error)
	ResetProductMappings(ctx context.Context) (*syncdomain.Result, error)
	SyncSkus(ctx context.Context, unit string, amount int64) (*syncdomain.Result, error)
	SyncSkuRange(ctx context.Context, start, count int) (*syncdomain.Result, error)
}

// CatalogHandler exposes the catalog sync trigger routes
type CatalogHandler struct {
	BaseHandler
	svc CatalogSyncService
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(svc CatalogSyncService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(log),
		svc:         svc,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/categories", h.SyncCategories)
		sync.POST("/categories/new", h.SyncNewCategories)
		sync.POST("/categories/single/:id", h.SyncCategory)
		sync.POST("/categories/children/:id", h.SyncChildCategories)
		sync.POST("/categories/push", h.PushCategoryMappings)
		sync.POST("/categories/reset", h.ResetCategoryMappings)
		sync.POST("/products", h.SyncProducts)
		sync.POST("/products/range/:start/:count", h.SyncProductRange)
		sync.POST("/products/modified/:unit/:amount", h.SyncModifiedProducts)
		sync.POST("/products/single/:id", h.SyncProduct)
		sync.POST("/products/single/:id/:path", h.SyncProductPath)
		sync.POST("/products/push", h.PushProductMappings)
		sync.POST("/products/reset", h.ResetProductMappings)
		sync.POST("/skus/range/:start/:count", h.SyncSkuRange)
		sync.POST("/skus/modified/:unit/:amount", h.SyncSkus)
	}
}

// SyncCategories pulls every remote category into the local catalog
// POST /sync/categories
func (h *CatalogHandler) SyncCategories(c *gin.Context) {
	result, err := h.svc.SyncCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncNewCategories imports only categories absent from the local catalog
// POST /sync/categories/new
func (h *CatalogHandler) SyncNewCategories(c *gin.Context) {
	result, err := h.svc.SyncNewCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncCategory pulls a single category by its composite identifier
// POST /sync/categories/single/:id
func (h *CatalogHandler) SyncCategory(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.SyncCategory(c.Request.Context(), syncdomain.Ident(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PushCategoryMappings re-sends every local category mapping to the remote
// POST /sync/categories/push
func (h *CatalogHandler) PushCategoryMappings(c *gin.Context) {
	result, err := h.svc.PushCategoryMappings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ResetCategoryMappings clears every remote category mapping
// POST /sync/categories/reset
func (h *CatalogHandler) ResetCategoryMappings(c *gin.Context) {
	result, err := h.svc.ResetCategoryMappings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncChildCategories pulls the direct children of one remote category
// POST /sync/categories/children/:id
func (h *CatalogHandler) SyncChildCategories(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.SyncChildCategories(c.Request.Context(), syncdomain.Ident(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncProducts pulls the full remote product set
// POST /sync/products
func (h *CatalogHandler) SyncProducts(c *gin.Context) {
	result, err := h.svc.SyncProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncProductRange pulls one page of products at the given cursor position
// POST /sync/products/range/:start/:count
func (h *CatalogHandler) SyncProductRange(c *gin.Context) {
	start, count, ok := h.cursorRange(c)
	if !ok {
		return
	}

	result, err := h.svc.SyncProductRange(c.Request.Context(), start, count)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PushProductMappings re-sends every local product mapping to the remote
// POST /sync/products/push
func (h *CatalogHandler) PushProductMappings(c *gin.Context) {
	result, err := h.svc.PushProductMappings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ResetProductMappings clears every remote product mapping
// POST /sync/products/reset
func (h *CatalogHandler) ResetProductMappings(c *gin.Context) {
	result, err := h.svc.ResetProductMappings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncModifiedProducts pulls products modified within the given window
// POST /sync/products/modified/:unit/:amount
func (h *CatalogHandler) SyncModifiedProducts(c *gin.Context) {
	unit, amount, ok := h.watermark(c)
	if !ok {
		return
	}

	result, err := h.svc.SyncModifiedProducts(c.Request.Context(), unit, amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncProduct pulls a single product by its composite identifier
// POST /sync/products/single/:id
func (h *CatalogHandler) SyncProduct(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.SyncProduct(c.Request.Context(), syncdomain.Ident(req.ID), syncdomain.PathAll)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncProductPath re-imports one field subset of a single product
// POST /sync/products/single/:id/:path
func (h *CatalogHandler) SyncProductPath(c *gin.Context) {
	var req dto.ImportPathRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.svc.SyncProduct(c.Request.Context(), syncdomain.Ident(req.ID), syncdomain.ImportPath(req.Path))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncSkuRange pulls one page of SKUs at the given cursor position
// POST /sync/skus/range/:start/:count
func (h *CatalogHandler) SyncSkuRange(c *gin.Context) {
	start, count, ok := h.cursorRange(c)
	if !ok {
		return
	}

	result, err := h.svc.SyncSkuRange(c.Request.Context(), start, count)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncSkus refreshes pricing and stock from SKUs modified within the window
// POST /sync/skus/modified/:unit/:amount
func (h *CatalogHandler) SyncSkus(c *gin.Context) {
	unit, amount, ok := h.watermark(c)
	if !ok {
		return
	}

	result, err := h.svc.SyncSkus(c.Request.Context(), unit, amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// cursorRange binds the :start/:count path tokens
func (h *CatalogHandler) cursorRange(c *gin.Context) (int, int, bool) {
	var req dto.RangeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return 0, 0, false
	}
	return req.Start, req.Count, true
}

// watermark binds and parses the :unit/:amount path tokens
func (h *CatalogHandler) watermark(c *gin.Context) (string, int64, bool) {
	var req dto.WatermarkRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err)
		return "", 0, false
	}
	amount, err := syncdomain.ParseWatermarkAmount(req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return "", 0, false
	}
	return req.Unit, amount, true
}
