package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// SystemHandler exposes health and remote reference-data routes
type SystemHandler struct {
	BaseHandler
	gateway syncdomain.Gateway
	version string
	started time.Time
}

// NewSystemHandler creates a system handler
func NewSystemHandler(gateway syncdomain.Gateway, version string, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(log),
		gateway:     gateway,
		version:     version,
		started:     time.Now(),
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)

	reference := rg.Group("/reference")
	{
		reference.GET("/fulfilment-methods", h.FulfilmentMethods)
		reference.GET("/tax-codes", h.TaxCodes)
		reference.GET("/shops", h.Shops)
	}
}

// Health reports process liveness
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// FulfilmentMethods lists the delivery methods configured remotely
// GET /reference/fulfilment-methods
func (h *SystemHandler) FulfilmentMethods(c *gin.Context) {
	methods, err := h.gateway.FulfilmentMethods(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// TaxCodes lists the remote tax codes
// GET /reference/tax-codes
func (h *SystemHandler) TaxCodes(c *gin.Context) {
	codes, err := h.gateway.TaxCodes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, codes)
}

// Shops lists the remote shops and tills
// GET /reference/shops
func (h *SystemHandler) Shops(c *gin.Context) {
	shops, err := h.gateway.Shops(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shops)
}
