package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/logger"
	"github.com/ontiuk/eskimo-sync/internal/interfaces/http/dto"
)

// BaseHandler provides common response helpers for all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler
func NewBaseHandler(log *zap.Logger) BaseHandler {
	return BaseHandler{logger: log}
}

// Success sends a 200 response with the given payload
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response for work handed to a background run
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the status derived from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	requestID := logger.GetRequestID(c.Request.Context())
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, requestID))
}

// BadRequest sends a 400 response for a malformed request
func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	h.Error(c, dto.CodeInvalidInput, err.Error())
}

// HandleError maps a service error onto the response envelope. Sync results
// carry per-item failures in the body; this path is for run-level errors only.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	switch {
	case errors.Is(err, syncdomain.ErrValidation):
		h.Error(c, dto.CodeInvalidInput, err.Error())
	case errors.Is(err, syncdomain.ErrAuth):
		h.Error(c, dto.CodeAuthFailed, err.Error())
	case errors.Is(err, syncdomain.ErrConnect):
		h.Error(c, dto.CodeConnectFailed, err.Error())
	case errors.Is(err, syncdomain.ErrNoData):
		h.Error(c, dto.CodeNoData, err.Error())
	case errors.Is(err, syncdomain.ErrReconciliation):
		h.Error(c, dto.CodeReconciliationFailed, err.Error())
	default:
		h.logger.Error("unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		h.Error(c, dto.CodeInternalError, "An unexpected error occurred")
	}
}
