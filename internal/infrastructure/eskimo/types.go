package eskimo

import (
	"time"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Wire request bodies
// ---------------------------------------------------------------------------

// recordsRequest is the paging body accepted by the remote list endpoints
type recordsRequest struct {
	StartPosition int        `json:"StartPosition"`
	RecordCount   int        `json:"RecordCount"`
	TimeStampFrom *time.Time `json:"TimeStampFrom,omitempty"`
}

// newRecordsRequest converts a cursor to the wire paging body
func newRecordsRequest(req sync.BatchRequest) recordsRequest {
	return recordsRequest{
		StartPosition: req.Start,
		RecordCount:   req.Count,
		TimeStampFrom: req.Since,
	}
}

// idRequest addresses a single entity by composite identifier
type idRequest struct {
	EskimoIdentifier string `json:"EskimoIdentifier"`
}

// categoryIDRequest addresses a single category
type categoryIDRequest struct {
	EskimoCategoryID string `json:"EskimoCategoryID"`
}

// skuCodeRequest addresses a single SKU by plain code
type skuCodeRequest struct {
	SkuCode string `json:"sku_code"`
}

// customerIDRequest addresses a single customer
type customerIDRequest struct {
	CustomerID string `json:"CustomerID"`
}

// externalIDRequest addresses a previously exported order
type externalIDRequest struct {
	ExternalIdentifier string `json:"ExternalIdentifier"`
}
