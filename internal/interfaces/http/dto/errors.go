package dto

import "net/http"

// Error codes returned in the response envelope
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeAuthFailed           = "AUTH_FAILED"
	CodeConnectFailed        = "CONNECT_FAILED"
	CodeNoData               = "NO_DATA"
	CodeReconciliationFailed = "RECONCILIATION_FAILED"
	CodeSyncInProgress       = "SYNC_IN_PROGRESS"
	CodeInternalError        = "INTERNAL_ERROR"
)

// GetHTTPStatus maps an error code to an HTTP status code
func GetHTTPStatus(code string) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound, CodeNoData:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeSyncInProgress:
		return http.StatusConflict
	case CodeReconciliationFailed:
		return http.StatusUnprocessableEntity
	case CodeAuthFailed, CodeConnectFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
