package dto

// Response represents a standard API response
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	Meta      *Meta      `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success:   false,
		RequestID: requestID,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ListRequest represents common list/pagination request parameters
type ListRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize applies defaults and returns (offset, limit)
func (r *ListRequest) Normalize() (int, int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	return (r.Page - 1) * r.PageSize, r.PageSize
}

// WatermarkRequest carries the modified-since window of a trigger route
type WatermarkRequest struct {
	Unit   string `uri:"unit" binding:"required,watermarkunit"`
	Amount string `uri:"amount" binding:"required"`
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// ImportPathRequest carries the id and field-subset path of a targeted
// product re-import route
type ImportPathRequest struct {
	ID   string `uri:"id" binding:"required"`
	Path string `uri:"path" binding:"required,importpath"`
}

// RangeRequest carries the cursor position of a range trigger route
type RangeRequest struct {
	Start int `uri:"start" binding:"required,min=1"`
	Count int `uri:"count" binding:"required,min=1"`
}

// ExistsRequest carries the email of a remote customer lookup
type ExistsRequest struct {
	Email string `form:"email" binding:"required,email"`
}
