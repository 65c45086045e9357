package dto

import "github.com/atelier/backend/internal/domain/shared"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// NewErrorResponse creates an error body
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code}
}

// ListResponse wraps a page of items
type ListResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// NewListResponse returns all items as a single page
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:    items,
		Total:    int64(len(items)),
		Page:     1,
		PageSize: len(items),
	}
}

// FromPaginated converts a repository page
func FromPaginated[T any](p shared.Paginated[T]) ListResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}

// PageQuery holds common pagination query parameters
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in defaults
func (q *PageQuery) Normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
