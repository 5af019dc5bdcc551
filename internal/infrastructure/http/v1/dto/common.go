// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import "salesdocs/internal/domain"

// ListRequest contains paging and sorting query parameters.
type ListRequest struct {
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
	OrderBy string `form:"orderBy" binding:"omitempty,max=64"`
}

// ToFilter maps the query onto the shared list filter.
func (r ListRequest) ToFilter() domain.ListFilter {
	return domain.ListFilter{
		Limit:   r.Limit,
		Offset:  r.Offset,
		OrderBy: r.OrderBy,
	}.Normalize()
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps a domain page.
func NewListResponse[E, T any](result domain.ListResult[E], mapFn func(E) T) ListResponse[T] {
	items := make([]T, 0, len(result.Items))
	for _, e := range result.Items {
		items = append(items, mapFn(e))
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}

// IDResponse is returned by creates that have nothing else to say.
type IDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse documents the shape written by the error middleware.
type ErrorResponse struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	BurnedCode string         `json:"burned_code,omitempty"`
}
