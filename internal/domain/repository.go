// Package domain provides types shared by the domain services.
package domain

// ListFilter contains common paging and sorting options for list operations.
type ListFilter struct {
	// OrderBy specifies sorting (e.g., "code", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// MaxListLimit caps a single page.
const MaxListLimit = 200

// DefaultListFilter returns sensible defaults: newest first.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-created_at",
	}
}

// Normalize clamps Limit and Offset into their valid ranges.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListFilter().Limit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.OrderBy == "" {
		f.OrderBy = DefaultListFilter().OrderBy
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
