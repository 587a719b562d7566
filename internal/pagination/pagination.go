package pagination

import "errors"

// Bounds shared by every paginated list endpoint.
const (
	MinPage     = 1
	MinPageSize = 1
	MaxPageSize = 100
)

var (
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

// Params are the caller-supplied paging inputs.
type Params struct {
	Page     int
	PageSize int
}

// Validate rejects out-of-range parameters before any query runs.
func (p Params) Validate() error {
	if p.Page < MinPage {
		return ErrInvalidPage
	}
	if p.PageSize < MinPageSize || p.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// Offset returns the number of items to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Meta is the pagination metadata returned alongside every slice.
type Meta struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewMeta computes metadata for a validated Params and a pre-slice
// total count. TotalPages is 0 when the collection is empty; a page
// past the end is not an error, it simply has no next page.
func NewMeta(p Params, totalCount int) Meta {
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + p.PageSize - 1) / p.PageSize
	}
	return Meta{
		Page:            p.Page,
		PageSize:        p.PageSize,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}
