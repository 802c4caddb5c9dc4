package models

// Pagination contains pagination metadata returned in list responses.
// TotalPages, HasNext and HasPrevious are optional on the wire; clients derive
// them when a server omits them.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int   `json:"total"`
	TotalPages  *int  `json:"total_pages,omitempty"`
	HasNext     *bool `json:"has_next,omitempty"`
	HasPrevious *bool `json:"has_previous,omitempty"`
}

// NewPagination fills every field of the pagination block.
func NewPagination(page, limit, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	hasNext := page < totalPages
	hasPrevious := page > 1
	return &Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  &totalPages,
		HasNext:     &hasNext,
		HasPrevious: &hasPrevious,
	}
}
