package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageQuery is bound from ?page=&limit=. Absent values take the defaults;
// present ones must be in range.
type PageQuery struct {
	Page  *int `form:"page" json:"page" binding:"omitempty,min=1"`
	Limit *int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
}

// Page is a resolved offset/limit window.
type Page struct {
	Number int
	Limit  int
}

// NewPage applies defaults to a bound query.
func NewPage(q PageQuery) Page {
	p := Page{Number: DefaultPage, Limit: DefaultLimit}
	if q.Page != nil {
		p.Number = *q.Page
	}
	if q.Limit != nil {
		p.Limit = *q.Limit
	}
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination represents pagination metadata
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalItems      int  `json:"totalItems"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

func NewPagination(p Page, total int) Pagination {
	totalPages := (total + p.Limit - 1) / p.Limit

	return Pagination{
		CurrentPage:     p.Number,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.Limit,
		HasNextPage:     p.Number < totalPages,
		HasPreviousPage: p.Number > 1,
	}
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, data interface{}, p Page, total int) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Pagination: NewPagination(p, total),
	})
}
