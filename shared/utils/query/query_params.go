package query

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Params are the pagination and search parameters of listing endpoints
type Params struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParseParams extracts pagination and search parameters from a request
func ParseParams(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	}
}

// PageBounds returns the slice bounds for the requested page of a listing of
// the given length
func (p Params) PageBounds(total int) (start, end int) {
	start = (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end = start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// MatchesSearch reports whether any of the fields contains the search term,
// case-insensitively. An empty search matches everything.
func (p Params) MatchesSearch(fields ...string) bool {
	if p.Search == "" {
		return true
	}
	needle := strings.ToLower(p.Search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// BuildPaginationResponse creates pagination metadata
func BuildPaginationResponse(page, limit int, total int64) PaginationResponse {
	totalPages := (total + int64(limit) - 1) / int64(limit)

	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < int(totalPages),
		HasPrev:    page > 1,
	}
}
