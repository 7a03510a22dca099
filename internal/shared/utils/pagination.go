package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// Pagination holds parsed pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
	// SortAsc flips the default descending-by-id order.
	SortAsc bool
	// IDAfter enables keyset pagination when non-zero; the offset pair is
	// ignored in that case.
	IDAfter uint
}

// ValidatePagination validates and normalizes pagination parameters.
// Page defaults to DefaultPage if less than 1.
// PageSize defaults to DefaultPageSize if less than 1, and is capped at MaxPageSize.
func ValidatePagination(page, pageSize int) Pagination {
	if page < 1 {
		page = constants.DefaultPage
	}

	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

// ParsePagination parses pagination parameters from Gin context query string.
// Returns validated pagination with defaults applied. Sort order defaults to
// descending by id unless sort=asc is given.
func ParsePagination(c *gin.Context) Pagination {
	p := ValidatePagination(
		parseQueryInt(c, "page", constants.DefaultPage),
		parseQueryInt(c, "page_size", constants.DefaultPageSize),
	)
	p.SortAsc = c.Query("sort") == "asc"
	if v := c.Query("id_after"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			p.IDAfter = uint(n)
		}
	}
	return p
}

// parseQueryInt parses an integer query parameter with a default value.
func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 1 {
			return n
		}
	}
	return defaultVal
}

// ApplyPagination calculates slice indices for pagination.
// Returns (start, end) indices for slicing: slice[start:end]
func ApplyPagination(total, page, pageSize int) (start, end int) {
	start = (page - 1) * pageSize
	end = start + pageSize

	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return start, end
}

// TotalPages calculates total pages for a given total count.
func TotalPages(total int64, pageSize int) int {
	if total == 0 || pageSize == 0 {
		return 1
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages == 0 {
		return 1
	}
	return pages
}

// SetPaginationHeaders writes the pagination response headers every list
// endpoint carries.
func SetPaginationHeaders(c *gin.Context, p Pagination, total int64) {
	c.Header("X-Page", strconv.Itoa(p.Page))
	c.Header("X-Per-Page", strconv.Itoa(p.PageSize))
	c.Header("X-Total", strconv.FormatInt(total, 10))
	c.Header("X-Total-Pages", strconv.Itoa(TotalPages(total, p.PageSize)))
}
