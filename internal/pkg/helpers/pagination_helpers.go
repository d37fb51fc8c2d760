package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NewPaginationInfo describes page (1-based) of a result with totalItems rows.
// An empty result still has one page, and pages past the end clamp to the last one.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := int((totalItems + int64(size) - 1) / int64(size))
	if totalPages == 0 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

func queryInt(c *gin.Context, key string) (int, bool) {
	n, err := strconv.Atoi(c.Query(key))
	return n, err == nil
}

// PageFromRequest reads ?page and ?size. Invalid or out-of-range values fall back to
// page 1 and defaultSize.
func PageFromRequest(c *gin.Context, defaultSize int) models.Page {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	p := models.Page{Number: 1, Size: defaultSize}
	if n, ok := queryInt(c, "page"); ok && n >= 1 {
		p.Number = n
	}
	if n, ok := queryInt(c, "size"); ok && n >= 1 && n <= MaxPageSize {
		p.Size = n
	}
	return p
}

// NewPaginatedResponse pairs a page of items with its pagination info
func NewPaginatedResponse(items interface{}, total int64, page models.Page) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      items,
		Pagination: NewPaginationInfo(total, page.Number, page.Size),
	}
}

// CalculateSliceIndices returns the [start, end) bounds of page within totalItems rows
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	start = min((max(page, 1)-1)*size, totalItems)
	end = min(start+size, totalItems)
	return start, end
}
