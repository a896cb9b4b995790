// package utils provides utility functions to support various operations within the application.
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"plan-pleno/internal/schemas"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ParsePaginationParams extracts the 'offset' and 'limit' parameters from the request's query parameters.
// It provides default values and ensures that the returned values stay within bounds.
func ParsePaginationParams(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery(OffsetParamKey, "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err := strconv.Atoi(c.DefaultQuery(LimitParamKey, strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return offset, limit
}

// SendPaginatedResponse writes a page of records together with the pagination details.
// An empty page is written as an empty list, never as null.
func SendPaginatedResponse[T any](c *gin.Context, records []T, offset, limit, totalRecords int) {
	if records == nil {
		records = []T{}
	}

	paginatedResponse := &schemas.PaginatedResponse{
		Records: records,
		Pagination: schemas.Pagination{
			Offset:  offset,
			Limit:   limit,
			Records: totalRecords,
		},
	}

	WriteAndLogResponse(c, paginatedResponse, 200)
}
