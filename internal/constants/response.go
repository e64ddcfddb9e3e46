package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard Response Field Keys
const (
	ResponseFieldStatusCode = "statusCode"
	ResponseFieldData       = "data"
	ResponseFieldMessage    = "message"
	ResponseFieldSuccess    = "success"
	ResponseFieldDetails    = "details"

	// Pagination fields
	ResponseFieldTotal     = "total"
	ResponseFieldPage      = "page"
	ResponseFieldPageTotal = "page_total"
)

// Pagination Parameters Struct
type PaginationParams struct {
	Page   int // Page number from user request (default: 1)
	Limit  int // Limit per page from user request (default: 10)
	Offset int // Calculated offset (page - 1) * limit
	Search string
	SortBy string
	Order  string
}

// ParsePaginationParams parses pagination parameters from the query string
func ParsePaginationParams(c *gin.Context) PaginationParams {
	pageStr := c.DefaultQuery(QueryParamPage, DefaultPage)
	limitStr := c.DefaultQuery(QueryParamLimit, DefaultLimit)

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < MinPage {
		page = MinPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	order := c.DefaultQuery(QueryParamOrder, DefaultOrder)
	if order != OrderAsc && order != OrderDesc {
		order = DefaultOrder
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
		Search: c.DefaultQuery(QueryParamSearch, DefaultSearch),
		SortBy: c.DefaultQuery(QueryParamSort, DefaultSort),
		Order:  order,
	}
}

// BuildSuccessResponse builds the uniform success envelope.
func BuildSuccessResponse(statusCode int, data any, message string) map[string]any {
	return map[string]any{
		ResponseFieldStatusCode: statusCode,
		ResponseFieldData:       data,
		ResponseFieldMessage:    message,
		ResponseFieldSuccess:    true,
	}
}

// BuildErrorResponse builds the uniform error envelope. The data
// field is always absent on errors.
func BuildErrorResponse(statusCode int, message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldStatusCode: statusCode,
		ResponseFieldMessage:    message,
		ResponseFieldSuccess:    false,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}

// BuildListResponse wraps a page of results with its pagination envelope.
func BuildListResponse(total int64, page int, pageTotal int, data any) map[string]any {
	return map[string]any{
		ResponseFieldTotal:     total,
		ResponseFieldPage:      page,
		ResponseFieldPageTotal: pageTotal,
		ResponseFieldData:      data,
	}
}
