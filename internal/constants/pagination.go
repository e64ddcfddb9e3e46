package constants

// Pagination query parameters, shared by every list endpoint.
const (
	QueryParamPage   = "page"
	QueryParamLimit  = "limit"
	QueryParamSearch = "search"
	QueryParamSort   = "sort"
	QueryParamOrder  = "order"
)

// Defaults (strings, for query parsing). Feeds list newest-first, so
// an unqualified request returns the most recent uploads.
const (
	DefaultPage   = "1"
	DefaultLimit  = "10"
	DefaultSearch = ""
	DefaultSort   = "created_at"
	DefaultOrder  = "desc"
)

// Bounds applied after parsing.
const (
	MinPage  = 1
	MinLimit = 1
	MaxLimit = 100
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)
