package common

import (
	"net/http"
	"strconv"

	"teamsqa-backend/application/ports"
)

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageParams carries limit/offset pagination and sorting parsed from the
// query string. Offset pagination is O(offset) against the document store;
// callers listing very large collections should keep pages shallow.
type PageParams struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"` // "asc" or "desc"
}

// ExtractPageParams reads limit/offset/sort parameters from the request,
// clamping them into valid bounds.
func ExtractPageParams(r *http.Request) PageParams {
	params := PageParams{Limit: DefaultPageSize}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > MaxPageSize {
				limit = MaxPageSize
			}
			params.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}
	params.SortBy = r.URL.Query().Get("sort_by")
	if order := r.URL.Query().Get("sort_order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}
	return params
}

// Order translates the sort parameters into a store ordering, or nil when no
// sort field was given.
func (p PageParams) Order() *ports.Order {
	if p.SortBy == "" {
		return nil
	}
	return &ports.Order{
		Field:      p.SortBy,
		Descending: p.SortOrder != "asc",
	}
}
