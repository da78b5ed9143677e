package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset. ok is false when the caller asked
// for neither, in which case the full list is returned.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) (Pagination, bool) {
	query := r.URL.Query()
	if query.Get("limit") == "" && query.Get("offset") == "" {
		return Pagination{}, false
	}
	limit := defaultLimit
	offset := 0
	if raw := query.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: offset}, true
}

// Page cuts items down to the requested window.
func Page[T any](items []T, p Pagination) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if p.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
