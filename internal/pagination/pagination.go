// Package pagination slices in-memory result sets into pages.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultLimit    = 10
	DefaultMaxLimit = 100
)

// Options selects a page. Zero values fall back to the defaults.
type Options struct {
	Page     int
	Limit    int
	MaxLimit int
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is one page of items with its position.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Paginate returns the requested page of items. The limit is capped at
// MaxLimit and the page floored at 1; a page past the end has no data but is
// not an error.
func Paginate[T any](items []T, opts Options) Page[T] {
	maxLimit := opts.MaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, maxLimit)
	page := max(1, opts.Page)

	total := len(items)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	// Compare before multiplying so huge pages cannot overflow.
	start := total
	if page-1 < totalPages {
		start = (page - 1) * limit
	}
	end := start + min(limit, total-start)

	data := make([]T, end-start)
	copy(data, items[start:end])

	return Page[T]{
		Data: data,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}

// ParamsFromRequest reads the page and limit query parameters. Missing,
// malformed or zero values become 1 and 10.
func ParamsFromRequest(r *http.Request) Options {
	q := r.URL.Query()
	return Options{
		Page:  intOr(q.Get("page"), DefaultPage),
		Limit: intOr(q.Get("limit"), DefaultLimit),
	}
}

func intOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return def
	}
	return n
}
