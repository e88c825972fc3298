package repository

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery is the normalized pagination/search request for List.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// NewListQuery clamps page and limit into range and trims the search term.
func NewListQuery(page, limit int, search string) ListQuery {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return ListQuery{Page: page, Limit: limit, Search: strings.TrimSpace(search)}
}

// Offset returns the number of rows to skip: (page-1) * limit.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pages returns ceil(total/limit), the page count for a result set.
func (q ListQuery) Pages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(q.Limit) - 1) / int64(q.Limit))
}
