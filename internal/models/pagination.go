package models

import "strconv"

const (
	DefaultFeedLimit   = 10
	DefaultListLimit   = 20
	DefaultSampleLimit = 30
	MaxLimit           = 50
)

// Pagination is an offset/limit window. Out-of-range input is clamped, never rejected.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads raw query values. Unparseable or non-positive values
// fall back to page 1 and defaultLimit; a limit above MaxLimit is capped.
func ParsePagination(pageStr, limitStr string, defaultLimit int) Pagination {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	return Pagination{Page: page, Limit: ClampLimit(limitStr, defaultLimit)}
}

// ClampLimit parses a limit on its own, as used by the explore sample.
func ClampLimit(limitStr string, defaultLimit int) int {
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		return defaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NewPagination clamps already-parsed values the same way ParsePagination does.
func NewPagination(page, limit, defaultLimit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}
