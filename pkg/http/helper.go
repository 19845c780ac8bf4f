package http

import (
	"net/http"
	"strconv"

	apperrors "skillex/pkg/errors"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ExtractPagination reads page/limit query parameters, normalizing page to
// >= 1 and limit into [1, MaxPageSize].
func ExtractPagination(r *http.Request, defaultLimit int) (page, limit int, err error) {
	query := r.URL.Query()

	page = 1
	if s := query.Get("page"); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		if v > 0 {
			page = v
		}
	}

	limit = defaultLimit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if s := query.Get("limit"); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		if v > 0 {
			limit = v
		}
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return page, limit, nil
}

// Skip converts page/limit into a document offset.
func Skip(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}
