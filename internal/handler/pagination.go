package handler

import (
	"net/http"
	"strconv"

	"github.com/forgo/setlist/api/internal/model"
)

const (
	// DefaultPageLimit is the page size when limit is not given
	DefaultPageLimit = 5
	// MaxPageLimit caps limit; larger values are clamped
	MaxPageLimit = 100
)

// parsePage reads limit and offset. limit must be a positive integer and
// offset a non-negative one.
func parsePage(r *http.Request) (limit, offset int, apiErr *model.APIError) {
	limit, offset = DefaultPageLimit, 0
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, ok := parseCount(v)
		if !ok || n < 1 {
			return 0, 0, model.NewBadRequestError("The limit query parameter must be a positive integer")
		}
		limit = min(n, MaxPageLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, ok := parseCount(v)
		if !ok {
			return 0, 0, model.NewBadRequestError("The offset query parameter must be a non-negative integer")
		}
		offset = n
	}
	return limit, offset, nil
}

// parseCount accepts only unsigned decimal digits
func parseCount(v string) (int, bool) {
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}
