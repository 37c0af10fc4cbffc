// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by list endpoints.
const PageSize = 50

// MaxPageSize caps client-requested limits.
const MaxPageSize = 200

// ParseStart extracts the 1-based "start" query parameter.
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseLimit extracts the "limit" query parameter, clamped to
// [1, MaxPageSize]. Returns PageSize if not present or invalid.
func ParseLimit(r *http.Request) int {
	s := query.Get(r, "limit")
	if s == "" {
		return PageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// LimitPlusOne returns limit+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne(limit int) int64 { return int64(limit + 1) }

// Result holds the output of TrimPage.
type Result struct {
	HasNext bool
}

// TrimPage trims a fetched slice after a limit+1 look-ahead query.
// It modifies the slice in place and reports whether a next page exists.
func TrimPage[T any](rows *[]T, limit int) Result {
	if len(*rows) > limit {
		*rows = (*rows)[:limit]
		return Result{HasNext: true}
	}
	return Result{}
}
