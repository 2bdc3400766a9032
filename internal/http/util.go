package httpx

import (
	"net/http"
	"strconv"
)

// page is a clamped limit/offset window taken from the query string.
type page struct {
	Limit  int
	Offset int
}

// parsePage reads ?limit= and ?offset=. Unparseable values fall back to the
// defaults; limit is clamped to [1, maxLimit] and offset to >= 0.
func parsePage(r *http.Request, defLimit, maxLimit int) page {
	q := r.URL.Query()
	limit := atoiOr(q.Get("limit"), defLimit)
	offset := atoiOr(q.Get("offset"), 0)
	return page{
		Limit:  max(1, min(limit, max(1, maxLimit))),
		Offset: max(0, offset),
	}
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
