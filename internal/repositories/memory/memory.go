// Package memory implements the repository interfaces in process memory.
// It backs STORAGE_DRIVER=memory and the service and handler tests.
package memory

import (
	"sort"
	"time"

	"github.com/anonto42/quill/backend/internal/query"
)

type record[T any] struct {
	seq uint64
	val T
}

// ordered sorts records by created time then insertion order, and applies page.
func ordered[T any](recs []record[T], created func(T) time.Time, desc bool, page *query.Page) []T {
	sort.Slice(recs, func(i, j int) bool {
		ci, cj := created(recs[i].val), created(recs[j].val)
		if !ci.Equal(cj) {
			if desc {
				return ci.After(cj)
			}
			return ci.Before(cj)
		}
		if desc {
			return recs[i].seq > recs[j].seq
		}
		return recs[i].seq < recs[j].seq
	})

	start, end := 0, len(recs)
	if page != nil {
		n := int64(len(recs))
		if page.Offset >= n {
			return []T{}
		}
		start = int(page.Offset)
		end = start + int(min(page.Limit, n-page.Offset))
	}
	out := make([]T, 0, end-start)
	for _, r := range recs[start:end] {
		out = append(out, r.val)
	}
	return out
}
