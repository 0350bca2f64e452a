package transform

import (
	"strings"

	"github.com/zeebo/xxh3"

	"unietl/pkg/records"
)

// DedupFirst collapses rows sharing the same natural key, keeping the first
// occurrence. It returns the indices of surviving rows in input order and the
// number of duplicates dropped.
//
// The key is the xxh3 hash of the configured fields joined on an unlikely
// separator. Rows missing any key field (or with an empty value) cannot be
// keyed and always survive; the database unique constraint remains the
// backstop for those.
func DedupFirst(rows []records.Record, keys ...string) (keep []int, removed int) {
	if len(rows) == 0 || len(keys) == 0 {
		keep = make([]int, len(rows))
		for i := range rows {
			keep[i] = i
		}
		return keep, 0
	}

	seen := make(map[uint64]struct{}, len(rows))
	keep = make([]int, 0, len(rows))

	for i, r := range rows {
		h, ok := keyHash(r, keys)
		if !ok {
			keep = append(keep, i)
			continue
		}
		if _, dup := seen[h]; dup {
			removed++
			continue
		}
		seen[h] = struct{}{}
		keep = append(keep, i)
	}
	return keep, removed
}

func keyHash(r records.Record, keys []string) (uint64, bool) {
	var b strings.Builder
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			return 0, false
		}
		s := records.AsString(v)
		if strings.TrimSpace(s) == "" {
			return 0, false
		}
		if b.Len() > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(s)
	}
	return xxh3.HashString(b.String()), true
}
