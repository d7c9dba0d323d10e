package table

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter returns the records where at least one of fields contains query,
// compared case-insensitively. Relative order is preserved. A query that is
// empty after trimming returns every record.
func Filter[R any](records []R, query string, fields []Field[R]) []R {
	q := strings.TrimSpace(query)
	if q == "" {
		out := make([]R, len(records))
		copy(out, records)
		return out
	}

	// A Caser is stateful; one per call keeps Filter safe for concurrent use.
	folder := cases.Fold()
	needle := folder.String(q)

	out := make([]R, 0, len(records))
	for _, r := range records {
		if matches(r, needle, fields, folder) {
			out = append(out, r)
		}
	}
	return out
}

func matches[R any](r R, needle string, fields []Field[R], folder cases.Caser) bool {
	for _, f := range fields {
		if strings.Contains(folder.String(f.Value(r)), needle) {
			return true
		}
	}
	return false
}
