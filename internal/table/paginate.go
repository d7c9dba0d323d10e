package table

// TotalPages is max(1, ceil(count / pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage moves page into [1, TotalPages(count, pageSize)].
func ClampPage(page, count, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(count, pageSize); page > last {
		return last
	}
	return page
}

// Paginate returns the 1-based page of records. A page past the end, or a
// non-positive page or size, yields an empty slice rather than an error.
func Paginate[R any](records []R, page, pageSize int) []R {
	if page < 1 || pageSize <= 0 {
		return []R{}
	}
	// Compare before multiplying so huge page numbers cannot overflow.
	if page-1 >= (len(records)+pageSize-1)/pageSize {
		return []R{}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end:end]
}
