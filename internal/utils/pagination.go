// Package utils holds small helpers shared by the HTTP and service layers.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("", 10)  // 10
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageBounds returns the half-open slice range [start, end) of page (1-based)
// in a collection of total items. Out-of-range pages yield an empty range.
func PageBounds(total, page, pageSize int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return 0, 0
	}
	start = (page - 1) * pageSize
	if start >= total {
		return total, total
	}
	return start, min(start+pageSize, total)
}

// TotalPages is the number of pages of pageSize needed for total items.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
