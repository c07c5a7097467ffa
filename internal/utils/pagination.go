// Package utils holds tiny helpers shared across layers with no domain
// knowledge of their own.
package utils

import "strconv"

// AtoiDefault parses an integer query parameter, falling back to def when
// the value is absent or malformed. Shift listings use it for page and
// page_size, where a garbled value should mean "first page, default size",
// not a 4xx:
//
//	page := utils.AtoiDefault(c.Query("page"), 1)
//	size := utils.AtoiDefault(c.Query("page_size"), 20)
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
