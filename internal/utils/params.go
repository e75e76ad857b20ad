// Package utils provides tiny helpers for parsing and bounding query
// parameters. Nothing here knows about the domain.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// plain integer. Input is not trimmed; a padded value falls back to def.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to [lo, hi]. Callers use it to keep client-supplied
// limits within what a handler is willing to serve.
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
