// Package utils contains small parsing helpers shared by HTTP handlers.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when a path segment is not a positive integer id.
var ErrInvalidID = errors.New("invalid id")

// ParseID converts a path parameter into a positive int64 id.
// Surrounding whitespace, signs, and zero are rejected.
func ParseID(s string) (int64, error) {
	if s == "" || strings.TrimSpace(s) != s || s[0] == '+' || s[0] == '-' {
		return 0, ErrInvalidID
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return n, nil
}
