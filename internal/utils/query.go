package utils

import (
	"net/url"
	"strconv"
	"strings"

	"bugtracker/internal/apperr"
)

// QueryInt safely parses an integer from query parameters.
// If missing or invalid, returns the provided default.
func QueryInt(q url.Values, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ParseID parses a route or argument id. Anything but a positive base-10
// integer is a validation error.
func ParseID(name, s string) (int64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.Validation("invalid %s %q: must be a positive integer", name, s)
	}
	return n, nil
}
