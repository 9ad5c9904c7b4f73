package query

import (
	"strconv"
	"strings"
)

// Int parses a single query string value into an int pointer.
// Returns nil for empty or invalid input.
func Int(val string) *int {
	if val == "" {
		return nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return nil
	}
	return &i
}

// String returns a trimmed query string value as a pointer, or nil when empty.
func String(val string) *string {
	clean := strings.TrimSpace(val)
	if clean == "" {
		return nil
	}
	return &clean
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
