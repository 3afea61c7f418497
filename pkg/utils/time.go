package utils

import "time"

// sortKeyLayout has a fixed width so keys order lexically by time.
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SortKey formats t as a lexically sortable UTC timestamp.
func SortKey(t time.Time) string {
	return t.UTC().Format(sortKeyLayout)
}

// ParseSortKey parses a timestamp written by SortKey
func ParseSortKey(s string) (time.Time, error) {
	return time.Parse(sortKeyLayout, s)
}
