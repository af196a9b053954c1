package db

import "time"

// Timestamps are stored as RFC3339 strings in UTC, second precision.
// Example: "2024-03-07T15:04:05Z"

// TimeFormat formats a time for storage.
func TimeFormat(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TimeParse parses a stored timestamp back into a time.Time in UTC.
func TimeParse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
