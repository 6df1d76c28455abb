package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = "?"
	}
	return strings.Join(list, ", ")
}

// timeToTs converts a timestamp to the unix seconds stored in the database.
// The zero time is stored as 0 so "never" survives a round trip.
func timeToTs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// tsToTime converts stored unix seconds back to a UTC timestamp, mapping 0
// to the zero time.
func tsToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// encodeTags serializes a tag list to the JSON array stored in the tags
// column. A nil or empty list is stored as "[]".
func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

// decodeTags parses the JSON array in the tags column. An empty array
// decodes to nil so a stored card compares equal to a freshly built one.
func decodeTags(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
