package models

import (
	"encoding/json"
	"strings"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for post timestamps.
// Fixed width keeps lexical and chronological order identical in storage.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Post is a single news post.
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	Created     time.Time `json:"created"`
}

// HasImage reports whether the post references a stored image.
func (p Post) HasImage() bool {
	return p.Image != nil && strings.TrimSpace(*p.Image) != ""
}

// MarshalJSON renders created with millisecond precision.
func (p Post) MarshalJSON() ([]byte, error) {
	type alias Post
	return json.Marshal(struct {
		alias
		Created string `json:"created"`
	}{
		alias:   alias(p),
		Created: FormatTime(p.Created),
	})
}

// FormatTime formats t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses any RFC3339 timestamp, including TimeLayout values.
func ParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t.UTC(), nil
	}
	// SQLite CURRENT_TIMESTAMP default.
	t, sqlErr := time.Parse("2006-01-02 15:04:05", value)
	if sqlErr == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}
