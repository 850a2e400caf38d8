// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp is a wire-tolerant timestamp for collaborator payloads.
//
// Backends are inconsistent about datetime shapes: full RFC3339, a plain
// "2006-01-02 15:04:05", a bare date, a {datetime, formatted} object, or
// null. An unparseable value decodes to the zero (absent) Timestamp rather
// than an error, because downstream retention logic must fail closed on
// missing timestamps instead of rejecting the whole payload.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// wire formats accepted, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewTimestamp creates a valid Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC(), Valid: true}
}

// ParseTimestamp parses s using the accepted wire formats.
// Empty or unparseable input returns the absent Timestamp.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t)
		}
	}
	return Timestamp{}
}

// Ptr returns the underlying time, or nil when absent.
func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

// UnmarshalJSON accepts a datetime string, a {"datetime": "..."} object, or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*ts = ParseTimestamp(s)
		return nil
	}

	var obj struct {
		Datetime string `json:"datetime"`
		Date     string `json:"date"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Datetime != "" {
			*ts = ParseTimestamp(obj.Datetime)
		} else {
			*ts = ParseTimestamp(obj.Date)
		}
		return nil
	}

	// Unknown shape: treat as absent, never as a decode failure.
	return nil
}

// MarshalJSON encodes as RFC3339 or null when absent.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339))
}
