package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp accepts ISO-8601 strings with or without an offset as well as
// Mongo extended JSON ({"$date": "..."} or {"$date": millis}).
// A string without an offset is floating: its wall clock is kept as sent and
// only placed in a zone when rendered.
type Timestamp struct {
	time.Time
	floating bool
}

const floatingLayout = "2006-01-02T15:04:05.999999999"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses s; values without an offset are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, _, err := parseTimestamp(s, loc)
	return t, err
}

// parseTimestamp also reports whether s carried no offset.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool, error) {
	if loc == nil {
		loc = time.Local
	}
	for i, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, i > 0, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q", s)
}

// Floating reports whether the wire value had no offset.
func (t Timestamp) Floating() bool {
	return t.floating
}

// WallIn returns the instant to show in loc. Floating values keep their wall
// clock and take loc as their zone; others are converted.
func (t Timestamp) WallIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if !t.floating {
		return t.Time.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '{' {
		var wrapped struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return err
		}
		return t.UnmarshalJSON(wrapped.Date)
	}

	if b[0] != '"' {
		millis, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		t.Time = time.UnixMilli(millis)
		t.floating = false
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, floating, err := parseTimestamp(s, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	t.floating = floating
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.floating {
		return json.Marshal(t.Format(floatingLayout))
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
