package view

import (
	"time"

	"restodash/dashboard-svc/internal/domain"
)

// DisplayLayout is "HH:mm dd/MM".
const DisplayLayout = "15:04 02/01"

// FormatDateTime renders ts in loc. Values sent without an offset are taken
// to already be in loc, as FormatDateTimeString does. A missing timestamp
// renders as "".
func FormatDateTime(ts *domain.Timestamp, loc *time.Location) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.WallIn(loc).Format(DisplayLayout)
}

// FormatDateTimeString parses an ISO-8601 string first; values without an
// offset are taken to already be in loc. Unparsable input renders as "".
func FormatDateTimeString(s string, loc *time.Location) string {
	if s == "" {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := domain.ParseTimestamp(s, loc)
	if err != nil {
		return ""
	}
	return t.In(loc).Format(DisplayLayout)
}
