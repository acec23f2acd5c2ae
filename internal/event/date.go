package event

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// millisThreshold separates epoch seconds from epoch milliseconds
const millisThreshold = 10_000_000_000

// ErrNoTime is returned when an event carries no usable time information
var ErrNoTime = errors.New("event has no dateline")

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)$`)

// FromEpoch converts an epoch value (seconds, or milliseconds when large) to UTC.
// Returns the zero time for zero input.
func FromEpoch(v float64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	if v > millisThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

// ParseClock parses a time label such as "8:30am" into hour and minute.
// ok is false for labels like "All Day", "Tentative" or "Day 2".
func ParseClock(label string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(label)))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, 0, false
	}
	if hour == 12 {
		hour = 0
	}
	if m[3] == "pm" {
		hour += 12
	}
	return hour, minute, true
}

// When resolves the absolute UTC instant of an event.
//
// The event's own dateline (epoch) wins. Without it, the day's dateline marks
// local midnight in loc and the event's time label supplies the clock; labels
// without a clock resolve to local midnight.
func (e *Event) When(day *Day, loc *time.Location) (time.Time, error) {
	if t := FromEpoch(float64(e.Dateline)); !t.IsZero() {
		return t, nil
	}
	if day == nil {
		return time.Time{}, ErrNoTime
	}
	midnight := FromEpoch(float64(day.Dateline))
	if midnight.IsZero() {
		return time.Time{}, ErrNoTime
	}
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := midnight.In(loc).Date()
	hour, minute, _ := ParseClock(e.TimeLabel)
	return time.Date(y, m, d, hour, minute, 0, 0, loc).UTC(), nil
}
