package month

import (
	"fmt"
	"strings"
	"time"
)

// Key identifies one calendar month
type Key struct {
	Year  int
	Month time.Month
}

// New creates a Key, normalizing out-of-range months (13 -> January next year)
func New(year int, m time.Month) Key {
	t := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return Key{Year: t.Year(), Month: t.Month()}
}

// FromTime returns the Key of the month containing t
func FromTime(t time.Time) Key {
	return Key{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month
func (k Key) Next() Key {
	return New(k.Year, k.Month+1)
}

// Before reports whether k is earlier than other
func (k Key) Before(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String formats the key as YYYY-MM
func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Token returns the month token the calendar page expects, e.g. "jan.2021"
func (k Key) Token() string {
	return fmt.Sprintf("%s.%d", strings.ToLower(k.Month.String()[:3]), k.Year)
}

// URL returns the calendar page URL for this month
func (k Key) URL(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "month=" + k.Token()
}

// FileName returns the raw document file name, e.g. "days_2021_01.json"
func (k Key) FileName() string {
	return fmt.Sprintf("days_%04d_%02d.json", k.Year, int(k.Month))
}

// ScreenshotName returns the diagnostic screenshot name for a bot-challenge
func (k Key) ScreenshotName() string {
	return fmt.Sprintf("cf_block_%04d_%02d.png", k.Year, int(k.Month))
}

// ParseFileName extracts the Key from a raw document file name
func ParseFileName(name string) (Key, error) {
	var year, m int
	if _, err := fmt.Sscanf(name, "days_%4d_%2d.json", &year, &m); err != nil {
		return Key{}, fmt.Errorf("not a month document name: %s", name)
	}
	if m < 1 || m > 12 {
		return Key{}, fmt.Errorf("invalid month in document name: %s", name)
	}
	if name != (Key{Year: year, Month: time.Month(m)}).FileName() {
		return Key{}, fmt.Errorf("not a month document name: %s", name)
	}
	return Key{Year: year, Month: time.Month(m)}, nil
}

// Range returns every month from the month containing start through the month
// containing end, in chronological order. Returns nil if end is before start.
func Range(start, end time.Time) []Key {
	first, last := FromTime(start), FromTime(end)
	if last.Before(first) {
		return nil
	}

	keys := make([]Key, 0, 12)
	for k := first; !last.Before(k); k = k.Next() {
		keys = append(keys, k)
	}
	return keys
}
