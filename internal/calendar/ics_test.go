package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

var nfp = Entry{
	UID:      "abc123",
	Start:    time.Date(2021, time.January, 8, 13, 30, 0, 0, time.UTC),
	Title:    "Non-Farm Payrolls",
	Currency: "USD",
	Impact:   "high",
}

var holiday = Entry{
	UID:      "1003",
	Start:    time.Date(2021, time.February, 15, 5, 0, 0, 0, time.UTC),
	AllDay:   true,
	Title:    "Bank Holiday",
	Currency: "USD",
	Impact:   "holiday",
}

func render(t *testing.T, name string, entries ...Entry) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteICS(&buf, name, entries); err != nil {
		t.Fatalf("WriteICS() error = %v", err)
	}
	return buf.String()
}

func TestWriteICS(t *testing.T) {
	ics := render(t, "USD high impact", nfp, holiday)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ff-calendar//economic events//EN",
		"X-WR-CALNAME:USD high impact",
		"UID:abc123@ff-calendar",
		"DTSTART:20210108T133000Z",
		"SUMMARY:USD Non-Farm Payrolls",
		"CATEGORIES:HIGH",
		"UID:1003@ff-calendar",
		"DTSTART;VALUE=DATE:20210215",
		"DTEND;VALUE=DATE:20210216",
		"TRANSP:TRANSPARENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(ics, field+"\r\n") {
			t.Errorf("ICS missing line: %s", field)
		}
	}

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("got %d events, want 2", got)
	}
}

func TestWriteICS_AllDayUsesLocalDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	newYear := holiday
	newYear.Start = time.Date(2021, time.January, 1, 0, 0, 0, 0, tokyo)

	ics := render(t, "", newYear)
	if !strings.Contains(ics, "DTSTART;VALUE=DATE:20210101\r\n") {
		t.Errorf("holiday moved off its local date:\n%s", ics)
	}
	if !strings.Contains(ics, "DTEND;VALUE=DATE:20210102\r\n") {
		t.Errorf("holiday should end the next day:\n%s", ics)
	}
	if !strings.Contains(ics, "DTSTAMP:20201231T150000Z\r\n") {
		t.Errorf("DTSTAMP should stay in UTC:\n%s", ics)
	}
}

func TestWriteICS_Deterministic(t *testing.T) {
	a := render(t, "", nfp, holiday)
	b := render(t, "", nfp, holiday)
	if a != b {
		t.Error("same entries rendered differently")
	}
	if strings.Contains(a, "X-WR-CALNAME") {
		t.Error("calendar name should be omitted when empty")
	}
	if !strings.Contains(a, "DTSTAMP:20210108T133000Z\r\n") {
		t.Error("DTSTAMP should follow the event time")
	}
}

func TestWriteICS_Empty(t *testing.T) {
	ics := render(t, "")
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("empty feed should have no events")
	}
	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Errorf("malformed calendar:\n%s", ics)
	}
}

func TestWriteICS_SpecialCharacters(t *testing.T) {
	e := nfp
	e.Title = "ISM Manufacturing PMI; Prices, Employment"
	ics := render(t, "", e)
	if !strings.Contains(ics, `SUMMARY:USD ISM Manufacturing PMI\; Prices\, Employment`) {
		t.Errorf("special characters not escaped:\n%s", ics)
	}
}

func TestFormatICSTime(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	formatted := formatICSTime(time.Date(2021, time.January, 8, 8, 30, 0, 0, loc))

	expected := "20210108T133000Z"
	if formatted != expected {
		t.Errorf("formatICSTime() = %q, want %q", formatted, expected)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
