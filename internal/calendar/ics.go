// Package calendar renders calendar entries as an iCalendar (.ics) feed.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const prodID = "-//ff-calendar//economic events//EN"

// Entry is one event of the feed. An all-day entry falls on the date Start
// has in its own location, so Start should carry the calendar's timezone.
type Entry struct {
	UID      string
	Start    time.Time
	AllDay   bool
	Title    string
	Currency string
	Impact   string
}

// WriteICS writes entries as a single VCALENDAR. The output depends only on
// entries, so the same input always yields the same bytes.
func WriteICS(w io.Writer, name string, entries []Entry) error {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if name != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(name)))
	}

	for _, e := range entries {
		writeEvent(&ics, e)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	_, err := io.WriteString(w, ics.String())
	return err
}

func writeEvent(ics *strings.Builder, e Entry) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@ff-calendar\r\n", escapeICS(e.UID)))

	// DTSTAMP is pinned to the event time instead of the wall clock
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(e.Start)))

	if e.AllDay {
		day := time.Date(e.Start.Year(), e.Start.Month(), e.Start.Day(), 0, 0, 0, 0, time.UTC)
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatICSDate(day)))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatICSDate(day.AddDate(0, 0, 1))))
		ics.WriteString("TRANSP:TRANSPARENT\r\n")
	} else {
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(e.Start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(e.Start)))
		ics.WriteString("TRANSP:OPAQUE\r\n")
	}

	summary := e.Title
	if e.Currency != "" {
		summary = fmt.Sprintf("%s %s", e.Currency, e.Title)
	}
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))
	if e.Impact != "" {
		ics.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", escapeICS(strings.ToUpper(e.Impact))))
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS("Impact: "+e.Impact)))
	}
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
