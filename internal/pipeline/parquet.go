package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/pfrederiksen/ff-calendar/internal/calendar"
	"github.com/pfrederiksen/ff-calendar/internal/event"
	"github.com/pfrederiksen/ff-calendar/internal/filter"
	"github.com/pfrederiksen/ff-calendar/internal/storage"
)

// WriteParquet writes records as a zstd-compressed Parquet file, atomically
func WriteParquet(path string, records []Record) error {
	return storage.WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeParquet(w, records)
	})
}

// EncodeParquet writes records in the Record schema
func EncodeParquet(w io.Writer, records []Record) error {
	pw := parquet.NewGenericWriter[Record](w, parquet.Compression(&parquet.Zstd))
	if len(records) > 0 {
		if _, err := pw.Write(records); err != nil {
			pw.Close() // nolint:errcheck
			return fmt.Errorf("writing rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// ReadParquet loads a file written by WriteParquet
func ReadParquet(path string) ([]Record, error) {
	records, err := parquet.ReadFile[Record](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// WriteCalendar writes records as an iCalendar feed named after the keep-sets.
// Holidays become all-day entries on their date in loc, the calendar's source
// timezone.
func WriteCalendar(path string, f filter.Filter, loc *time.Location, records []Record) error {
	if loc == nil {
		loc = time.UTC
	}
	entries := make([]calendar.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, calendar.Entry{
			UID:      recordUID(r),
			Start:    r.DatetimeUTC.In(loc),
			AllDay:   r.Impact == event.ImpactHoliday,
			Title:    r.Title,
			Currency: r.Currency,
			Impact:   r.Impact,
		})
	}

	name := fmt.Sprintf("%s %s events",
		strings.Join(f.Currencies.Values(), "/"),
		strings.Join(f.Impacts.Values(), "/"))

	return storage.WriteFileAtomic(path, func(w io.Writer) error {
		return calendar.WriteICS(w, name, entries)
	})
}

func recordUID(r Record) string {
	if r.ID != "" {
		return r.ID
	}
	return event.GenerateKey(r.DatetimeUTC.UTC().Format(event.DateLayout+" "+event.TimeLayout), r.Currency, r.Title)
}
