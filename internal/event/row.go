package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/ff-calendar/internal/month"
)

// Layouts of the Row date and time columns
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Columns is the header of the intermediate tabular artifact
var Columns = []string{"date", "time_utc", "currency", "impact", "title", "id", "month"}

// Row is one flattened event. Date and TimeUTC hold the UTC instant split the
// way the intermediate CSV stores it; Month is the document the row came from.
type Row struct {
	Date     string
	TimeUTC  string
	Currency string
	Impact   string
	Title    string
	ID       string
	Month    string
}

// NewRow builds a Row from a resolved instant
func NewRow(at time.Time, currency, impact, title, id string, key month.Key) Row {
	at = at.UTC()
	return Row{
		Date:     at.Format(DateLayout),
		TimeUTC:  at.Format(TimeLayout),
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		Impact:   impact,
		Title:    title,
		ID:       strings.TrimSpace(id),
		Month:    key.String(),
	}
}

// Datetime parses Date and TimeUTC back into a UTC instant
func (r Row) Datetime() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, r.Date+" "+r.TimeUTC, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("row %q: %w", r.ID, err)
	}
	return t, nil
}

// Key returns the dedupe identity: the source id, or a hash of the instant,
// currency and title for rows without one.
func (r Row) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return "~" + GenerateKey(r.Date+" "+r.TimeUTC, r.Currency, r.Title)
}

// Record returns the row as CSV fields in Columns order
func (r Row) Record() []string {
	return []string{r.Date, r.TimeUTC, r.Currency, r.Impact, r.Title, r.ID, r.Month}
}

// RowFromRecord is the inverse of Row.Record
func RowFromRecord(rec []string) (Row, error) {
	if len(rec) != len(Columns) {
		return Row{}, fmt.Errorf("want %d columns, got %d", len(Columns), len(rec))
	}
	return Row{
		Date:     rec[0],
		TimeUTC:  rec[1],
		Currency: rec[2],
		Impact:   rec[3],
		Title:    rec[4],
		ID:       rec[5],
		Month:    rec[6],
	}, nil
}

// EntryError describes an event that could not be flattened
type EntryError struct {
	Month month.Key
	Day   int
	Index int
	ID    string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s day %d event %d (id %q): %v", e.Month, e.Day, e.Index, e.ID, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Flatten turns the days of one month document into rows, in document order.
// Entries without a resolvable time are skipped and reported.
func Flatten(key month.Key, days []Day, loc *time.Location) ([]Row, []error) {
	var (
		rows []Row
		errs []error
	)
	for di := range days {
		day := &days[di]
		for ei := range day.Events {
			ev := &day.Events[ei]
			at, err := ev.When(day, loc)
			if err != nil {
				errs = append(errs, &EntryError{Month: key, Day: di, Index: ei, ID: string(ev.ID), Err: err})
				continue
			}
			rows = append(rows, NewRow(at, ev.Currency, ev.Impact(), ev.Title(), string(ev.ID), key))
		}
	}
	return rows, errs
}
