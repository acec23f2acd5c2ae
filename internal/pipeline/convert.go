package pipeline

import (
	"sort"
	"time"

	"github.com/pfrederiksen/ff-calendar/internal/event"
	"github.com/pfrederiksen/ff-calendar/internal/filter"
)

// Record is one row of the final dataset
type Record struct {
	DatetimeUTC time.Time `parquet:"datetime_utc,timestamp"`
	Currency    string    `parquet:"currency"`
	Impact      string    `parquet:"impact"`
	Title       string    `parquet:"title"`
	ID          string    `parquet:"id"`
}

// Sanitize removes speech annotations and nothing else
func Sanitize(rows []event.Row) []event.Row {
	return filter.RemoveSpeeches(rows)
}

// Convert keeps the rows matching f, collapses duplicates and sorts the result
// by time, title and id.
//
// Rows share an identity when they share a source id; rows without one are
// identified by instant, currency and title. When duplicates disagree the row
// from the latest month document wins, and within one document the row with
// the greatest (datetime, title, currency, impact) wins. The result does not
// depend on input order.
func Convert(rows []event.Row, f filter.Filter) ([]Record, error) {
	best := make(map[string]event.Row)
	for _, row := range f.Apply(rows) {
		key := row.Key()
		if cur, ok := best[key]; !ok || supersedes(row, cur) {
			best[key] = row
		}
	}

	records := make([]Record, 0, len(best))
	for _, row := range best {
		at, err := row.Datetime()
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			DatetimeUTC: at,
			Currency:    row.Currency,
			Impact:      row.Impact,
			Title:       row.Title,
			ID:          row.ID,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.DatetimeUTC.Equal(b.DatetimeUTC) {
			return a.DatetimeUTC.Before(b.DatetimeUTC)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.Currency != b.Currency {
			return a.Currency < b.Currency
		}
		return a.Impact < b.Impact
	})

	return records, nil
}

// supersedes reports whether a should replace b as the kept duplicate
func supersedes(a, b event.Row) bool {
	if a.Month != b.Month {
		return a.Month > b.Month
	}
	for _, pair := range [][2]string{
		{a.Date + " " + a.TimeUTC, b.Date + " " + b.TimeUTC},
		{a.Title, b.Title},
		{a.Currency, b.Currency},
		{a.Impact, b.Impact},
	} {
		if pair[0] != pair[1] {
			return pair[0] > pair[1]
		}
	}
	return false
}
