package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/ff-calendar/internal/event"
	"github.com/pfrederiksen/ff-calendar/internal/logger"
	"github.com/pfrederiksen/ff-calendar/internal/storage"
)

// DocumentError describes a raw document that was excluded
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Report lists what Parse read and what it had to leave out
type Report struct {
	Documents          int
	Rows               int
	MalformedDocuments []error
	MalformedEntries   []error
}

// Parse flattens documents, in the order given, into rows. A document that
// cannot be read or decoded is excluded as a whole; an entry without a
// resolvable time is excluded alone. Neither stops the remaining documents.
func Parse(docs []storage.Document, loc *time.Location) ([]event.Row, Report) {
	var (
		rows []event.Row
		rep  Report
	)

	for _, doc := range docs {
		data, err := os.ReadFile(doc.Path)
		if err != nil {
			rep.MalformedDocuments = append(rep.MalformedDocuments, &DocumentError{Path: doc.Path, Err: err})
			continue
		}
		days, err := event.DecodeDays(data)
		if err != nil {
			rep.MalformedDocuments = append(rep.MalformedDocuments, &DocumentError{Path: doc.Path, Err: err})
			continue
		}

		docRows, errs := event.Flatten(doc.Key, days, loc)
		rows = append(rows, docRows...)
		rep.MalformedEntries = append(rep.MalformedEntries, errs...)
		rep.Documents++
	}

	for _, err := range rep.MalformedDocuments {
		logger.Warn("Skipping malformed document", logger.Fields{"error": err.Error()})
	}
	for _, err := range rep.MalformedEntries {
		logger.Warn("Skipping malformed entry", logger.Fields{"error": err.Error()})
	}

	rep.Rows = len(rows)
	return rows, rep
}
