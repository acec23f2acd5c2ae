package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/ff-calendar/internal/event"
	"github.com/pfrederiksen/ff-calendar/internal/storage"
)

// WriteCSV writes rows with an event.Columns header, atomically
func WriteCSV(path string, rows []event.Row) error {
	return storage.WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, rows)
	})
}

// EncodeCSV writes rows with an event.Columns header
func EncodeCSV(w io.Writer, rows []event.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(event.Columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads an intermediate artifact written by WriteCSV
func ReadCSV(path string) ([]event.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck

	rows, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// DecodeCSV reads rows and checks the header against event.Columns
func DecodeCSV(r io.Reader) ([]event.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(event.Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header")
	}
	if err != nil {
		return nil, err
	}
	for i, col := range event.Columns {
		if header[i] != col {
			return nil, fmt.Errorf("column %d is %q, want %q", i+1, header[i], col)
		}
	}

	var rows []event.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row, err := event.RowFromRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
