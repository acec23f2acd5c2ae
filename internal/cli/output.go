package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/ff-calendar/internal/logger"
	"github.com/pfrederiksen/ff-calendar/internal/pipeline"
	"github.com/pfrederiksen/ff-calendar/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// scrapeReport is the JSON form of a scrape run
type scrapeReport struct {
	scraper.Summary
	Metrics logger.Snapshot `json:"metrics"`
}

// pipelineReport is the JSON form of a pipeline run
type pipelineReport struct {
	pipeline.Result
	Metrics logger.Snapshot `json:"metrics"`
}

// finishMetrics logs the run metrics and returns them for the summary
func finishMetrics() logger.Snapshot {
	snap := logger.GetMetricsSnapshot()
	logger.Info("Run metrics", logger.Fields{"counters": snap.Counters, "timings": snap.Timings})
	return snap
}

// writeMetrics prints counters and timings, if any were recorded
func writeMetrics(w io.Writer, snap logger.Snapshot) {
	if len(snap.Counters) == 0 && len(snap.Timings) == 0 {
		return
	}

	t := newTable(w)
	t.SetTitle("Run metrics")
	t.AppendHeader(table.Row{"Metric", "Count", "Average", "Max"})
	for _, name := range slices.Sorted(maps.Keys(snap.Counters)) {
		t.AppendRow(table.Row{name, snap.Counters[name], "", ""})
	}
	for _, name := range slices.Sorted(maps.Keys(snap.Timings)) {
		st := snap.Timings[name]
		t.AppendRow(table.Row{name, st.Count, st.Average.Round(time.Millisecond), st.Max.Round(time.Millisecond)})
	}
	t.Render()
}

// writeScrapeSummary prints month counts, the reason for each failure and the
// run metrics
func writeScrapeSummary(w io.Writer, sum scraper.Summary, metrics logger.Snapshot, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, scrapeReport{Summary: sum, Metrics: metrics})
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Months", "Saved", "Skipped", "Failed", "Elapsed"})
	t.AppendRow(table.Row{sum.Total, sum.Saved, sum.Skipped, sum.Failed, sum.Elapsed.Round(time.Millisecond)})
	t.Render()

	if len(sum.Failures) > 0 {
		ft := newTable(w)
		ft.SetTitle("Failed months (rerun to retry)")
		ft.AppendHeader(table.Row{"Month", "Reason"})
		for _, f := range sum.Failures {
			ft.AppendRow(table.Row{f.Month, f.Reason})
		}
		ft.Render()
	}

	writeMetrics(w, metrics)
	return nil
}

// writePipelineResult prints the row counts of a stage or full run and the
// run metrics
func writePipelineResult(w io.Writer, res pipeline.Result, metrics logger.Snapshot, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, pipelineReport{Result: res, Metrics: metrics})
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Step", "Documents", "Rows in", "Rows out", "Output"})
	docs := "-"
	if res.Step == string(pipeline.StepParse) || res.Step == "all" {
		docs = fmt.Sprint(res.Documents)
	}
	t.AppendRow(table.Row{res.Step, docs, res.RowsIn, res.RowsOut, res.Output})
	t.Render()

	if res.Calendar != "" {
		fmt.Fprintf(w, "Calendar feed: %s\n", res.Calendar) // nolint:errcheck
	}
	if len(res.MalformedDocuments) > 0 || res.MalformedEntries > 0 {
		fmt.Fprintf(w, "Skipped malformed input: %d documents, %d entries\n", // nolint:errcheck
			len(res.MalformedDocuments), res.MalformedEntries)
		if len(res.MalformedDocuments) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(res.MalformedDocuments, "\n  ")) // nolint:errcheck
		}
	}

	writeMetrics(w, metrics)
	return nil
}
