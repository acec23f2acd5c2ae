package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/pfrederiksen/ff-calendar/internal/config"
	"github.com/pfrederiksen/ff-calendar/internal/event"
	"github.com/pfrederiksen/ff-calendar/internal/filter"
	"github.com/pfrederiksen/ff-calendar/internal/logger"
	"github.com/pfrederiksen/ff-calendar/internal/storage"
)

// Step names a single stage
type Step string

const (
	StepAll      Step = ""
	StepParse    Step = "parse"
	StepSanitize Step = "sanitize"
	StepParquet  Step = "parquet"
)

// ParseStep validates a --step value
func ParseStep(s string) (Step, error) {
	switch step := Step(s); step {
	case StepAll, StepParse, StepSanitize, StepParquet:
		return step, nil
	}
	return "", fmt.Errorf("unknown step %q (want parse, sanitize or parquet)", s)
}

// Options holds the stage inputs and outputs
type Options struct {
	InDir      string
	ParsedCSV  string
	CleanCSV   string
	OutParquet string
	// OutICS, when set, also receives the final rows as an iCalendar feed
	OutICS   string
	Location *time.Location
	Filter   filter.Filter
}

// OptionsFromConfig resolves the pipeline settings in cfg
func OptionsFromConfig(cfg config.Config) (Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Options{}, err
	}
	return Options{
		InDir:      cfg.OutDir,
		ParsedCSV:  cfg.Pipeline.ParsedCSV,
		CleanCSV:   cfg.Pipeline.CleanCSV,
		OutParquet: cfg.Pipeline.OutParquet,
		OutICS:     cfg.Pipeline.OutICS,
		Location:   loc,
		Filter:     cfg.Filter(),
	}, nil
}

// Result summarizes one stage or a full run
type Result struct {
	Step               string        `json:"step"`
	Documents          int           `json:"documents,omitempty"`
	MalformedDocuments []string      `json:"malformed_documents,omitempty"`
	MalformedEntries   int           `json:"malformed_entries,omitempty"`
	RowsIn             int           `json:"rows_in"`
	RowsOut            int           `json:"rows_out"`
	Output             string        `json:"output"`
	Calendar           string        `json:"calendar,omitempty"`
	Elapsed            time.Duration `json:"elapsed_ns"`
}

// RunStep runs one stage, or all of them for StepAll
func RunStep(step Step, opts Options) (Result, error) {
	start := time.Now()

	var (
		res Result
		err error
	)
	switch step {
	case StepParse:
		res, err = runParse(opts)
	case StepSanitize:
		res, err = runSanitize(opts)
	case StepParquet:
		res, err = runParquet(opts)
	case StepAll:
		res, err = run(opts)
	default:
		return Result{}, fmt.Errorf("unknown step %q", step)
	}
	if err != nil {
		return res, err
	}

	res.Elapsed = time.Since(start)
	logger.RecordTiming("pipeline_"+res.Step, res.Elapsed)
	logger.Info("Pipeline stage finished", logger.Fields{
		"step":     res.Step,
		"rows_in":  res.RowsIn,
		"rows_out": res.RowsOut,
		"output":   res.Output,
	})
	return res, nil
}

// Run executes parse, sanitize and parquet in memory without writing the
// intermediate CSV files
func Run(opts Options) (Result, error) {
	return RunStep(StepAll, opts)
}

func parseDir(opts Options) ([]event.Row, Result, error) {
	docs, err := storage.ListDir(opts.InDir)
	if err != nil {
		return nil, Result{}, err
	}

	rows, rep := Parse(docs, opts.Location)
	res := Result{
		Documents:        rep.Documents,
		MalformedEntries: len(rep.MalformedEntries),
		RowsOut:          len(rows),
	}
	for _, err := range rep.MalformedDocuments {
		res.MalformedDocuments = append(res.MalformedDocuments, err.Error())
	}
	logger.AddCounter("documents_parsed", int64(rep.Documents))
	logger.AddCounter("documents_malformed", int64(len(rep.MalformedDocuments)))
	return rows, res, nil
}

func runParse(opts Options) (Result, error) {
	rows, res, err := parseDir(opts)
	if err != nil {
		return res, err
	}
	res.Step = string(StepParse)
	res.RowsIn = res.RowsOut
	res.Output = opts.ParsedCSV

	if err := WriteCSV(opts.ParsedCSV, rows); err != nil {
		return res, err
	}
	return res, nil
}

func runSanitize(opts Options) (Result, error) {
	rows, err := ReadCSV(opts.ParsedCSV)
	if err != nil {
		return Result{}, err
	}
	clean := Sanitize(rows)
	res := Result{
		Step:    string(StepSanitize),
		RowsIn:  len(rows),
		RowsOut: len(clean),
		Output:  opts.CleanCSV,
	}
	if err := WriteCSV(opts.CleanCSV, clean); err != nil {
		return res, err
	}
	return res, nil
}

func runParquet(opts Options) (Result, error) {
	rows, err := ReadCSV(opts.CleanCSV)
	if err != nil {
		return Result{}, err
	}
	return convertAndWrite(rows, opts, Result{Step: string(StepParquet), RowsIn: len(rows)})
}

func run(opts Options) (Result, error) {
	rows, res, err := parseDir(opts)
	if err != nil {
		return res, err
	}
	res.Step = "all"
	res.RowsIn = len(rows)
	return convertAndWrite(Sanitize(rows), opts, res)
}

func convertAndWrite(rows []event.Row, opts Options, res Result) (Result, error) {
	records, err := Convert(rows, opts.Filter)
	if err != nil {
		return res, err
	}
	res.RowsOut = len(records)
	res.Output = opts.OutParquet

	if err := WriteParquet(opts.OutParquet, records); err != nil {
		return res, fmt.Errorf("writing %s: %w", filepath.Base(opts.OutParquet), err)
	}

	if opts.OutICS != "" {
		if err := WriteCalendar(opts.OutICS, opts.Filter, opts.Location, records); err != nil {
			return res, fmt.Errorf("writing %s: %w", filepath.Base(opts.OutICS), err)
		}
		res.Calendar = opts.OutICS
	}
	return res, nil
}
