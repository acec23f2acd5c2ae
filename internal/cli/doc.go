// Package cli implements the command-line interface for ff-calendar.
//
// The cli package provides the Cobra-based CLI with two subcommands: scrape,
// which drives the Collector over a month range, and pipeline, which runs the
// parse, sanitize and parquet stages. Settings come from built-in defaults, an
// optional YAML or JSON5 file and then flags. Summaries are printed as a table
// or JSON, and the exit code tells scripts whether a rerun is needed.
package cli
