// Package config holds the static run parameters shared by the collector and
// the pipeline.
//
// Configuration is layered: built-in defaults, then an optional YAML or JSON5
// file, then command-line flags. Validate must pass before any network or file
// activity starts.
package config
