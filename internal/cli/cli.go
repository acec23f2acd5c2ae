package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ff-calendar/internal/config"
	"github.com/pfrederiksen/ff-calendar/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitPartial means some months failed and a rerun may fill them in
	ExitPartial = 2
)

var errPartial = errors.New("some months failed")

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	format     string
	logLevel   string
	verbose    bool
}

// NewRootCmd creates the root command. stdin answers bot-challenge prompts.
func NewRootCmd(stdin io.Reader) *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "ff-calendar",
		Short: "Collect the ForexFactory economic calendar and build a Parquet dataset",
		Long: `A CLI tool to collect ForexFactory calendar months through a real Chrome
session and turn the saved months into a filtered, deduplicated Parquet file.

Months already on disk are never fetched again, so an interrupted or partly
failed scrape can simply be rerun.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (.yaml, .yml, .json5 or .json)")
	cmd.PersistentFlags().StringVar(&g.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newScrapeCmd(g, stdin))
	cmd.AddCommand(newPipelineCmd(g))

	return cmd
}

// load reads the config file, applies the logging flags and installs the
// logger. Subcommand flags are applied by the caller.
func (g *globalFlags) load(cmd *cobra.Command) (config.Config, OutputFormat, error) {
	format := OutputFormat(strings.ToLower(g.format))
	if format != FormatText && format != FormatJSON {
		return config.Config{}, "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", g.format)
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, format, err
	}

	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, format, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	logFormat := logger.Format(strings.ToLower(cfg.Log.Format))
	if logFormat != logger.FormatText && logFormat != logger.FormatJSON {
		return cfg, format, fmt.Errorf("%w: log format %q (must be 'text' or 'json')", config.ErrInvalid, cfg.Log.Format)
	}
	logger.SetDefault(logger.New(level, logFormat, cmd.ErrOrStderr()))
	logger.ResetMetrics()

	return cfg, format, nil
}

// Run executes the CLI with args and returns the process exit code
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdin)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errPartial):
		return ExitPartial
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err) // nolint:errcheck
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
