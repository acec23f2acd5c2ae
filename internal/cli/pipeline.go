package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ff-calendar/internal/config"
	"github.com/pfrederiksen/ff-calendar/internal/filter"
	"github.com/pfrederiksen/ff-calendar/internal/pipeline"
)

type pipelineFlags struct {
	step           string
	inDir          string
	csv            string
	out            string
	ics            string
	keepCurrencies string
	keepImpacts    string
	timezone       string
}

func newPipelineCmd(g *globalFlags) *cobra.Command {
	f := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Turn saved months into a Parquet dataset",
		Long: `Without --step, parses every days_YYYY_MM.json in the input directory,
removes speech annotations, keeps the configured currencies and impacts,
deduplicates, sorts and writes the Parquet file in one pass.

Steps:
  parse     - month documents to CSV (all rows)
  sanitize  - remove "speaks" rows from the CSV
  parquet   - filter, deduplicate and sort the CSV into Parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := g.load(cmd)
			if err != nil {
				return err
			}
			step, err := pipeline.ParseStep(f.step)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg, step)

			if err := cfg.ValidatePipeline(); err != nil {
				return err
			}
			opts, err := pipeline.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}

			res, err := pipeline.RunStep(step, opts)
			if err != nil {
				return err
			}
			if err := writePipelineResult(cmd.OutOrStdout(), res, finishMetrics(), format); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.step, "step", "", "Run only one step: parse, sanitize or parquet")
	cmd.Flags().StringVar(&f.inDir, "in-dir", "", "Directory holding days_YYYY_MM.json files")
	cmd.Flags().StringVar(&f.csv, "csv", "", "Input CSV for the sanitize and parquet steps")
	cmd.Flags().StringVar(&f.out, "out", "", "Output file of the step (or of the full run)")
	cmd.Flags().StringVar(&f.ics, "ics", "", "Also write the final rows as an iCalendar feed (full run and parquet step)")
	cmd.Flags().StringVar(&f.keepCurrencies, "keep-currencies", "", "Currencies to keep, e.g. \"USD,EUR\"")
	cmd.Flags().StringVar(&f.keepImpacts, "keep-impacts", "", "Impacts to keep, e.g. \"high,holiday\"")
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "IANA timezone of the calendar's local times")

	return cmd
}

// apply overrides cfg with the flags that were set explicitly. --csv and
// --out refer to the input and output of whichever step runs.
func (f *pipelineFlags) apply(cmd *cobra.Command, cfg *config.Config, step pipeline.Step) {
	flags := cmd.Flags()
	if flags.Changed("in-dir") {
		cfg.OutDir = f.inDir
	}
	if flags.Changed("keep-currencies") {
		cfg.Pipeline.KeepCurrencies = filter.ParseList(f.keepCurrencies)
	}
	if flags.Changed("keep-impacts") {
		cfg.Pipeline.KeepImpacts = filter.ParseList(f.keepImpacts)
	}
	if flags.Changed("timezone") {
		cfg.Pipeline.SourceTimezone = f.timezone
	}
	if flags.Changed("ics") {
		cfg.Pipeline.OutICS = f.ics
	}

	p := &cfg.Pipeline
	switch step {
	case pipeline.StepParse:
		setIf(flags.Changed("out"), &p.ParsedCSV, f.out)
	case pipeline.StepSanitize:
		setIf(flags.Changed("csv"), &p.ParsedCSV, f.csv)
		setIf(flags.Changed("out"), &p.CleanCSV, f.out)
	case pipeline.StepParquet:
		setIf(flags.Changed("csv"), &p.CleanCSV, f.csv)
		setIf(flags.Changed("out"), &p.OutParquet, f.out)
	default:
		setIf(flags.Changed("out"), &p.OutParquet, f.out)
	}
}

func setIf(changed bool, dst *string, v string) {
	if changed {
		*dst = v
	}
}
