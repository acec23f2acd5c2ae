package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/ff-calendar/internal/filter"
	"github.com/pfrederiksen/ff-calendar/internal/month"
)

// DateLayout is the layout of StartDate and EndDate
const DateLayout = "2006-01-02"

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration that decodes from strings like "800ms"
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// D returns the value as a time.Duration
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// Chrome configures the browser session
type Chrome struct {
	UserDataDir    string `yaml:"user_data_dir" json:"user_data_dir"`
	ProfileDir     string `yaml:"profile_dir" json:"profile_dir"`
	Headless       bool   `yaml:"headless" json:"headless"`
	Proxy          string `yaml:"proxy" json:"proxy"`
	BlockResources *bool  `yaml:"block_resources" json:"block_resources"`
}

// Timing configures waits and pacing
type Timing struct {
	MaxWait       Duration `yaml:"max_wait" json:"max_wait"`
	PostLoadDelay Duration `yaml:"post_load_delay" json:"post_load_delay"`
	PollInterval  Duration `yaml:"poll_interval" json:"poll_interval"`
	BetweenPages  Duration `yaml:"between_pages" json:"between_pages"`
	Jitter        Duration `yaml:"jitter" json:"jitter"`
}

// Pipeline configures the ETL stages
type Pipeline struct {
	ParsedCSV      string   `yaml:"parsed_csv" json:"parsed_csv"`
	CleanCSV       string   `yaml:"clean_csv" json:"clean_csv"`
	OutParquet     string   `yaml:"out_parquet" json:"out_parquet"`
	OutICS         string   `yaml:"out_ics" json:"out_ics"`
	KeepCurrencies []string `yaml:"keep_currencies" json:"keep_currencies"`
	KeepImpacts    []string `yaml:"keep_impacts" json:"keep_impacts"`
	SourceTimezone string   `yaml:"source_timezone" json:"source_timezone"`
}

// Log configures the logger
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Config is the full set of run parameters
type Config struct {
	StartDate string   `yaml:"start_date" json:"start_date"`
	EndDate   string   `yaml:"end_date" json:"end_date"`
	OutDir    string   `yaml:"out_dir" json:"out_dir"`
	BaseURL   string   `yaml:"base_url" json:"base_url"`
	Chrome    Chrome   `yaml:"chrome" json:"chrome"`
	Timing    Timing   `yaml:"timing" json:"timing"`
	Pipeline  Pipeline `yaml:"pipeline" json:"pipeline"`
	Log       Log      `yaml:"log" json:"log"`
}

// Default returns the built-in configuration
func Default() Config {
	block := true
	return Config{
		StartDate: "2020-09-01",
		EndDate:   "2025-12-31",
		OutDir:    "out",
		BaseURL:   "https://www.forexfactory.com/calendar",
		Chrome: Chrome{
			ProfileDir:     "Default",
			BlockResources: &block,
		},
		Timing: Timing{
			MaxWait:       Duration(4 * time.Second),
			PostLoadDelay: Duration(800 * time.Millisecond),
			PollInterval:  Duration(150 * time.Millisecond),
			BetweenPages:  Duration(300 * time.Millisecond),
		},
		Pipeline: Pipeline{
			ParsedCSV:      "ff_usd_high_holiday.csv",
			CleanCSV:       "ff_usd_high_holiday_clean.csv",
			OutParquet:     "economic_events.parquet",
			KeepCurrencies: []string{"USD"},
			KeepImpacts:    []string{"high", "holiday"},
			SourceTimezone: "America/New_York",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML (.yaml, .yml) or JSON5 (.json5, .json) file and merges it
// over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var file Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".json5", ".json":
		err = json5.Unmarshal(data, &file)
	default:
		return cfg, fmt.Errorf("%w: unsupported config extension %q", ErrInvalid, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// mergo skips false values, so the explicit flag is applied by hand
	block := file.Chrome.BlockResources
	file.Chrome.BlockResources = nil

	if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("merging config: %w", err)
	}
	if block != nil {
		cfg.Chrome.BlockResources = block
	}
	return cfg, nil
}

// BlockResources reports whether non-essential subresources are blocked
func (c Config) BlockResources() bool {
	return c.Chrome.BlockResources == nil || *c.Chrome.BlockResources
}

// Start returns the parsed start date
func (c Config) Start() (time.Time, error) {
	return time.Parse(DateLayout, c.StartDate)
}

// End returns the parsed end date
func (c Config) End() (time.Time, error) {
	return time.Parse(DateLayout, c.EndDate)
}

// Months returns the month keys in the configured range
func (c Config) Months() ([]month.Key, error) {
	start, err := c.Start()
	if err != nil {
		return nil, fmt.Errorf("%w: start date: %v", ErrInvalid, err)
	}
	end, err := c.End()
	if err != nil {
		return nil, fmt.Errorf("%w: end date: %v", ErrInvalid, err)
	}
	return month.Range(start, end), nil
}

// Location returns the source timezone
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Pipeline.SourceTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: source timezone %q: %v", ErrInvalid, c.Pipeline.SourceTimezone, err)
	}
	return loc, nil
}

// Filter returns the keep-set filter
func (c Config) Filter() filter.Filter {
	return filter.New(c.Pipeline.KeepCurrencies, c.Pipeline.KeepImpacts)
}

// ValidateCollector checks everything the collector needs
func (c Config) ValidateCollector() error {
	return wrap(c.collectorErrors())
}

// ValidatePipeline checks everything the pipeline needs
func (c Config) ValidatePipeline() error {
	return wrap(c.pipelineErrors())
}

// Validate checks both collector and pipeline settings
func (c Config) Validate() error {
	return wrap(append(c.collectorErrors(), c.pipelineErrors()...))
}

func (c Config) collectorErrors() []error {
	var errs []error

	start, err := c.Start()
	if err != nil {
		errs = append(errs, fmt.Errorf("start_date %q: want YYYY-MM-DD", c.StartDate))
	}
	end, err2 := c.End()
	if err2 != nil {
		errs = append(errs, fmt.Errorf("end_date %q: want YYYY-MM-DD", c.EndDate))
	}
	if err == nil && err2 == nil && start.After(end) {
		errs = append(errs, fmt.Errorf("start_date %s is after end_date %s", c.StartDate, c.EndDate))
	}

	if strings.TrimSpace(c.OutDir) == "" {
		errs = append(errs, errors.New("out_dir is empty"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
	}
	if c.Chrome.Proxy != "" {
		if u, err := url.Parse(c.Chrome.Proxy); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("proxy %q: want scheme://[user:pass@]host:port", c.Chrome.Proxy))
		}
	}

	if c.Timing.MaxWait <= 0 {
		errs = append(errs, errors.New("timing.max_wait must be positive"))
	}
	if c.Timing.PollInterval <= 0 {
		errs = append(errs, errors.New("timing.poll_interval must be positive"))
	}
	if c.Timing.PostLoadDelay < 0 || c.Timing.BetweenPages < 0 || c.Timing.Jitter < 0 {
		errs = append(errs, errors.New("timing delays must not be negative"))
	}

	return errs
}

func (c Config) pipelineErrors() []error {
	var errs []error

	if strings.TrimSpace(c.OutDir) == "" {
		errs = append(errs, errors.New("out_dir is empty"))
	}
	f := c.Filter()
	if f.Currencies.Len() == 0 {
		errs = append(errs, errors.New("keep_currencies is empty"))
	}
	if f.Impacts.Len() == 0 {
		errs = append(errs, errors.New("keep_impacts is empty"))
	}
	if _, err := time.LoadLocation(c.Pipeline.SourceTimezone); err != nil {
		errs = append(errs, fmt.Errorf("source_timezone %q: %v", c.Pipeline.SourceTimezone, err))
	}

	return errs
}

func wrap(errs []error) error {
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
