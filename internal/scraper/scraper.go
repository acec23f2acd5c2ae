package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/pfrederiksen/ff-calendar/internal/config"
	"github.com/pfrederiksen/ff-calendar/internal/logger"
	"github.com/pfrederiksen/ff-calendar/internal/month"
	"github.com/pfrederiksen/ff-calendar/internal/storage"
)

var (
	// ErrExtractTimeout means the calendar state never appeared and no
	// challenge was detected
	ErrExtractTimeout = errors.New("calendar data did not appear in time")
	// ErrChallengeUnresolved means a bot-challenge was shown and the retry
	// after the human prompt still found no data
	ErrChallengeUnresolved = errors.New("bot challenge not resolved")
	// ErrNavigation means the month page could not be loaded
	ErrNavigation = errors.New("page load failed")
	// ErrContractDrift means the page state exists but its shape changed
	ErrContractDrift = errors.New("calendar state no longer carries day lists")
)

// IsSoft reports whether err only fails the current month
func IsSoft(err error) bool {
	return errors.Is(err, ErrExtractTimeout) ||
		errors.Is(err, ErrChallengeUnresolved) ||
		errors.Is(err, ErrNavigation)
}

// Page is the browser capability the Collector needs
type Page interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(ctx context.Context, expression string, out interface{}) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// Outcome is the final state of one month
type Outcome string

const (
	Skipped Outcome = "skipped"
	Saved   Outcome = "saved"
	Failed  Outcome = "failed"
)

// Options holds the Collector's URL and timing parameters
type Options struct {
	BaseURL       string
	MaxWait       time.Duration
	PostLoadDelay time.Duration
	PollInterval  time.Duration
	BetweenPages  time.Duration
	Jitter        time.Duration
}

// OptionsFromConfig copies the collector settings out of cfg
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		BaseURL:       cfg.BaseURL,
		MaxWait:       cfg.Timing.MaxWait.D(),
		PostLoadDelay: cfg.Timing.PostLoadDelay.D(),
		PollInterval:  cfg.Timing.PollInterval.D(),
		BetweenPages:  cfg.Timing.BetweenPages.D(),
		Jitter:        cfg.Timing.Jitter.D(),
	}
}

// Collector ensures that raw month documents exist on disk
type Collector struct {
	page     Page
	store    *storage.Storage
	prompter Prompter
	opts     Options
	limiter  *rate.Limiter
}

// New creates a Collector. Fetches are spaced at least opts.BetweenPages apart.
func New(page Page, store *storage.Storage, prompter Prompter, opts Options) *Collector {
	limit := rate.Inf
	if opts.BetweenPages > 0 {
		limit = rate.Every(opts.BetweenPages)
	}
	return &Collector{
		page:     page,
		store:    store,
		prompter: prompter,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// EnsureMonth makes sure the document for key exists. An existing document
// returns Skipped without any page activity. Soft failures return Failed with
// an error matching IsSoft; anything else is fatal to the run.
func (c *Collector) EnsureMonth(ctx context.Context, key month.Key) (Outcome, error) {
	exists, err := c.store.Exists(key)
	if err != nil {
		return Failed, err
	}
	if exists {
		return Skipped, nil
	}

	if err := c.pace(ctx); err != nil {
		return Failed, err
	}

	url := key.URL(c.opts.BaseURL)
	logger.Info("Loading month", logger.Fields{"month": key.String(), "url": url})

	if err := c.page.Navigate(ctx, url); err != nil {
		if ctx.Err() != nil {
			return Failed, ctx.Err()
		}
		return Failed, fmt.Errorf("%s: %w: %v", key, ErrNavigation, err)
	}
	if err := sleep(ctx, c.opts.PostLoadDelay); err != nil {
		return Failed, err
	}

	found, err := c.waitForDays(ctx)
	if err != nil {
		return Failed, fmt.Errorf("%s: %w", key, err)
	}

	if !found.ready() {
		challenged, err := c.challenged(ctx, key)
		if err != nil {
			return Failed, err
		}
		if !challenged {
			return Failed, fmt.Errorf("%s: %w after %s", key, ErrExtractTimeout, c.opts.MaxWait)
		}

		if found, err = c.resolveChallenge(ctx, key); err != nil {
			return Failed, err
		}
	}

	if err := c.store.Save(key, found.Days); err != nil {
		return Failed, fmt.Errorf("%s: %w", key, err)
	}
	logger.Info("Saved month", logger.Fields{"month": key.String(), "path": c.store.Path(key)})
	return Saved, nil
}

// waitForDays polls the page until a non-empty day list appears or MaxWait
// elapses. Evaluation errors while the page settles are retried.
func (c *Collector) waitForDays(ctx context.Context) (extraction, error) {
	deadline := time.Now().Add(c.opts.MaxWait)
	var last extraction

	for {
		var raw string
		err := c.page.Evaluate(ctx, extractScript, &raw)
		switch {
		case ctx.Err() != nil:
			return extraction{}, ctx.Err()
		case err != nil:
			logger.Debug("Calendar state not readable yet", logger.Fields{"error": err.Error()})
		default:
			found, err := decodeExtraction(raw)
			if err != nil {
				logger.Debug("Calendar state not decodable yet", logger.Fields{"error": err.Error()})
				break
			}
			if found.ready() {
				return found, nil
			}
			last = found
		}

		if !time.Now().Before(deadline) {
			break
		}
		if err := sleep(ctx, c.opts.PollInterval); err != nil {
			return extraction{}, err
		}
	}

	if last.drifted() {
		rendered, err := c.calendarRendered(ctx)
		if err != nil {
			return extraction{}, err
		}
		if rendered {
			return last, ErrContractDrift
		}
		// other component states loaded before the calendar; treat as a timeout
		logger.Debug("Calendar state missing and grid not rendered", logger.Fields{"entries": last.Entries})
	}
	return last, nil
}

// calendarRendered reports whether the page shows the calendar grid. An
// unreadable page counts as not rendered.
func (c *Collector) calendarRendered(ctx context.Context) (bool, error) {
	var html string
	if err := c.page.Evaluate(ctx, htmlScript, &html); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	rendered, err := HasCalendar(html)
	if err != nil {
		return false, nil
	}
	return rendered, nil
}

// challenged inspects the current page for bot-challenge markers
func (c *Collector) challenged(ctx context.Context, key month.Key) (bool, error) {
	var html string
	if err := c.page.Evaluate(ctx, htmlScript, &html); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		logger.Warn("Could not read page HTML", logger.Fields{"month": key.String(), "error": err.Error()})
		return false, nil
	}

	found, marker, err := DetectChallenge(html)
	if err != nil {
		logger.Warn("Could not parse page HTML", logger.Fields{"month": key.String(), "error": err.Error()})
		return false, nil
	}
	if found {
		logger.Warn("Bot challenge detected", logger.Fields{"month": key.String(), "marker": marker})
	}
	return found, nil
}

// resolveChallenge saves a screenshot, waits for a human and retries the
// extraction once
func (c *Collector) resolveChallenge(ctx context.Context, key month.Key) (extraction, error) {
	logger.IncrCounter("challenges")

	png, err := c.page.Screenshot(ctx)
	if err != nil {
		logger.Warn("Screenshot failed", logger.Fields{"month": key.String(), "error": err.Error()})
	} else if path, err := c.store.SaveScreenshot(key, png); err != nil {
		logger.Warn("Screenshot not saved", logger.Fields{"month": key.String(), "error": err.Error()})
	} else {
		logger.Warn("Screenshot saved", logger.Fields{"month": key.String(), "path": path})
	}

	msg := fmt.Sprintf("Bot check on %s: solve it in the browser, then press Enter to continue...", key)
	if err := c.prompter.Wait(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return extraction{}, ctx.Err()
		}
		return extraction{}, fmt.Errorf("%s: %w: %v", key, ErrChallengeUnresolved, err)
	}

	found, err := c.waitForDays(ctx)
	if err != nil {
		return extraction{}, fmt.Errorf("%s: %w", key, err)
	}
	if !found.ready() {
		return extraction{}, fmt.Errorf("%s: %w: no data after retry", key, ErrChallengeUnresolved)
	}
	return found, nil
}

// pace sleeps a random share of the jitter and then waits for the limiter,
// so consecutive fetches start at least BetweenPages apart
func (c *Collector) pace(ctx context.Context) error {
	if c.opts.Jitter > 0 {
		if err := sleep(ctx, time.Duration(rand.Int63n(int64(c.opts.Jitter)))); err != nil {
			return err
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Summary counts month outcomes for one run
type Summary struct {
	Total    int           `json:"total"`
	Skipped  int           `json:"skipped"`
	Saved    int           `json:"saved"`
	Failed   int           `json:"failed"`
	Failures []Failure     `json:"failures,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Failure records why a month failed
type Failure struct {
	Month  string `json:"month"`
	Reason string `json:"reason"`
}

// Run ensures every key in order. Soft failures are logged and the run moves
// on; fatal errors and cancellation stop it between months.
func (c *Collector) Run(ctx context.Context, keys []month.Key) (Summary, error) {
	start := time.Now()
	sum := Summary{Total: len(keys)}

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, err
		}

		began := time.Now()
		outcome, err := c.EnsureMonth(ctx, key)
		fields := logger.Fields{"month": key.String(), "n": fmt.Sprintf("%d/%d", i+1, len(keys))}

		switch {
		case err != nil && !IsSoft(err):
			sum.Elapsed = time.Since(start)
			return sum, err
		case err != nil:
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{Month: key.String(), Reason: err.Error()})
			logger.IncrCounter("months_failed")
			logger.Error("Month failed", fields, err)
		case outcome == Skipped:
			sum.Skipped++
			logger.IncrCounter("months_skipped")
			logger.Info("Skip (exists)", fields)
		default:
			sum.Saved++
			logger.IncrCounter("months_saved")
			logger.RecordTiming("month_fetch", time.Since(began))
		}
	}

	sum.Elapsed = time.Since(start)
	logger.Info("Collection finished", logger.Fields{
		"saved":   sum.Saved,
		"skipped": sum.Skipped,
		"failed":  sum.Failed,
	})
	return sum, nil
}
