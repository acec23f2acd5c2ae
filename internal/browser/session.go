package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/ff-calendar/internal/logger"
)

const (
	// PageLoadTimeout bounds a single navigation
	PageLoadTimeout = 75 * time.Second
	// ActionTimeout bounds evaluations and screenshots
	ActionTimeout = 15 * time.Second
)

// hides the automation flag from page scripts
const maskWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// Options configures the Chrome process
type Options struct {
	UserDataDir    string
	ProfileDir     string
	Headless       bool
	Proxy          string
	BlockResources bool
	UserAgent      string
}

// Session is one browser tab
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New launches Chrome and opens a tab. Close must be called to stop Chrome.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.UserDataDir != "" {
		if err := CheckProfileFree(ctx, opts.UserDataDir); err != nil {
			return nil, err
		}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logger.Debug("chrome", logger.Fields{"detail": fmt.Sprintf(format, args...)})
	}))

	s := &Session{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}

	if opts.BlockResources {
		s.listenForBlocking()
	}

	// the first Run starts the browser; it must use the tab context itself
	setup := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(maskWebdriver).Do(ctx)
			return err
		}),
	}
	if opts.BlockResources {
		setup = append(setup, fetch.Enable())
	}

	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx, setup...) }()

	select {
	case err := <-started:
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("starting chrome: %w", err)
		}
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}

	return s, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	o := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	o = append(o,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(1400, 1000),
		chromedp.Flag("lang", "en-US,en"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserDataDir != "" {
		o = append(o, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.ProfileDir != "" {
		o = append(o, chromedp.Flag("profile-directory", opts.ProfileDir))
	}
	if opts.Proxy != "" {
		o = append(o, chromedp.ProxyServer(opts.Proxy))
	}
	if opts.BlockResources {
		o = append(o, chromedp.Flag("disable-extensions", true))
	}
	if opts.UserAgent != "" {
		o = append(o, chromedp.UserAgent(opts.UserAgent))
	}
	return o
}

// listenForBlocking answers every paused request: blocked resources fail,
// everything else continues.
func (s *Session) listenForBlocking() {
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		e, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(s.ctx)
			if c == nil || c.Target == nil {
				return
			}
			ectx := cdp.WithExecutor(s.ctx, c.Target)

			var err error
			if ShouldBlock(e.ResourceType, e.Request.URL) {
				err = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
			} else {
				err = fetch.ContinueRequest(e.RequestID).Do(ectx)
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Debug("Request interception failed", logger.Fields{"url": e.Request.URL, "error": err.Error()})
			}
		}()
	})
}

// run executes actions on the tab, bounded by timeout and cancelled with ctx
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, PageLoadTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// Evaluate runs a JavaScript expression and decodes its result into out
func (s *Session) Evaluate(ctx context.Context, expression string, out interface{}) error {
	if err := s.run(ctx, ActionTimeout, chromedp.Evaluate(expression, out)); err != nil {
		return fmt.Errorf("evaluating script: %w", err)
	}
	return nil
}

// Screenshot captures the visible viewport as PNG
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, ActionTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}

// Close stops the tab and the Chrome process
func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}
