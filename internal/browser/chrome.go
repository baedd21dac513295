package browser

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/sanskar800/zilow-scraper/internal/logger"
)

// Chrome is a chromedp-backed Browser. One exec allocator is shared for the
// whole run; every Session gets its own browser context so cookies, headers
// and in-page state stay isolated between concurrent fetches.
type Chrome struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewChrome starts the shared allocator and verifies a Chrome binary exists.
func NewChrome(cfg Config) (*Chrome, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = DefaultConfig().Width, DefaultConfig().Height
	}

	var opts []chromedp.ExecAllocatorOption
	if cfg.Stealth {
		opts = append(chromedp.DefaultExecAllocatorOptions[:], StealthExecAllocatorOptions()...)
	} else {
		opts = append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
		)
	}
	opts = append(opts,
		chromedp.WindowSize(cfg.Width, cfg.Height),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	chromePath := FindChromePath()
	if chromePath == "" {
		return nil, fmt.Errorf("%w: no Chrome binary found", ErrBrowserUnavailable)
	}
	opts = append(opts, chromedp.ExecPath(chromePath))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("browser allocator created",
		"stealth", cfg.Stealth,
		"headless", cfg.Headless,
		"user_agent", cfg.UserAgent,
		"timeout", cfg.Timeout)

	return &Chrome{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancelAlloc,
	}, nil
}

// NewSession opens an isolated browser context.
func (c *Chrome) NewSession() (Session, error) {
	sessionCtx, cancel := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	actions := []chromedp.Action{}
	if c.config.Stealth {
		// Inject before any page scripts run
		actions = append(actions, InjectStealthScript())
	}
	if len(c.config.Cookies) > 0 {
		actions = append(actions, setCookies(c.config.Cookies))
	}
	if len(actions) > 0 {
		startCtx, cancelStart := context.WithTimeout(sessionCtx, c.config.Timeout)
		defer cancelStart()
		if err := chromedp.Run(startCtx, actions...); err != nil {
			cancel()
			return nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
		}
	}

	return &chromeSession{
		ctx:     sessionCtx,
		cancel:  cancel,
		timeout: c.config.Timeout,
	}, nil
}

// Close shuts the shared allocator down.
func (c *Chrome) Close() error {
	if c.cancelCtx != nil {
		c.cancelCtx()
	}
	return nil
}

// chromeSession implements Session on a dedicated chromedp context.
type chromeSession struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		// WaitVisible has a known infinite-polling bug, WaitReady is reliable
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) Evaluate(ctx context.Context, script string, out any) error {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

func (s *chromeSession) Snapshot(ctx context.Context) (Content, error) {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	var html, title, loc string
	err := chromedp.Run(runCtx,
		chromedp.Location(&loc),
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
	)
	if err != nil {
		return Content{}, fmt.Errorf("snapshot: %w", err)
	}

	content := Content{
		URL:       loc,
		HTML:      html,
		Title:     title,
		FetchedAt: time.Now(),
	}
	if err := parseContent(&content); err != nil {
		return content, fmt.Errorf("parse snapshot: %w", err)
	}
	return content, nil
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}

// runContext derives a bounded context for one browser operation. The
// caller's deadline applies when it is sooner than the session default.
func (s *chromeSession) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	return context.WithTimeout(s.ctx, timeout)
}

// setCookies preloads cookies into the session before first navigation.
func setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		params := make([]*network.CookieParam, 0, len(cookies))
		for _, ck := range cookies {
			path := ck.Path
			if path == "" {
				path = "/"
			}
			params = append(params, &network.CookieParam{
				Name:   ck.Name,
				Value:  ck.Value,
				Domain: ck.Domain,
				Path:   path,
			})
		}
		return network.SetCookies(params).Do(ctx)
	})
}

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	// macOS paths
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	// Common Linux paths
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
}

// FindChromePath searches for a Chrome/Chromium binary on the system.
// It first tries PATH lookup, then checks common installation locations.
// Returns empty string if no Chrome binary is found.
func FindChromePath() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found - browser sessions cannot start")
	return ""
}
