// Package browser abstracts the headless-browsing capability the crawl
// drives. Implementations provide isolated sessions so cookies and in-page
// state cannot leak between concurrently fetched pages.
package browser

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrBrowserUnavailable indicates no usable browser could be started. This is
// the one failure class that aborts a run instead of degrading it.
var ErrBrowserUnavailable = errors.New("browser unavailable")

// Content is a point-in-time snapshot of a loaded page.
type Content struct {
	URL       string
	HTML      string
	Text      string // Extracted readable text
	Title     string
	FetchedAt time.Time
}

// Session is one isolated browsing context bound to a single navigation unit
// (a list page or one agent's detail page).
type Session interface {
	// Navigate loads the URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until the selector attaches, or the timeout elapses.
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error

	// Evaluate runs a script in page context and unmarshals the result into out.
	Evaluate(ctx context.Context, script string, out any) error

	// Snapshot captures the current HTML, title and visible text.
	Snapshot(ctx context.Context) (Content, error)

	// Close releases the session's browsing context.
	Close() error
}

// Browser creates isolated sessions off a shared long-lived instance.
type Browser interface {
	NewSession() (Session, error)
	Close() error
}

// Config holds browser-level settings shared by all sessions.
type Config struct {
	UserAgent string
	Headless  bool
	Stealth   bool // Apply anti-bot evasion flags and script
	Timeout   time.Duration
	Width     int
	Height    int

	// Cookies are preloaded into every new session. Lets a clearance
	// cookie obtained by hand carry across runs.
	Cookies []Cookie
}

// Cookie is a preset cookie applied before the first navigation.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Headless:  true,
		Stealth:   true,
		Timeout:   30 * time.Second,
		Width:     1920,
		Height:    1080,
	}
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// parseContent fills Text and Title from the snapshot HTML.
func parseContent(content *Content) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return err
	}

	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	// Remove script and style elements
	doc.Find("script, style, noscript, iframe, svg").Remove()

	var textParts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		text := cleanText(s.Text())
		if text != "" {
			textParts = append(textParts, text)
		}
	})
	content.Text = strings.Join(textParts, "\n")

	return nil
}

// cleanText normalizes whitespace in text.
func cleanText(s string) string {
	parts := strings.Fields(strings.TrimSpace(s))
	return strings.Join(parts, " ")
}
