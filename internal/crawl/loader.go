package crawl

import (
	"context"
	"time"

	"github.com/sanskar800/zilow-scraper/internal/browser"
	"github.com/sanskar800/zilow-scraper/internal/challenge"
	"github.com/sanskar800/zilow-scraper/internal/extract"
	"github.com/sanskar800/zilow-scraper/internal/logger"
)

// Loader produces page snapshots for the crawl. The browser-backed loader
// gates every load on the challenge detector; fakes stand in for it in
// tests.
type Loader interface {
	Load(ctx context.Context, url string) (browser.Content, error)
}

// BrowserLoader loads each page in its own isolated browser session and
// runs the challenge gate before handing the snapshot back.
type BrowserLoader struct {
	Browser  browser.Browser
	Detector *challenge.Detector

	// AnchorWait bounds how long a loaded page gets for the extraction
	// anchor to attach before it is treated as challenged.
	AnchorWait time.Duration

	// ChallengeWait is the human-resolution horizon, minutes-scale.
	ChallengeWait time.Duration
}

// NewBrowserLoader wires a loader with the standard anchor.
func NewBrowserLoader(b browser.Browser, anchorWait, challengeWait time.Duration) *BrowserLoader {
	return &BrowserLoader{
		Browser:       b,
		Detector:      challenge.New(extract.DataAnchorSelector),
		AnchorWait:    anchorWait,
		ChallengeWait: challengeWait,
	}
}

// Load navigates an isolated session to url and returns a snapshot. A
// challenged page blocks on human clearance up to ChallengeWait, then
// proceeds with whatever state is available; the snapshot of a still-blocked
// page is a valid (if degraded) extraction input.
func (l *BrowserLoader) Load(ctx context.Context, url string) (browser.Content, error) {
	session, err := l.Browser.NewSession()
	if err != nil {
		return browser.Content{}, err
	}
	defer func() { _ = session.Close() }()

	if err := session.Navigate(ctx, url); err != nil {
		return browser.Content{}, err
	}

	anchorErr := session.WaitReady(ctx, l.Detector.Anchor, l.AnchorWait)

	snap, snapErr := session.Snapshot(ctx)
	challenged := anchorErr != nil || (snapErr == nil && l.Detector.IsChallenged(snap))

	if challenged {
		logger.Warn("page looks challenged", "url", url, "anchor_attached", anchorErr == nil)
		l.Detector.AwaitClearance(ctx, session, l.ChallengeWait)

		// Re-snapshot regardless of clearance outcome: best-effort
		// extraction beats dropping the page.
		if resnap, err := session.Snapshot(ctx); err == nil {
			return resnap, nil
		}
	}

	return snap, snapErr
}

// StaticLoader serves snapshots over plain HTTP, for server-rendered or
// saved pages. No challenge gate: a blocked response simply extracts to
// nothing.
type StaticLoader struct {
	Fetcher *browser.StaticFetcher
}

// Load fetches a snapshot without a browser session.
func (l *StaticLoader) Load(ctx context.Context, url string) (browser.Content, error) {
	return l.Fetcher.Fetch(ctx, url)
}
