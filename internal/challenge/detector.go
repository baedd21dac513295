// Package challenge detects anti-automation interstitials and waits for a
// human operator to resolve them.
package challenge

import (
	"context"
	"strings"
	"time"

	"github.com/sanskar800/zilow-scraper/internal/browser"
	"github.com/sanskar800/zilow-scraper/internal/logger"
)

// Detector classifies loaded pages as clear or challenged, and exposes a
// bounded wait for out-of-band human resolution. State is re-evaluated on
// every navigation; nothing is persisted.
type Detector struct {
	// Anchor is the selector whose attachment signals normal page content
	// (the embedded data script on both list and detail pages).
	Anchor string

	// PollInterval is how long each clearance poll waits for the anchor.
	PollInterval time.Duration
}

// New creates a detector for pages anchored on the given selector.
func New(anchor string) *Detector {
	return &Detector{
		Anchor:       anchor,
		PollInterval: 5 * time.Second,
	}
}

// Classify checks title and page text for challenge markers and returns the
// challenge type, or "" when the page looks clear.
func Classify(title, text string) string {
	titleLower := strings.ToLower(title)
	textLower := strings.ToLower(text)

	// Interactive hold-to-confirm verification
	if strings.Contains(textLower, "press & hold") ||
		strings.Contains(textLower, "press and hold") ||
		strings.Contains(textLower, "hold to confirm") {
		return "press-and-hold"
	}

	// Cloudflare interstitials
	if strings.Contains(titleLower, "just a moment") ||
		strings.Contains(titleLower, "attention required") ||
		strings.Contains(textLower, "cf-challenge") {
		return "cloudflare"
	}

	// CAPTCHA widgets
	if strings.Contains(textLower, "captcha") || strings.Contains(titleLower, "captcha") {
		return "captcha"
	}

	// Generic bot interception pages
	if strings.Contains(titleLower, "robot") ||
		strings.Contains(titleLower, "access denied") ||
		strings.Contains(titleLower, "denied") ||
		strings.Contains(textLower, "robot or human") ||
		strings.Contains(textLower, "verify you are a human") ||
		strings.Contains(textLower, "challenge") {
		return "anti-bot"
	}

	return ""
}

// IsChallenged reports whether the snapshot looks like a challenge page.
func (d *Detector) IsChallenged(content browser.Content) bool {
	return Classify(content.Title, content.Text) != ""
}

// AwaitClearance suspends automated flow and polls for the extraction anchor
// to attach, giving a human operator up to maxWait to resolve an interactive
// challenge out-of-band. Returns true once the page reads clear; false when
// maxWait elapses, after which the caller proceeds with best-effort
// extraction rather than aborting.
func (d *Detector) AwaitClearance(ctx context.Context, session browser.Session, maxWait time.Duration) bool {
	deadline := time.Now().Add(maxWait)
	logger.Warn("challenge detected - waiting for human resolution", "max_wait", maxWait)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return false
		}

		poll := d.PollInterval
		if remain := time.Until(deadline); remain < poll {
			poll = remain
		}

		if err := session.WaitReady(ctx, d.Anchor, poll); err != nil {
			// Anchor still absent, keep polling
			continue
		}

		snap, err := session.Snapshot(ctx)
		if err != nil {
			continue
		}
		if kind := Classify(snap.Title, snap.Text); kind != "" {
			logger.Debug("challenge still present", "type", kind)
			time.Sleep(poll)
			continue
		}

		logger.Info("challenge cleared")
		return true
	}

	logger.Warn("challenge wait timed out - proceeding best-effort", "max_wait", maxWait)
	return false
}
