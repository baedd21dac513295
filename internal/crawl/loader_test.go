package crawl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sanskar800/zilow-scraper/internal/browser"
)

var (
	clearSnapshot = browser.Content{
		HTML:  `<html><body><script id="__NEXT_DATA__">{}</script></body></html>`,
		Title: "Real Estate Agent Reviews",
		Text:  "Jane Smith 4.9 stars",
	}
	challengedSnapshot = browser.Content{
		HTML:  "<html><body>Press &amp; Hold</body></html>",
		Title: "Access to this page has been denied",
		Text:  "Press & Hold to confirm you are a human",
	}
)

// fakeSession plays back snapshot states; the last state repeats.
type fakeSession struct {
	states      []browser.Content
	snaps       int
	closed      bool
	navigateErr error
}

func (s *fakeSession) state() browser.Content {
	i := s.snaps
	if i >= len(s.states) {
		i = len(s.states) - 1
	}
	return s.states[i]
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error { return s.navigateErr }

func (s *fakeSession) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	if !strings.Contains(s.state().HTML, "__NEXT_DATA__") {
		return errors.New("selector did not attach")
	}
	return nil
}

func (s *fakeSession) Evaluate(ctx context.Context, script string, out any) error { return nil }

func (s *fakeSession) Snapshot(ctx context.Context) (browser.Content, error) {
	snap := s.state()
	s.snaps++
	return snap, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeBrowser struct {
	session *fakeSession
}

func (b *fakeBrowser) NewSession() (browser.Session, error) { return b.session, nil }
func (b *fakeBrowser) Close() error                         { return nil }

func newTestLoader(session *fakeSession) *BrowserLoader {
	l := NewBrowserLoader(&fakeBrowser{session: session}, 50*time.Millisecond, 500*time.Millisecond)
	l.Detector.PollInterval = 10 * time.Millisecond
	return l
}

// --- BrowserLoader Tests ---

func TestBrowserLoader_Load_ClearPage(t *testing.T) {
	session := &fakeSession{states: []browser.Content{clearSnapshot}}
	l := newTestLoader(session)

	content, err := l.Load(context.Background(), testBaseURL)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if content.Title != clearSnapshot.Title {
		t.Errorf("Title = %q, want %q", content.Title, clearSnapshot.Title)
	}
	if !session.closed {
		t.Error("session not closed after load")
	}
}

func TestBrowserLoader_Load_ChallengeClears(t *testing.T) {
	session := &fakeSession{states: []browser.Content{
		challengedSnapshot,
		clearSnapshot,
	}}
	l := newTestLoader(session)

	content, err := l.Load(context.Background(), testBaseURL)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if content.Title != clearSnapshot.Title {
		t.Errorf("Title = %q, want the post-clearance snapshot", content.Title)
	}
}

func TestBrowserLoader_Load_ChallengeNeverClears(t *testing.T) {
	session := &fakeSession{states: []browser.Content{challengedSnapshot}}
	l := newTestLoader(session)

	content, err := l.Load(context.Background(), testBaseURL)
	if err != nil {
		t.Fatalf("Load error = %v, want best-effort snapshot", err)
	}
	if content.Title != challengedSnapshot.Title {
		t.Errorf("Title = %q, want the challenged snapshot back", content.Title)
	}
}

func TestBrowserLoader_Load_NavigateError(t *testing.T) {
	session := &fakeSession{
		states:      []browser.Content{clearSnapshot},
		navigateErr: errors.New("net::ERR_CONNECTION_RESET"),
	}
	l := newTestLoader(session)

	if _, err := l.Load(context.Background(), testBaseURL); err == nil {
		t.Error("Load should surface navigation errors")
	}
	if !session.closed {
		t.Error("session not closed after a failed navigation")
	}
}
