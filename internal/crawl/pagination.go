package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sanskar800/zilow-scraper/internal/browser"
	"github.com/sanskar800/zilow-scraper/internal/extract"
	"github.com/sanskar800/zilow-scraper/internal/logger"
	"github.com/sanskar800/zilow-scraper/internal/models"
)

// crawlState carries one iteration of the list crawl: current page,
// accumulated items keyed by URL, and the termination flag. Threading it
// explicitly keeps the loop unit-testable against a fake loader.
type crawlState struct {
	page  int
	items []models.ListItem
	seen  map[string]bool
	done  bool
}

// Controller drives the list crawl: page URL construction, challenge-gated
// loads, extraction, dedup and termination.
type Controller struct {
	Loader  Loader
	Policy  *Policy
	BaseURL string

	// RepeatStop stops the crawl when a page yields only already-seen
	// URLs. Defends against a site that echoes its last page indefinitely
	// instead of signaling end-of-results; configurable because that
	// behavior is observed, not contractual.
	RepeatStop bool

	// extractList is swappable for tests; defaults to extract.List.
	extractList func(browser.Content) []models.ListItem
}

// NewController builds a controller over the given loader and pacing.
func NewController(loader Loader, policy *Policy, baseURL string) *Controller {
	return &Controller{
		Loader:      loader,
		Policy:      policy,
		BaseURL:     baseURL,
		RepeatStop:  true,
		extractList: extract.List,
	}
}

// PageURL computes the deterministic URL for a 1-based page index: page 1
// is the bare base URL, later pages append the page query parameter.
func (c *Controller) PageURL(page int) string {
	if page <= 1 {
		return c.BaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Sprintf("%s?page=%d", c.BaseURL, page)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// CrawlList walks the paginated listing until limit items accumulate, a page
// yields nothing (or nothing new), or ctx is canceled. Page failures count
// as empty pages; the crawl always returns what it accumulated.
func (c *Controller) CrawlList(ctx context.Context, limit int) []models.ListItem {
	if limit <= 0 {
		return nil
	}

	state := crawlState{page: 1, seen: make(map[string]bool)}

	for !state.done && len(state.items) < limit {
		if ctx.Err() != nil {
			break
		}

		pageURL := c.PageURL(state.page)
		logger.Info("loading list page", "page", state.page, "url", pageURL)

		raw := c.loadPage(ctx, pageURL)

		if len(raw) == 0 {
			// End of results, or a blocked/failed page
			logger.Info("list page yielded no items - stopping", "page", state.page)
			state.done = true
			break
		}

		added := 0
		for _, item := range raw {
			if state.seen[item.URL] {
				continue
			}
			state.seen[item.URL] = true
			state.items = append(state.items, item)
			added++
			if len(state.items) >= limit {
				break
			}
		}

		logger.Info("list page extracted",
			"page", state.page,
			"raw", len(raw),
			"new", added,
			"total", len(state.items))

		if added == 0 && c.RepeatStop {
			// The site is echoing a page we already consumed
			logger.Info("list page repeated known items - stopping", "page", state.page)
			state.done = true
			break
		}
		if len(state.items) >= limit {
			state.done = true
			break
		}

		state.page++
		if c.Policy != nil {
			if err := c.Policy.PageDelay(ctx); err != nil {
				break
			}
		}
	}

	return state.items
}

// loadPage loads and extracts one list page, converting every failure into
// an empty result so the loop's termination rules decide what happens next.
func (c *Controller) loadPage(ctx context.Context, pageURL string) []models.ListItem {
	content, err := c.Loader.Load(ctx, pageURL)
	if err != nil {
		logger.Warn("list page load failed", "url", pageURL, "error", err)
		return nil
	}
	return c.extractList(content)
}
