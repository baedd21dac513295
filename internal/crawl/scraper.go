// Package crawl implements the agent crawl: sequential list pagination,
// challenge-gated page loads, and bounded-concurrency detail fetching.
package crawl

import (
	"context"

	"github.com/sanskar800/zilow-scraper/internal/extract"
	"github.com/sanskar800/zilow-scraper/internal/logger"
	"github.com/sanskar800/zilow-scraper/internal/models"
)

// Options bounds one run of the scraper.
type Options struct {
	BaseURL     string
	Limit       int
	Concurrency int
	RepeatStop  bool
}

// Scraper composes the pagination controller and the detail pool over a
// shared loader.
type Scraper struct {
	loader Loader
	policy *Policy
	opts   Options
}

// NewScraper wires a scraper over the given loader and pacing policy.
func NewScraper(loader Loader, policy *Policy, opts Options) *Scraper {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Scraper{loader: loader, policy: policy, opts: opts}
}

// Run walks the listing, then fans detail fetches out over the discovered
// items. The result preserves list-discovery order and never exceeds the
// configured limit; it may be empty, and partial records are kept rather
// than dropped.
func (s *Scraper) Run(ctx context.Context) []models.AgentRecord {
	controller := NewController(s.loader, s.policy, s.opts.BaseURL)
	controller.RepeatStop = s.opts.RepeatStop

	items := controller.CrawlList(ctx, s.opts.Limit)
	logger.Info("list crawl complete", "agents", len(items))

	if len(items) == 0 {
		return nil
	}

	return MapBounded(ctx, items, s.opts.Concurrency, s.policy, s.fetchDetail)
}

// fetchDetail loads one agent's profile page and extracts its stats.
func (s *Scraper) fetchDetail(ctx context.Context, item models.ListItem) (models.DetailRecord, error) {
	content, err := s.loader.Load(ctx, item.URL)
	if err != nil {
		return models.DetailRecord{}, err
	}
	return extract.Detail(content), nil
}
