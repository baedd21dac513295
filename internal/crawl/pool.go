package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sanskar800/zilow-scraper/internal/logger"
	"github.com/sanskar800/zilow-scraper/internal/models"
)

// DetailFunc fetches and extracts one agent's detail record.
type DetailFunc func(ctx context.Context, item models.ListItem) (models.DetailRecord, error)

// MapBounded fans items out to at most concurrency simultaneous detail
// operations, in fixed-size batches with a pacing delay between them, and
// returns one AgentRecord per input item in input order. A single item's
// failure (error or panic) degrades that item to an all-null detail record
// without touching its batch siblings.
func MapBounded(ctx context.Context, items []models.ListItem, concurrency int, policy *Policy, f DetailFunc) []models.AgentRecord {
	if concurrency < 1 {
		concurrency = 1
	}

	records := make([]models.AgentRecord, len(items))

	for start := 0; start < len(items); start += concurrency {
		end := start + concurrency
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		logger.Info("detail batch starting",
			"from", start+1,
			"to", end,
			"of", len(items))

		var wg sync.WaitGroup
		for i, item := range batch {
			wg.Add(1)
			go func(index int, item models.ListItem) {
				defer wg.Done()
				records[index] = fetchOne(ctx, item, f)
			}(start+i, item)
		}
		wg.Wait()

		if end < len(items) && policy != nil {
			if err := policy.BatchDelay(ctx); err != nil {
				// Canceled mid-run: remaining items degrade to null details
				for i := end; i < len(items); i++ {
					records[i] = models.Merge(items[i], models.DetailRecord{}, 0)
				}
				return records
			}
		}
	}

	return records
}

// fetchOne runs one detail operation, timing it and absorbing its failures.
func fetchOne(ctx context.Context, item models.ListItem, f DetailFunc) models.AgentRecord {
	started := time.Now()

	detail, err := runDetail(ctx, item, f)
	elapsed := time.Since(started).Seconds()

	if err != nil {
		logger.Warn("detail fetch degraded to empty record",
			"url", item.URL,
			"error", err)
		return models.Merge(item, models.DetailRecord{}, elapsed)
	}

	logger.Info("detail fetched", "url", item.URL, "seconds", fmt.Sprintf("%.1f", elapsed))
	return models.Merge(item, detail, elapsed)
}

// runDetail converts panics out of the browser layer into errors so one bad
// page cannot take down its batch.
func runDetail(ctx context.Context, item models.ListItem, f DetailFunc) (detail models.DetailRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			detail = models.DetailRecord{}
			err = fmt.Errorf("detail fetch panicked: %v", r)
		}
	}()
	return f(ctx, item)
}
