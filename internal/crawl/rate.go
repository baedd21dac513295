package crawl

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Policy decides inter-request pacing. Page delays space sequential list
// navigations; batch delays are shorter and only break up concurrency bursts
// between detail batches.
type Policy struct {
	PageDelayMin  time.Duration
	PageDelayMax  time.Duration
	BatchDelayMin time.Duration
	BatchDelayMax time.Duration

	limiter *rate.Limiter
}

// DefaultPolicy returns the pacing used against the live site.
func DefaultPolicy() *Policy {
	return NewPolicy(3*time.Second, 6*time.Second, 1*time.Second, 2*time.Second)
}

// NewPolicy builds a policy with a token-bucket floor at the minimum page
// delay, so jitter can never compress sequential navigations below it.
func NewPolicy(pageMin, pageMax, batchMin, batchMax time.Duration) *Policy {
	if pageMax < pageMin {
		pageMax = pageMin
	}
	if batchMax < batchMin {
		batchMax = batchMin
	}

	limit := rate.Inf
	if pageMin > 0 {
		limit = rate.Every(pageMin)
	}

	return &Policy{
		PageDelayMin:  pageMin,
		PageDelayMax:  pageMax,
		BatchDelayMin: batchMin,
		BatchDelayMax: batchMax,
		limiter:       rate.NewLimiter(limit, 1),
	}
}

// PageDelay blocks between sequential list-page navigations.
func (p *Policy) PageDelay(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return sleep(ctx, jitter(p.PageDelayMin, p.PageDelayMax))
}

// BatchDelay blocks between detail batches.
func (p *Policy) BatchDelay(ctx context.Context) error {
	return sleep(ctx, jitter(p.BatchDelayMin, p.BatchDelayMax))
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
