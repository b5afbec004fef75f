// Package poller implements the scheduled-refresh loop used for chat and
// comment delivery. There is no push channel; consumers re-fetch on a fixed
// interval and stop when their context is cancelled.
package poller

import (
	"context"
	"log"
	"time"
)

// FetchFunc performs one refresh. It receives a context bounded by the
// poller's per-tick timeout.
type FetchFunc func(ctx context.Context) error

// Poller re-runs a fetch on a fixed interval. Ticks that arrive while a
// fetch is still in flight are skipped, so a slow backend never stacks up
// concurrent refreshes.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
	Name     string
	Fetch    FetchFunc
}

// New returns a poller with sane defaults applied.
func New(name string, interval time.Duration, fetch FetchFunc) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		Interval: interval,
		Timeout:  10 * time.Second,
		Name:     name,
		Fetch:    fetch,
	}
}

// Run blocks until ctx is cancelled, invoking Fetch once per interval. The
// first fetch happens immediately rather than after a full interval, so a
// freshly opened conversation is populated without delay. Fetches run
// serially; ticks that fire while a fetch is still in flight are dropped by
// the ticker, never queued. Fetch errors are logged and the loop continues.
func (p *Poller) Run(ctx context.Context) {
	tick := func() {
		tickCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		defer cancel()
		if err := p.Fetch(tickCtx); err != nil {
			log.Printf("poller %s: fetch failed: %v", p.Name, err)
		}
	}

	tick()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

// Start runs the poller on its own goroutine and returns immediately. The
// goroutine exits when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	go p.Run(ctx)
}
