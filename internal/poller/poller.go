// Package poller refreshes system health and metrics in the background.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"teamplanner/internal/metrics"
)

const (
	DefaultInterval = 30 * time.Second
	defaultTimeout  = 20 * time.Second
)

// Refresher is the subset of the dispatcher the poller drives. Failures must
// not reach the user-visible error field.
type Refresher interface {
	PollHealth(ctx context.Context) error
	PollMetrics(ctx context.Context) error
}

// Handle identifies one running poll loop.
type Handle struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

type Poller struct {
	target   Refresher
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	active *Handle
}

func New(target Refresher, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := defaultTimeout
	if interval < timeout {
		timeout = interval
	}
	return &Poller{target: target, interval: interval, timeout: timeout, logger: logger.With().Str("component", "poller").Logger()}
}

// Start refreshes immediately and then on every interval until Stop is
// called or ctx is done. Calling Start while a loop is live returns the
// existing handle.
func (p *Poller) Start(ctx context.Context) *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		select {
		case <-p.active.done:
		default:
			return p.active
		}
	}
	h := &Handle{stop: make(chan struct{}), done: make(chan struct{})}
	p.active = h
	go p.run(ctx, h)
	return h
}

// Stop ends the loop behind h. Refreshes already in flight finish on
// their own. Safe to call with nil or more than once.
func (p *Poller) Stop(h *Handle) {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() { close(h.stop) })
	p.mu.Lock()
	if p.active == h {
		p.active = nil
	}
	p.mu.Unlock()
}

func (p *Poller) run(ctx context.Context, h *Handle) {
	defer close(h.done)
	p.logger.Debug().Dur("interval", p.interval).Msg("polling started")
	// ticks outlive Stop and ctx cancellation; only the timer is cancelable
	tickCtx := context.WithoutCancel(ctx)
	go p.tick(tickCtx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			p.logger.Debug().Msg("polling stopped")
			return
		case <-ctx.Done():
			p.logger.Debug().Msg("polling context done")
			return
		case <-ticker.C:
			go p.tick(tickCtx)
		}
	}
}

func (p *Poller) tick(parent context.Context) {
	metrics.PollTicks.Inc()
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()
	var g errgroup.Group
	g.Go(func() error { return p.refresh(ctx, "health", p.target.PollHealth) })
	g.Go(func() error { return p.refresh(ctx, "metrics", p.target.PollMetrics) })
	_ = g.Wait()
}

// refresh never returns its failure so one kind cannot abort the other.
func (p *Poller) refresh(ctx context.Context, kind string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		metrics.PollFailures.WithLabelValues(kind).Inc()
		p.logger.Warn().Err(err).Str("kind", kind).Msg("background refresh failed")
	}
	return nil
}
