package mint

import (
	"context"
	"sync"
	"time"
)

// Poller runs tick immediately and then every interval until tick returns
// true, Stop is called or the parent context ends.
type Poller struct {
	interval time.Duration
	tick     func(ctx context.Context) bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	ticks   int
}

// NewPoller creates a poller; it does nothing until Start
func NewPoller(interval time.Duration, tick func(ctx context.Context) bool) *Poller {
	return &Poller{
		interval: interval,
		tick:     tick,
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop once
func (p *Poller) Start(parent context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	defer p.cancel()

	if p.fire(ctx) {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil || p.fire(ctx) {
				return
			}
		}
	}
}

func (p *Poller) fire(ctx context.Context) bool {
	p.mu.Lock()
	p.ticks++
	p.mu.Unlock()
	return p.tick(ctx)
}

// Stop cancels the loop and waits for the current tick to return.
// It must not be called from inside tick.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.started = true
		close(p.done)
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-p.done
}

// Done is closed once the loop has exited
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Ticks returns how many times tick ran
func (p *Poller) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}
