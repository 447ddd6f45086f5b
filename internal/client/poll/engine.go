// Package poll runs a fetch immediately and then on a fixed interval until
// the returned handle is stopped.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = 10 * time.Second

// FetchFunc performs one poll. A returned error is logged and the next tick
// retries at the same interval.
type FetchFunc func(ctx context.Context) error

type Engine struct {
	interval time.Duration
	fetch    FetchFunc
	log      zerolog.Logger
}

func New(interval time.Duration, fetch FetchFunc, log zerolog.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{interval: interval, fetch: fetch, log: log}
}

// Handle controls one running poll loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the loop and waits for it to exit. No fetch starts after Stop
// returns. Calling Stop more than once is safe.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Polling reports whether the loop is still running.
func (h *Handle) Polling() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Start launches the loop. It also ends when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		e.run(ctx)
	}()
	return h
}

func (e *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.log.Debug().Dur("interval", e.interval).Msg("polling started")
	e.once(ctx)

	for {
		select {
		case <-ctx.Done():
			e.log.Debug().Msg("polling stopped")
			return
		case <-ticker.C:
			// A tick and a cancellation can be ready together.
			if ctx.Err() != nil {
				continue
			}
			e.once(ctx)
		}
	}
}

func (e *Engine) once(ctx context.Context) {
	if err := e.fetch(ctx); err != nil && ctx.Err() == nil {
		e.log.Warn().Err(err).Msg("poll failed")
	}
}
