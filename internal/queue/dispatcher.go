package queue

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/movie-night/internal/logger"
)

// Sink receives events from a Dispatcher.
type Sink interface {
	Publish(ctx context.Context, ev VoteEvent) error
}

// Dispatcher decouples request handlers from the broker. NotifyVote never
// blocks: when the buffer is full the event is dropped with a warning.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	log     logger.Logger

	mu     sync.RWMutex
	closed bool
	events chan VoteEvent
	done   chan struct{}
}

func NewDispatcher(sink Sink, buffer int, timeout time.Duration, log logger.Logger) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	return &Dispatcher{
		sink:    sink,
		timeout: timeout,
		log:     log,
		events:  make(chan VoteEvent, buffer),
		done:    make(chan struct{}),
	}
}

// Start launches the publishing goroutine.
func (d *Dispatcher) Start() {
	go d.run()
}

func (d *Dispatcher) NotifyVote(ev VoteEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.events <- ev:
	default:
		d.log.Warn("notify: buffer full, dropping vote event", "movie_id", ev.MovieID, "action", ev.Action)
	}
}

// Close stops accepting events and waits until buffered events have been
// handed to the sink or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Publish(ctx, ev); err != nil {
			d.log.BusinessError("notify: publish vote event failed", err, "movie_id", ev.MovieID, "action", ev.Action)
		}
		cancel()
	}
}
