package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Dispatcher delivers events. Dispatch never fails and never blocks on slow
// handlers; delivery problems are logged.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// Handler consumes typed events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (fn HandlerFunc) Handle(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// SinkHandler forwards events to an envelope sink.
func SinkHandler(sink interfaces.EventSink, clock func() time.Time) Handler {
	if clock == nil {
		clock = time.Now
	}
	return HandlerFunc(func(ctx context.Context, event Event) error {
		return sink.Publish(ctx, Envelope(event, clock()))
	})
}

// Observer is notified of every delivery outcome.
type Observer interface {
	ObserveEvent(name, outcome string)
}

// Outcomes reported to the Observer.
const (
	OutcomeDelivered = "success"
	OutcomeFailed    = "error"
	OutcomeDropped   = "dropped"
)

// Config tunes a Bus.
type Config struct {
	// Async delivers from a background goroutine. When false, handlers run
	// inline on the dispatching goroutine after the write has committed.
	Async bool
	// Buffer is the async queue size; events are dropped when it is full.
	Buffer int
}

const defaultBuffer = 256

// Bus fans events out to handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   interfaces.Logger
	observer Observer

	async  bool
	queue  chan queued
	done   chan struct{}
	closed bool
	once   sync.Once
}

type queued struct {
	ctx   context.Context
	event Event
}

// BusOption configures a Bus.
type BusOption func(*Bus)

func WithLogger(logger interfaces.Logger) BusOption {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithObserver(observer Observer) BusOption {
	return func(b *Bus) {
		b.observer = observer
	}
}

// NewBus builds a bus. An async bus starts its worker immediately and must
// be closed to flush pending events.
func NewBus(cfg Config, opts ...BusOption) *Bus {
	b := &Bus{logger: logging.NoOp(), async: cfg.Async}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.async {
		size := cfg.Buffer
		if size <= 0 {
			size = defaultBuffer
		}
		b.queue = make(chan queued, size)
		b.done = make(chan struct{})
		go b.run()
	}
	return b
}

// Subscribe registers a handler for every event.
func (b *Bus) Subscribe(handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Dispatch delivers event to every handler.
func (b *Bus) Dispatch(ctx context.Context, event Event) {
	if b == nil || event == nil {
		return
	}
	if !b.async {
		b.deliver(ctx, event)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.drop(event, "bus closed")
		return
	}
	// Handlers must not see a cancelled request context after the caller
	// has returned.
	item := queued{ctx: context.WithoutCancel(ctxOrBackground(ctx)), event: event}
	select {
	case b.queue <- item:
	default:
		b.drop(event, "queue full")
	}
}

// Close stops accepting events and waits for queued ones to be delivered or
// for ctx to expire.
func (b *Bus) Close(ctx context.Context) error {
	if b == nil || !b.async {
		return nil
	}
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.queue)
		b.mu.Unlock()
	})
	ctx = ctxOrBackground(ctx)
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) run() {
	defer close(b.done)
	for item := range b.queue {
		b.deliver(item.ctx, item.event)
	}
}

func (b *Bus) deliver(ctx context.Context, event Event) {
	ctx = ctxOrBackground(ctx)
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	outcome := OutcomeDelivered
	for _, handler := range handlers {
		if err := b.invoke(ctx, handler, event); err != nil {
			outcome = OutcomeFailed
			b.logger.Warn("events.handler.failed",
				logging.FieldEvent, event.Name(),
				logging.FieldContentID, event.ContentID(),
				"error", err,
			)
		}
	}
	b.observe(event.Name(), outcome)
}

func (b *Bus) invoke(ctx context.Context, handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("events: handler panic: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

func (b *Bus) drop(event Event, reason string) {
	b.logger.Warn("events.dispatch.dropped",
		logging.FieldEvent, event.Name(),
		logging.FieldContentID, event.ContentID(),
		"reason", reason,
	)
	b.observe(event.Name(), OutcomeDropped)
}

func (b *Bus) observe(name, outcome string) {
	if b.observer != nil {
		b.observer.ObserveEvent(name, outcome)
	}
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Nop discards every event.
type Nop struct{}

func (Nop) Dispatch(context.Context, Event) {}
