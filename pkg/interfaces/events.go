package interfaces

import "context"

// EventEnvelope is the serialisable notification published for every content
// lifecycle change.
type EventEnvelope struct {
	Name      string         `json:"name"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// EventSink receives lifecycle notifications. Sinks run after the write has
// been committed; their errors never reach the caller of the write.
type EventSink interface {
	Publish(ctx context.Context, envelope EventEnvelope) error
}

// EventSinkFunc adapts a function into an EventSink.
type EventSinkFunc func(ctx context.Context, envelope EventEnvelope) error

// Publish calls the wrapped function.
func (fn EventSinkFunc) Publish(ctx context.Context, envelope EventEnvelope) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, envelope)
}
