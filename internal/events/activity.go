package events

import (
	"context"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/pkg/activity"
)

// ActivityHandler mirrors lifecycle events into the activity emitter, which
// in turn feeds go-users activity sinks.
func ActivityHandler(emitter *activity.Emitter) Handler {
	return HandlerFunc(func(ctx context.Context, event Event) error {
		if !emitter.Enabled() {
			return nil
		}
		record := ToActivity(event)
		record.ActorID = ActorFromContext(ctx)
		return emitter.Emit(ctx, record)
	})
}

// ToActivity maps a lifecycle event to an activity event.
func ToActivity(event Event) activity.Event {
	out := activity.Event{
		Verb:       event.Name(),
		ObjectType: string(domain.EntityContent),
		ObjectID:   event.ContentID(),
		Metadata:   map[string]any{},
	}
	switch typed := event.(type) {
	case ContentCreated:
		out.Metadata["content_type_id"] = typed.Content.ContentTypeID
		out.Metadata["status"] = typed.Content.Status
		out.OccurredAt = typed.Content.CreatedAt
	case ContentUpdated:
		out.Metadata["content_type_id"] = typed.Content.ContentTypeID
		out.Metadata["status"] = typed.Content.Status
		out.Metadata["version_id"] = typed.Version.ID
		out.Metadata["sequence"] = typed.Version.Sequence
		if typed.Version.Diff != nil {
			out.Metadata["diff"] = *typed.Version.Diff
		}
		out.OccurredAt = typed.Content.UpdatedAt
	case ContentRolledBack:
		out.Metadata["content_type_id"] = typed.Content.ContentTypeID
		out.Metadata["version_id"] = typed.Version.ID
		out.Metadata["sequence"] = typed.Version.Sequence
		out.OccurredAt = typed.Content.UpdatedAt
	}
	return out
}

// WithActor stores the acting user id on the context for activity records.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

type actorKey struct{}
