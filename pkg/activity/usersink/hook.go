package usersink

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-polycontent/pkg/activity"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook writes activity events to a go-users activity sink.
type Hook struct {
	Sink interfaces.ActivitySink
}

var _ activity.ActivityHook = Hook{}

// Notify converts the event into an ActivityRecord. Identifiers that are not
// UUIDs are stored as uuid.Nil.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if event.Verb == "" || event.ObjectType == "" || event.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
	}
	if len(event.Metadata) > 0 {
		record.Data = maps.Clone(event.Metadata)
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}
