package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users activity record persisted by sinks.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink stores activity records. go-users sinks satisfy it as is.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
