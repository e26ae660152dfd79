package versions

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/util"
)

// Entry is one immutable ledger row: a full snapshot of an entity's data at
// write time plus the keys that changed relative to the previous data.
//
// IDs are opaque; ordering comes from Sequence, which counts entries per
// entity starting at 1.
type Entry struct {
	bun.BaseModel `bun:"table:content_versions,alias:cv" json:"-"`

	ID         string            `bun:"id,pk"                       json:"id"`
	EntityType domain.EntityType `bun:"entity_type,notnull"         json:"entity_type"`
	EntityID   string            `bun:"entity_id,notnull"           json:"entity_id"`
	Sequence   int               `bun:"sequence,notnull"            json:"sequence"`
	Snapshot   map[string]any    `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	Diff       *string           `bun:"diff"                        json:"diff,omitempty"`
	CreatedAt  time.Time         `bun:"created_at,notnull"          json:"created_at"`
}

// Clone copies the entry including its snapshot.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	cloned := *e
	cloned.Snapshot = util.CloneData(e.Snapshot)
	if e.Diff != nil {
		diff := *e.Diff
		cloned.Diff = &diff
	}
	return &cloned
}

var (
	ErrVersionNotFound  = errors.New("versions: version not found")
	ErrEntityIDRequired = errors.New("versions: entity id required")
)

// NotFoundError reports a version id that is not in the ledger, optionally
// scoped to an entity.
type NotFoundError struct {
	VersionID string
	EntityID  string
}

func (e *NotFoundError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("versions: version %q not found for %q", e.VersionID, e.EntityID)
	}
	return fmt.Sprintf("versions: version %q not found", e.VersionID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrVersionNotFound
}
