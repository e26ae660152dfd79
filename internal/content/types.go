package content

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/util"
)

// Record is the live state of a content entity. It is only mutated through
// the Service, which keeps the version ledger in step with it.
type Record struct {
	bun.BaseModel `bun:"table:content_records,alias:cr" json:"-"`

	ID            string         `bun:"id,pk"                   json:"id"`
	ContentTypeID string         `bun:"content_type_id,notnull" json:"content_type_id"`
	Status        domain.Status  `bun:"status,notnull"          json:"status"`
	Data          map[string]any `bun:"data,type:jsonb,notnull" json:"data"`
	CreatedAt     time.Time      `bun:"created_at,notnull"      json:"created_at"`
	UpdatedAt     time.Time      `bun:"updated_at,notnull"      json:"updated_at"`
}

// Clone copies the record and its data.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cloned := *r
	cloned.Data = util.CloneData(r.Data)
	return &cloned
}

var (
	ErrContentIDRequired = errors.New("content: content id required")
	ErrContentNotFound   = errors.New("content: content not found")
	ErrContentExists     = errors.New("content: content already exists")
	ErrInvalidStatus     = errors.New("content: invalid status")
	ErrVersionIDRequired = errors.New("content: version id required")
)

// NotFoundError reports a missing content record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrContentNotFound
}

func notFound(id string) error {
	return &NotFoundError{Resource: "content", Key: id}
}
