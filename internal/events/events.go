// Package events defines the content lifecycle notifications and the
// dispatcher that delivers them after a write has been committed.
package events

import (
	"time"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/util"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Content is the record snapshot carried by events.
type Content struct {
	ID            string         `json:"id"`
	ContentTypeID string         `json:"content_type_id"`
	Status        string         `json:"status"`
	Data          map[string]any `json:"data"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Version identifies the ledger entry involved in an event.
type Version struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	Diff      *string   `json:"diff,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is the closed set of lifecycle events: ContentCreated,
// ContentUpdated, ContentDeleted and ContentRolledBack.
type Event interface {
	Name() string
	ContentID() string
	payload() map[string]any
}

type ContentCreated struct {
	Content Content
}

type ContentUpdated struct {
	Content Content
	Version Version
}

type ContentDeleted struct {
	ID string
}

type ContentRolledBack struct {
	Content Content
	Version Version
}

func (ContentCreated) Name() string    { return domain.EventContentCreated }
func (ContentUpdated) Name() string    { return domain.EventContentUpdated }
func (ContentDeleted) Name() string    { return domain.EventContentDeleted }
func (ContentRolledBack) Name() string { return domain.EventContentRolledBack }

func (e ContentCreated) ContentID() string    { return e.Content.ID }
func (e ContentUpdated) ContentID() string    { return e.Content.ID }
func (e ContentDeleted) ContentID() string    { return e.ID }
func (e ContentRolledBack) ContentID() string { return e.Content.ID }

func (e ContentCreated) payload() map[string]any {
	return map[string]any{"content": e.Content.toMap()}
}

func (e ContentUpdated) payload() map[string]any {
	return map[string]any{"content": e.Content.toMap(), "version": e.Version.toMap()}
}

func (e ContentDeleted) payload() map[string]any {
	return map[string]any{"content_id": e.ID}
}

func (e ContentRolledBack) payload() map[string]any {
	return map[string]any{"content": e.Content.toMap(), "version": e.Version.toMap()}
}

func (c Content) toMap() map[string]any {
	return map[string]any{
		"id":              c.ID,
		"content_type_id": c.ContentTypeID,
		"status":          c.Status,
		"data":            util.CloneData(c.Data),
		"created_at":      c.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":      c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (v Version) toMap() map[string]any {
	out := map[string]any{
		"id":         v.ID,
		"sequence":   v.Sequence,
		"created_at": v.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if v.Diff != nil {
		out["diff"] = *v.Diff
	}
	return out
}

// Envelope renders event as the serialisable notification shape, stamped
// with at in RFC 3339 (ISO-8601) form.
func Envelope(event Event, at time.Time) interfaces.EventEnvelope {
	return interfaces.EventEnvelope{
		Name:      event.Name(),
		Timestamp: at.UTC().Format(time.RFC3339),
		Payload:   event.payload(),
	}
}
