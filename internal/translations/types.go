package translations

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/util"
)

// Translation holds locale specific field values for a content record or a
// variant. At most one translation is kept per entity and locale.
type Translation struct {
	ID         string            `json:"id"`
	EntityType domain.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Locale     string            `json:"locale"`
	Fields     map[string]any    `json:"fields"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (t *Translation) Clone() *Translation {
	if t == nil {
		return nil
	}
	cloned := *t
	cloned.Fields = util.CloneData(t.Fields)
	return &cloned
}

var (
	ErrInvalidEntityType     = errors.New("translations: entity type must be content or variant")
	ErrEntityIDRequired      = errors.New("translations: entity id required")
	ErrLocaleRequired        = errors.New("translations: locale required")
	ErrTranslationIDRequired = errors.New("translations: translation id required")
	ErrTranslationNotFound   = errors.New("translations: translation not found")
)

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrTranslationNotFound
}

func notFoundByID(id string) error {
	return &NotFoundError{Resource: "translation", Key: id}
}

func notFoundByKey(entityType domain.EntityType, entityID, locale string) error {
	return &NotFoundError{Resource: "translation", Key: fmt.Sprintf("%s/%s/%s", entityType, entityID, locale)}
}
