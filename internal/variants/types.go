package variants

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-polycontent/internal/util"
)

// Variant overrides selected fields of a content record for one dimension
// such as a brand or campaign.
type Variant struct {
	ID        string         `json:"id"`
	ContentID string         `json:"content_id"`
	Dimension string         `json:"dimension"`
	Overrides map[string]any `json:"overrides"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone copies the variant and its overrides.
func (v *Variant) Clone() *Variant {
	if v == nil {
		return nil
	}
	cloned := *v
	cloned.Overrides = util.CloneData(v.Overrides)
	return &cloned
}

var (
	ErrVariantIDRequired = errors.New("variants: variant id required")
	ErrContentIDRequired = errors.New("variants: content id required")
	ErrDimensionRequired = errors.New("variants: dimension required")
	ErrVariantExists     = errors.New("variants: variant already exists")
	ErrVariantNotFound   = errors.New("variants: variant not found")
)

// NotFoundError reports a missing variant, by id or by content and dimension.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrVariantNotFound
}

func notFoundByID(id string) error {
	return &NotFoundError{Resource: "variant", Key: id}
}

func notFoundByDimension(contentID, dimension string) error {
	return &NotFoundError{Resource: "variant", Key: contentID + "/" + dimension}
}
