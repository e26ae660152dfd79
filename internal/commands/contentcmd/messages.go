package contentcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-polycontent/internal/domain"
)

const (
	createContentMessageType     = "polycontent.content.create"
	updateContentMessageType     = "polycontent.content.update"
	rollbackContentMessageType   = "polycontent.content.rollback"
	deleteContentMessageType     = "polycontent.content.delete"
	createVariantMessageType     = "polycontent.variant.create"
	upsertTranslationMessageType = "polycontent.translation.upsert"
)

// CreateContentCommand creates a record and its first ledger entry.
type CreateContentCommand struct {
	ID            string         `json:"id"`
	ContentTypeID string         `json:"content_type_id"`
	Data          map[string]any `json:"data"`
}

func (CreateContentCommand) Type() string { return createContentMessageType }

func (m CreateContentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.By(notBlank)),
		validation.Field(&m.ContentTypeID, validation.By(notBlank)),
	)
}

// UpdateContentCommand replaces a record's data and optionally its status.
type UpdateContentCommand struct {
	ID     string         `json:"id"`
	Status string         `json:"status,omitempty"`
	Data   map[string]any `json:"data"`
}

func (UpdateContentCommand) Type() string { return updateContentMessageType }

func (m UpdateContentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.By(notBlank)),
		validation.Field(&m.Status, validation.In(string(domain.StatusDraft), string(domain.StatusPublished))),
	)
}

// RollbackContentCommand restores a record to a previous snapshot.
type RollbackContentCommand struct {
	ID        string `json:"id"`
	VersionID string `json:"version_id"`
}

func (RollbackContentCommand) Type() string { return rollbackContentMessageType }

func (m RollbackContentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.ID) == "" {
		errs["id"] = validation.NewError("polycontent.content.rollback.id_required", "id is required")
	}
	if strings.TrimSpace(m.VersionID) == "" {
		errs["version_id"] = validation.NewError("polycontent.content.rollback.version_id_required", "version_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeleteContentCommand struct {
	ID string `json:"id"`
}

func (DeleteContentCommand) Type() string { return deleteContentMessageType }

func (m DeleteContentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.By(notBlank)),
	)
}

// CreateVariantCommand attaches an overlay to a record under a dimension.
type CreateVariantCommand struct {
	ID        string         `json:"id,omitempty"`
	ContentID string         `json:"content_id"`
	Dimension string         `json:"dimension"`
	Overrides map[string]any `json:"overrides"`
}

func (CreateVariantCommand) Type() string { return createVariantMessageType }

func (m CreateVariantCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ContentID, validation.By(notBlank)),
		validation.Field(&m.Dimension, validation.By(notBlank)),
	)
}

// UpsertTranslationCommand stores the localized fields of a record or variant.
type UpsertTranslationCommand struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Locale     string         `json:"locale"`
	Fields     map[string]any `json:"fields"`
}

func (UpsertTranslationCommand) Type() string { return upsertTranslationMessageType }

func (m UpsertTranslationCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.EntityType, validation.Required, validation.In(string(domain.EntityContent), string(domain.EntityVariant))),
		validation.Field(&m.EntityID, validation.By(notBlank)),
		validation.Field(&m.Locale, validation.By(notBlank)),
	)
}

var errBlank = validation.NewError("polycontent.validation.blank", "cannot be blank")

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}
