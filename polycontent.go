package polycontent

import (
	"context"

	"github.com/goliatone/go-polycontent/internal/commands/contentcmd"
	"github.com/goliatone/go-polycontent/internal/content"
	"github.com/goliatone/go-polycontent/internal/di"
	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/resolver"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/variants"
	"github.com/goliatone/go-polycontent/internal/versions"
)

type (
	Record          = content.Record
	VersionEntry    = versions.Entry
	ContentType     = schema.ContentType
	Field           = schema.Field
	FieldError      = schema.FieldError
	ValidationError = schema.ValidationError
	Variant         = variants.Variant
	Translation     = translations.Translation
	Resolution      = resolver.Resolution
	ResolveRequest  = resolver.Request
	Layer           = resolver.Layer
	EntityType      = domain.EntityType
	Status          = domain.Status
)

// ContentTypeRegistry exports the content type registry contract.
type ContentTypeRegistry = schema.Registry

// VariantService exports the variant overlay service contract.
type VariantService = variants.Service

// TranslationService exports the translation overlay service contract.
type TranslationService = translations.Service

// CommandHandlers exports the go-command handlers for write operations.
type CommandHandlers = contentcmd.HandlerSet

const (
	EntityContent = domain.EntityContent
	EntityVariant = domain.EntityVariant

	StatusDraft     = domain.StatusDraft
	StatusPublished = domain.StatusPublished

	LayerBase        = resolver.LayerBase
	LayerVariant     = resolver.LayerVariant
	LayerTranslation = resolver.LayerTranslation
)

var (
	ErrContentNotFound     = content.ErrContentNotFound
	ErrContentExists       = content.ErrContentExists
	ErrInvalidStatus       = content.ErrInvalidStatus
	ErrVersionNotFound     = versions.ErrVersionNotFound
	ErrContentTypeNotFound = schema.ErrContentTypeNotFound
	ErrValidation          = schema.ErrValidation
)

// Option customises the container behind a Module.
type Option = di.Option

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithBunDB           = di.WithBunDB
	WithCache           = di.WithCache
	WithClock           = di.WithClock
	WithMetricsRegistry = di.WithMetricsRegistry
	WithActivityHooks   = di.WithActivityHooks
	WithActivitySink    = di.WithActivitySink
	WithEventSink       = di.WithEventSink
	WithCommandRegistry = di.WithCommandRegistry
)

// Module is the public façade over the versioning service, the overlay
// stores and the resolution engine.
type Module struct {
	container *di.Container
}

// New builds a module from cfg. Close releases its resources.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// CreateContent validates data against the content type and records the
// first version.
func (m *Module) CreateContent(ctx context.Context, id, contentTypeID string, data map[string]any) (*Record, error) {
	return m.container.ContentService().Create(ctx, content.CreateContentRequest{
		ID:            id,
		ContentTypeID: contentTypeID,
		Data:          data,
	})
}

// UpdateContent replaces the record's data and appends a version carrying the
// diff. An empty status keeps the current one.
func (m *Module) UpdateContent(ctx context.Context, id string, status Status, data map[string]any) (*Record, error) {
	return m.container.ContentService().Update(ctx, content.UpdateContentRequest{
		ID:     id,
		Status: string(status),
		Data:   data,
	})
}

// Rollback restores the record's data to the snapshot of versionID. The
// ledger is not extended.
func (m *Module) Rollback(ctx context.Context, entityID, versionID string) (*Record, error) {
	return m.container.ContentService().Rollback(ctx, content.RollbackRequest{ID: entityID, VersionID: versionID})
}

// DeleteContent removes the record and keeps its ledger.
func (m *Module) DeleteContent(ctx context.Context, id string) error {
	return m.container.ContentService().Delete(ctx, id)
}

func (m *Module) FindContent(ctx context.Context, id string) (*Record, error) {
	return m.container.ContentService().Get(ctx, id)
}

func (m *Module) ListContent(ctx context.Context) ([]*Record, error) {
	return m.container.ContentService().List(ctx)
}

// Resolve returns the record's data with the dimension's variant and the
// locale's translation applied, or nil when the record does not exist.
// Blank dimension or locale skips that layer.
func (m *Module) Resolve(ctx context.Context, contentID, dimension, locale string) (map[string]any, error) {
	return m.container.Resolver().ResolveData(ctx, resolver.Request{
		ContentID: contentID,
		Dimension: dimension,
		Locale:    locale,
	})
}

// ResolveDetailed is Resolve plus the overlays applied and per key provenance.
func (m *Module) ResolveDetailed(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	return m.container.Resolver().Resolve(ctx, req)
}

// FindVersionsByEntity lists an entity's ledger in insertion order.
func (m *Module) FindVersionsByEntity(ctx context.Context, entityType EntityType, entityID string) ([]*VersionEntry, error) {
	return m.container.ContentService().Versions(ctx, entityType, entityID)
}

func (m *Module) ContentTypes() ContentTypeRegistry {
	return m.container.ContentTypes()
}

func (m *Module) Variants() VariantService {
	return m.container.VariantService()
}

func (m *Module) Translations() TranslationService {
	return m.container.TranslationService()
}

// Commands returns the go-command handlers wired to this module.
func (m *Module) Commands() *CommandHandlers {
	return m.container.Commands()
}

// Close flushes pending events and closes a database the module opened.
func (m *Module) Close(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close(ctx)
}
