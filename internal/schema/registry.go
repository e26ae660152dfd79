package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Registry manages content type definitions and validates data against them.
type Registry interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, ct *ContentType) (*ContentType, error)
	Update(ctx context.Context, ct *ContentType) (*ContentType, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, id string) (*ContentType, error)
	List(ctx context.Context) ([]*ContentType, error)
	// Validate loads the content type and checks data against it. It returns
	// *NotFoundError for an unknown id and *ValidationError for bad data.
	Validate(ctx context.Context, contentTypeID string, data map[string]any) error
}

// Option configures the registry.
type Option func(*registry)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(r *registry) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithFieldTypes replaces the field type registry.
func WithFieldTypes(types *FieldTypes) Option {
	return func(r *registry) {
		if types != nil {
			r.types = types
		}
	}
}

// WithLogger sets the logger used for registry operations.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds a Registry on top of repo.
func NewRegistry(repo Repository, opts ...Option) Registry {
	r := &registry{
		repo:   repo,
		types:  DefaultFieldTypes(),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

type registry struct {
	repo   Repository
	types  *FieldTypes
	now    func() time.Time
	logger interfaces.Logger
}

func (r *registry) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.repo.GetByID(ctx, strings.TrimSpace(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrContentTypeNotFound) {
		return false, nil
	}
	return false, err
}

func (r *registry) Create(ctx context.Context, ct *ContentType) (*ContentType, error) {
	record, err := r.prepare(ct)
	if err != nil {
		return nil, err
	}

	exists, err := r.Exists(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &AlreadyExistsError{ID: record.ID}
	}

	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	created, err := r.repo.Create(ctx, record)
	if err != nil {
		r.logger.Error("schema.create.failed", logging.FieldContentTypeID, record.ID, "error", err)
		return nil, err
	}
	r.logger.Debug("schema.create.success", logging.FieldContentTypeID, record.ID, "fields", len(record.Fields))
	return created, nil
}

func (r *registry) Update(ctx context.Context, ct *ContentType) (*ContentType, error) {
	record, err := r.prepare(ct)
	if err != nil {
		return nil, err
	}

	existing, err := r.repo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.now()

	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		r.logger.Error("schema.update.failed", logging.FieldContentTypeID, record.ID, "error", err)
		return nil, err
	}
	r.logger.Debug("schema.update.success", logging.FieldContentTypeID, record.ID)
	return updated, nil
}

func (r *registry) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrContentTypeIDRequired
	}
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.logger.Debug("schema.delete.success", logging.FieldContentTypeID, id)
	return nil
}

// Find treats a blank id as a lookup miss so callers see the same
// NotFoundError they get for an unknown id.
func (r *registry) Find(ctx context.Context, id string) (*ContentType, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &NotFoundError{ID: id}
	}
	return r.repo.GetByID(ctx, id)
}

func (r *registry) List(ctx context.Context) ([]*ContentType, error) {
	return r.repo.List(ctx)
}

func (r *registry) Validate(ctx context.Context, contentTypeID string, data map[string]any) error {
	ct, err := r.Find(ctx, contentTypeID)
	if err != nil {
		return err
	}
	return Check(ct, data, r.types)
}

// prepare normalizes and checks a definition before it is stored.
func (r *registry) prepare(ct *ContentType) (*ContentType, error) {
	if ct == nil {
		return nil, ErrContentTypeIDRequired
	}
	record := ct.Clone()
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return nil, ErrContentTypeIDRequired
	}
	record.Code = normalizeCode(record.Code, record.ID)
	record.Label = strings.TrimSpace(record.Label)
	if record.Label == "" {
		record.Label = record.ID
	}

	seen := make(map[string]struct{}, len(record.Fields))
	for i := range record.Fields {
		field := &record.Fields[i]
		field.Code = strings.TrimSpace(field.Code)
		if field.Code == "" {
			return nil, fmt.Errorf("%w: field %d", ErrFieldCodeRequired, i)
		}
		if _, dup := seen[field.Code]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFieldCode, field.Code)
		}
		seen[field.Code] = struct{}{}
		if field.ID == "" {
			field.ID = record.ID + "." + field.Code
		}
		fieldType, ok := r.types.Lookup(field.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %q on field %s", ErrUnknownFieldType, field.Type, field.Code)
		}
		if err := fieldType.CheckSettings(field.Settings); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Code, err)
		}
	}
	return record, nil
}

func normalizeCode(code, fallback string) string {
	candidate := strings.TrimSpace(code)
	if candidate == "" {
		candidate = fallback
	}
	if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
		return normalized
	}
	return strings.ToLower(candidate)
}
