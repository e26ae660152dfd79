package variants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-polycontent/internal/identity"
	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/internal/util"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Service manages variant overlays.
type Service interface {
	Create(ctx context.Context, req CreateVariantRequest) (*Variant, error)
	Update(ctx context.Context, req UpdateVariantRequest) (*Variant, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Variant, error)
	// Find returns the variant for a content record and dimension, or an
	// error wrapping ErrVariantNotFound.
	Find(ctx context.Context, contentID, dimension string) (*Variant, error)
	ListByContent(ctx context.Context, contentID string) ([]*Variant, error)
}

// CreateVariantRequest describes a new overlay. ID is generated when empty.
type CreateVariantRequest struct {
	ID        string
	ContentID string
	Dimension string
	Overrides map[string]any
}

// UpdateVariantRequest replaces the overrides of an existing variant.
type UpdateVariantRequest struct {
	ID        string
	Overrides map[string]any
}

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.id = fn
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		id:     func() string { return identity.NewID("var") },
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type service struct {
	repo   Repository
	now    func() time.Time
	id     func() string
	logger interfaces.Logger
}

func (s *service) Create(ctx context.Context, req CreateVariantRequest) (*Variant, error) {
	contentID := strings.TrimSpace(req.ContentID)
	if contentID == "" {
		return nil, ErrContentIDRequired
	}
	dimension := strings.TrimSpace(req.Dimension)
	if dimension == "" {
		return nil, ErrDimensionRequired
	}

	id := util.FirstNonEmpty(req.ID, s.id())
	if _, err := s.repo.GetByID(ctx, id); err == nil {
		return nil, ErrVariantExists
	} else if !errors.Is(err, ErrVariantNotFound) {
		return nil, err
	}

	now := s.now()
	variant := &Variant{
		ID:        id,
		ContentID: contentID,
		Dimension: dimension,
		Overrides: util.CloneData(req.Overrides),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if variant.Overrides == nil {
		variant.Overrides = map[string]any{}
	}

	saved, err := s.repo.Save(ctx, variant)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Debug("variants.create.success",
		logging.FieldVariantID, saved.ID,
		logging.FieldContentID, saved.ContentID,
		logging.FieldDimension, saved.Dimension,
	)
	return saved, nil
}

func (s *service) Update(ctx context.Context, req UpdateVariantRequest) (*Variant, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, ErrVariantIDRequired
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Overrides = util.CloneData(req.Overrides)
	if current.Overrides == nil {
		current.Overrides = map[string]any{}
	}
	current.UpdatedAt = s.now()

	saved, err := s.repo.Save(ctx, current)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Debug("variants.update.success", logging.FieldVariantID, saved.ID)
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrVariantIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithContext(ctx).Debug("variants.delete.success", logging.FieldVariantID, id)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*Variant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrVariantIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Find(ctx context.Context, contentID, dimension string) (*Variant, error) {
	return s.repo.FindByContentAndDimension(ctx, strings.TrimSpace(contentID), strings.TrimSpace(dimension))
}

func (s *service) ListByContent(ctx context.Context, contentID string) ([]*Variant, error) {
	return s.repo.ListByContent(ctx, strings.TrimSpace(contentID))
}
