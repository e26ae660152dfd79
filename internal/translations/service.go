package translations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/identity"
	"github.com/goliatone/go-polycontent/internal/locks"
	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/internal/util"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Service manages translation overlays for content records and variants.
type Service interface {
	// AddOrUpdate stores fields for the entity and locale, reusing the id of
	// an existing translation for the same triple.
	AddOrUpdate(ctx context.Context, req AddOrUpdateRequest) (*Translation, error)
	Get(ctx context.Context, entityType domain.EntityType, entityID, locale string) (*Translation, error)
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*Translation, error)
	Delete(ctx context.Context, id string) error
}

type AddOrUpdateRequest struct {
	EntityType domain.EntityType
	EntityID   string
	Locale     string
	Fields     map[string]any
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
		id:     func() string { return identity.NewID("trans") },
		logger: logging.NoOp(),
		locks:  locks.NewKeyed(),
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
	locks  *locks.Keyed
}

func (s *service) AddOrUpdate(ctx context.Context, req AddOrUpdateRequest) (*Translation, error) {
	entityID, locale, err := normalizeKey(req.EntityType, req.EntityID, req.Locale)
	if err != nil {
		return nil, err
	}

	// one writer per triple so concurrent upserts cannot both insert
	unlock := s.locks.Lock(string(req.EntityType) + "|" + entityID + "|" + locale)
	defer unlock()

	now := s.now()
	translation := &Translation{
		EntityType: req.EntityType,
		EntityID:   entityID,
		Locale:     locale,
		Fields:     util.CloneData(req.Fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if translation.Fields == nil {
		translation.Fields = map[string]any{}
	}

	existing, err := s.repo.FindByEntityAndLocale(ctx, req.EntityType, entityID, locale)
	switch {
	case err == nil:
		translation.ID = existing.ID
		translation.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrTranslationNotFound):
		translation.ID = s.id()
	default:
		return nil, err
	}

	saved, err := s.repo.Save(ctx, translation)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Debug("translations.save.success",
		"translation_id", saved.ID,
		"entity_type", saved.EntityType,
		"entity_id", saved.EntityID,
		logging.FieldLocale, saved.Locale,
	)
	return saved, nil
}

func (s *service) Get(ctx context.Context, entityType domain.EntityType, entityID, locale string) (*Translation, error) {
	entityID, locale, err := normalizeKey(entityType, entityID, locale)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByEntityAndLocale(ctx, entityType, entityID, locale)
}

func (s *service) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*Translation, error) {
	if !entityType.Valid() {
		return nil, ErrInvalidEntityType
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, ErrEntityIDRequired
	}
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrTranslationIDRequired
	}
	return s.repo.Delete(ctx, id)
}

func normalizeKey(entityType domain.EntityType, entityID, locale string) (string, string, error) {
	if !entityType.Valid() {
		return "", "", ErrInvalidEntityType
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return "", "", ErrEntityIDRequired
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", "", ErrLocaleRequired
	}
	return entityID, locale, nil
}
