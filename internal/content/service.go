package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/events"
	"github.com/goliatone/go-polycontent/internal/identity"
	"github.com/goliatone/go-polycontent/internal/locks"
	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/internal/metrics"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/util"
	"github.com/goliatone/go-polycontent/internal/versions"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Service is the versioning service. Every write validates against the
// record's content type, persists the record and appends to the ledger in
// one transaction, then dispatches a lifecycle event.
type Service interface {
	Create(ctx context.Context, req CreateContentRequest) (*Record, error)
	Update(ctx context.Context, req UpdateContentRequest) (*Record, error)
	Rollback(ctx context.Context, req RollbackRequest) (*Record, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	// Versions lists an entity's ledger in insertion order.
	Versions(ctx context.Context, entityType domain.EntityType, entityID string) ([]*versions.Entry, error)
	Version(ctx context.Context, id string) (*versions.Entry, error)
	AllVersions(ctx context.Context) ([]*versions.Entry, error)
}

// CreateContentRequest captures the input for a new record.
type CreateContentRequest struct {
	ID            string
	ContentTypeID string
	Data          map[string]any
}

// UpdateContentRequest replaces a record's data. An empty Status keeps the
// current one.
type UpdateContentRequest struct {
	ID     string
	Status string
	Data   map[string]any
}

// RollbackRequest restores a record to the snapshot of VersionID.
type RollbackRequest struct {
	ID        string
	VersionID string
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithVersionIDGenerator overrides how ledger entry ids are minted.
func WithVersionIDGenerator(fn func() string) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.versionID = fn
		}
	}
}

// WithDispatcher sets the event dispatcher.
func WithDispatcher(dispatcher events.Dispatcher) ServiceOption {
	return func(s *service) {
		if dispatcher != nil {
			s.events = dispatcher
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

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *service) {
		s.metrics = m
	}
}

// WithLocks shares a lock table with other writers of the same entities.
func WithLocks(table *locks.Keyed) ServiceOption {
	return func(s *service) {
		if table != nil {
			s.locks = table
		}
	}
}

// NewService constructs the versioning service.
func NewService(store Store, types schema.Registry, opts ...ServiceOption) Service {
	s := &service{
		store:     store,
		types:     types,
		now:       func() time.Time { return time.Now().UTC() },
		versionID: func() string { return identity.NewID("ver") },
		events:    events.Nop{},
		logger:    logging.NoOp(),
		locks:     locks.NewKeyed(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type service struct {
	store     Store
	types     schema.Registry
	now       func() time.Time
	versionID func() string
	events    events.Dispatcher
	logger    interfaces.Logger
	metrics   *metrics.Metrics
	locks     *locks.Keyed
}

func (s *service) Create(ctx context.Context, req CreateContentRequest) (_ *Record, err error) {
	defer s.observe("content.create", time.Now(), &err)

	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, ErrContentIDRequired
	}
	logger := s.opLogger(ctx, id)

	unlock := s.locks.Lock(id)
	record, version, err := s.create(ctx, id, req)
	unlock()
	if err != nil {
		logger.Error("content.create.failed", "error", err)
		return nil, err
	}

	logger.Info("content.create.success", logging.FieldContentTypeID, record.ContentTypeID, logging.FieldVersionID, version.ID)
	s.events.Dispatch(ctx, events.ContentCreated{Content: toEventContent(record)})
	return record, nil
}

func (s *service) create(ctx context.Context, id string, req CreateContentRequest) (*Record, *versions.Entry, error) {
	contentTypeID := strings.TrimSpace(req.ContentTypeID)
	if err := s.validate(ctx, contentTypeID, req.Data); err != nil {
		return nil, nil, err
	}

	now := s.now()
	record := &Record{
		ID:            id,
		ContentTypeID: contentTypeID,
		Status:        domain.StatusDraft,
		Data:          util.CloneData(req.Data),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if record.Data == nil {
		record.Data = map[string]any{}
	}

	var (
		created *Record
		entry   *versions.Entry
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if created, err = tx.Records.Create(ctx, record); err != nil {
			return err
		}
		entry, err = tx.Versions.Append(ctx, &versions.Entry{
			ID:         s.versionID(),
			EntityType: domain.EntityContent,
			EntityID:   id,
			Snapshot:   record.Data,
			CreatedAt:  now,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.metrics.VersionAppended(string(domain.EntityContent))
	return created, entry, nil
}

func (s *service) Update(ctx context.Context, req UpdateContentRequest) (_ *Record, err error) {
	defer s.observe("content.update", time.Now(), &err)

	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, ErrContentIDRequired
	}
	logger := s.opLogger(ctx, id)

	unlock := s.locks.Lock(id)
	record, version, err := s.update(ctx, id, req)
	unlock()
	if err != nil {
		logger.Error("content.update.failed", "error", err)
		return nil, err
	}

	logger.Info("content.update.success", logging.FieldVersionID, version.ID, "status", record.Status)
	s.events.Dispatch(ctx, events.ContentUpdated{
		Content: toEventContent(record),
		Version: toEventVersion(version),
	})
	return record, nil
}

func (s *service) update(ctx context.Context, id string, req UpdateContentRequest) (*Record, *versions.Entry, error) {
	current, err := s.store.Records().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	status := current.Status
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, nil, ErrInvalidStatus
		}
		status = parsed
	}

	if err := s.validate(ctx, current.ContentTypeID, req.Data); err != nil {
		return nil, nil, err
	}

	data := util.CloneData(req.Data)
	if data == nil {
		data = map[string]any{}
	}
	diff, err := versions.EncodeDiff(versions.ComputeDiff(current.Data, data))
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	next := current.Clone()
	next.Status = status
	next.Data = data
	next.UpdatedAt = now

	var (
		updated *Record
		entry   *versions.Entry
	)
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		entry, err = tx.Versions.Append(ctx, &versions.Entry{
			ID:         s.versionID(),
			EntityType: domain.EntityContent,
			EntityID:   id,
			Snapshot:   data,
			Diff:       diff,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		updated, err = tx.Records.Update(ctx, next)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.metrics.VersionAppended(string(domain.EntityContent))
	return updated, entry, nil
}

func (s *service) Rollback(ctx context.Context, req RollbackRequest) (_ *Record, err error) {
	defer s.observe("content.rollback", time.Now(), &err)

	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, ErrContentIDRequired
	}
	versionID := strings.TrimSpace(req.VersionID)
	if versionID == "" {
		return nil, ErrVersionIDRequired
	}
	logger := logging.WithFields(s.opLogger(ctx, id), map[string]any{logging.FieldVersionID: versionID})

	unlock := s.locks.Lock(id)
	record, version, err := s.rollback(ctx, id, versionID)
	unlock()
	if err != nil {
		logger.Error("content.rollback.failed", "error", err)
		return nil, err
	}

	logger.Info("content.rollback.success", "sequence", version.Sequence)
	s.events.Dispatch(ctx, events.ContentRolledBack{
		Content: toEventContent(record),
		Version: toEventVersion(version),
	})
	return record, nil
}

// rollback checks the ledger before the record, so an unknown version is
// reported even when the record is gone too. It does not append an entry.
func (s *service) rollback(ctx context.Context, id, versionID string) (*Record, *versions.Entry, error) {
	entries, err := s.store.Versions().ListByEntity(ctx, domain.EntityContent, id)
	if err != nil {
		return nil, nil, err
	}
	entry, ok := versions.Find(entries, versionID)
	if !ok {
		return nil, nil, &versions.NotFoundError{VersionID: versionID, EntityID: id}
	}

	current, err := s.store.Records().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	next := current.Clone()
	next.Data = util.CloneData(entry.Snapshot)
	if next.Data == nil {
		next.Data = map[string]any{}
	}
	next.UpdatedAt = s.now()

	var updated *Record
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		updated, err = tx.Records.Update(ctx, next)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, entry, nil
}

func (s *service) Delete(ctx context.Context, id string) (err error) {
	defer s.observe("content.delete", time.Now(), &err)

	id = strings.TrimSpace(id)
	if id == "" {
		return ErrContentIDRequired
	}
	logger := s.opLogger(ctx, id)

	unlock := s.locks.Lock(id)
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Records.Delete(ctx, id)
	})
	unlock()
	if err != nil {
		logger.Error("content.delete.failed", "error", err)
		return err
	}

	logger.Info("content.delete.success")
	s.events.Dispatch(ctx, events.ContentDeleted{ID: id})
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrContentIDRequired
	}
	return s.store.Records().GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Record, error) {
	return s.store.Records().List(ctx)
}

func (s *service) Versions(ctx context.Context, entityType domain.EntityType, entityID string) ([]*versions.Entry, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, versions.ErrEntityIDRequired
	}
	return s.store.Versions().ListByEntity(ctx, entityType, entityID)
}

func (s *service) Version(ctx context.Context, id string) (*versions.Entry, error) {
	return s.store.Versions().GetByID(ctx, strings.TrimSpace(id))
}

func (s *service) AllVersions(ctx context.Context) ([]*versions.Entry, error) {
	return s.store.Versions().List(ctx)
}

// validate runs the schema gate and counts rejected payloads.
func (s *service) validate(ctx context.Context, contentTypeID string, data map[string]any) error {
	err := s.types.Validate(ctx, contentTypeID, data)
	if err != nil && errors.Is(err, schema.ErrValidation) {
		s.metrics.ValidationFailed(contentTypeID)
	}
	return err
}

func (s *service) opLogger(ctx context.Context, id string) interfaces.Logger {
	return logging.WithFields(s.logger.WithContext(ctx), map[string]any{logging.FieldContentID: id})
}

func (s *service) observe(operation string, started time.Time, err *error) {
	s.metrics.ObserveOperation(operation, started, *err)
}

func toEventContent(record *Record) events.Content {
	return events.Content{
		ID:            record.ID,
		ContentTypeID: record.ContentTypeID,
		Status:        string(record.Status),
		Data:          util.CloneData(record.Data),
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func toEventVersion(entry *versions.Entry) events.Version {
	return events.Version{
		ID:        entry.ID,
		Sequence:  entry.Sequence,
		Diff:      entry.Diff,
		CreatedAt: entry.CreatedAt,
	}
}
