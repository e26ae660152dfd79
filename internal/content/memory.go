package content

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/versions"
)

// MemoryRecordRepository keeps records in process memory, preserving
// insertion order for List.
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

// NewMemoryRecordRepository returns an empty repository.
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{records: make(map[string]*Record)}
}

var _ RecordRepository = (*MemoryRecordRepository)(nil)

func (m *MemoryRecordRepository) Create(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ID]; ok {
		return nil, ErrContentExists
	}
	stored := record.Clone()
	m.records[stored.ID] = stored
	m.order = append(m.order, stored.ID)
	return stored.Clone(), nil
}

func (m *MemoryRecordRepository) GetByID(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return record.Clone(), nil
}

func (m *MemoryRecordRepository) Update(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ID]; !ok {
		return nil, notFound(record.ID)
	}
	stored := record.Clone()
	m.records[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *MemoryRecordRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return notFound(id)
	}
	delete(m.records, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRecordRepository) List(context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].Clone())
	}
	return out, nil
}

// MemoryStore pairs in-memory records with a ledger. Transactions are
// serialized and staged: nothing reaches the underlying repositories until
// the callback returns nil, and then ledger appends land before record
// writes so a failing append leaves records untouched.
type MemoryStore struct {
	mu       sync.Mutex
	records  *MemoryRecordRepository
	versions versions.Repository
}

// NewMemoryStore returns a store with empty repositories.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWith(NewMemoryRecordRepository(), versions.NewMemoryRepository())
}

// NewMemoryStoreWith builds a store over existing repositories.
func NewMemoryStoreWith(records *MemoryRecordRepository, ledger versions.Repository) *MemoryStore {
	if records == nil {
		records = NewMemoryRecordRepository()
	}
	if ledger == nil {
		ledger = versions.NewMemoryRepository()
	}
	return &MemoryStore{records: records, versions: ledger}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Records() RecordRepository      { return s.records }
func (s *MemoryStore) Versions() versions.Repository { return s.versions }

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := &stagedRecords{base: s.records, pending: map[string]*Record{}}
	ledger := &stagedLedger{base: s.versions}
	if err := fn(ctx, Tx{Records: records, Versions: ledger}); err != nil {
		return err
	}

	for _, entry := range ledger.pending {
		if _, err := s.versions.Append(ctx, entry); err != nil {
			return err
		}
	}
	for _, op := range records.ops {
		var err error
		switch op.kind {
		case opCreate:
			_, err = s.records.Create(ctx, op.record)
		case opUpdate:
			_, err = s.records.Update(ctx, op.record)
		case opDelete:
			err = s.records.Delete(ctx, op.id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

type recordOp struct {
	kind   opKind
	id     string
	record *Record
}

// stagedRecords reads through to base and buffers writes. A nil value in
// pending marks a staged delete.
type stagedRecords struct {
	base    *MemoryRecordRepository
	pending map[string]*Record
	ops     []recordOp
}

func (s *stagedRecords) lookup(ctx context.Context, id string) (*Record, error) {
	if record, ok := s.pending[id]; ok {
		if record == nil {
			return nil, notFound(id)
		}
		return record.Clone(), nil
	}
	return s.base.GetByID(ctx, id)
}

func (s *stagedRecords) Create(ctx context.Context, record *Record) (*Record, error) {
	if _, err := s.lookup(ctx, record.ID); err == nil {
		return nil, ErrContentExists
	}
	stored := record.Clone()
	s.pending[stored.ID] = stored
	s.ops = append(s.ops, recordOp{kind: opCreate, id: stored.ID, record: stored})
	return stored.Clone(), nil
}

func (s *stagedRecords) GetByID(ctx context.Context, id string) (*Record, error) {
	return s.lookup(ctx, id)
}

func (s *stagedRecords) Update(ctx context.Context, record *Record) (*Record, error) {
	if _, err := s.lookup(ctx, record.ID); err != nil {
		return nil, err
	}
	stored := record.Clone()
	s.pending[stored.ID] = stored
	s.ops = append(s.ops, recordOp{kind: opUpdate, id: stored.ID, record: stored})
	return stored.Clone(), nil
}

func (s *stagedRecords) Delete(ctx context.Context, id string) error {
	if _, err := s.lookup(ctx, id); err != nil {
		return err
	}
	s.pending[id] = nil
	s.ops = append(s.ops, recordOp{kind: opDelete, id: id})
	return nil
}

func (s *stagedRecords) List(ctx context.Context) ([]*Record, error) {
	base, err := s.base.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(base))
	seen := make(map[string]struct{}, len(base))
	for _, record := range base {
		seen[record.ID] = struct{}{}
		if staged, ok := s.pending[record.ID]; ok {
			if staged != nil {
				out = append(out, staged.Clone())
			}
			continue
		}
		out = append(out, record)
	}
	for _, op := range s.ops {
		if op.kind != opCreate {
			continue
		}
		if _, ok := seen[op.id]; ok {
			continue
		}
		if staged := s.pending[op.id]; staged != nil {
			seen[op.id] = struct{}{}
			out = append(out, staged.Clone())
		}
	}
	return out, nil
}

// stagedLedger buffers appends and numbers them after the committed entries.
type stagedLedger struct {
	base    versions.Repository
	pending []*versions.Entry
}

func (s *stagedLedger) Append(ctx context.Context, entry *versions.Entry) (*versions.Entry, error) {
	if strings.TrimSpace(entry.EntityID) == "" {
		return nil, versions.ErrEntityIDRequired
	}
	existing, err := s.ListByEntity(ctx, entry.EntityType, entry.EntityID)
	if err != nil {
		return nil, err
	}
	stored := entry.Clone()
	stored.Sequence = len(existing) + 1
	s.pending = append(s.pending, stored)
	return stored.Clone(), nil
}

func (s *stagedLedger) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*versions.Entry, error) {
	entries, err := s.base.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	for _, entry := range s.pending {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			entries = append(entries, entry.Clone())
		}
	}
	return entries, nil
}

func (s *stagedLedger) GetByID(ctx context.Context, id string) (*versions.Entry, error) {
	for _, entry := range s.pending {
		if entry.ID == id {
			return entry.Clone(), nil
		}
	}
	return s.base.GetByID(ctx, id)
}

func (s *stagedLedger) List(ctx context.Context) ([]*versions.Entry, error) {
	entries, err := s.base.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range s.pending {
		entries = append(entries, entry.Clone())
	}
	return entries, nil
}
