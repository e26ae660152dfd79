package content_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-polycontent/internal/content"
	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/events"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/versions"
)

type fixture struct {
	store   *content.MemoryStore
	service content.Service
	events  *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) Handle(_ context.Context, event events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, event := range l.events {
		out[i] = event.Name()
	}
	return out
}

func newFixture(t *testing.T, ledger versions.Repository) *fixture {
	t.Helper()
	ctx := context.Background()

	registry := schema.NewRegistry(schema.NewMemoryRepository())
	_, err := registry.Create(ctx, &schema.ContentType{
		ID: "article",
		Fields: []schema.Field{
			{Code: "title", Type: schema.TypeText, Settings: map[string]any{"maxLength": 20}, SortOrder: 1},
			{Code: "body", Type: schema.TypeText, SortOrder: 2},
			{Code: "rating", Type: schema.TypeNumber, Settings: map[string]any{"min": 1, "max": 5}, SortOrder: 3},
		},
	})
	if err != nil {
		t.Fatalf("create content type: %v", err)
	}

	log := &eventLog{}
	bus := events.NewBus(events.Config{})
	bus.Subscribe(log)

	store := content.NewMemoryStoreWith(nil, ledger)
	seq := 0
	svc := content.NewService(store, registry,
		content.WithDispatcher(bus),
		content.WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }),
		content.WithVersionIDGenerator(func() string {
			seq++
			return fmt.Sprintf("ver_%d", seq)
		}),
	)
	return &fixture{store: store, service: svc, events: log}
}

func TestCreateAppendsFirstVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	record, err := f.service.Create(ctx, content.CreateContentRequest{
		ID:            "c1",
		ContentTypeID: "article",
		Data:          map[string]any{"title": "Hello"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.Status != domain.StatusDraft {
		t.Fatalf("expected draft status, got %q", record.Status)
	}

	entries, err := f.service.Versions(ctx, domain.EntityContent, "c1")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one version, got %d", len(entries))
	}
	if entries[0].Diff != nil {
		t.Fatalf("expected nil diff for first version, got %q", *entries[0].Diff)
	}
	if entries[0].Snapshot["title"] != "Hello" || entries[0].Sequence != 1 {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestCreateRejectsUnknownContentType(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.service.Create(context.Background(), content.CreateContentRequest{ID: "c1", ContentTypeID: "missing"})
	if !errors.Is(err, schema.ErrContentTypeNotFound) {
		t.Fatalf("expected content type not found, got %v", err)
	}
	if errors.Is(err, schema.ErrValidation) {
		t.Fatalf("missing type must not be reported as a validation failure")
	}
}

func TestCreateWithBlankContentTypeIsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.service.Create(context.Background(), content.CreateContentRequest{ID: "c1", ContentTypeID: " "})
	if !errors.Is(err, schema.ErrContentTypeNotFound) {
		t.Fatalf("expected content type not found, got %v", err)
	}
}

func TestCreateAggregatesValidationErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.service.Create(ctx, content.CreateContentRequest{
		ID:            "c1",
		ContentTypeID: "article",
		Data:          map[string]any{"title": "a title that is way too long", "rating": 9},
	})
	var validationErr *schema.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Errors) != 2 {
		t.Fatalf("expected two field errors, got %+v", validationErr.Errors)
	}
	if _, err := f.service.Get(ctx, "c1"); !errors.Is(err, content.ErrContentNotFound) {
		t.Fatalf("expected nothing persisted, got %v", err)
	}
	if entries, _ := f.service.AllVersions(ctx); len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(entries))
	}
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	req := content.CreateContentRequest{ID: "c1", ContentTypeID: "article", Data: map[string]any{"title": "A"}}
	if _, err := f.service.Create(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.Create(ctx, req); !errors.Is(err, content.ErrContentExists) {
		t.Fatalf("expected ErrContentExists, got %v", err)
	}
	if entries, _ := f.service.Versions(ctx, domain.EntityContent, "c1"); len(entries) != 1 {
		t.Fatalf("expected duplicate create to leave one version, got %d", len(entries))
	}
}

func TestUpdateRecordsDirectionalDiff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.service.Create(ctx, content.CreateContentRequest{
		ID: "c1", ContentTypeID: "article", Data: map[string]any{"title": "A", "body": "x"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	record, err := f.service.Update(ctx, content.UpdateContentRequest{ID: "c1", Data: map[string]any{"title": "B"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := record.Data["body"]; ok {
		t.Fatalf("expected data replaced wholesale, got %v", record.Data)
	}
	if record.Status != domain.StatusDraft {
		t.Fatalf("expected status kept, got %q", record.Status)
	}

	entries, _ := f.service.Versions(ctx, domain.EntityContent, "c1")
	if len(entries) != 2 {
		t.Fatalf("expected two versions, got %d", len(entries))
	}
	if entries[1].Diff == nil || *entries[1].Diff != `{"title":"B"}` {
		t.Fatalf("unexpected diff %v", entries[1].Diff)
	}

	if _, err := f.service.Update(ctx, content.UpdateContentRequest{ID: "c1", Data: map[string]any{"title": "B"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	entries, _ = f.service.Versions(ctx, domain.EntityContent, "c1")
	if *entries[2].Diff != "{}" {
		t.Fatalf("expected empty diff for identical data, got %q", *entries[2].Diff)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.service.Create(ctx, content.CreateContentRequest{ID: "c1", ContentTypeID: "article"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	record, err := f.service.Update(ctx, content.UpdateContentRequest{ID: "c1", Status: "published", Data: map[string]any{}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if record.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %q", record.Status)
	}

	if _, err := f.service.Update(ctx, content.UpdateContentRequest{ID: "c1", Status: "archived"}); !errors.Is(err, content.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := f.service.Update(ctx, content.UpdateContentRequest{ID: "ghost"}); !errors.Is(err, content.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestRollbackRestoresSnapshotWithoutNewVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.service.Create(ctx, content.CreateContentRequest{
		ID: "c1", ContentTypeID: "article", Data: map[string]any{"title": "A", "body": "x"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.Update(ctx, content.UpdateContentRequest{ID: "c1", Status: "published", Data: map[string]any{"title": "B"}}); err != nil {
		t.Fatalf("update: %v", err)
	}

	record, err := f.service.Rollback(ctx, content.RollbackRequest{ID: "c1", VersionID: "ver_1"})
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if record.Data["title"] != "A" || record.Data["body"] != "x" || len(record.Data) != 2 {
		t.Fatalf("expected first snapshot, got %v", record.Data)
	}
	if record.Status != domain.StatusPublished {
		t.Fatalf("expected status untouched by rollback, got %q", record.Status)
	}

	entries, _ := f.service.Versions(ctx, domain.EntityContent, "c1")
	if len(entries) != 2 {
		t.Fatalf("expected rollback not to append, got %d versions", len(entries))
	}

	record.Data["title"] = "mutated"
	stored, _ := f.service.Get(ctx, "c1")
	if stored.Data["title"] != "A" {
		t.Fatalf("expected stored record isolated from caller copy")
	}
	if entries[0].Snapshot["title"] != "A" {
		t.Fatalf("expected snapshot untouched")
	}
}

func TestRollbackErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.service.Rollback(ctx, content.RollbackRequest{ID: "ghost", VersionID: "ver_404"})
	if !errors.Is(err, versions.ErrVersionNotFound) {
		t.Fatalf("expected version not found first, got %v", err)
	}

	if _, err := f.service.Create(ctx, content.CreateContentRequest{ID: "c1", ContentTypeID: "article"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.service.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.service.Rollback(ctx, content.RollbackRequest{ID: "c1", VersionID: "ver_1"})
	if !errors.Is(err, content.ErrContentNotFound) {
		t.Fatalf("expected content not found, got %v", err)
	}
}

func TestDeleteKeepsLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.service.Create(ctx, content.CreateContentRequest{ID: "c1", ContentTypeID: "article"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.service.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.service.Delete(ctx, "c1"); !errors.Is(err, content.ErrContentNotFound) {
		t.Fatalf("expected second delete to fail, got %v", err)
	}
	entries, _ := f.service.Versions(ctx, domain.EntityContent, "c1")
	if len(entries) != 1 {
		t.Fatalf("expected ledger retained, got %d", len(entries))
	}
	entry, err := f.service.Version(ctx, "ver_1")
	if err != nil || entry.EntityID != "c1" {
		t.Fatalf("expected version lookup by id, got %+v %v", entry, err)
	}
}

type failingLedger struct {
	*versions.MemoryRepository
}

func (failingLedger) Append(context.Context, *versions.Entry) (*versions.Entry, error) {
	return nil, errors.New("ledger unavailable")
}

func TestWritesAreAtomicWhenLedgerFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, failingLedger{versions.NewMemoryRepository()})

	_, err := f.service.Create(ctx, content.CreateContentRequest{ID: "c1", ContentTypeID: "article", Data: map[string]any{"title": "A"}})
	if err == nil {
		t.Fatalf("expected create to fail")
	}
	if _, err := f.service.Get(ctx, "c1"); !errors.Is(err, content.ErrContentNotFound) {
		t.Fatalf("expected no record after failed append, got %v", err)
	}
	if names := f.events.names(); len(names) != 0 {
		t.Fatalf("expected no events for failed write, got %v", names)
	}
}

func TestUpdateIsAtomicWhenLedgerFails(t *testing.T) {
	ctx := context.Background()
	records := content.NewMemoryRecordRepository()
	if _, err := records.Create(ctx, &content.Record{ID: "c1", ContentTypeID: "article", Status: domain.StatusDraft, Data: map[string]any{"title": "A"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := content.NewMemoryStoreWith(records, failingLedger{versions.NewMemoryRepository()})

	err := store.RunInTx(ctx, func(ctx context.Context, tx content.Tx) error {
		if _, err := tx.Records.Update(ctx, &content.Record{ID: "c1", ContentTypeID: "article", Status: domain.StatusDraft, Data: map[string]any{"title": "B"}}); err != nil {
			return err
		}
		_, err := tx.Versions.Append(ctx, &versions.Entry{ID: "ver_x", EntityType: domain.EntityContent, EntityID: "c1"})
		return err
	})
	if err == nil {
		t.Fatalf("expected commit to fail")
	}
	stored, _ := records.GetByID(ctx, "c1")
	if stored.Data["title"] != "A" {
		t.Fatalf("expected record unchanged, got %v", stored.Data)
	}
}

func TestEventsFollowEachWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.service.Create(ctx, content.CreateContentRequest{ID: "c1", ContentTypeID: "article", Data: map[string]any{"title": "A"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.Update(ctx, content.UpdateContentRequest{ID: "c1", Data: map[string]any{"title": "B"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := f.service.Rollback(ctx, content.RollbackRequest{ID: "c1", VersionID: "ver_1"}); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if err := f.service.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{"content.created", "content.updated", "content.rolled_back", "content.deleted"}
	got := f.events.names()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %s got %s", i, want[i], got[i])
		}
	}

	updated, ok := f.events.events[1].(events.ContentUpdated)
	if !ok || updated.Version.ID != "ver_2" || updated.Content.Data["title"] != "B" {
		t.Fatalf("unexpected update event %+v", f.events.events[1])
	}
	rolled, ok := f.events.events[2].(events.ContentRolledBack)
	if !ok || rolled.Version.ID != "ver_1" {
		t.Fatalf("unexpected rollback event %+v", f.events.events[2])
	}
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	registry := schema.NewRegistry(schema.NewMemoryRepository())
	if _, err := registry.Create(ctx, &schema.ContentType{ID: "counter", Fields: []schema.Field{{Code: "n", Type: schema.TypeNumber}}}); err != nil {
		t.Fatalf("create type: %v", err)
	}
	svc := content.NewService(content.NewMemoryStore(), registry)
	if _, err := svc.Create(ctx, content.CreateContentRequest{ID: "c1", ContentTypeID: "counter", Data: map[string]any{"n": 0}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	const writers = 25
	var wg sync.WaitGroup
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.Update(ctx, content.UpdateContentRequest{ID: "c1", Data: map[string]any{"n": n}}); err != nil {
				t.Errorf("update %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := svc.Versions(ctx, domain.EntityContent, "c1")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(entries) != writers+1 {
		t.Fatalf("expected %d versions, got %d", writers+1, len(entries))
	}
	seen := map[string]struct{}{}
	for i, entry := range entries {
		if entry.Sequence != i+1 {
			t.Fatalf("expected sequence %d, got %d", i+1, entry.Sequence)
		}
		if _, dup := seen[entry.ID]; dup {
			t.Fatalf("duplicate version id %s", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}

	record, _ := svc.Get(ctx, "c1")
	last := entries[len(entries)-1]
	if record.Data["n"] != last.Snapshot["n"] {
		t.Fatalf("expected record to match latest snapshot, got %v vs %v", record.Data, last.Snapshot)
	}
}
