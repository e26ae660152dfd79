package polycontent_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-polycontent"
	"github.com/goliatone/go-polycontent/internal/commands/contentcmd"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/variants"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

type sinkRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *sinkRecorder) Publish(_ context.Context, envelope interfaces.EventEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, envelope.Name)
	return nil
}

func (r *sinkRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func newModule(t *testing.T, opts ...polycontent.Option) *polycontent.Module {
	t.Helper()
	ctx := context.Background()
	cfg := polycontent.DefaultConfig()
	cfg.Events.Async = false

	module, err := polycontent.New(ctx, cfg, opts...)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close(ctx) })

	_, err = module.ContentTypes().Create(ctx, &polycontent.ContentType{
		ID: "product",
		Fields: []polycontent.Field{
			{Code: "name", Type: schema.TypeText, Settings: map[string]any{"maxLength": 40, "required": true}, SortOrder: 1},
			{Code: "tagline", Type: schema.TypeText, SortOrder: 2},
			{Code: "price", Type: schema.TypeNumber, Settings: map[string]any{"min": 0}, SortOrder: 3},
		},
	})
	if err != nil {
		t.Fatalf("create content type: %v", err)
	}
	return module
}

func TestModuleVersionLifecycle(t *testing.T) {
	ctx := context.Background()
	sink := &sinkRecorder{}
	module := newModule(t, polycontent.WithEventSink(sink))

	if _, err := module.CreateContent(ctx, "p1", "product", map[string]any{"name": "Lamp", "price": 10}); err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := module.UpdateContent(ctx, "p1", polycontent.StatusPublished, map[string]any{"name": "Desk Lamp", "price": 10})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != polycontent.StatusPublished {
		t.Fatalf("expected published, got %s", updated.Status)
	}

	entries, err := module.FindVersionsByEntity(ctx, polycontent.EntityContent, "p1")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Diff != nil {
		t.Fatalf("first entry must not carry a diff, got %v", *entries[0].Diff)
	}
	if entries[1].Diff == nil || *entries[1].Diff != `{"name":"Desk Lamp"}` {
		t.Fatalf("unexpected diff on second entry: %v", entries[1].Diff)
	}

	restored, err := module.Rollback(ctx, "p1", entries[0].ID)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if !reflect.DeepEqual(restored.Data, entries[0].Snapshot) {
		t.Fatalf("rollback must restore the snapshot, got %v want %v", restored.Data, entries[0].Snapshot)
	}
	if restored.Status != polycontent.StatusPublished {
		t.Fatalf("rollback must keep the status, got %s", restored.Status)
	}
	after, _ := module.FindVersionsByEntity(ctx, polycontent.EntityContent, "p1")
	if len(after) != 2 {
		t.Fatalf("rollback must not append, got %d entries", len(after))
	}

	if err := module.DeleteContent(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := module.FindContent(ctx, "p1"); !errors.Is(err, polycontent.ErrContentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	want := []string{"content.created", "content.updated", "content.rolled_back", "content.deleted"}
	if got := sink.snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestModuleCreateAggregatesFieldErrors(t *testing.T) {
	module := newModule(t)

	_, err := module.CreateContent(context.Background(), "p1", "product", map[string]any{"name": "", "price": -1})
	var verr *polycontent.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Errors) != 2 {
		t.Fatalf("expected name and price errors, got %v", verr.Errors)
	}
	if !errors.Is(err, polycontent.ErrValidation) {
		t.Fatal("expected ErrValidation in chain")
	}

	_, err = module.CreateContent(context.Background(), "p2", "missing", map[string]any{"name": "x"})
	if !errors.Is(err, polycontent.ErrContentTypeNotFound) {
		t.Fatalf("expected content type not found, got %v", err)
	}
}

func TestModuleResolvesLayers(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)

	if _, err := module.CreateContent(ctx, "p1", "product", map[string]any{"name": "Lamp", "tagline": "Bright", "price": 10}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := module.Variants().Create(ctx, variants.CreateVariantRequest{
		ID: "p1_sale", ContentID: "p1", Dimension: "sale", Overrides: map[string]any{"price": 8, "tagline": "On sale"},
	}); err != nil {
		t.Fatalf("variant: %v", err)
	}
	if _, err := module.Translations().AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: polycontent.EntityVariant, EntityID: "p1_sale", Locale: "fr", Fields: map[string]any{"tagline": "En solde"},
	}); err != nil {
		t.Fatalf("translation: %v", err)
	}

	data, err := module.Resolve(ctx, "p1", "sale", "fr")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := map[string]any{"name": "Lamp", "tagline": "En solde", "price": 8}
	if !reflect.DeepEqual(data, want) {
		t.Fatalf("unexpected data: %v", data)
	}

	res, err := module.ResolveDetailed(ctx, polycontent.ResolveRequest{ContentID: "p1", Dimension: "sale", Locale: "de"})
	if err != nil {
		t.Fatalf("resolve detailed: %v", err)
	}
	if res.Translation != nil {
		t.Fatal("missing locale must fall back to the variant")
	}
	if res.Provenance["tagline"] != polycontent.LayerVariant || res.Provenance["name"] != polycontent.LayerBase {
		t.Fatalf("unexpected provenance: %v", res.Provenance)
	}

	record, _ := module.FindContent(ctx, "p1")
	if record.Data["tagline"] != "Bright" {
		t.Fatalf("resolution must not mutate the record, got %v", record.Data)
	}

	missing, err := module.Resolve(ctx, "nope", "sale", "fr")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for a missing record, got %v, %v", missing, err)
	}
}

func TestModuleCommandsShareServices(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)

	if err := module.Commands().Create.Execute(ctx, contentcmd.CreateContentCommand{
		ID: "p1", ContentTypeID: "product", Data: map[string]any{"name": "Lamp"},
	}); err != nil {
		t.Fatalf("create command: %v", err)
	}
	records, err := module.ListContent(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != "p1" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestModuleRejectsInvalidConfig(t *testing.T) {
	cfg := polycontent.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = " "
	if _, err := polycontent.New(context.Background(), cfg); !errors.Is(err, polycontent.ErrStorageDSNRequired) {
		t.Fatalf("expected dsn error, got %v", err)
	}
}

func TestModuleUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	module := newModule(t, polycontent.WithClock(func() time.Time { return fixed }))

	record, err := module.CreateContent(context.Background(), "p1", "product", map[string]any{"name": "Lamp"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !record.CreatedAt.Equal(fixed) {
		t.Fatalf("expected injected clock, got %s", record.CreatedAt)
	}
}
