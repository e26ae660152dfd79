package translations_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/translations"
)

func TestAddOrUpdateReusesIDForSameTriple(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := translations.NewService(translations.NewMemoryRepository(),
		translations.WithClock(func() time.Time { return clock }),
	)

	first, err := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: domain.EntityContent, EntityID: "c1", Locale: "de", Fields: map[string]any{"title": "Hallo"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.HasPrefix(first.ID, "trans_") {
		t.Fatalf("expected trans_ prefix, got %q", first.ID)
	}

	clock = clock.Add(time.Hour)
	second, err := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: domain.EntityContent, EntityID: "c1", Locale: "de", Fields: map[string]any{"title": "Servus"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected id reuse, got %q and %q", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) || !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected created kept and updated bumped, got %+v", second)
	}

	list, err := svc.ListByEntity(ctx, domain.EntityContent, "c1")
	if err != nil || len(list) != 1 || list[0].Fields["title"] != "Servus" {
		t.Fatalf("expected a single updated translation, got %+v %v", list, err)
	}
}

func TestAddOrUpdateSeparatesEntityTypes(t *testing.T) {
	ctx := context.Background()
	svc := translations.NewService(translations.NewMemoryRepository())
	a, _ := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{EntityType: domain.EntityContent, EntityID: "x", Locale: "fr"})
	b, _ := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{EntityType: domain.EntityVariant, EntityID: "x", Locale: "fr"})
	if a == nil || b == nil || a.ID == b.ID {
		t.Fatalf("expected distinct translations per entity type, got %+v %+v", a, b)
	}
}

func TestAddOrUpdateValidatesKey(t *testing.T) {
	ctx := context.Background()
	svc := translations.NewService(translations.NewMemoryRepository())

	cases := []struct {
		name string
		req  translations.AddOrUpdateRequest
		want error
	}{
		{"entity type", translations.AddOrUpdateRequest{EntityType: "page", EntityID: "c1", Locale: "de"}, translations.ErrInvalidEntityType},
		{"entity id", translations.AddOrUpdateRequest{EntityType: domain.EntityContent, Locale: "de"}, translations.ErrEntityIDRequired},
		{"locale", translations.AddOrUpdateRequest{EntityType: domain.EntityContent, EntityID: "c1", Locale: "  "}, translations.ErrLocaleRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddOrUpdate(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := translations.NewService(translations.NewMemoryRepository())
	saved, err := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{EntityType: domain.EntityVariant, EntityID: "v1", Locale: "it"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := svc.Get(ctx, domain.EntityVariant, "v1", "it")
	if err != nil || got.ID != saved.ID {
		t.Fatalf("expected lookup by triple, got %+v %v", got, err)
	}
	if err := svc.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, domain.EntityVariant, "v1", "it"); !errors.Is(err, translations.ErrTranslationNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
