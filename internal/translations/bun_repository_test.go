package translations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/pkg/testsupport"
)

func TestBunRepositoryWithService(t *testing.T) {
	ctx := context.Background()
	svc := translations.NewService(translations.NewBunRepository(testsupport.NewBunDB(t)))

	first, err := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: domain.EntityVariant, EntityID: "var_x", Locale: "de_DE", Fields: map[string]any{"title": "Marke X"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: domain.EntityVariant, EntityID: "var_x", Locale: "de_DE", Fields: map[string]any{"title": "Marke X Titel"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected id reuse, got %s and %s", first.ID, second.ID)
	}

	got, err := svc.Get(ctx, domain.EntityVariant, "var_x", "de_DE")
	if err != nil || got.Fields["title"] != "Marke X Titel" {
		t.Fatalf("expected updated fields, got %+v %v", got, err)
	}
	if _, err := svc.Get(ctx, domain.EntityContent, "var_x", "de_DE"); !errors.Is(err, translations.ErrTranslationNotFound) {
		t.Fatalf("expected entity type to be part of the key, got %v", err)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := svc.ListByEntity(ctx, domain.EntityVariant, "var_x")
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %d %v", len(list), err)
	}
}

func TestCachedBunRepositoryKeepsEntitiesApart(t *testing.T) {
	ctx := context.Background()
	cacheService, serializer := testsupport.NewCache(t)
	svc := translations.NewService(translations.NewBunRepositoryWithCache(testsupport.NewBunDB(t), cacheService, serializer))

	first, err := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: domain.EntityContent, EntityID: "a1", Locale: "de_DE", Fields: map[string]any{"title": "Hallo"},
	})
	if err != nil {
		t.Fatalf("add a1: %v", err)
	}
	second, err := svc.AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: domain.EntityContent, EntityID: "a2", Locale: "de_DE", Fields: map[string]any{"title": "Zwei"},
	})
	if err != nil {
		t.Fatalf("add a2: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected a new translation id for a2, both got %s", first.ID)
	}

	for entityID, want := range map[string]string{"a1": "Hallo", "a2": "Zwei"} {
		got, err := svc.Get(ctx, domain.EntityContent, entityID, "de_DE")
		if err != nil || got.EntityID != entityID || got.Fields["title"] != want {
			t.Fatalf("expected %s=%s, got %+v %v", entityID, want, got, err)
		}
		list, err := svc.ListByEntity(ctx, domain.EntityContent, entityID)
		if err != nil || len(list) != 1 || list[0].EntityID != entityID {
			t.Fatalf("expected one translation for %s, got %+v %v", entityID, list, err)
		}
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if prefix := cacheService.LastPrefix(); prefix == "" || !cacheService.Covers(prefix) {
		t.Fatalf("invalidation prefix %q matches no cached key", prefix)
	}
}
