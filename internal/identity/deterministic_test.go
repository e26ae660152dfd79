package identity_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-polycontent/internal/identity"
	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := identity.ContentTypeUUID("article")
	second := identity.ContentTypeUUID(" article ")
	if first != second {
		t.Fatalf("expected stable uuid, got %s and %s", first, second)
	}
	if first == uuid.Nil {
		t.Fatalf("expected non-nil uuid")
	}
	if identity.VariantUUID("article") == first {
		t.Fatalf("expected different kinds to produce different keys")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if identity.UUID("  ") != uuid.Nil {
		t.Fatalf("expected nil uuid for empty key")
	}
}

func TestNewIDPrefix(t *testing.T) {
	id := identity.NewID("ver")
	if !strings.HasPrefix(id, "ver_") {
		t.Fatalf("expected ver_ prefix, got %q", id)
	}
	if identity.NewID("ver") == id {
		t.Fatalf("expected unique ids")
	}
}
