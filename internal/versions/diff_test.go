package versions_test

import (
	"testing"

	"github.com/goliatone/go-polycontent/internal/versions"
)

func TestComputeDiffReportsChangedAndAddedKeys(t *testing.T) {
	prev := map[string]any{"title": "Hello", "body": "World", "tags": []any{"a"}}
	next := map[string]any{"title": "Hello", "body": "Planet", "tags": []any{"a"}, "cta": "Buy"}

	diff := versions.ComputeDiff(prev, next)
	if len(diff) != 2 || diff["body"] != "Planet" || diff["cta"] != "Buy" {
		t.Fatalf("unexpected diff %v", diff)
	}
}

func TestComputeDiffIgnoresRemovedKeys(t *testing.T) {
	diff := versions.ComputeDiff(map[string]any{"title": "Hello", "body": "x"}, map[string]any{"title": "Hello"})
	if len(diff) != 0 {
		t.Fatalf("expected removed keys to be absent from diff, got %v", diff)
	}
}

func TestEncodeDiff(t *testing.T) {
	encoded, err := versions.EncodeDiff(map[string]any{"body": "Planet"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if *encoded != `{"body":"Planet"}` {
		t.Fatalf("unexpected encoding %s", *encoded)
	}
	decoded, err := versions.DecodeDiff(encoded)
	if err != nil || decoded["body"] != "Planet" {
		t.Fatalf("unexpected decode %v %v", decoded, err)
	}

	empty, _ := versions.EncodeDiff(nil)
	if *empty != "{}" {
		t.Fatalf("expected empty object, got %s", *empty)
	}
	if got, _ := versions.DecodeDiff(nil); got != nil {
		t.Fatalf("expected nil for nil diff")
	}
}
