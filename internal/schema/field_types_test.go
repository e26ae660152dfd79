package schema_test

import (
	"testing"

	"github.com/goliatone/go-polycontent/internal/schema"
)

func TestTextFieldRules(t *testing.T) {
	text := schema.TextField{}
	settings := map[string]any{"minLength": 2, "maxLength": 4, "pattern": "^[a-z]+$"}

	cases := map[string]struct {
		value any
		ok    bool
	}{
		"valid":       {"abc", true},
		"too short":   {"a", false},
		"too long":    {"abcde", false},
		"pattern":     {"AB", false},
		"not string":  {12, false},
		"multibyte":   {"äöü", false},
		"empty short": {"", false},
	}
	for name, tc := range cases {
		err := text.Validate(tc.value, settings)
		if tc.ok && err != nil {
			t.Fatalf("%s: expected valid, got %v", name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTextFieldRequired(t *testing.T) {
	if err := (schema.TextField{}).Validate("", map[string]any{"required": true}); err == nil {
		t.Fatalf("expected blank required value to fail")
	}
	if err := (schema.TextField{}).Validate("", nil); err != nil {
		t.Fatalf("expected blank optional value to pass, got %v", err)
	}
}

func TestTextFieldCheckSettings(t *testing.T) {
	if err := (schema.TextField{}).CheckSettings(map[string]any{"maxLength": "ten"}); err == nil {
		t.Fatalf("expected non numeric maxLength to be rejected")
	}
	if err := (schema.TextField{}).CheckSettings(map[string]any{"pattern": "("}); err == nil {
		t.Fatalf("expected invalid pattern to be rejected")
	}
}

func TestNumberFieldBounds(t *testing.T) {
	number := schema.NumberField{}
	settings := map[string]any{"min": 0, "max": 10.5}

	for _, value := range []any{0, int64(3), 10.5, uint8(7)} {
		if err := number.Validate(value, settings); err != nil {
			t.Fatalf("expected %v to pass, got %v", value, err)
		}
	}
	for _, value := range []any{-1, 11, "5"} {
		if err := number.Validate(value, settings); err == nil {
			t.Fatalf("expected %v to fail", value)
		}
	}
}

func TestEnumField(t *testing.T) {
	enum := schema.EnumField{}
	settings := map[string]any{"options": []string{"news", "blog"}}
	if err := enum.CheckSettings(nil); err == nil {
		t.Fatalf("expected enum without options to be rejected")
	}
	if err := enum.Validate("blog", settings); err != nil {
		t.Fatalf("expected blog to pass, got %v", err)
	}
	if err := enum.Validate("video", settings); err == nil {
		t.Fatalf("expected video to fail")
	}
}

func TestJSONFieldSchema(t *testing.T) {
	field := schema.NewJSONField()
	settings := map[string]any{
		"schema": map[string]any{
			"type":     "object",
			"required": []any{"lat", "lng"},
			"properties": map[string]any{
				"lat": map[string]any{"type": "number"},
				"lng": map[string]any{"type": "number"},
			},
		},
	}
	if err := field.CheckSettings(settings); err != nil {
		t.Fatalf("check settings: %v", err)
	}
	if err := field.Validate(map[string]any{"lat": 52, "lng": 13.4}, settings); err != nil {
		t.Fatalf("expected coordinates to pass, got %v", err)
	}
	if err := field.Validate(map[string]any{"lat": "north"}, settings); err == nil {
		t.Fatalf("expected invalid coordinates to fail")
	}
	if err := field.CheckSettings(map[string]any{"schema": map[string]any{"type": 12}}); err == nil {
		t.Fatalf("expected invalid schema to be rejected")
	}
}

func TestFieldTypesRegistry(t *testing.T) {
	types := schema.DefaultFieldTypes()
	if _, ok := types.Lookup(" TEXT "); !ok {
		t.Fatalf("expected lookup to be case insensitive")
	}
	names := types.Names()
	if len(names) != 5 || names[0] != schema.TypeBoolean {
		t.Fatalf("unexpected names %v", names)
	}
}
