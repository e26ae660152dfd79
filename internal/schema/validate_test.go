package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-polycontent/internal/schema"
)

func articleType() *schema.ContentType {
	return &schema.ContentType{
		ID:    "article",
		Label: "Article",
		Fields: []schema.Field{
			{Code: "title", Type: schema.TypeText, Settings: map[string]any{"maxLength": 10}, SortOrder: 1},
			{Code: "body", Type: schema.TypeText, SortOrder: 2},
			{Code: "rating", Type: schema.TypeNumber, Settings: map[string]any{"min": 1, "max": 5}, SortOrder: 3},
			{Code: "featured", Type: schema.TypeBoolean, SortOrder: 4},
		},
	}
}

func TestValidateAggregatesEveryFailure(t *testing.T) {
	errs := schema.Validate(articleType(), map[string]any{
		"title":  "this title is far too long",
		"body":   42,
		"rating": 0,
	}, nil)

	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(errs), errs)
	}
	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	if strings.Join(fields, ",") != "title,body,rating" {
		t.Fatalf("expected errors in field order, got %v", fields)
	}
	if errs[1].Value != 42 {
		t.Fatalf("expected offending value to be reported, got %v", errs[1].Value)
	}
}

func TestValidateSkipsAbsentFields(t *testing.T) {
	if errs := schema.Validate(articleType(), map[string]any{"title": "short"}, nil); len(errs) != 0 {
		t.Fatalf("expected partial data to pass, got %+v", errs)
	}
	if errs := schema.Validate(articleType(), map[string]any{"unknown": 1}, nil); len(errs) != 0 {
		t.Fatalf("expected undefined keys to be ignored, got %+v", errs)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	data := map[string]any{"title": "x", "rating": 9}
	first := schema.Validate(articleType(), data, nil)
	second := schema.Validate(articleType(), data, nil)
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestValidateUnknownFieldType(t *testing.T) {
	ct := &schema.ContentType{ID: "x", Fields: []schema.Field{{Code: "geo", Type: "geopoint"}}}
	errs := schema.Validate(ct, map[string]any{"geo": "1,2"}, nil)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "geopoint") {
		t.Fatalf("expected unknown type error, got %+v", errs)
	}
}

func TestCheckWrapsValidationError(t *testing.T) {
	err := schema.Check(articleType(), map[string]any{"featured": "yes"}, nil)
	if !errors.Is(err, schema.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	fieldErrs := schema.FieldErrors(err)
	if len(fieldErrs) != 1 || fieldErrs[0].Field != "featured" {
		t.Fatalf("unexpected field errors %+v", fieldErrs)
	}
	if schema.Check(articleType(), map[string]any{"featured": true}, nil) != nil {
		t.Fatalf("expected valid data to pass")
	}
}
