package schema

import (
	"maps"
	"slices"
	"time"
)

// ContentType is a named schema describing the fields a content record may
// carry.
type ContentType struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	Fields    []Field   `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Field describes one entry of a content type. Type names a registered
// FieldType and Settings carries its configuration (maxLength, min, ...).
type Field struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Label     string         `json:"label"`
	Type      string         `json:"type"`
	Settings  map[string]any `json:"settings,omitempty"`
	SortOrder int            `json:"sort_order"`
}

// FieldByCode returns the field with the given code.
func (ct *ContentType) FieldByCode(code string) (Field, bool) {
	if ct == nil {
		return Field{}, false
	}
	for _, field := range ct.Fields {
		if field.Code == code {
			return field, true
		}
	}
	return Field{}, false
}

// Clone returns a deep enough copy for safe storage: field settings maps are
// copied one level down.
func (ct *ContentType) Clone() *ContentType {
	if ct == nil {
		return nil
	}
	cloned := *ct
	cloned.Fields = make([]Field, len(ct.Fields))
	for i, field := range ct.Fields {
		field.Settings = maps.Clone(field.Settings)
		cloned.Fields[i] = field
	}
	return &cloned
}

// orderedFields returns fields sorted by SortOrder, keeping declaration order
// for ties.
func orderedFields(fields []Field) []Field {
	ordered := slices.Clone(fields)
	slices.SortStableFunc(ordered, func(a, b Field) int {
		return a.SortOrder - b.SortOrder
	})
	return ordered
}
