package schema

import "fmt"

// Validate checks data against the content type using the given field types.
// Only fields present in data are checked, so partial maps are accepted. All
// failures are returned, ordered by field SortOrder. Keys in data that the
// content type does not define are ignored.
func Validate(ct *ContentType, data map[string]any, types *FieldTypes) []FieldError {
	if ct == nil || len(data) == 0 {
		return nil
	}
	if types == nil {
		types = DefaultFieldTypes()
	}

	var errs []FieldError
	for _, field := range orderedFields(ct.Fields) {
		value, present := data[field.Code]
		if !present {
			continue
		}
		fieldType, ok := types.Lookup(field.Type)
		if !ok {
			errs = append(errs, FieldError{
				Field:   field.Code,
				Value:   value,
				Message: fmt.Sprintf("unknown field type %q", field.Type),
			})
			continue
		}
		if err := fieldType.Validate(value, field.Settings); err != nil {
			errs = append(errs, FieldError{
				Field:   field.Code,
				Value:   value,
				Message: err.Error(),
			})
		}
	}
	return errs
}

// Check is Validate wrapped in a *ValidationError, or nil when data is valid.
func Check(ct *ContentType, data map[string]any, types *FieldTypes) error {
	if errs := Validate(ct, data, types); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
