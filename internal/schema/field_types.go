package schema

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Built-in field type names.
const (
	TypeText    = "text"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeEnum    = "enum"
	TypeJSON    = "json"
)

// FieldType validates values of one kind of field.
type FieldType interface {
	Name() string
	// CheckSettings rejects settings the type cannot work with.
	CheckSettings(settings map[string]any) error
	// Validate returns a non-nil error describing why value is not acceptable.
	Validate(value any, settings map[string]any) error
}

// FieldTypes is a registry of field types keyed by name. It is safe for
// concurrent use.
type FieldTypes struct {
	mu    sync.RWMutex
	types map[string]FieldType
}

// NewFieldTypes returns a registry holding the given types.
func NewFieldTypes(types ...FieldType) *FieldTypes {
	registry := &FieldTypes{types: make(map[string]FieldType, len(types))}
	for _, fieldType := range types {
		registry.Register(fieldType)
	}
	return registry
}

// DefaultFieldTypes returns a registry with the built-in types.
func DefaultFieldTypes() *FieldTypes {
	return NewFieldTypes(TextField{}, NumberField{}, BooleanField{}, EnumField{}, NewJSONField())
}

// Register adds or replaces a field type.
func (r *FieldTypes) Register(fieldType FieldType) {
	if r == nil || fieldType == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[strings.ToLower(strings.TrimSpace(fieldType.Name()))] = fieldType
}

// Lookup returns the field type registered under name.
func (r *FieldTypes) Lookup(name string) (FieldType, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fieldType, ok := r.types[strings.ToLower(strings.TrimSpace(name))]
	return fieldType, ok
}

// Names lists registered type names in sorted order.
func (r *FieldTypes) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TextField accepts strings. Settings: maxLength, minLength (rune counts),
// pattern (regular expression) and required (non-empty).
type TextField struct{}

func (TextField) Name() string { return TypeText }

func (TextField) CheckSettings(settings map[string]any) error {
	for _, key := range []string{"maxLength", "minLength"} {
		if _, ok, err := intSetting(settings, key); ok && err != nil {
			return fmt.Errorf("%w: %s %v", ErrInvalidFieldSettings, key, err)
		}
	}
	if pattern, ok := settings["pattern"]; ok {
		text, isString := pattern.(string)
		if !isString {
			return fmt.Errorf("%w: pattern must be a string", ErrInvalidFieldSettings)
		}
		if _, err := regexp.Compile(text); err != nil {
			return fmt.Errorf("%w: pattern %v", ErrInvalidFieldSettings, err)
		}
	}
	return nil
}

func (TextField) Validate(value any, settings map[string]any) error {
	text, ok := value.(string)
	if !ok {
		return validation.NewError("validation_is_string", "must be a string")
	}

	rules := []validation.Rule{}
	if required, _ := settings["required"].(bool); required {
		rules = append(rules, validation.Required)
	}
	if limit, ok, err := intSetting(settings, "minLength"); ok && err == nil {
		rules = append(rules, validation.By(func(any) error {
			if utf8.RuneCountInString(text) < limit {
				return validation.NewError("validation_length_too_short", fmt.Sprintf("must be at least %d characters", limit))
			}
			return nil
		}))
	}
	if limit, ok, err := intSetting(settings, "maxLength"); ok && err == nil {
		rules = append(rules, validation.By(func(any) error {
			if utf8.RuneCountInString(text) > limit {
				return validation.NewError("validation_length_too_long", fmt.Sprintf("must be at most %d characters", limit))
			}
			return nil
		}))
	}
	if pattern, ok := settings["pattern"].(string); ok && pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return validation.NewError("validation_pattern_invalid", "has an invalid pattern")
		}
		rules = append(rules, validation.Match(re))
	}
	return validation.Validate(text, rules...)
}

// NumberField accepts any Go numeric kind. Settings: min, max.
type NumberField struct{}

func (NumberField) Name() string { return TypeNumber }

func (NumberField) CheckSettings(settings map[string]any) error {
	for _, key := range []string{"min", "max"} {
		if raw, ok := settings[key]; ok {
			if _, isNumber := toFloat(raw); !isNumber {
				return fmt.Errorf("%w: %s must be numeric", ErrInvalidFieldSettings, key)
			}
		}
	}
	return nil
}

func (NumberField) Validate(value any, settings map[string]any) error {
	number, ok := toFloat(value)
	if !ok {
		return validation.NewError("validation_is_number", "must be a number")
	}

	// ozzo threshold rules skip zero values, so bounds are checked directly.
	var rules []validation.Rule
	if bound, ok := toFloat(settings["min"]); ok {
		rules = append(rules, validation.By(func(any) error {
			if number < bound {
				return validation.NewError("validation_min_greater_equal_than_required", fmt.Sprintf("must be no less than %v", bound))
			}
			return nil
		}))
	}
	if bound, ok := toFloat(settings["max"]); ok {
		rules = append(rules, validation.By(func(any) error {
			if number > bound {
				return validation.NewError("validation_max_less_equal_than_required", fmt.Sprintf("must be no greater than %v", bound))
			}
			return nil
		}))
	}
	return validation.Validate(number, rules...)
}

// BooleanField accepts true or false.
type BooleanField struct{}

func (BooleanField) Name() string { return TypeBoolean }

func (BooleanField) CheckSettings(map[string]any) error { return nil }

func (BooleanField) Validate(value any, _ map[string]any) error {
	if _, ok := value.(bool); !ok {
		return validation.NewError("validation_is_bool", "must be a boolean")
	}
	return nil
}

// EnumField accepts one of settings["options"].
type EnumField struct{}

func (EnumField) Name() string { return TypeEnum }

func (EnumField) CheckSettings(settings map[string]any) error {
	if len(enumOptions(settings)) == 0 {
		return fmt.Errorf("%w: enum requires options", ErrInvalidFieldSettings)
	}
	return nil
}

func (EnumField) Validate(value any, settings map[string]any) error {
	options := enumOptions(settings)
	if value == nil || value == "" {
		return validation.NewError("validation_in_invalid", "must be a valid value")
	}
	return validation.Validate(value, validation.In(options...).Error("must be a valid value"))
}

func enumOptions(settings map[string]any) []any {
	switch options := settings["options"].(type) {
	case []any:
		return options
	case []string:
		out := make([]any, len(options))
		for i, option := range options {
			out[i] = option
		}
		return out
	default:
		return nil
	}
}

func intSetting(settings map[string]any, key string) (int, bool, error) {
	raw, ok := settings[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	number, isNumber := toFloat(raw)
	if !isNumber {
		return 0, true, errors.New("must be numeric")
	}
	if number < 0 || number != float64(int(number)) {
		return 0, true, errors.New("must be a non-negative integer")
	}
	return int(number), true, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
