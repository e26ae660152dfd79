package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONField validates structured values against a JSON Schema supplied in
// settings["schema"]. Compiled schemas are cached by their encoded form.
type JSONField struct {
	cache *sync.Map
}

// NewJSONField returns a JSONField with its own compile cache.
func NewJSONField() JSONField {
	return JSONField{cache: &sync.Map{}}
}

func (JSONField) Name() string { return TypeJSON }

func (f JSONField) CheckSettings(settings map[string]any) error {
	if _, ok := settings["schema"]; !ok {
		return nil
	}
	if _, err := f.compiled(settings); err != nil {
		return fmt.Errorf("%w: schema %v", ErrInvalidFieldSettings, err)
	}
	return nil
}

func (f JSONField) Validate(value any, settings map[string]any) error {
	compiled, err := f.compiled(settings)
	if err != nil {
		return fmt.Errorf("invalid schema: %v", err)
	}
	if compiled == nil {
		return nil
	}

	// Round trip through JSON so Go slices, structs and integer kinds match
	// what the validator expects.
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("must be JSON encodable: %v", err)
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return fmt.Errorf("must be JSON encodable: %v", err)
	}

	if err := compiled.Validate(decoded); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return errors.New(strings.Join(schemaIssues(validationErr), "; "))
		}
		return err
	}
	return nil
}

func (f JSONField) compiled(settings map[string]any) (*jsonschema.Schema, error) {
	raw, ok := settings["schema"]
	if !ok || raw == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	key := string(encoded)
	if f.cache != nil {
		if cached, ok := f.cache.Load(key); ok {
			return cached.(*jsonschema.Schema), nil
		}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("field.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile("field.json")
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		f.cache.Store(key, compiled)
	}
	return compiled, nil
}

func schemaIssues(err *jsonschema.ValidationError) []string {
	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "/"
			}
			issues = append(issues, fmt.Sprintf("%s: %s", location, strings.TrimSpace(node.Message)))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
