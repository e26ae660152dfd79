package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrContentTypeIDRequired = errors.New("schema: content type id required")
	ErrContentTypeNotFound   = errors.New("schema: content type not found")
	ErrContentTypeExists     = errors.New("schema: content type already exists")
	ErrFieldCodeRequired     = errors.New("schema: field code required")
	ErrDuplicateFieldCode    = errors.New("schema: duplicate field code")
	ErrUnknownFieldType      = errors.New("schema: unknown field type")
	ErrInvalidFieldSettings  = errors.New("schema: invalid field settings")
	ErrValidation            = errors.New("schema: validation failed")
)

// FieldError is a single validation failure for one field of a data map.
type FieldError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError carries every FieldError raised for a data map.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, len(e.Errors))
	for i, fieldErr := range e.Errors {
		parts[i] = fieldErr.String()
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// FieldErrors extracts the field errors carried by err, if any.
func FieldErrors(err error) []FieldError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return validationErr.Errors
	}
	return nil
}

// NotFoundError reports a missing content type.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema: content type %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrContentTypeNotFound
}

// AlreadyExistsError reports a content type id collision on create.
type AlreadyExistsError struct {
	ID string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("schema: content type %q already exists", e.ID)
}

func (e *AlreadyExistsError) Unwrap() error {
	return ErrContentTypeExists
}
