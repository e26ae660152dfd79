package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-polycontent/internal/content"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/variants"
	"github.com/goliatone/go-polycontent/internal/versions"
)

const (
	CodeCommandValidation   = "COMMAND_VALIDATION_FAILED"
	CodeContextCanceled     = "COMMAND_CONTEXT_CANCELED"
	CodeContextTimeout      = "COMMAND_CONTEXT_TIMEOUT"
	CodeContextError        = "COMMAND_CONTEXT_ERROR"
	CodeExecuteFailed       = "COMMAND_EXECUTION_FAILED"
	CodeContentValidation   = "CONTENT_VALIDATION_FAILED"
	CodeContentTypeNotFound = "CONTENT_TYPE_NOT_FOUND"
	CodeContentNotFound     = "CONTENT_NOT_FOUND"
	CodeContentExists       = "CONTENT_EXISTS"
	CodeVersionNotFound     = "VERSION_NOT_FOUND"
	CodeVariantNotFound     = "VARIANT_NOT_FOUND"
	CodeTranslationNotFound = "TRANSLATION_NOT_FOUND"
)

// WrapValidationError tags message validation failures.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(CodeCommandValidation)
}

func WrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(CodeContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(CodeContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(CodeContextError)
	}
}

// WrapExecuteError tags a service error with a category and a text code
// naming the domain failure. Schema validation failures keep the
// validation category so callers can surface the field errors.
func WrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, schema.ErrValidation) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "content validation failed").
			WithTextCode(CodeContentValidation)
	}
	code := CodeExecuteFailed
	switch {
	case errors.Is(err, schema.ErrContentTypeNotFound):
		code = CodeContentTypeNotFound
	case errors.Is(err, content.ErrContentNotFound):
		code = CodeContentNotFound
	case errors.Is(err, content.ErrContentExists):
		code = CodeContentExists
	case errors.Is(err, versions.ErrVersionNotFound):
		code = CodeVersionNotFound
	case errors.Is(err, variants.ErrVariantNotFound):
		code = CodeVariantNotFound
	case errors.Is(err, translations.ErrTranslationNotFound):
		code = CodeTranslationNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").WithTextCode(code)
}

// TextCode returns the text code carried by a wrapped command error.
func TextCode(err error) string {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) && wrapped != nil {
		return wrapped.TextCode
	}
	return ""
}
