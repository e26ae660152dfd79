package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

const (
	rootModule         = "polycontent"
	contentModule      = "polycontent.content"
	schemaModule       = "polycontent.schema"
	variantsModule     = "polycontent.variants"
	translationsModule = "polycontent.translations"
	resolverModule     = "polycontent.resolver"
	eventsModule       = "polycontent.events"
	commandsModule     = "polycontent.commands"
)

// Common structured field keys.
const (
	FieldContentID     = "content_id"
	FieldContentTypeID = "content_type_id"
	FieldVersionID     = "version_id"
	FieldVariantID     = "variant_id"
	FieldDimension     = "dimension"
	FieldLocale        = "locale"
	FieldEvent         = "event"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger; the module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

func SchemaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schemaModule)
}

func VariantsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, variantsModule)
}

func TranslationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translationsModule)
}

func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

func EventsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, eventsModule)
}

func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithResolutionContext annotates a logger with the dimension and locale of a
// resolution request. Blank values are skipped.
func WithResolutionContext(logger interfaces.Logger, contentID, dimension, locale string) interfaces.Logger {
	fields := map[string]any{}
	if v := strings.TrimSpace(contentID); v != "" {
		fields[FieldContentID] = v
	}
	if v := strings.TrimSpace(dimension); v != "" {
		fields[FieldDimension] = v
	}
	if v := strings.TrimSpace(locale); v != "" {
		fields[FieldLocale] = v
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger   { return n }
func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
