package contentcmd

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-polycontent/internal/commands"
	"github.com/goliatone/go-polycontent/internal/content"
	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/metrics"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/variants"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers, e.g. a go-command registry.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Services are the collaborators the handlers delegate to.
type Services struct {
	Content      content.Service
	Variants     variants.Service
	Translations translations.Service
}

// HandlerSet groups the handlers built by RegisterContentCommands.
type HandlerSet struct {
	Create            *commands.Handler[CreateContentCommand]
	Update            *commands.Handler[UpdateContentCommand]
	Rollback          *commands.Handler[RollbackContentCommand]
	Delete            *commands.Handler[DeleteContentCommand]
	CreateVariant     *commands.Handler[CreateVariantCommand]
	UpsertTranslation *commands.Handler[UpsertTranslationCommand]
}

type Option func(*options)

type options struct {
	timeout time.Duration
	metrics *metrics.Metrics
}

// WithTimeout bounds every handler. Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// RegisterContentCommands builds the handlers and registers each with reg
// when it is not nil.
func RegisterContentCommands(reg CommandRegistry, services Services, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if services.Content == nil {
		return nil, errors.New("content command registration: content service is nil")
	}
	cfg := options{timeout: commands.DefaultCommandTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	logger := commands.CommandLogger(provider, "content")

	set := &HandlerSet{
		Create: newHandler(cfg, logger, "content.create", func(ctx context.Context, msg CreateContentCommand) error {
			_, err := services.Content.Create(ctx, content.CreateContentRequest{
				ID:            msg.ID,
				ContentTypeID: msg.ContentTypeID,
				Data:          msg.Data,
			})
			return err
		}),
		Update: newHandler(cfg, logger, "content.update", func(ctx context.Context, msg UpdateContentCommand) error {
			_, err := services.Content.Update(ctx, content.UpdateContentRequest{
				ID:     msg.ID,
				Status: msg.Status,
				Data:   msg.Data,
			})
			return err
		}),
		Rollback: newHandler(cfg, logger, "content.rollback", func(ctx context.Context, msg RollbackContentCommand) error {
			_, err := services.Content.Rollback(ctx, content.RollbackRequest{ID: msg.ID, VersionID: msg.VersionID})
			return err
		}),
		Delete: newHandler(cfg, logger, "content.delete", func(ctx context.Context, msg DeleteContentCommand) error {
			return services.Content.Delete(ctx, msg.ID)
		}),
	}

	if services.Variants != nil {
		set.CreateVariant = newHandler(cfg, logger, "variant.create", func(ctx context.Context, msg CreateVariantCommand) error {
			_, err := services.Variants.Create(ctx, variants.CreateVariantRequest{
				ID:        msg.ID,
				ContentID: msg.ContentID,
				Dimension: msg.Dimension,
				Overrides: msg.Overrides,
			})
			return err
		})
	}
	if services.Translations != nil {
		set.UpsertTranslation = newHandler(cfg, logger, "translation.upsert", func(ctx context.Context, msg UpsertTranslationCommand) error {
			_, err := services.Translations.AddOrUpdate(ctx, translations.AddOrUpdateRequest{
				EntityType: domain.EntityType(msg.EntityType),
				EntityID:   msg.EntityID,
				Locale:     msg.Locale,
				Fields:     msg.Fields,
			})
			return err
		})
	}

	if reg != nil {
		for _, handler := range set.handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func (s *HandlerSet) handlers() []any {
	out := []any{s.Create, s.Update, s.Rollback, s.Delete}
	if s.CreateVariant != nil {
		out = append(out, s.CreateVariant)
	}
	if s.UpsertTranslation != nil {
		out = append(out, s.UpsertTranslation)
	}
	return out
}

func newHandler[T command.Message](cfg options, logger interfaces.Logger, operation string, fn func(context.Context, T) error) *commands.Handler[T] {
	return commands.NewHandler[T](command.CommandFunc[T](fn),
		commands.WithLogger[T](logger),
		commands.WithTimeout[T](cfg.timeout),
		commands.WithOperation[T](operation),
		commands.WithMetrics[T](cfg.metrics),
	)
}
