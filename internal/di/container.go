package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-polycontent/internal/commands/contentcmd"
	"github.com/goliatone/go-polycontent/internal/content"
	"github.com/goliatone/go-polycontent/internal/events"
	"github.com/goliatone/go-polycontent/internal/locks"
	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/internal/logging/console"
	"github.com/goliatone/go-polycontent/internal/logging/gologger"
	"github.com/goliatone/go-polycontent/internal/metrics"
	"github.com/goliatone/go-polycontent/internal/resolver"
	"github.com/goliatone/go-polycontent/internal/runtimeconfig"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/storage"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/variants"
	"github.com/goliatone/go-polycontent/pkg/activity"
	"github.com/goliatone/go-polycontent/pkg/activity/usersink"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Container wires the engine's services from a runtime configuration. The
// memory provider keeps everything in process; the bun provider persists
// through a sqlite or postgres database.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	clock          func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	metrics    *metrics.Metrics

	activityHooks activity.Hooks
	eventSinks    []interfaces.EventSink
	bus           *events.Bus
	dispatcher    events.Dispatcher

	commandRegistry contentcmd.CommandRegistry

	typeRepo        schema.Repository
	contentStore    content.Store
	variantRepo     variants.Repository
	translationRepo translations.Repository

	types        schema.Registry
	contentSvc   content.Service
	variantSvc   variants.Service
	translateSvc translations.Service
	resolver     *resolver.Engine
	commands     *contentcmd.HandlerSet
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithClock overrides the timestamp source of every service.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMetricsRegistry registers collectors with reg instead of a private
// registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(c *Container) {
		if reg != nil {
			c.registerer = reg
			c.gatherer = reg
		}
	}
}

func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithActivitySink records lifecycle activity through a go-users sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		if sink != nil {
			c.activityHooks = append(c.activityHooks, usersink.Hook{Sink: sink})
		}
	}
}

// WithEventSink subscribes sink to lifecycle event envelopes.
func WithEventSink(sink interfaces.EventSink) Option {
	return func(c *Container) {
		if sink != nil {
			c.eventSinks = append(c.eventSinks, sink)
		}
	}
}

// WithCommandRegistry registers the command handlers with reg, e.g. a
// go-command registry.
func WithCommandRegistry(reg contentcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{
		Config: cfg,
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func(context.Context) error{
		c.configureLogging,
		c.configureMetrics,
		c.configureStorage,
		c.configureCacheDefaults,
		c.configureRepositories,
		c.configureEvents,
		c.configureServices,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close(ctx)
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogging(context.Context) error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: logging: %w", err)
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureMetrics(context.Context) error {
	if !c.Config.Features.Metrics {
		return nil
	}
	if c.registerer == nil {
		reg := prometheus.NewRegistry()
		c.registerer = reg
		c.gatherer = reg
	}
	c.metrics = metrics.New(c.registerer, c.Config.Metrics.Namespace)
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider)) != runtimeconfig.ProviderBun {
		return nil
	}
	if c.bunDB == nil {
		db, err := storage.Open(ctx, storage.Options{
			Dialect: c.Config.Storage.Dialect,
			DSN:     c.Config.Storage.DSN,
		})
		if err != nil {
			return fmt.Errorf("di: storage: %w", err)
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.Config.Storage.Migrate {
		applied, err := storage.Migrate(ctx, c.bunDB, c.Config.Storage.Dialect)
		if err != nil {
			return fmt.Errorf("di: migrate: %w", err)
		}
		if len(applied) > 0 {
			logging.ModuleLogger(c.loggerProvider, "polycontent.storage").Info("storage.migrate.applied", "migrations", applied)
		}
	}
	return nil
}

func (c *Container) configureCacheDefaults(context.Context) error {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories(context.Context) error {
	if c.bunDB != nil {
		c.typeRepo = schema.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.contentStore = content.NewBunStore(c.bunDB)
		c.variantRepo = variants.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.translationRepo = translations.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return nil
	}
	c.typeRepo = schema.NewMemoryRepository()
	c.contentStore = content.NewMemoryStore()
	c.variantRepo = variants.NewMemoryRepository()
	c.translationRepo = translations.NewMemoryRepository()
	return nil
}

func (c *Container) configureEvents(context.Context) error {
	if !c.Config.Events.Enabled {
		c.dispatcher = events.Nop{}
		return nil
	}
	busOpts := []events.BusOption{events.WithLogger(logging.EventsLogger(c.loggerProvider))}
	if c.metrics != nil {
		busOpts = append(busOpts, events.WithObserver(c.metrics))
	}
	c.bus = events.NewBus(events.Config{
		Async:  c.Config.Events.Async,
		Buffer: c.Config.Events.Buffer,
	}, busOpts...)

	for _, sink := range c.eventSinks {
		c.bus.Subscribe(events.SinkHandler(sink, c.clock))
	}
	if c.Config.Features.Activity && len(c.activityHooks) > 0 {
		emitter := activity.NewEmitter(c.activityHooks, activity.Config{
			Enabled: true,
			Channel: c.Config.Events.Channel,
		})
		c.bus.Subscribe(events.ActivityHandler(emitter))
	}
	c.dispatcher = c.bus
	return nil
}

func (c *Container) configureServices(context.Context) error {
	provider := c.loggerProvider
	entityLocks := locks.NewKeyed()

	c.types = schema.NewRegistry(c.typeRepo,
		schema.WithClock(c.clock),
		schema.WithLogger(logging.SchemaLogger(provider)),
	)
	c.contentSvc = content.NewService(c.contentStore, c.types,
		content.WithClock(c.clock),
		content.WithDispatcher(c.dispatcher),
		content.WithLogger(logging.ContentLogger(provider)),
		content.WithMetrics(c.metrics),
		content.WithLocks(entityLocks),
	)
	c.variantSvc = variants.NewService(c.variantRepo,
		variants.WithClock(c.clock),
		variants.WithLogger(logging.VariantsLogger(provider)),
	)
	c.translateSvc = translations.NewService(c.translationRepo,
		translations.WithClock(c.clock),
		translations.WithLogger(logging.TranslationsLogger(provider)),
	)
	c.resolver = resolver.NewEngine(c.contentStore.Records(), c.variantRepo, c.translationRepo,
		resolver.WithLogger(logging.ResolverLogger(provider)),
		resolver.WithMetrics(c.metrics),
	)

	set, err := contentcmd.RegisterContentCommands(c.commandRegistry, contentcmd.Services{
		Content:      c.contentSvc,
		Variants:     c.variantSvc,
		Translations: c.translateSvc,
	}, provider,
		contentcmd.WithTimeout(c.Config.Commands.Timeout),
		contentcmd.WithMetrics(c.metrics),
	)
	if err != nil {
		return fmt.Errorf("di: commands: %w", err)
	}
	c.commands = set
	return nil
}

// Close flushes pending events and releases a database the container opened.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.bus != nil {
		if err := c.bus.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.ownsDB && c.bunDB != nil {
		if err := c.bunDB.Close(); err != nil {
			errs = append(errs, err)
		}
		c.bunDB = nil
	}
	return errors.Join(errs...)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) BunDB() *bun.DB { return c.bunDB }
func (c *Container) Metrics() *metrics.Metrics { return c.metrics }

// Gatherer exposes the metrics registry, or nil when metrics are disabled.
func (c *Container) Gatherer() prometheus.Gatherer { return c.gatherer }

func (c *Container) ContentTypes() schema.Registry { return c.types }
func (c *Container) ContentService() content.Service { return c.contentSvc }
func (c *Container) VariantService() variants.Service { return c.variantSvc }
func (c *Container) TranslationService() translations.Service { return c.translateSvc }
func (c *Container) Resolver() *resolver.Engine { return c.resolver }
func (c *Container) Commands() *contentcmd.HandlerSet { return c.commands }
