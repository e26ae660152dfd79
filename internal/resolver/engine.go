// Package resolver layers variant and translation overlays on top of a
// content record's live data.
package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-polycontent/internal/content"
	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/internal/metrics"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/util"
	"github.com/goliatone/go-polycontent/internal/variants"
	"github.com/goliatone/go-polycontent/pkg/interfaces"
)

// Layer names the source that supplied a resolved key.
type Layer string

const (
	LayerBase        Layer = "base"
	LayerVariant     Layer = "variant"
	LayerTranslation Layer = "translation"
)

// Request selects the record and optional overlays. Blank Dimension or
// Locale skip the corresponding layer.
type Request struct {
	ContentID string
	Dimension string
	Locale    string
}

// Resolution is the merged view. Variant and Translation are nil when the
// layer was skipped or had no match.
type Resolution struct {
	ContentID   string
	Data        map[string]any
	Variant     *variants.Variant
	Translation *translations.Translation
	Provenance  map[string]Layer
}

// Layers lists the overlays that contributed, in application order.
func (r *Resolution) Layers() []Layer {
	layers := []Layer{LayerBase}
	if r.Variant != nil {
		layers = append(layers, LayerVariant)
	}
	if r.Translation != nil {
		layers = append(layers, LayerTranslation)
	}
	return layers
}

type RecordReader interface {
	GetByID(ctx context.Context, id string) (*content.Record, error)
}

type VariantFinder interface {
	FindByContentAndDimension(ctx context.Context, contentID, dimension string) (*variants.Variant, error)
}

type TranslationFinder interface {
	FindByEntityAndLocale(ctx context.Context, entityType domain.EntityType, entityID, locale string) (*translations.Translation, error)
}

type Option func(*Engine)

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine resolves content. It only reads; stored data is never mutated.
type Engine struct {
	records      RecordReader
	variants     VariantFinder
	translations TranslationFinder
	logger       interfaces.Logger
	metrics      *metrics.Metrics
}

func NewEngine(records RecordReader, variantRepo VariantFinder, translationRepo TranslationFinder, opts ...Option) *Engine {
	e := &Engine{
		records:      records,
		variants:     variantRepo,
		translations: translationRepo,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Resolve returns nil, nil when the record does not exist.
func (e *Engine) Resolve(ctx context.Context, req Request) (res *Resolution, err error) {
	started := time.Now()
	defer func() {
		e.metrics.ObserveOperation("resolve", started, err)
		if err != nil {
			return
		}
		if res == nil {
			e.metrics.Resolved(false)
			return
		}
		layers := make([]string, 0, 2)
		for _, layer := range res.Layers()[1:] {
			layers = append(layers, string(layer))
		}
		e.metrics.Resolved(true, layers...)
	}()

	contentID := strings.TrimSpace(req.ContentID)
	dimension := strings.TrimSpace(req.Dimension)
	locale := strings.TrimSpace(req.Locale)
	logger := logging.WithResolutionContext(e.logger.WithContext(ctx), contentID, dimension, locale)

	record, err := e.records.GetByID(ctx, contentID)
	if errors.Is(err, content.ErrContentNotFound) {
		logger.Debug("resolver.resolve.miss")
		return nil, nil
	}
	if err != nil {
		logger.Error("resolver.resolve.failed", "error", err)
		return nil, err
	}

	res = &Resolution{
		ContentID:  contentID,
		Data:       util.CloneData(record.Data),
		Provenance: make(map[string]Layer, len(record.Data)),
	}
	if res.Data == nil {
		res.Data = map[string]any{}
	}
	for key := range res.Data {
		res.Provenance[key] = LayerBase
	}

	translationType, translationID := domain.EntityContent, contentID
	if dimension != "" {
		variant, err := e.variants.FindByContentAndDimension(ctx, contentID, dimension)
		switch {
		case err == nil:
			res.Variant = variant
			res.apply(variant.Overrides, LayerVariant)
			translationType, translationID = domain.EntityVariant, variant.ID
		case errors.Is(err, variants.ErrVariantNotFound):
		default:
			logger.Error("resolver.variant.failed", "error", err)
			return nil, err
		}
	}

	if locale != "" {
		translation, err := e.translations.FindByEntityAndLocale(ctx, translationType, translationID, locale)
		switch {
		case err == nil:
			res.Translation = translation
			res.apply(translation.Fields, LayerTranslation)
		case errors.Is(err, translations.ErrTranslationNotFound):
		default:
			logger.Error("resolver.translation.failed", "error", err)
			return nil, err
		}
	}

	logger.Debug("resolver.resolve.success", "layers", res.Layers())
	return res, nil
}

// ResolveData returns only the merged map, nil when the record is missing.
func (e *Engine) ResolveData(ctx context.Context, req Request) (map[string]any, error) {
	res, err := e.Resolve(ctx, req)
	if err != nil || res == nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *Resolution) apply(layer map[string]any, source Layer) {
	r.Data = util.Overlay(r.Data, layer)
	for key := range layer {
		r.Provenance[key] = source
	}
}
