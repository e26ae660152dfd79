package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-polycontent"
	"github.com/goliatone/go-polycontent/internal/runtimeconfig"
	"github.com/goliatone/go-polycontent/internal/schema"
	"github.com/goliatone/go-polycontent/internal/translations"
	"github.com/goliatone/go-polycontent/internal/variants"
)

// NewDemoCommand walks through create, update, overlays, resolution and
// rollback against an in-memory module.
func NewDemoCommand(opts *cliOptions) *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an in-memory walkthrough",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			cfg.Storage.Provider = runtimeconfig.ProviderMemory
			cfg.Features.Metrics = cfg.Features.Metrics || showMetrics

			ctx := cmd.Context()
			module, err := polycontent.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer module.Close(ctx)

			out := cmd.OutOrStdout()
			if err := runDemo(ctx, module, out); err != nil {
				return err
			}
			if showMetrics {
				return printMetrics(module, out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print collected counters")
	return cmd
}

func runDemo(ctx context.Context, module *polycontent.Module, out io.Writer) error {
	_, err := module.ContentTypes().Create(ctx, &polycontent.ContentType{
		ID:    "article",
		Label: "Article",
		Fields: []polycontent.Field{
			{Code: "title", Type: schema.TypeText, Settings: map[string]any{"required": true, "maxLength": 80}, SortOrder: 1},
			{Code: "summary", Type: schema.TypeText, SortOrder: 2},
			{Code: "featured", Type: schema.TypeBoolean, SortOrder: 3},
		},
	})
	if err != nil {
		return err
	}

	if _, err := module.CreateContent(ctx, "welcome", "article", map[string]any{
		"title":   "Welcome",
		"summary": "Getting started",
	}); err != nil {
		return err
	}
	if _, err := module.UpdateContent(ctx, "welcome", polycontent.StatusPublished, map[string]any{
		"title":    "Welcome aboard",
		"summary":  "Getting started",
		"featured": true,
	}); err != nil {
		return err
	}
	if _, err := module.Variants().Create(ctx, variants.CreateVariantRequest{
		ID:        "welcome_mobile",
		ContentID: "welcome",
		Dimension: "mobile",
		Overrides: map[string]any{"summary": "Start here"},
	}); err != nil {
		return err
	}
	if _, err := module.Translations().AddOrUpdate(ctx, translations.AddOrUpdateRequest{
		EntityType: polycontent.EntityVariant,
		EntityID:   "welcome_mobile",
		Locale:     "es",
		Fields:     map[string]any{"summary": "Empieza aquí"},
	}); err != nil {
		return err
	}

	fmt.Fprintln(out, "# versions")
	entries, err := module.FindVersionsByEntity(ctx, polycontent.EntityContent, "welcome")
	if err != nil {
		return err
	}
	if err := writeJSON(out, entries); err != nil {
		return err
	}

	fmt.Fprintln(out, "# resolve mobile/es")
	res, err := module.ResolveDetailed(ctx, polycontent.ResolveRequest{ContentID: "welcome", Dimension: "mobile", Locale: "es"})
	if err != nil {
		return err
	}
	if err := writeJSON(out, res); err != nil {
		return err
	}

	fmt.Fprintln(out, "# rollback to first version")
	record, err := module.Rollback(ctx, "welcome", entries[0].ID)
	if err != nil {
		return err
	}
	return writeJSON(out, record)
}

func printMetrics(module *polycontent.Module, out io.Writer) error {
	gatherer := module.Container().Gatherer()
	if gatherer == nil {
		return nil
	}
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "# metrics")
	var lines []string
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			counter := metric.GetCounter()
			if counter == nil {
				continue
			}
			labels := ""
			for _, pair := range metric.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", pair.GetName(), pair.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s%s %v", family.GetName(), labels, counter.GetValue()))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
