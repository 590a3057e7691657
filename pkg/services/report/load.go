package report

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/template"
)

// FromConfig wires a renderer from a loaded configuration. Values come from
// values first, then from the static values in the template; values may be
// nil.
func FromConfig(ctx context.Context, cfg *config.Config, values computation.ValueSource) (*Renderer, error) {
	logger := zerolog.Ctx(ctx)

	if cfg.Report.Template == "" {
		return nil, fmt.Errorf("%w: report.template", config.ErrMissingKey)
	}
	tmpl, err := template.LoadTemplate(cfg.Resolve(cfg.Report.Template))
	if err != nil {
		return nil, err
	}

	periods, err := cfg.Periods()
	if err != nil {
		return nil, err
	}

	static, err := computation.NewStaticValues(tmpl.Computations)
	if err != nil {
		return nil, err
	}
	var source computation.ValueSource = static
	if values != nil {
		source = computation.Chain{values, static}
	}
	registry, err := computation.NewRegistry(tmpl.Computations, source)
	if err != nil {
		return nil, err
	}

	dctx := &domain.Context{Entity: cfg.Entity()}
	var store taxonomy.NoteStore
	if cfg.Report.Notes != "" {
		if store, err = taxonomy.NewNoteStore(cfg.Resolve(cfg.Report.Notes)); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("template", cfg.Report.Template).
		Int("worksheets", len(tmpl.Worksheets)).
		Int("computations", len(tmpl.Computations)).
		Int("periods", len(periods)).
		Msg("report loaded")

	return NewRenderer(Options{
		Template: tmpl,
		Registry: registry,
		Metadata: taxonomy.NewMetadataStore(cfg, tmpl.Metadata, dctx),
		Notes:    store,
		Lookup:   cfg,
		Periods:  periods,
		Context:  dctx,
		Currency: cfg.Report.Currency,
	})
}
