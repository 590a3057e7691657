// Package report assembles a complete document from a template: it builds
// each worksheet, numbers note headings and drives one reporter per render.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/notes"
	"github.com/de-tools/report-atlas/pkg/reporter"
	"github.com/de-tools/report-atlas/pkg/reporter/debug"
	"github.com/de-tools/report-atlas/pkg/reporter/ixbrl"
	"github.com/de-tools/report-atlas/pkg/reporter/text"
	"github.com/de-tools/report-atlas/pkg/reporter/xlsx"
	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/services/datum"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/template"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

var (
	ErrUnknownWorksheet = errors.New("unknown worksheet")
	ErrUnknownFormat    = errors.New("unknown output format")
)

type Format string

const (
	FormatText  Format = "text"
	FormatDebug Format = "debug"
	FormatHTML  Format = "html"
	FormatXLSX  Format = "xlsx"
)

func Formats() []Format {
	return []Format{FormatText, FormatDebug, FormatHTML, FormatXLSX}
}

// FormatNames joins the supported formats for help and error text
func FormatNames() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// ContentType is the media type of documents rendered in f
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

type Options struct {
	Template *template.Template
	Registry computation.Registry
	Metadata taxonomy.MetadataStore
	Notes    taxonomy.NoteStore
	// Lookup resolves configuration keys named in note markup
	Lookup   taxonomy.KeyLookup
	Periods  []domain.Period
	Context  *domain.Context
	Currency string
}

type Renderer struct {
	template *template.Template
	registry computation.Registry
	resolver *datum.Resolver
	notes    *notes.Renderer
	periods  []domain.Period
	context  *domain.Context
	currency string

	// mu serialises renders; the sequencer is per document
	mu       sync.Mutex
	sequence *notes.NoteHeadingSequencer
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Template == nil {
		return nil, fmt.Errorf("template is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("computation registry is required")
	}
	if len(opts.Periods) == 0 {
		return nil, worksheet.ErrNoPeriods
	}
	dctx := opts.Context
	if dctx == nil {
		dctx = &domain.Context{}
	}
	return &Renderer{
		template: opts.Template,
		registry: opts.Registry,
		resolver: datum.NewResolver(opts.Registry, opts.Metadata),
		notes: &notes.Renderer{
			Notes:        opts.Notes,
			Metadata:     opts.Metadata,
			Computations: opts.Registry,
			Lookup:       opts.Lookup,
			Periods:      opts.Periods,
			Context:      dctx,
		},
		periods:  opts.Periods,
		context:  dctx,
		currency: opts.Currency,
		sequence: notes.NewNoteHeadingSequencer(),
	}, nil
}

// Worksheets lists the worksheet ids in template order
func (r *Renderer) Worksheets() []string {
	return r.template.WorksheetIDs()
}

// WorksheetDefs returns the worksheet layouts in template order
func (r *Renderer) WorksheetDefs() []template.Worksheet {
	return r.template.Worksheets
}

func (r *Renderer) Periods() []domain.Period {
	return r.periods
}

func (r *Renderer) newReporter(format Format, w io.Writer) (reporter.Reporter, error) {
	switch format {
	case FormatText:
		return text.NewReporter(w), nil
	case FormatDebug:
		return debug.NewReporter(w), nil
	case FormatHTML:
		return ixbrl.NewReporter(w, ixbrl.Config{
			Context:    r.context,
			Unit:       r.currency,
			Periods:    r.periods,
			Standalone: true,
			Title:      r.template.Title,
		}), nil
	case FormatXLSX:
		return xlsx.NewReporter(w)
	default:
		return nil, fmt.Errorf("%w: %q, want one of %s", ErrUnknownFormat, format, FormatNames())
	}
}

// Render writes the whole document in format. A template without elements
// renders every worksheet in order. Any error aborts the render.
func (r *Renderer) Render(ctx context.Context, format Format, w io.Writer) error {
	rep, err := r.newReporter(format, w)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequence.Reset()

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("format", string(format)).Int("elements", len(r.template.Elements)).Msg("rendering report")

	elements := r.template.Elements
	if len(elements) == 0 {
		for _, id := range r.Worksheets() {
			elements = append(elements, template.Element{Kind: template.ElementWorksheet, Worksheet: id})
		}
	}
	for i, el := range elements {
		if err := r.renderElement(ctx, rep, el); err != nil {
			return fmt.Errorf("failed to render element %d (%s): %w", i, el.Kind, err)
		}
	}
	return rep.Finish(ctx)
}

// RenderWorksheet writes a document holding the single worksheet id
func (r *Renderer) RenderWorksheet(ctx context.Context, id string, format Format, w io.Writer) error {
	rep, err := r.newReporter(format, w)
	if err != nil {
		return err
	}
	if err := r.renderWorksheet(ctx, rep, id); err != nil {
		return err
	}
	return rep.Finish(ctx)
}

func (r *Renderer) renderElement(ctx context.Context, rep reporter.Reporter, el template.Element) error {
	switch el.Kind {
	case template.ElementTitle:
		title := el.Title
		if title == "" {
			title = r.template.Title
		}
		return rep.Title(ctx, title)
	case template.ElementWorksheet:
		return r.renderWorksheet(ctx, rep, el.Worksheet)
	case template.ElementNoteHeading:
		return rep.NoteHeading(ctx, r.sequence.Next(el.Level), el.Title, el.Level)
	case template.ElementNotes:
		out, err := rep.BeginNote(ctx)
		if err != nil {
			return err
		}
		if err := r.notes.Render(ctx, el.Body, out); err != nil {
			return err
		}
		return rep.EndNote(ctx)
	default:
		return fmt.Errorf("%w: unknown element kind %q", template.ErrInvalidTemplate, el.Kind)
	}
}

func (r *Renderer) renderWorksheet(ctx context.Context, rep reporter.Reporter, id string) error {
	ws, ok := r.template.Worksheet(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWorksheet, id)
	}

	var builder worksheet.Builder
	switch ws.Kind {
	case template.KindSimple:
		builder = worksheet.NewSimpleSheet(ws.ID, ws.Description, ws.Computations, r.registry)
	case template.KindFlows:
		builder = worksheet.NewFlowsSheet(ws.ID, ws.Description, ws.FlowEntries(), r.registry)
	case template.KindMultiPeriod:
		builder = worksheet.NewMultiPeriodSheet(ws.ID, ws.Description, ws.MultiPeriodEntries(), r.registry)
	case template.KindTable:
		return r.renderTable(ctx, rep, ws)
	default:
		return fmt.Errorf("%w: worksheet %q: unknown kind %q", template.ErrInvalidTemplate, ws.ID, ws.Kind)
	}

	ds, err := builder.Build(ctx, r.periods)
	if err != nil {
		return fmt.Errorf("failed to build worksheet %q: %w", id, err)
	}
	return reporter.RenderDataset(ctx, rep, ds)
}

func (r *Renderer) renderTable(ctx context.Context, rep reporter.Reporter, ws template.Worksheet) error {
	def := *ws.Table
	if def.ID == "" {
		def.ID = ws.ID
	}
	if def.Description == "" {
		def.Description = ws.Description
	}
	t, err := table.NewTableSheet(def, r.resolver, r.context).Build(ctx, r.periods)
	if err != nil {
		return fmt.Errorf("failed to build table %q: %w", ws.ID, err)
	}
	return reporter.RenderTable(ctx, rep, t)
}
