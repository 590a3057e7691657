package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/notes"
	"github.com/de-tools/report-atlas/pkg/reporter/reportertest"
	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/template"
)

const templateYAML = `
title: Annual accounts
computations:
  - {id: turnover, description: Turnover, concept: core:Turnover, kind: simple, values: {"2024": "1500", "2023": "1320"}}
  - {id: rent, description: Rent, concept: core:Rent, kind: simple, values: {"2024": "-300", "2023": "-280"}}
  - {id: wages, description: Wages, concept: core:Wages, kind: simple, values: {"2024": "-700", "2023": "-650"}}
  - {id: expenses, description: Expenses, concept: core:Expenses, kind: breakdown, inputs: [rent, wages]}
  - {id: profit, description: Profit, concept: core:Profit, kind: total, inputs: [turnover, expenses]}
metadata:
  company-name: {key: company.name, concept: bus:EntityName}
worksheets:
  - {id: income, kind: simple, description: Income statement, computations: [turnover, expenses, profit]}
  - id: flows
    kind: flows
    description: Flows
    entries:
      - {type: heading, computation: expenses}
      - {type: items, computation: expenses}
      - {type: supertotal, computation: expenses}
  - id: summary
    kind: multi-period
    description: Summary
    entries: [{computation: expenses}]
  - id: details
    kind: table
    description: Details
    table:
      columns: [{id: cy, description: "2024"}, {id: py, description: "2023"}]
      indexes:
        - id: turnover
          description: Turnover
          notes: "note:turnover"
          row: [{kind: computation, id: turnover, period: 0}, {kind: computation, id: turnover, period: 1}]
        - id: name
          description: Company
          row: [{kind: metadata, id: company-name}, {kind: none}]
elements:
  - {kind: title}
  - {kind: worksheet, worksheet: income}
  - {kind: note-heading, title: Policies}
  - {kind: notes, body: "note:policies"}
  - {kind: note-heading, title: Turnover}
  - {kind: note-heading, title: Detail, level: 2}
  - {kind: notes, body: "~[metadata:company-name] made ~[computation:turnover|period=2023] last year."}
`

type lookup map[string]any

func (l lookup) Get(key string) any { return l[key] }

func newRenderer(t *testing.T, elements ...template.Element) *Renderer {
	t.Helper()
	tmpl, err := template.LoadTemplateFromString(templateYAML)
	require.NoError(t, err)
	if elements != nil {
		tmpl.Elements = elements
	}
	static, err := computation.NewStaticValues(tmpl.Computations)
	require.NoError(t, err)
	registry, err := computation.NewRegistry(tmpl.Computations, static)
	require.NoError(t, err)

	dctx := &domain.Context{Entity: "01234567"}
	cfg := lookup{"company.name": "Example Ltd"}
	r, err := NewRenderer(Options{
		Template: tmpl,
		Registry: registry,
		Metadata: taxonomy.NewMetadataStore(cfg, tmpl.Metadata, dctx),
		Notes:    taxonomy.MapNotes{"policies": "Prepared under ~[metadata:missing|null=the usual] rules."},
		Lookup:   cfg,
		Periods:  reportertest.Periods(),
		Context:  dctx,
		Currency: "GBP",
	})
	require.NoError(t, err)
	return r
}

func TestRenderer_Render_Debug(t *testing.T) {
	// Given
	r := newRenderer(t)
	var buf bytes.Buffer

	// When
	err := r.Render(context.Background(), FormatDebug, &buf)

	// Then
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "title \"Annual accounts\"\n"))
	assert.Contains(t, out, "worksheet income \"Income statement\" periods=[2024 2023]")
	assert.Contains(t, out, "note-heading level=1 number=1 \"Policies\"")
	assert.Contains(t, out, "  text \"Prepared under \"\n  text \"the usual\"\n  text \" rules.\"")
	assert.Contains(t, out, "note-heading level=1 number=2 \"Turnover\"")
	assert.Contains(t, out, "note-heading level=2 number=a \"Detail\"")
	assert.Contains(t, out, "fact bus:EntityName string \"Example Ltd\"")
	assert.Contains(t, out, "fact core:Turnover money \"1320\" context=ctx-01234567-20230101-20231231")
}

func TestRenderer_Render_ResetsNoteNumbering(t *testing.T) {
	// Given
	r := newRenderer(t)
	var first, second bytes.Buffer

	// When
	require.NoError(t, r.Render(context.Background(), FormatDebug, &first))
	require.NoError(t, r.Render(context.Background(), FormatDebug, &second))

	// Then
	assert.Equal(t, first.String(), second.String())
}

func TestRenderer_Render_AllWorksheetsWithoutElements(t *testing.T) {
	// Given
	r := newRenderer(t)
	r.template.Elements = nil
	var buf bytes.Buffer

	// When
	err := r.Render(context.Background(), FormatDebug, &buf)

	// Then
	require.NoError(t, err)
	out := buf.String()
	for _, id := range []string{"income", "flows", "summary", "details"} {
		assert.Contains(t, out, "worksheet "+id+" ")
	}
	assert.Contains(t, out, "supertotal expenses \"Expenses\"")
	assert.Contains(t, out, "table details header-levels=1 columns=2 rows=2")
	assert.Contains(t, out, "index turnover \"Turnover\" label=\"Turnover\" rows=1 ix-levels=1 notes=note:turnover")
}

func TestRenderer_Render_Text(t *testing.T) {
	// Given
	r := newRenderer(t, template.Element{Kind: template.ElementWorksheet, Worksheet: "income"})
	var buf bytes.Buffer

	// When
	err := r.Render(context.Background(), FormatText, &buf)

	// Then
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Income statement")
	assert.Contains(t, buf.String(), "1500.00")
	assert.Contains(t, buf.String(), "(300.00)")
}

func TestRenderer_Render_HTML(t *testing.T) {
	// Given
	r := newRenderer(t)
	var buf bytes.Buffer

	// When
	err := r.Render(context.Background(), FormatHTML, &buf)

	// Then
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<html")
	assert.Contains(t, buf.String(), `name="core:Turnover"`)
}

func TestRenderer_Render_XLSX(t *testing.T) {
	// Given
	r := newRenderer(t)
	r.template.Elements = nil
	var buf bytes.Buffer

	// When
	err := r.Render(context.Background(), FormatXLSX, &buf)

	// Then
	require.NoError(t, err)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"income", "flows", "summary", "details"}, f.GetSheetList())
}

func TestRenderer_Render_Errors(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		elements []template.Element
		target   error
	}{
		{
			name:     "unknown worksheet",
			format:   FormatText,
			elements: []template.Element{{Kind: template.ElementWorksheet, Worksheet: "balance"}},
			target:   ErrUnknownWorksheet,
		},
		{
			name:     "unknown note",
			format:   FormatText,
			elements: []template.Element{{Kind: template.ElementNotes, Body: "note:missing"}},
			target:   notes.ErrUnknownNote,
		},
		{
			name:     "unknown element",
			format:   FormatText,
			elements: []template.Element{{Kind: "chart"}},
			target:   template.ErrInvalidTemplate,
		},
		{
			name:   "unknown format",
			format: "pdf",
			target: ErrUnknownFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			r := newRenderer(t, tt.elements...)

			// When
			err := r.Render(context.Background(), tt.format, &bytes.Buffer{})

			// Then
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), err.Error())
		})
	}
}

func TestRenderer_RenderWorksheet(t *testing.T) {
	// Given
	r := newRenderer(t)
	var buf bytes.Buffer

	// When
	err := r.RenderWorksheet(context.Background(), "summary", FormatDebug, &buf)

	// Then
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "worksheet summary \"Summary\""))
	assert.NotContains(t, buf.String(), "income")

	err = r.RenderWorksheet(context.Background(), "nope", FormatDebug, &buf)
	assert.True(t, errors.Is(err, ErrUnknownWorksheet))
}

func TestRenderer_Worksheets(t *testing.T) {
	r := newRenderer(t)
	assert.Equal(t, []string{"income", "flows", "summary", "details"}, r.Worksheets())
}

func TestNewRenderer_RequiresPeriods(t *testing.T) {
	tmpl, err := template.LoadTemplateFromString(templateYAML)
	require.NoError(t, err)
	registry, err := computation.NewRegistry(nil, nil)
	require.NoError(t, err)

	_, err = NewRenderer(Options{Template: tmpl, Registry: registry})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	// Given a config file pointing at a template and notes next to it
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.yaml"), []byte(templateYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.ini"), []byte("[policies]\ntext = Policies apply.\n"), 0o644))
	cfgPath := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`report:
  template: template.yaml
  notes: notes.ini
  entity: "01234567"
  periods:
    - {name: "2024", start: "2024-01-01", end: "2024-12-31"}
    - {name: "2023", start: "2023-01-01", end: "2023-12-31"}
company:
  name: Example Ltd
`), 0o644))
	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	// When
	r, err := FromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	err = r.Render(context.Background(), FormatDebug, &buf)

	// Then
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text \"Policies apply.\"")
	assert.Contains(t, buf.String(), "fact bus:EntityName string \"Example Ltd\" context=ctx-01234567")
}

func TestFromConfig_MissingTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  entity: x\n"), 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	_, err = FromConfig(context.Background(), cfg, nil)
	assert.True(t, errors.Is(err, config.ErrMissingKey))
}

func TestRenderer_UnknownFormat_ListsSupportedFormats(t *testing.T) {
	// Given
	r := newRenderer(t)

	// When
	err := r.Render(context.Background(), "pdf", &bytes.Buffer{})

	// Then
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), `"pdf"`)
	assert.Contains(t, err.Error(), "text, debug, html, xlsx")
}
