// Package text renders reports as fixed-width plain text.
package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/de-tools/report-atlas/pkg/format"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/notes"
	"github.com/de-tools/report-atlas/pkg/reporter"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

type Config struct {
	Width      int
	LabelWidth int
	Indent     int
}

func DefaultConfig() Config {
	return Config{
		Width:      80,
		LabelWidth: 30,
		Indent:     2,
	}
}

type headerCell struct {
	text string
	span int
}

// Reporter outputs reports in a formatted text form
type Reporter struct {
	writer io.Writer
	config Config
	err    error

	colWidth int
	// table state
	headers  [][]headerCell
	levels   int
	inHeader bool
	line     strings.Builder
	pending  bool
}

var _ reporter.Reporter = (*Reporter)(nil)

func NewReporter(writer io.Writer) *Reporter {
	return NewReporterWithConfig(writer, DefaultConfig())
}

func NewReporterWithConfig(writer io.Writer, config Config) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer, config: config}
}

// printf keeps the first write error; later writes are skipped
func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.writer, format, args...)
}

func (r *Reporter) Title(_ context.Context, text string) error {
	r.printf("%s\n\n", strings.TrimRight(format.Center(text, r.config.Width), " "))
	return r.err
}

func (r *Reporter) BeginWorksheet(_ context.Context, _ string, title string, periods []domain.Period) error {
	r.headers, r.levels, r.inHeader, r.pending = nil, 0, false, false
	r.colWidth = r.columnWidth(len(periods))
	if title != "" {
		r.printf("%s\n", title)
	}
	return r.err
}

func (r *Reporter) EndWorksheet(_ context.Context) error {
	r.flushHeader()
	r.flushLine()
	r.printf("\n")
	return r.err
}

func (r *Reporter) columnWidth(columns int) int {
	if columns <= 0 {
		return r.config.Width - r.config.LabelWidth
	}
	return max((r.config.Width-r.config.LabelWidth)/columns, 1)
}

func (r *Reporter) label(s string, indent int) string {
	s = strings.Repeat(" ", indent) + s
	return format.PadRight(format.Truncate(s, r.config.LabelWidth), r.config.LabelWidth)
}

func (r *Reporter) values(s *worksheet.Series, periods []domain.Period) string {
	var sb strings.Builder
	for i := range periods {
		v, ok := reporter.ValueAt(s, i)
		if !ok {
			sb.WriteString(strings.Repeat(" ", r.colWidth))
			continue
		}
		sb.WriteString(format.NegParen(v, r.colWidth))
	}
	return sb.String()
}

func (r *Reporter) rule(ch string, columns int) string {
	width := max(r.colWidth-2, 1)
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", r.config.LabelWidth))
	for range columns {
		sb.WriteString(format.PadLeft(strings.Repeat(ch, width)+" ", r.colWidth))
	}
	return strings.TrimRight(sb.String(), " ")
}

// periodHeader writes the period names once per dataset, before its first line
func (r *Reporter) periodHeader(periods []domain.Period) {
	if r.inHeader {
		return
	}
	r.inHeader = true
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", r.config.LabelWidth))
	for _, p := range periods {
		sb.WriteString(format.PadLeft(format.Truncate(p.Name, r.colWidth-1)+" ", r.colWidth))
	}
	r.printf("%s\n", strings.TrimRight(sb.String(), " "))
}

func (r *Reporter) writeLine(label string, s *worksheet.Series, periods []domain.Period) {
	r.printf("%s\n", strings.TrimRight(label+r.values(s, periods), " "))
}

func (r *Reporter) OnHeading(_ context.Context, h *worksheet.Heading, periods []domain.Period) error {
	r.periodHeader(periods)
	r.printf("%s\n", strings.TrimRight(r.label(h.Description(), 0), " "))
	return r.err
}

func (r *Reporter) OnItem(_ context.Context, it *worksheet.Item, periods []domain.Period) error {
	r.periodHeader(periods)
	r.writeLine(r.label(it.Description(), r.config.Indent), it.Series, periods)
	return r.err
}

func (r *Reporter) OnTotals(_ context.Context, t *worksheet.Totals, periods []domain.Period) error {
	r.periodHeader(periods)
	ch, desc := "-", ""
	if t.Super {
		ch, desc = "=", t.Description()
	}
	r.printf("%s\n", r.rule(ch, len(periods)))
	r.writeLine(r.label(desc, 0), t.Series, periods)
	return r.err
}

func (r *Reporter) OnSingleLine(_ context.Context, l *worksheet.SingleLine, periods []domain.Period) error {
	r.periodHeader(periods)
	r.writeLine(r.label(l.Description(), 0), l.Series, periods)
	return r.err
}

func (r *Reporter) OnBreak(_ context.Context, _ *worksheet.Break, _ []domain.Period) error {
	r.printf("\n")
	return r.err
}

func (r *Reporter) OnTable(_ context.Context, t *table.Table) error {
	r.colWidth = r.columnWidth(t.ColumnCount())
	r.levels = t.HeaderLevels()
	r.headers = make([][]headerCell, r.levels)
	return nil
}

// OnColumn lays header text out by level. A leaf above the deepest level
// leaves blank cells beneath it so later columns stay aligned.
func (r *Reporter) OnColumn(_ context.Context, c *table.Column, depth int) error {
	if depth >= len(r.headers) {
		return fmt.Errorf("column %q at depth %d exceeds %d header levels", c.Metadata.ID, depth, len(r.headers))
	}
	r.headers[depth] = append(r.headers[depth], headerCell{text: c.Metadata.Description, span: c.ColumnCount()})
	if len(c.Children) == 0 {
		for lvl := depth + 1; lvl < r.levels; lvl++ {
			r.headers[lvl] = append(r.headers[lvl], headerCell{span: 1})
		}
	}
	return nil
}

func (r *Reporter) flushHeader() {
	if r.headers == nil {
		return
	}
	for _, level := range r.headers {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", r.config.LabelWidth))
		for _, cell := range level {
			sb.WriteString(format.Center(cell.text, cell.span*r.colWidth))
		}
		r.printf("%s\n", strings.TrimRight(sb.String(), " "))
	}
	r.headers = nil
}

func (r *Reporter) flushLine() {
	if !r.pending {
		return
	}
	r.printf("%s\n", strings.TrimRight(r.line.String(), " "))
	r.line.Reset()
	r.pending = false
}

func (r *Reporter) OnIndex(_ context.Context, ix *table.Index, depth int) error {
	r.flushHeader()
	r.flushLine()
	if ix.Row == nil {
		r.printf("%s\n", strings.TrimRight(r.label(ix.Label(), depth*r.config.Indent), " "))
	}
	return r.err
}

func (r *Reporter) OnRow(_ context.Context, ix *table.Index, row *table.Row, depth int) error {
	if ix.Kind == table.KindTotal {
		r.printf("%s\n", r.rule("-", len(row.Cells)))
	}
	r.line.WriteString(r.label(ix.Label(), depth*r.config.Indent))
	r.pending = true
	return r.err
}

func (r *Reporter) OnCell(_ context.Context, c *table.Cell, _ int) error {
	r.line.WriteString(reporter.CellText(c.Datum, r.colWidth))
	return nil
}

func (r *Reporter) NoteHeading(_ context.Context, number, title string, level int) error {
	indent := strings.Repeat(" ", (level-1)*r.config.Indent)
	r.printf("%s%s %s\n", indent, number, title)
	return r.err
}

func (r *Reporter) BeginNote(_ context.Context) (notes.Element, error) {
	return &element{r: r}, r.err
}

func (r *Reporter) EndNote(_ context.Context) error {
	r.printf("\n\n")
	return r.err
}

func (r *Reporter) Finish(_ context.Context) error {
	r.flushLine()
	return r.err
}

// element writes note prose straight through; plain text has no spans
type element struct {
	r *Reporter
}

func (e *element) WriteText(s string) error {
	e.r.printf("%s", s)
	return e.r.err
}

func (e *element) WriteFact(f taxonomy.Fact) error {
	if v, ok := reporter.Numeric(f.Datum); ok {
		e.r.printf("%s", strings.TrimSpace(format.NegParen(v, 0)))
		return e.r.err
	}
	e.r.printf("%s", f.String())
	return e.r.err
}

func (e *element) OpenTag(_, _ string, _ *string) (notes.Element, error) {
	return e, nil
}
