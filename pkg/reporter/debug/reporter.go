// Package debug dumps the structure handed to a reporter as an indented
// tree: node kind, description and the metrics of each node.
package debug

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/notes"
	"github.com/de-tools/report-atlas/pkg/reporter"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

type Reporter struct {
	writer io.Writer
	err    error
	// base is the depth of the current worksheet's children
	base     int
	rowDepth int
}

var _ reporter.Reporter = (*Reporter)(nil)

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) line(depth int, format string, args ...any) error {
	if r.err != nil {
		return r.err
	}
	_, r.err = fmt.Fprintf(r.writer, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
	return r.err
}

func values(s *worksheet.Series) string {
	if s == nil {
		return "[]"
	}
	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		parts[i] = v.StringFixed(2)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (r *Reporter) Title(_ context.Context, text string) error {
	return r.line(0, "title %q", text)
}

func (r *Reporter) BeginWorksheet(_ context.Context, id, title string, periods []domain.Period) error {
	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = p.Name
	}
	r.base = 1
	return r.line(0, "worksheet %s %q periods=[%s]", id, title, strings.Join(names, " "))
}

func (r *Reporter) EndWorksheet(_ context.Context) error {
	r.base = 0
	return r.err
}

func (r *Reporter) OnHeading(_ context.Context, h *worksheet.Heading, _ []domain.Period) error {
	return r.line(r.base, "heading %s %q items=%d", h.Section.ID, h.Description(), len(h.Section.Items))
}

func (r *Reporter) OnItem(_ context.Context, it *worksheet.Item, _ []domain.Period) error {
	return r.line(r.base+1, "item %s %q rank=%d values=%s", it.Series.ID, it.Description(), it.Series.Rank, values(it.Series))
}

func (r *Reporter) OnTotals(_ context.Context, t *worksheet.Totals, _ []domain.Period) error {
	kind := "totals"
	if t.Super {
		kind = "supertotal"
	}
	rank := 0
	if t.Series != nil {
		rank = t.Series.Rank
	}
	return r.line(r.base, "%s %s %q rank=%d values=%s", kind, t.Section.ID, t.Description(), rank, values(t.Series))
}

func (r *Reporter) OnSingleLine(_ context.Context, l *worksheet.SingleLine, _ []domain.Period) error {
	return r.line(r.base, "singleline %s %q values=%s", l.Section.ID, l.Description(), values(l.Series))
}

func (r *Reporter) OnBreak(_ context.Context, _ *worksheet.Break, _ []domain.Period) error {
	return r.line(r.base, "break")
}

func (r *Reporter) OnTable(_ context.Context, t *table.Table) error {
	return r.line(r.base, "table %s header-levels=%d columns=%d rows=%d ix-levels=%d notes=%t",
		t.ID, t.HeaderLevels(), t.ColumnCount(), t.RowCount(), t.IxLevels(), t.HasNotes())
}

func (r *Reporter) OnColumn(_ context.Context, c *table.Column, depth int) error {
	units := ""
	if c.Units != "" {
		units = " units=" + c.Units
	}
	return r.line(r.base+1+depth, "column %s %q header-levels=%d columns=%d%s",
		c.Metadata.ID, c.Metadata.Description, c.HeaderLevels(), c.ColumnCount(), units)
}

func (r *Reporter) OnIndex(_ context.Context, ix *table.Index, depth int) error {
	ref := ""
	if ix.Notes != "" {
		ref = " notes=" + ix.Notes
	}
	return r.line(r.base+1+depth, "%s %s %q label=%q rows=%d ix-levels=%d%s",
		ix.Kind, ix.Metadata.ID, ix.Metadata.Description, ix.Label(), ix.RowCount(), ix.IxLevels(), ref)
}

func (r *Reporter) OnRow(_ context.Context, _ *table.Index, row *table.Row, depth int) error {
	r.rowDepth = r.base + 2 + depth
	return r.line(r.rowDepth, "row cells=%d", len(row.Cells))
}

func (r *Reporter) OnCell(_ context.Context, c *table.Cell, column int) error {
	return r.line(r.rowDepth+1, "cell %d %s %q concept=%q context=%s",
		column, c.Datum.Kind, c.Datum.String(), c.Concept, c.Datum.Context.ID())
}

func (r *Reporter) NoteHeading(_ context.Context, number, title string, level int) error {
	return r.line(0, "note-heading level=%d number=%s %q", level, number, title)
}

func (r *Reporter) BeginNote(_ context.Context) (notes.Element, error) {
	return &element{r: r, depth: 1}, r.line(0, "note")
}

func (r *Reporter) EndNote(_ context.Context) error {
	return r.err
}

func (r *Reporter) Finish(_ context.Context) error {
	return r.err
}

type element struct {
	r     *Reporter
	depth int
}

func (e *element) WriteText(s string) error {
	return e.r.line(e.depth, "text %q", s)
}

func (e *element) WriteFact(f taxonomy.Fact) error {
	return e.r.line(e.depth, "fact %s %s %q context=%s", f.Name, f.Kind, f.String(), f.Context.ID())
}

func (e *element) OpenTag(kind, name string, contextRef *string) (notes.Element, error) {
	ref := "null"
	if contextRef != nil {
		ref = *contextRef
	}
	if err := e.r.line(e.depth, "tag %s %s context=%s", kind, name, ref); err != nil {
		return nil, err
	}
	return &element{r: e.r, depth: e.depth + 1}, nil
}
