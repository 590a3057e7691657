// Package ixbrl renders reports as an HTML element tree with inline XBRL
// tags on every tagged value.
package ixbrl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/de-tools/report-atlas/pkg/format"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/notes"
	"github.com/de-tools/report-atlas/pkg/reporter"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

const (
	NumberFormat = "ixt:num-dot-decimal"
	ZeroFormat   = "ixt:fixed-zero"
	// DefaultScheme is the entity identifier scheme used when none is configured
	DefaultScheme = "http://www.companieshouse.gov.uk/"
)

type Config struct {
	// Context is the entity context values are reported against
	Context *domain.Context
	Unit    string
	// Periods are the report periods; the first is the default for
	// untagged note spans
	Periods []domain.Period
	// Standalone wraps the tree in an html document
	Standalone bool
	Title      string
	// Scheme qualifies the entity identifier in emitted contexts
	Scheme string
}

type Reporter struct {
	writer io.Writer
	config Config
	root   *html.Node

	worksheet *html.Node
	header    bool
	periods   []domain.Period

	tbl      *html.Node
	thead    []*html.Node
	tbody    *html.Node
	levels   int
	hasNotes bool
	row      *html.Node

	// contexts and unitUsed collect what tagged facts refer to, for the
	// ix:resources block of a standalone document
	contexts map[string]*domain.Context
	unitUsed bool
}

var _ reporter.Reporter = (*Reporter)(nil)

func NewReporter(writer io.Writer, config Config) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	if config.Unit == "" {
		config.Unit = "GBP"
	}
	if config.Scheme == "" {
		config.Scheme = DefaultScheme
	}
	return &Reporter{
		writer:   writer,
		config:   config,
		root:     element("div", "report"),
		contexts: map[string]*domain.Context{},
	}
}

// Root is the element tree built so far
func (r *Reporter) Root() *html.Node {
	return r.root
}

// ref records c as referenced and returns its id
func (r *Reporter) ref(c *domain.Context) string {
	id := c.ID()
	if id != "" {
		r.contexts[id] = c
	}
	return id
}

func (r *Reporter) contextFor(p domain.Period) *domain.Context {
	return r.config.Context.WithPeriod(p)
}

func (r *Reporter) currentContext() *domain.Context {
	switch {
	case len(r.config.Periods) > 0:
		return r.contextFor(r.config.Periods[0])
	case len(r.periods) > 0:
		return r.contextFor(r.periods[0])
	default:
		return r.config.Context
	}
}

// value renders v, tagged with concept when one is given. Negatives are
// shown in parentheses outside the tag and carry sign="-" on it.
func (r *Reporter) value(parent *html.Node, v decimal.Decimal, concept string, c *domain.Context) {
	if concept == "" {
		appendText(parent, strings.TrimSpace(format.NegParen(v, 0)))
		return
	}
	r.unitUsed = true
	attrs := []html.Attribute{
		attr("name", concept),
		attr("contextRef", r.ref(c)),
		attr("unitRef", r.config.Unit),
		attr("decimals", "2"),
	}
	if format.IsNegligible(v) {
		attrs = append(attrs, attr("format", ZeroFormat))
		parent.AppendChild(withText(element("ix:nonFraction", "fact", attrs...), "-"))
		return
	}
	attrs = append(attrs, attr("format", NumberFormat))
	if v.IsNegative() {
		attrs = append(attrs, attr("sign", "-"))
		appendText(parent, "(")
	}
	parent.AppendChild(withText(element("ix:nonFraction", "fact", attrs...), v.Abs().StringFixed(2)))
	if v.IsNegative() {
		appendText(parent, ")")
	}
}

func (r *Reporter) Title(_ context.Context, text string) error {
	r.root.AppendChild(withText(element("h1", "title"), text))
	return nil
}

func (r *Reporter) BeginWorksheet(_ context.Context, id, title string, periods []domain.Period) error {
	r.worksheet = element("div", "worksheet", attr("id", id))
	r.root.AppendChild(r.worksheet)
	r.header, r.periods = false, periods
	if title != "" {
		r.worksheet.AppendChild(withText(element("h2", "label"), title))
	}
	return nil
}

func (r *Reporter) EndWorksheet(_ context.Context) error {
	r.worksheet, r.tbl, r.thead, r.tbody, r.row = nil, nil, nil, nil, nil
	return nil
}

func (r *Reporter) periodHeader(periods []domain.Period) {
	if r.header {
		return
	}
	r.header = true
	row := element("div", "header")
	row.AppendChild(element("span", "label"))
	for _, p := range periods {
		row.AppendChild(withText(element("span", "period"), p.Name))
	}
	r.worksheet.AppendChild(row)
}

func (r *Reporter) line(class, label string, s *worksheet.Series, periods []domain.Period) {
	r.periodHeader(periods)
	row := element("div", class)
	row.AppendChild(withText(element("span", "label"), label))
	if s != nil {
		for i, p := range periods {
			cell := element("span", "value")
			if v, ok := reporter.ValueAt(s, i); ok {
				r.value(cell, v, s.Metadata.Concept, r.contextFor(p))
			}
			row.AppendChild(cell)
		}
	}
	r.worksheet.AppendChild(row)
}

func (r *Reporter) OnHeading(_ context.Context, h *worksheet.Heading, periods []domain.Period) error {
	r.line("heading", h.Description(), nil, periods)
	return nil
}

func (r *Reporter) OnItem(_ context.Context, it *worksheet.Item, periods []domain.Period) error {
	r.line("item", it.Description(), it.Series, periods)
	return nil
}

func (r *Reporter) OnTotals(_ context.Context, t *worksheet.Totals, periods []domain.Period) error {
	class, label := "total", ""
	if t.Super {
		class, label = "supertotal", t.Description()
	}
	r.line(class, label, t.Series, periods)
	return nil
}

func (r *Reporter) OnSingleLine(_ context.Context, l *worksheet.SingleLine, periods []domain.Period) error {
	r.line("singleline", l.Description(), l.Series, periods)
	return nil
}

func (r *Reporter) OnBreak(_ context.Context, _ *worksheet.Break, _ []domain.Period) error {
	r.worksheet.AppendChild(element("div", "break"))
	return nil
}

func (r *Reporter) OnTable(_ context.Context, t *table.Table) error {
	r.tbl = element("table", "table", attr("id", t.ID))
	thead := element("thead", "")
	r.tbody = element("tbody", "")
	r.tbl.AppendChild(thead)
	r.tbl.AppendChild(r.tbody)
	r.worksheet.AppendChild(r.tbl)

	r.levels = t.HeaderLevels()
	r.hasNotes = t.HasNotes()
	r.thead = make([]*html.Node, r.levels)
	for i := range r.thead {
		r.thead[i] = element("tr", "")
		thead.AppendChild(r.thead[i])
	}
	if r.levels > 0 {
		span := attr("rowspan", strconv.Itoa(r.levels))
		r.thead[0].AppendChild(element("th", "label", span))
		if r.hasNotes {
			r.thead[0].AppendChild(withText(element("th", "notes", span), "Notes"))
		}
	}
	return nil
}

func (r *Reporter) OnColumn(_ context.Context, c *table.Column, depth int) error {
	if depth >= len(r.thead) {
		return fmt.Errorf("column %q at depth %d exceeds %d header levels", c.Metadata.ID, depth, len(r.thead))
	}
	attrs := []html.Attribute{attr("id", c.Metadata.ID)}
	if n := c.ColumnCount(); n > 1 {
		attrs = append(attrs, attr("colspan", strconv.Itoa(n)))
	}
	if len(c.Children) == 0 && depth < r.levels-1 {
		attrs = append(attrs, attr("rowspan", strconv.Itoa(r.levels-depth)))
	}
	th := withText(element("th", "column", attrs...), c.Metadata.Description)
	if c.Units != "" {
		th.AppendChild(element("br", ""))
		th.AppendChild(withText(element("span", "units"), c.Units))
	}
	r.thead[depth].AppendChild(th)
	return nil
}

func (r *Reporter) OnIndex(_ context.Context, ix *table.Index, depth int) error {
	if ix.Row != nil {
		return nil
	}
	tr := element("tr", "index", attr("data-depth", strconv.Itoa(depth)))
	tr.AppendChild(withText(element("td", "label"), ix.Label()))
	r.tbody.AppendChild(tr)
	return nil
}

func (r *Reporter) OnRow(_ context.Context, ix *table.Index, _ *table.Row, depth int) error {
	class := "index"
	if ix.Kind == table.KindTotal {
		class = "total"
	}
	r.row = element("tr", class, attr("data-depth", strconv.Itoa(depth)))
	r.row.AppendChild(withText(element("td", "label"), ix.Label()))
	if r.hasNotes {
		r.row.AppendChild(withText(element("td", "notes"), strings.TrimPrefix(ix.Notes, "note:")))
	}
	r.tbody.AppendChild(r.row)
	return nil
}

func (r *Reporter) OnCell(_ context.Context, c *table.Cell, _ int) error {
	td := element("td", "value")
	r.row.AppendChild(td)
	return r.writeFact(td, taxonomy.Fact{Name: c.Concept, Datum: c.Datum})
}

func (r *Reporter) writeFact(parent *html.Node, f taxonomy.Fact) error {
	if f.IsNone() {
		return nil
	}
	c := f.Context
	if c == nil {
		c = r.currentContext()
	}
	if v, ok := reporter.Numeric(f.Datum); ok {
		r.value(parent, v, f.Name, c)
		return nil
	}
	if f.Name == "" {
		appendText(parent, f.String())
		return nil
	}
	parent.AppendChild(withText(element("ix:nonNumeric", "fact", attr("name", f.Name), attr("contextRef", r.ref(c))), f.String()))
	return nil
}

func (r *Reporter) NoteHeading(_ context.Context, number, title string, level int) error {
	h := element("div", "noteheading", attr("data-level", strconv.Itoa(level)))
	h.AppendChild(withText(element("span", "number"), number))
	appendText(h, " "+title)
	r.root.AppendChild(h)
	return nil
}

func (r *Reporter) BeginNote(_ context.Context) (notes.Element, error) {
	n := element("div", "note")
	r.root.AppendChild(n)
	return &noteElement{r: r, node: n}, nil
}

func (r *Reporter) EndNote(_ context.Context) error {
	return nil
}

func (r *Reporter) Finish(_ context.Context) error {
	node := r.root
	if r.config.Standalone {
		node = r.document()
	}
	if err := html.Render(r.writer, node); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}

func (r *Reporter) document() *html.Node {
	doc := element("html", "",
		attr("xmlns", "http://www.w3.org/1999/xhtml"),
		attr("xmlns:ix", "http://www.xbrl.org/2013/inlineXBRL"),
		attr("xmlns:ixt", "http://www.xbrl.org/inlineXBRL/transformation/2020-02-12"),
		attr("xmlns:xbrli", "http://www.xbrl.org/2003/instance"),
		attr("xmlns:xbrldi", "http://xbrl.org/2006/xbrldi"),
		attr("xmlns:iso4217", "http://www.xbrl.org/2003/iso4217"),
	)
	head := element("head", "")
	head.AppendChild(element("meta", "", attr("charset", "utf-8")))
	head.AppendChild(withText(element("title", ""), r.config.Title))
	body := element("body", "")
	hidden := element("div", "", attr("style", "display: none"))
	hidden.AppendChild(r.header())
	body.AppendChild(hidden)
	body.AppendChild(r.root)
	doc.AppendChild(head)
	doc.AppendChild(body)
	return doc
}

type noteElement struct {
	r    *Reporter
	node *html.Node
}

func (e *noteElement) WriteText(s string) error {
	appendText(e.node, s)
	return nil
}

func (e *noteElement) WriteFact(f taxonomy.Fact) error {
	return e.r.writeFact(e.node, f)
}

// OpenTag starts an ix:nonNumeric span. A missing context reference falls
// back to the current period.
func (e *noteElement) OpenTag(_, name string, contextRef *string) (notes.Element, error) {
	var ref string
	if contextRef != nil {
		ref = *contextRef
	} else {
		ref = e.r.ref(e.r.currentContext())
	}
	span := element("ix:nonNumeric", "fact", attr("name", name), attr("contextRef", ref))
	e.node.AppendChild(span)
	return &noteElement{r: e.r, node: span}, nil
}
