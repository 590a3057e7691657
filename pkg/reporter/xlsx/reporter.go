// Package xlsx renders reports into an Excel workbook, one sheet per
// worksheet plus a sheet for the title and notes.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/report-atlas/pkg/format"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/notes"
	"github.com/de-tools/report-atlas/pkg/reporter"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

const (
	NotesSheet   = "Notes"
	defaultSheet = "Sheet1"
	maxSheetName = 31
	labelWidth   = 40
	valueWidth   = 16
)

type styles struct {
	title, bold, number, total, supertotal, indent int
}

type Reporter struct {
	writer io.Writer
	file   *excelize.File
	styles styles
	err    error
	used   bool

	sheet   string
	row     int
	header  bool
	periods []domain.Period

	// table state
	headerRow  int
	levels     int
	leaf       int
	valueStart int
	tableRow   int

	notesRow int
	// sheets holds the lower-cased names already claimed
	sheets map[string]bool
}

var _ reporter.Reporter = (*Reporter)(nil)

func NewReporter(writer io.Writer) (*Reporter, error) {
	if writer == nil {
		writer = os.Stdout
	}
	r := &Reporter{
		writer: writer,
		file:   excelize.NewFile(),
		sheets: map[string]bool{strings.ToLower(NotesSheet): true},
	}
	if err := r.createStyles(); err != nil {
		return nil, err
	}
	return r, nil
}

// File is the workbook being written
func (r *Reporter) File() *excelize.File {
	return r.file
}

func (r *Reporter) createStyles() error {
	numFmt := format.SpreadsheetNumberFormat
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&r.styles.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&r.styles.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&r.styles.number, &excelize.Style{CustomNumFmt: &numFmt}},
		{&r.styles.total, &excelize.Style{
			CustomNumFmt: &numFmt,
			Border:       []excelize.Border{{Type: "top", Color: "000000", Style: 1}},
		}},
		{&r.styles.supertotal, &excelize.Style{
			CustomNumFmt: &numFmt,
			Font:         &excelize.Font{Bold: true},
			Border: []excelize.Border{
				{Type: "top", Color: "000000", Style: 1},
				{Type: "bottom", Color: "000000", Style: 6},
			},
		}},
		{&r.styles.indent, &excelize.Style{Alignment: &excelize.Alignment{Indent: 1}}},
	}
	for _, d := range defs {
		id, err := r.file.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return nil
}

// SheetName makes id usable as a sheet name
func SheetName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		default:
			return r
		}
	}, id)
	name = truncate(name, maxSheetName)
	if name == "" {
		name = "Worksheet"
	}
	return name
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// uniqueSheet claims name for a new worksheet. Sheet names compare without
// case, so a name already taken gets a numeric suffix.
func (r *Reporter) uniqueSheet(name string) string {
	candidate := name
	for n := 2; r.sheets[strings.ToLower(candidate)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	r.sheets[strings.ToLower(candidate)] = true
	return candidate
}

// openSheet creates name, reusing the default sheet for the first one
func (r *Reporter) openSheet(name string) error {
	if !r.used {
		r.used = true
		if err := r.file.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", name, err)
		}
	} else if idx, _ := r.file.GetSheetIndex(name); idx < 0 {
		if _, err := r.file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}
	if err := r.file.SetColWidth(name, "A", "A", labelWidth); err != nil {
		return err
	}
	return r.file.SetColWidth(name, "B", "Z", valueWidth)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (r *Reporter) set(sheet string, col, row int, value any, style int) {
	if r.err != nil {
		return
	}
	cell := cellName(col, row)
	if err := r.file.SetCellValue(sheet, cell, value); err != nil {
		r.err = fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		return
	}
	if style != 0 {
		if err := r.file.SetCellStyle(sheet, cell, cell, style); err != nil {
			r.err = fmt.Errorf("failed to style %s!%s: %w", sheet, cell, err)
		}
	}
}

func (r *Reporter) number(sheet string, col, row int, v decimal.Decimal, style int) {
	r.set(sheet, col, row, v.InexactFloat64(), style)
}

func (r *Reporter) merge(sheet string, c1, r1, c2, r2 int) {
	if r.err != nil || (c1 == c2 && r1 == r2) {
		return
	}
	if err := r.file.MergeCell(sheet, cellName(c1, r1), cellName(c2, r2)); err != nil {
		r.err = fmt.Errorf("failed to merge header cells: %w", err)
	}
}

func (r *Reporter) Title(_ context.Context, text string) error {
	if err := r.ensureNotes(); err != nil {
		return err
	}
	r.set(NotesSheet, 1, r.notesRow, text, r.styles.title)
	r.notesRow += 2
	return r.err
}

func (r *Reporter) BeginWorksheet(_ context.Context, id, title string, periods []domain.Period) error {
	r.sheet = r.uniqueSheet(SheetName(id))
	if err := r.openSheet(r.sheet); err != nil {
		return err
	}
	r.row, r.header, r.periods = 1, false, periods
	if title != "" {
		r.set(r.sheet, 1, r.row, title, r.styles.title)
		r.row += 2
	}
	return r.err
}

func (r *Reporter) EndWorksheet(_ context.Context) error {
	return r.err
}

func (r *Reporter) periodHeader(periods []domain.Period) {
	if r.header {
		return
	}
	r.header = true
	for i, p := range periods {
		r.set(r.sheet, 2+i, r.row, p.Name, r.styles.bold)
	}
	r.row++
}

func (r *Reporter) line(label string, labelStyle int, s *worksheet.Series, valueStyle int, periods []domain.Period) {
	r.periodHeader(periods)
	if label != "" {
		r.set(r.sheet, 1, r.row, label, labelStyle)
	}
	for i := range periods {
		if v, ok := reporter.ValueAt(s, i); ok {
			r.number(r.sheet, 2+i, r.row, v, valueStyle)
		}
	}
	r.row++
}

func (r *Reporter) OnHeading(_ context.Context, h *worksheet.Heading, periods []domain.Period) error {
	r.line(h.Description(), r.styles.bold, nil, 0, periods)
	return r.err
}

func (r *Reporter) OnItem(_ context.Context, it *worksheet.Item, periods []domain.Period) error {
	r.line(it.Description(), r.styles.indent, it.Series, r.styles.number, periods)
	return r.err
}

func (r *Reporter) OnTotals(_ context.Context, t *worksheet.Totals, periods []domain.Period) error {
	if t.Super {
		r.line(t.Description(), r.styles.bold, t.Series, r.styles.supertotal, periods)
	} else {
		r.line("", 0, t.Series, r.styles.total, periods)
	}
	return r.err
}

func (r *Reporter) OnSingleLine(_ context.Context, l *worksheet.SingleLine, periods []domain.Period) error {
	r.line(l.Description(), 0, l.Series, r.styles.number, periods)
	return r.err
}

func (r *Reporter) OnBreak(_ context.Context, _ *worksheet.Break, _ []domain.Period) error {
	r.row++
	return nil
}

func (r *Reporter) OnTable(_ context.Context, t *table.Table) error {
	r.headerRow = r.row
	r.levels = t.HeaderLevels()
	r.leaf = 0
	r.valueStart = 2
	if t.HasNotes() {
		r.set(r.sheet, 2, r.headerRow, "Notes", r.styles.bold)
		r.merge(r.sheet, 2, r.headerRow, 2, r.headerRow+r.levels-1)
		r.valueStart = 3
	}
	r.tableRow = r.headerRow + r.levels
	return r.err
}

// OnColumn writes a header cell over the leaves beneath it. Columns arrive
// depth-first, so the leaf counter marks where each one starts.
func (r *Reporter) OnColumn(_ context.Context, c *table.Column, depth int) error {
	col := r.valueStart + r.leaf
	row := r.headerRow + depth
	r.set(r.sheet, col, row, c.Metadata.Description, r.styles.bold)
	lastRow := row
	if len(c.Children) == 0 {
		lastRow = r.headerRow + r.levels - 1
		r.leaf++
	}
	r.merge(r.sheet, col, row, col+c.ColumnCount()-1, lastRow)
	return r.err
}

func (r *Reporter) OnIndex(_ context.Context, ix *table.Index, depth int) error {
	if ix.Row != nil {
		return nil
	}
	r.set(r.sheet, 1, r.tableRow, strings.Repeat("  ", depth)+ix.Label(), r.styles.bold)
	r.tableRow++
	r.row = r.tableRow
	return r.err
}

func (r *Reporter) OnRow(_ context.Context, ix *table.Index, _ *table.Row, depth int) error {
	style := r.styles.indent
	if ix.Kind == table.KindTotal {
		style = r.styles.bold
	}
	r.set(r.sheet, 1, r.tableRow, strings.Repeat("  ", depth)+ix.Label(), style)
	if r.valueStart == 3 && ix.Notes != "" {
		r.set(r.sheet, 2, r.tableRow, strings.TrimPrefix(ix.Notes, "note:"), 0)
	}
	r.tableRow++
	r.row = r.tableRow
	return r.err
}

func (r *Reporter) OnCell(_ context.Context, c *table.Cell, column int) error {
	row := r.tableRow - 1
	col := r.valueStart + column
	if v, ok := reporter.Numeric(c.Datum); ok {
		r.number(r.sheet, col, row, v, r.styles.number)
	} else if !c.Datum.IsNone() {
		r.set(r.sheet, col, row, c.Datum.String(), 0)
	}
	return r.err
}

func (r *Reporter) ensureNotes() error {
	if r.notesRow > 0 {
		return nil
	}
	if err := r.openSheet(NotesSheet); err != nil {
		return err
	}
	r.notesRow = 1
	return nil
}

func (r *Reporter) NoteHeading(_ context.Context, number, title string, level int) error {
	if err := r.ensureNotes(); err != nil {
		return err
	}
	r.set(NotesSheet, 1, r.notesRow, strings.Repeat("  ", level-1)+number+" "+title, r.styles.bold)
	r.notesRow++
	return r.err
}

func (r *Reporter) BeginNote(_ context.Context) (notes.Element, error) {
	if err := r.ensureNotes(); err != nil {
		return nil, err
	}
	return &element{r: r, sb: &strings.Builder{}}, nil
}

func (r *Reporter) EndNote(_ context.Context) error {
	return r.err
}

func (r *Reporter) Finish(_ context.Context) error {
	if r.err != nil {
		return r.err
	}
	if _, err := r.file.WriteTo(r.writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return r.file.Close()
}

// element accumulates note prose into a single cell of the notes sheet
type element struct {
	r   *Reporter
	sb  *strings.Builder
	row int
}

func (e *element) flush() error {
	if e.row == 0 {
		e.row = e.r.notesRow
		e.r.notesRow += 2
	}
	e.r.set(NotesSheet, 1, e.row, e.sb.String(), 0)
	return e.r.err
}

func (e *element) WriteText(s string) error {
	e.sb.WriteString(s)
	return e.flush()
}

func (e *element) WriteFact(f taxonomy.Fact) error {
	if v, ok := reporter.Numeric(f.Datum); ok {
		e.sb.WriteString(strings.TrimSpace(format.NegParen(v, 0)))
	} else {
		e.sb.WriteString(f.String())
	}
	return e.flush()
}

func (e *element) OpenTag(_, _ string, _ *string) (notes.Element, error) {
	return e, nil
}
