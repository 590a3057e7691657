// Package reporter defines the contract every output medium implements and
// the shared traversal entry points that drive it.
package reporter

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/format"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/notes"
	"github.com/de-tools/report-atlas/pkg/table"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

// Reporter renders one document. Worksheet content arrives through the
// dataset callbacks or the table visitor between BeginWorksheet and
// EndWorksheet.
type Reporter interface {
	worksheet.Callbacks
	table.Visitor

	Title(ctx context.Context, text string) error
	BeginWorksheet(ctx context.Context, id, title string, periods []domain.Period) error
	EndWorksheet(ctx context.Context) error
	NoteHeading(ctx context.Context, number, title string, level int) error
	// BeginNote returns the element note content is written into
	BeginNote(ctx context.Context) (notes.Element, error)
	EndNote(ctx context.Context) error
	// Finish writes the document to its destination
	Finish(ctx context.Context) error
}

func RenderDataset(ctx context.Context, r Reporter, ds *worksheet.Dataset) error {
	if err := r.BeginWorksheet(ctx, ds.ID, ds.Description, ds.Periods); err != nil {
		return err
	}
	if err := ds.Render(ctx, r); err != nil {
		return err
	}
	return r.EndWorksheet(ctx)
}

func RenderTable(ctx context.Context, r Reporter, t *table.Table) error {
	if err := r.BeginWorksheet(ctx, t.ID, t.Description, t.Periods); err != nil {
		return err
	}
	if err := t.Walk(ctx, r); err != nil {
		return err
	}
	return r.EndWorksheet(ctx)
}

// Numeric returns the decimal value of d when it holds a number
func Numeric(d domain.Datum) (decimal.Decimal, bool) {
	if d.Kind != domain.DatumMoney && d.Kind != domain.DatumNumber {
		return decimal.Zero, false
	}
	switch v := d.Value.(type) {
	case decimal.Decimal:
		return v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	default:
		return decimal.Zero, false
	}
}

// CellText formats a datum for a fixed-width column. Numbers use the
// negative-paren rule; anything else is right-justified text.
func CellText(d domain.Datum, width int) string {
	if v, ok := Numeric(d); ok {
		return format.NegParen(v, width)
	}
	return format.PadLeft(format.Truncate(d.String(), width), width)
}

// ValueAt returns the series value for period i, false past the end of the
// series
func ValueAt(s *worksheet.Series, i int) (decimal.Decimal, bool) {
	if s == nil || i >= len(s.Values) {
		return decimal.Zero, false
	}
	return s.Values[i], true
}
