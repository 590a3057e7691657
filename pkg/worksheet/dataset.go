package worksheet

import (
	"context"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// Callbacks is implemented by reporters. Each node invokes exactly one of
// them with itself and the period list.
type Callbacks interface {
	OnHeading(ctx context.Context, h *Heading, periods []domain.Period) error
	OnItem(ctx context.Context, it *Item, periods []domain.Period) error
	OnTotals(ctx context.Context, t *Totals, periods []domain.Period) error
	OnSingleLine(ctx context.Context, l *SingleLine, periods []domain.Period) error
	OnBreak(ctx context.Context, b *Break, periods []domain.Period) error
}

// Node is one line-level element of a dataset.
// The set is closed: *Heading, *Item, *Totals, *SingleLine and *Break.
type Node interface {
	Render(ctx context.Context, cb Callbacks, periods []domain.Period) error
	node()
}

type Heading struct {
	Section *Section
}

type Item struct {
	Section *Section
	Series  *Series
}

// Totals closes a block of items. Super marks a total of totals, which
// reporters rule distinctly.
type Totals struct {
	Section *Section
	Series  *Series
	Super   bool
}

type SingleLine struct {
	Section *Section
	Series  *Series
}

type Break struct{}

func (h *Heading) Render(ctx context.Context, cb Callbacks, periods []domain.Period) error {
	return cb.OnHeading(ctx, h, periods)
}

func (it *Item) Render(ctx context.Context, cb Callbacks, periods []domain.Period) error {
	return cb.OnItem(ctx, it, periods)
}

func (t *Totals) Render(ctx context.Context, cb Callbacks, periods []domain.Period) error {
	return cb.OnTotals(ctx, t, periods)
}

func (l *SingleLine) Render(ctx context.Context, cb Callbacks, periods []domain.Period) error {
	return cb.OnSingleLine(ctx, l, periods)
}

func (b *Break) Render(ctx context.Context, cb Callbacks, periods []domain.Period) error {
	return cb.OnBreak(ctx, b, periods)
}

func (*Heading) node()    {}
func (*Item) node()       {}
func (*Totals) node()     {}
func (*SingleLine) node() {}
func (*Break) node()      {}

func (h *Heading) Description() string { return h.Section.Description }

func (it *Item) Description() string { return it.Series.Description }

func (t *Totals) Description() string { return t.Section.Description }

func (l *SingleLine) Description() string { return l.Section.Description }

// Dataset is the folded form of a worksheet, ready for rendering.
type Dataset struct {
	ID          string
	Description string
	Periods     []domain.Period
	Nodes       []Node
}

// Render walks the nodes in order. The first callback error aborts the walk.
func (d *Dataset) Render(ctx context.Context, cb Callbacks) error {
	for _, n := range d.Nodes {
		if err := n.Render(ctx, cb, d.Periods); err != nil {
			return err
		}
	}
	return nil
}

// NodeKind names the node variant, for debug output
func NodeKind(n Node) string {
	switch v := n.(type) {
	case *Heading:
		return "heading"
	case *Item:
		return "item"
	case *Totals:
		if v.Super {
			return "supertotal"
		}
		return "totals"
	case *SingleLine:
		return "singleline"
	case *Break:
		return "break"
	default:
		return "unknown"
	}
}
