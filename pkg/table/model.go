// Package table is the grid model used by table worksheets: a tree of
// column headers and a tree of row-grouping indexes that ends in rows of
// cells.
package table

import (
	"context"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// Header describes a column or index node
type Header struct {
	ID          string
	Description string
}

type Column struct {
	Metadata Header
	Children []*Column
	Units    string
}

// ColumnCount is 1 for a leaf, else the sum over children
func (c *Column) ColumnCount() int {
	if len(c.Children) == 0 {
		return 1
	}
	n := 0
	for _, ch := range c.Children {
		n += ch.ColumnCount()
	}
	return n
}

func (c *Column) HeaderLevels() int {
	deepest := 0
	for _, ch := range c.Children {
		deepest = max(deepest, ch.HeaderLevels())
	}
	return deepest + 1
}

type IndexKind int

const (
	KindIndex IndexKind = iota
	KindTotal
)

func (k IndexKind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindTotal:
		return "total"
	default:
		return "unknown"
	}
}

// Index groups rows. Exactly one of Row and Children is set.
type Index struct {
	Metadata Header
	Kind     IndexKind
	Row      *Row
	Children []*Index
	Notes    string
}

func NewIndex(h Header, row *Row) *Index {
	return &Index{Metadata: h, Kind: KindIndex, Row: row}
}

// NewTotalIndex creates an index whose row is labelled "Total"
func NewTotalIndex(h Header, row *Row) *Index {
	return &Index{Metadata: h, Kind: KindTotal, Row: row}
}

func NewGroup(h Header, children []*Index) *Index {
	return &Index{Metadata: h, Kind: KindIndex, Children: children}
}

// Label is the text shown against the index
func (ix *Index) Label() string {
	switch ix.Kind {
	case KindTotal:
		return "Total"
	default:
		return ix.Metadata.Description
	}
}

func (ix *Index) RowCount() int {
	if ix.Row != nil {
		return 1
	}
	n := 0
	for _, ch := range ix.Children {
		n += ch.RowCount()
	}
	return n
}

func (ix *Index) IxLevels() int {
	if ix.Row != nil {
		return 1
	}
	deepest := 0
	for _, ch := range ix.Children {
		deepest = max(deepest, ch.IxLevels())
	}
	return deepest + 1
}

func (ix *Index) hasNotes() bool {
	if ix.Notes != "" {
		return true
	}
	for _, ch := range ix.Children {
		if ch.hasNotes() {
			return true
		}
	}
	return false
}

type Row struct {
	Cells []Cell
}

type Cell struct {
	Datum domain.Datum
	// Concept is the taxonomy name the value is tagged with, empty for untagged cells
	Concept string
}

type Table struct {
	ID          string
	Description string
	Periods     []domain.Period
	Columns     []*Column
	Indexes     []*Index
}

func (t *Table) ColumnCount() int {
	n := 0
	for _, c := range t.Columns {
		n += c.ColumnCount()
	}
	return n
}

func (t *Table) RowCount() int {
	n := 0
	for _, ix := range t.Indexes {
		n += ix.RowCount()
	}
	return n
}

func (t *Table) HeaderLevels() int {
	n := 0
	for _, c := range t.Columns {
		n = max(n, c.HeaderLevels())
	}
	return n
}

func (t *Table) IxLevels() int {
	n := 0
	for _, ix := range t.Indexes {
		n = max(n, ix.IxLevels())
	}
	return n
}

// HasNotes reports whether any index carries a note reference
func (t *Table) HasNotes() bool {
	for _, ix := range t.Indexes {
		if ix.hasNotes() {
			return true
		}
	}
	return false
}

// Visitor receives the nodes of a table in walk order
type Visitor interface {
	OnTable(ctx context.Context, t *Table) error
	OnColumn(ctx context.Context, c *Column, depth int) error
	OnIndex(ctx context.Context, ix *Index, depth int) error
	OnRow(ctx context.Context, ix *Index, r *Row, depth int) error
	OnCell(ctx context.Context, c *Cell, column int) error
}

// Walk visits the table, then columns depth-first, then indexes
// depth-first with each row's cells in column order.
func (t *Table) Walk(ctx context.Context, v Visitor) error {
	if err := v.OnTable(ctx, t); err != nil {
		return err
	}
	for _, c := range t.Columns {
		if err := walkColumn(ctx, v, c, 0); err != nil {
			return err
		}
	}
	for _, ix := range t.Indexes {
		if err := walkIndex(ctx, v, ix, 0); err != nil {
			return err
		}
	}
	return nil
}

func walkColumn(ctx context.Context, v Visitor, c *Column, depth int) error {
	if err := v.OnColumn(ctx, c, depth); err != nil {
		return err
	}
	for _, ch := range c.Children {
		if err := walkColumn(ctx, v, ch, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func walkIndex(ctx context.Context, v Visitor, ix *Index, depth int) error {
	if err := v.OnIndex(ctx, ix, depth); err != nil {
		return err
	}
	if ix.Row != nil {
		if err := v.OnRow(ctx, ix, ix.Row, depth); err != nil {
			return err
		}
		for i := range ix.Row.Cells {
			if err := v.OnCell(ctx, &ix.Row.Cells[i], i); err != nil {
				return err
			}
		}
		return nil
	}
	for _, ch := range ix.Children {
		if err := walkIndex(ctx, v, ch, depth+1); err != nil {
			return err
		}
	}
	return nil
}
