package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/datum"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
)

var (
	ErrRowShape   = errors.New("row cell count does not match column count")
	ErrIndexShape = errors.New("index must have exactly one of row, total or indexes")
	ErrBadPeriod  = errors.New("cell refers to a period outside the report")
	ErrNoColumns  = errors.New("table has no columns")
)

type ColumnDef struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Units       string      `yaml:"units"`
	Columns     []ColumnDef `yaml:"columns"`
}

type IndexDef struct {
	ID          string           `yaml:"id"`
	Description string           `yaml:"description"`
	Notes       string           `yaml:"notes"`
	Indexes     []IndexDef       `yaml:"indexes"`
	Row         []datum.FieldDef `yaml:"row"`
	Total       []datum.FieldDef `yaml:"total"`
}

type Definition struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Columns     []ColumnDef `yaml:"columns"`
	Indexes     []IndexDef  `yaml:"indexes"`
}

// Resolver turns a field definition into a fact
type Resolver interface {
	Resolve(ctx context.Context, f datum.FieldDef, dctx *domain.Context) (taxonomy.Fact, error)
}

// Env carries what index building needs to resolve cells
type Env struct {
	Resolver Resolver
	Context  *domain.Context
	Periods  []domain.Period
	// Columns is the leaf column count every row must match
	Columns int
}

func BuildColumns(defs []ColumnDef) []*Column {
	cols := make([]*Column, 0, len(defs))
	for _, d := range defs {
		cols = append(cols, &Column{
			Metadata: Header{ID: d.ID, Description: d.Description},
			Units:    d.Units,
			Children: BuildColumns(d.Columns),
		})
	}
	return cols
}

func BuildIndexes(ctx context.Context, defs []IndexDef, env Env) ([]*Index, error) {
	ixs := make([]*Index, 0, len(defs))
	for _, d := range defs {
		ix, err := buildIndex(ctx, d, env)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}
	return ixs, nil
}

func buildIndex(ctx context.Context, d IndexDef, env Env) (*Index, error) {
	h := Header{ID: d.ID, Description: d.Description}
	set := 0
	for _, present := range []bool{len(d.Row) > 0, len(d.Total) > 0, len(d.Indexes) > 0} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: %q", ErrIndexShape, d.ID)
	}

	var ix *Index
	switch {
	case len(d.Indexes) > 0:
		children, err := BuildIndexes(ctx, d.Indexes, env)
		if err != nil {
			return nil, err
		}
		ix = NewGroup(h, children)
	case len(d.Total) > 0:
		row, err := buildRow(ctx, d.ID, d.Total, env)
		if err != nil {
			return nil, err
		}
		ix = NewTotalIndex(h, row)
	default:
		row, err := buildRow(ctx, d.ID, d.Row, env)
		if err != nil {
			return nil, err
		}
		ix = NewIndex(h, row)
	}
	ix.Notes = d.Notes
	return ix, nil
}

func buildRow(ctx context.Context, id string, fields []datum.FieldDef, env Env) (*Row, error) {
	if env.Columns > 0 && len(fields) != env.Columns {
		return nil, fmt.Errorf("%w: index %q has %d cells, table has %d columns", ErrRowShape, id, len(fields), env.Columns)
	}
	row := &Row{Cells: make([]Cell, 0, len(fields))}
	for _, f := range fields {
		dctx := env.Context
		if f.Kind == datum.FieldComputation {
			if f.Period < 0 || f.Period >= len(env.Periods) {
				return nil, fmt.Errorf("%w: index %q cell %q period %d", ErrBadPeriod, id, f.ID, f.Period)
			}
			dctx = env.Context.WithPeriod(env.Periods[f.Period])
		}
		fact, err := env.Resolver.Resolve(ctx, f, dctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cell %q of index %q: %w", f.ID, id, err)
		}
		row.Cells = append(row.Cells, Cell{Datum: fact.Datum, Concept: fact.Name})
	}
	return row, nil
}

// Sheet builds a Table from its definition
type Sheet struct {
	Definition Definition
	Resolver   Resolver
	Context    *domain.Context
}

func NewTableSheet(def Definition, resolver Resolver, dctx *domain.Context) *Sheet {
	return &Sheet{Definition: def, Resolver: resolver, Context: dctx}
}

func (s *Sheet) Build(ctx context.Context, periods []domain.Period) (*Table, error) {
	t := &Table{
		ID:          s.Definition.ID,
		Description: s.Definition.Description,
		Periods:     periods,
		Columns:     BuildColumns(s.Definition.Columns),
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumns, s.Definition.ID)
	}
	ixs, err := BuildIndexes(ctx, s.Definition.Indexes, Env{
		Resolver: s.Resolver,
		Context:  s.Context,
		Periods:  periods,
		Columns:  t.ColumnCount(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build table %q: %w", s.Definition.ID, err)
	}
	t.Indexes = ixs

	zerolog.Ctx(ctx).Debug().
		Str("table", t.ID).
		Int("columns", t.ColumnCount()).
		Int("rows", t.RowCount()).
		Msg("table built")
	return t, nil
}
