package worksheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

var (
	ErrUnknownResult         = errors.New("unknown result variant")
	ErrInconsistentBreakdown = errors.New("inconsistent breakdown shape across periods")
	ErrUnexpectedResult      = errors.New("unexpected result shape")
)

// Definition describes a computation as configured in the report template
type Definition struct {
	ID          string
	Description string
	// Concept is the taxonomy fact name used when the value is tagged
	Concept   string
	Rank      int
	TotalRank int
}

// Evaluator evaluates one computation for one period
type Evaluator interface {
	Evaluate(ctx context.Context, id string, period domain.Period) (Result, error)
}

// Result is the outcome of evaluating one computation for one period.
// The set of variants is closed: *Simple, *Breakdown, *Nil and *Total.
type Result interface {
	Definition() Definition
	Value() decimal.Decimal
	// AddTotal appends this period's aggregate value to the section total
	AddTotal(s *Section) error
	// AddValue appends this period's value to the section's plain series
	AddValue(s *Section) error
	result()
}

// Itemizer is implemented by the variants that may carry line items
type Itemizer interface {
	Result
	AddItems(s *Section) error
}

// Simple is a single numeric outcome
type Simple struct {
	Defn   Definition
	Amount decimal.Decimal
}

// Breakdown is a total plus the named line items it is made of
type Breakdown struct {
	Defn   Definition
	Amount decimal.Decimal
	Items  []Result
}

// Nil is a computation that structurally yields nothing to break down
type Nil struct {
	Defn   Definition
	Amount decimal.Decimal
}

// Total is the sum of other computations
type Total struct {
	Defn   Definition
	Amount decimal.Decimal
	Items  []Result
}

func (r *Simple) Definition() Definition    { return r.Defn }
func (r *Breakdown) Definition() Definition { return r.Defn }
func (r *Nil) Definition() Definition       { return r.Defn }
func (r *Total) Definition() Definition     { return r.Defn }

func (r *Simple) Value() decimal.Decimal    { return r.Amount }
func (r *Breakdown) Value() decimal.Decimal { return r.Amount }
func (r *Nil) Value() decimal.Decimal       { return r.Amount }
func (r *Total) Value() decimal.Decimal     { return r.Amount }

func (*Simple) result()    {}
func (*Breakdown) result() {}
func (*Nil) result()       {}
func (*Total) result()     {}

func (r *Simple) AddTotal(s *Section) error    { return s.appendTotal(r.Defn, r.Amount) }
func (r *Breakdown) AddTotal(s *Section) error { return s.appendTotal(r.Defn, r.Amount) }
func (r *Nil) AddTotal(s *Section) error       { return s.appendTotal(r.Defn, r.Amount) }
func (r *Total) AddTotal(s *Section) error     { return s.appendTotal(r.Defn, r.Amount) }

func (r *Simple) AddValue(s *Section) error    { return s.appendValue(r.Defn, r.Amount) }
func (r *Breakdown) AddValue(s *Section) error { return s.appendValue(r.Defn, r.Amount) }
func (r *Nil) AddValue(s *Section) error       { return s.appendValue(r.Defn, r.Amount) }
func (r *Total) AddValue(s *Section) error     { return s.appendValue(r.Defn, r.Amount) }

// AddItems folds every line item into the section, one value per item
func (r *Breakdown) AddItems(s *Section) error {
	s.setMetadata(r.Defn)
	return s.appendItems(r.Items)
}

// AddItems is a no-op: a Nil result has nothing to break down
func (r *Nil) AddItems(s *Section) error {
	s.setMetadata(r.Defn)
	return nil
}

// AddItems is a no-op: the constituents of a total are folded as their own sections
func (r *Total) AddItems(s *Section) error {
	s.setMetadata(r.Defn)
	return nil
}

// ItemsOf returns the sub-results of r. Simple and Nil results have none.
func ItemsOf(r Result) ([]Result, error) {
	switch v := r.(type) {
	case *Simple:
		return nil, nil
	case *Nil:
		return nil, nil
	case *Breakdown:
		return v.Items, nil
	case *Total:
		return v.Items, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownResult, r)
	}
}

// Kind names the variant of r, for logs and debug output
func Kind(r Result) string {
	switch r.(type) {
	case *Simple:
		return "simple"
	case *Breakdown:
		return "breakdown"
	case *Nil:
		return "nil"
	case *Total:
		return "total"
	default:
		return "unknown"
	}
}
