// Package datum resolves field definitions from a report template into
// contextualised facts.
package datum

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/taxonomy"
)

var (
	ErrUnknownField = errors.New("unknown field kind")
	ErrNoPeriod     = errors.New("computation field requires a period context")
)

type FieldKind string

const (
	FieldComputation FieldKind = "computation"
	FieldMetadata    FieldKind = "metadata"
	FieldString      FieldKind = "string"
	FieldNumber      FieldKind = "number"
	FieldNone        FieldKind = "none"
)

// FieldDef is one cell or value definition
type FieldDef struct {
	Kind  FieldKind `yaml:"kind"`
	ID    string    `yaml:"id"`
	Value string    `yaml:"value"`
	// Period indexes the report periods; 0 is the current period
	Period int `yaml:"period"`
}

type Resolver struct {
	registry computation.Registry
	metadata taxonomy.MetadataStore
}

func NewResolver(registry computation.Registry, metadata taxonomy.MetadataStore) *Resolver {
	return &Resolver{registry: registry, metadata: metadata}
}

// Resolve turns f into a fact reported against dctx. Absent metadata is a
// None datum, not an error.
func (r *Resolver) Resolve(ctx context.Context, f FieldDef, dctx *domain.Context) (taxonomy.Fact, error) {
	switch f.Kind {
	case FieldComputation:
		if dctx == nil || dctx.Period == nil {
			return taxonomy.Fact{}, fmt.Errorf("%w: %q", ErrNoPeriod, f.ID)
		}
		res, err := r.registry.Evaluate(ctx, f.ID, *dctx.Period)
		if err != nil {
			return taxonomy.Fact{}, err
		}
		return taxonomy.Fact{
			Name:  res.Definition().Concept,
			Datum: domain.Datum{ID: f.ID, Kind: domain.DatumMoney, Value: res.Value(), Context: dctx},
		}, nil
	case FieldMetadata:
		if r.metadata == nil {
			return taxonomy.Fact{Datum: domain.NoneDatum(f.ID)}, nil
		}
		fact, ok := r.metadata.MetadataByID(f.ID)
		if !ok {
			return taxonomy.Fact{Datum: domain.NoneDatum(f.ID)}, nil
		}
		return *fact, nil
	case FieldString:
		return taxonomy.Fact{Datum: domain.Datum{ID: f.ID, Kind: domain.DatumString, Value: f.Value, Context: dctx}}, nil
	case FieldNumber:
		v, err := decimal.NewFromString(f.Value)
		if err != nil {
			return taxonomy.Fact{}, fmt.Errorf("failed to parse number field %q: %w", f.ID, err)
		}
		return taxonomy.Fact{Datum: domain.Datum{ID: f.ID, Kind: domain.DatumNumber, Value: v, Context: dctx}}, nil
	case FieldNone, "":
		return taxonomy.Fact{Datum: domain.NoneDatum(f.ID)}, nil
	default:
		return taxonomy.Fact{}, fmt.Errorf("%w: %q", ErrUnknownField, f.Kind)
	}
}
