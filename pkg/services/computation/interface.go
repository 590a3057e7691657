package computation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/worksheet"
)

// Registry evaluates configured computations. Worksheet builders depend on
// this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_registry.go -source=interface.go Registry,ValueSource
type Registry interface {
	Evaluate(ctx context.Context, id string, period domain.Period) (worksheet.Result, error)
	Definition(id string) (worksheet.Definition, error)
	// IDs lists the registered computations in definition order
	IDs() []string
}

// ValueSource supplies the leaf values that simple computations read
type ValueSource interface {
	Value(ctx context.Context, id string, period domain.Period) (decimal.Decimal, error)
}
