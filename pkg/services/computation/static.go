package computation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// StaticValues is a ValueSource over values written in the template,
// keyed by computation id and then period name
type StaticValues map[string]map[string]decimal.Decimal

// NewStaticValues collects the static values of every simple definition
func NewStaticValues(defs []Def) (StaticValues, error) {
	out := make(StaticValues)
	for _, d := range defs {
		if len(d.Values) == 0 {
			continue
		}
		byPeriod := make(map[string]decimal.Decimal, len(d.Values))
		for period, raw := range d.Values {
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value of %q for period %s: %w", d.ID, period, err)
			}
			byPeriod[period] = v
		}
		out[d.ID] = byPeriod
	}
	return out, nil
}

func (s StaticValues) Value(_ context.Context, id string, period domain.Period) (decimal.Decimal, error) {
	v, ok := s[id][period.Name]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q for period %s", ErrNoValue, id, period.Name)
	}
	return v, nil
}

// Chain tries each source in turn, falling through on ErrNoValue
type Chain []ValueSource

func (c Chain) Value(ctx context.Context, id string, period domain.Period) (decimal.Decimal, error) {
	for _, src := range c {
		v, err := src.Value(ctx, id, period)
		if err == nil {
			return v, nil
		}
		if !isNoValue(err) {
			return decimal.Zero, err
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %q for period %s", ErrNoValue, id, period.Name)
}
