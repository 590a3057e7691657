package worksheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

var (
	ErrNoPeriods    = errors.New("worksheet requires at least one period")
	ErrUnknownEntry = errors.New("unknown worksheet entry type")
)

// Builder turns a worksheet definition into a dataset for the given periods
type Builder interface {
	Build(ctx context.Context, periods []domain.Period) (*Dataset, error)
}

// evaluate runs one computation for every period, in period order.
func evaluate(ctx context.Context, eval Evaluator, id string, periods []domain.Period) ([]Result, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}
	results := make([]Result, 0, len(periods))
	for _, p := range periods {
		r, err := eval.Evaluate(ctx, id, p)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %q for period %s: %w", id, p.Name, err)
		}
		results = append(results, r)
	}
	zerolog.Ctx(ctx).Debug().
		Str("computation", id).
		Str("kind", Kind(results[0])).
		Int("periods", len(results)).
		Msg("computation evaluated")
	return results, nil
}

// foldTotals folds every result's total and, for itemised results, its
// sub-results zipped by position.
func foldTotals(ctx context.Context, id string, results []Result) (*Section, error) {
	section := NewSection(ctx, id)
	for _, r := range results {
		if err := r.AddTotal(section); err != nil {
			return nil, err
		}
		items, err := ItemsOf(r)
		if err != nil {
			return nil, err
		}
		if err := section.appendItems(items); err != nil {
			return nil, err
		}
	}
	return section, nil
}

func expand(section *Section) []Node {
	nodes := []Node{&Heading{Section: section}}
	for _, series := range section.Items {
		nodes = append(nodes, &Item{Section: section, Series: series})
	}
	return append(nodes, &Totals{Section: section, Series: section.Total})
}
