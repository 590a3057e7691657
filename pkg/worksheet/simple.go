package worksheet

import (
	"context"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// SimpleSheet lists computations one after another. Single-line results
// take one line; itemised results get a heading, their items and a total.
type SimpleSheet struct {
	ID           string
	Description  string
	Computations []string
	eval         Evaluator
}

func NewSimpleSheet(id, description string, computations []string, eval Evaluator) *SimpleSheet {
	return &SimpleSheet{ID: id, Description: description, Computations: computations, eval: eval}
}

func (s *SimpleSheet) Build(ctx context.Context, periods []domain.Period) (*Dataset, error) {
	ds := &Dataset{ID: s.ID, Description: s.Description, Periods: periods}

	for _, id := range s.Computations {
		results, err := evaluate(ctx, s.eval, id, periods)
		if err != nil {
			return nil, err
		}

		itemised, err := hasItems(results)
		if err != nil {
			return nil, err
		}

		if !itemised {
			section := NewSection(ctx, id)
			for _, r := range results {
				if err := r.AddValue(section); err != nil {
					return nil, err
				}
			}
			ds.Nodes = append(ds.Nodes, &SingleLine{Section: section, Series: section.Value})
		} else {
			section, err := foldTotals(ctx, id, results)
			if err != nil {
				return nil, err
			}
			ds.Nodes = append(ds.Nodes, expand(section)...)
		}

		ds.Nodes = append(ds.Nodes, &Break{})
	}

	return ds, nil
}

// hasItems reports whether the results carry line items. Every period must
// agree; a period with items next to one without is a shape change.
func hasItems(results []Result) (bool, error) {
	var itemised bool
	for i, r := range results {
		items, err := ItemsOf(r)
		if err != nil {
			return false, err
		}
		if i == 0 {
			itemised = len(items) > 0
			continue
		}
		if itemised != (len(items) > 0) {
			return false, fmt.Errorf("%w: %q has %d items in period %d but the first period %s",
				ErrInconsistentBreakdown, r.Definition().ID, len(items), i, describeItemised(itemised))
		}
	}
	return itemised, nil
}

func describeItemised(itemised bool) string {
	if itemised {
		return "has items"
	}
	return "has none"
}
