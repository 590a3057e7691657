package worksheet

import (
	"context"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// MultiPeriodEntry references a computation with its display ranks
type MultiPeriodEntry struct {
	Computation string
	Rank        int
	TotalRank   int
}

// MultiPeriodSheet folds each computation into a single section through
// the result variants' own folding operations.
//
// Breakdown items are zipped across periods by position, not by id.
type MultiPeriodSheet struct {
	ID          string
	Description string
	Entries     []MultiPeriodEntry
	eval        Evaluator
}

func NewMultiPeriodSheet(id, description string, entries []MultiPeriodEntry, eval Evaluator) *MultiPeriodSheet {
	return &MultiPeriodSheet{ID: id, Description: description, Entries: entries, eval: eval}
}

func (s *MultiPeriodSheet) Build(ctx context.Context, periods []domain.Period) (*Dataset, error) {
	ds := &Dataset{ID: s.ID, Description: s.Description, Periods: periods}

	for _, entry := range s.Entries {
		results, err := evaluate(ctx, s.eval, entry.Computation, periods)
		if err != nil {
			return nil, err
		}

		switch r := results[0].(type) {
		case *Breakdown, *Nil, *Total:
		case *Simple:
			return nil, fmt.Errorf("%w: %q yields a simple result in multi-period worksheet %q",
				ErrUnexpectedResult, entry.Computation, s.ID)
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownResult, r)
		}

		section := NewSection(ctx, entry.Computation)
		for i, r := range results {
			itemizer, ok := r.(Itemizer)
			if !ok {
				return nil, fmt.Errorf("%w: %q changes to a %s result in period %s",
					ErrUnexpectedResult, entry.Computation, Kind(r), periods[i].Name)
			}
			if err := itemizer.AddTotal(section); err != nil {
				return nil, err
			}
			if err := itemizer.AddItems(section); err != nil {
				return nil, err
			}
		}

		if err := section.checkAligned(); err != nil {
			return nil, err
		}

		section.Total.Rank = entry.TotalRank
		for _, series := range section.Items {
			series.Rank = entry.Rank
		}

		if len(section.Items) > 0 {
			ds.Nodes = append(ds.Nodes, expand(section)...)
		} else {
			ds.Nodes = append(ds.Nodes, &SingleLine{Section: section, Series: section.Total})
		}
		ds.Nodes = append(ds.Nodes, &Break{})
	}

	return ds, nil
}
