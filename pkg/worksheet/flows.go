package worksheet

import (
	"context"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

type EntryType string

const (
	EntryHeading    EntryType = "heading"
	EntryItems      EntryType = "items"
	EntryTotal      EntryType = "total"
	EntrySuperTotal EntryType = "supertotal"
	EntryBreak      EntryType = "break"
)

// FlowEntry is one explicitly typed line of a flows worksheet
type FlowEntry struct {
	Type        EntryType
	Computation string
}

// FlowsSheet lays out computations exactly as its entries say.
type FlowsSheet struct {
	ID          string
	Description string
	Entries     []FlowEntry
	eval        Evaluator
}

func NewFlowsSheet(id, description string, entries []FlowEntry, eval Evaluator) *FlowsSheet {
	return &FlowsSheet{ID: id, Description: description, Entries: entries, eval: eval}
}

func (s *FlowsSheet) Build(ctx context.Context, periods []domain.Period) (*Dataset, error) {
	ds := &Dataset{ID: s.ID, Description: s.Description, Periods: periods}
	sections := make(map[string]*Section)
	kinds := make(map[string]Result)

	section := func(id string) (*Section, error) {
		if sec, ok := sections[id]; ok {
			return sec, nil
		}
		results, err := evaluate(ctx, s.eval, id, periods)
		if err != nil {
			return nil, err
		}
		sec, err := foldTotals(ctx, id, results)
		if err != nil {
			return nil, err
		}
		sections[id] = sec
		kinds[id] = results[0]
		return sec, nil
	}

	for i, entry := range s.Entries {
		if entry.Type == EntryBreak {
			ds.Nodes = append(ds.Nodes, &Break{})
			continue
		}

		switch entry.Type {
		case EntryHeading, EntryItems, EntryTotal, EntrySuperTotal:
		default:
			return nil, fmt.Errorf("%w: %q in worksheet %q entry %d", ErrUnknownEntry, entry.Type, s.ID, i)
		}

		sec, err := section(entry.Computation)
		if err != nil {
			return nil, err
		}

		switch entry.Type {
		case EntryHeading:
			ds.Nodes = append(ds.Nodes, &Heading{Section: sec})
		case EntryItems:
			switch r := kinds[entry.Computation].(type) {
			case *Breakdown, *Total, *Nil:
				for _, series := range sec.Items {
					ds.Nodes = append(ds.Nodes, &Item{Section: sec, Series: series})
				}
			case *Simple:
				return nil, fmt.Errorf("%w: %q is a simple result and has no items (worksheet %q)",
					ErrUnexpectedResult, entry.Computation, s.ID)
			default:
				return nil, fmt.Errorf("%w: %T", ErrUnknownResult, r)
			}
		case EntryTotal:
			ds.Nodes = append(ds.Nodes, &Totals{Section: sec, Series: sec.Total})
		case EntrySuperTotal:
			ds.Nodes = append(ds.Nodes, &Totals{Section: sec, Series: sec.Total, Super: true})
		}
	}

	return ds, nil
}
