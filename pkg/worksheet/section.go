package worksheet

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Series holds one value per folded period; Values[i] belongs to period i.
type Series struct {
	ID          string
	Description string
	Metadata    Definition
	Values      []decimal.Decimal
	// Rank is a display hint for callers; it never affects ordering here
	Rank int
	Note string
}

// Section accumulates the per-period results of one computation.
type Section struct {
	ID          string
	Description string
	Metadata    *Definition
	Items       []*Series
	Total       *Series
	Value       *Series
	Note        string

	logger *zerolog.Logger
}

// NewSection creates an empty accumulator. Shape warnings are logged to the
// logger carried by ctx.
func NewSection(ctx context.Context, id string) *Section {
	return &Section{ID: id, logger: zerolog.Ctx(ctx)}
}

// Periods returns the number of periods folded into the total so far
func (s *Section) Periods() int {
	switch {
	case s.Total != nil:
		return len(s.Total.Values)
	case s.Value != nil:
		return len(s.Value.Values)
	default:
		return 0
	}
}

func (s *Section) setMetadata(d Definition) {
	if s.Metadata != nil {
		return
	}
	md := d
	s.Metadata = &md
	if s.Description == "" {
		s.Description = d.Description
	}
}

func (s *Section) appendTotal(d Definition, v decimal.Decimal) error {
	s.setMetadata(d)
	if s.Total == nil {
		s.Total = newSeries(*s.Metadata)
		s.Total.Rank = s.Metadata.TotalRank
	}
	s.Total.Values = append(s.Total.Values, v)
	return nil
}

func (s *Section) appendValue(d Definition, v decimal.Decimal) error {
	s.setMetadata(d)
	if s.Value == nil {
		s.Value = newSeries(*s.Metadata)
	}
	s.Value.Values = append(s.Value.Values, v)
	return nil
}

// appendItems zips items onto the existing item series by position.
func (s *Section) appendItems(items []Result) error {
	if s.Items == nil {
		s.Items = make([]*Series, 0, len(items))
		for _, it := range items {
			s.Items = append(s.Items, newSeries(it.Definition()))
		}
	} else if len(items) != len(s.Items) {
		return fmt.Errorf("%w: section %q had %d items, got %d",
			ErrInconsistentBreakdown, s.ID, len(s.Items), len(items))
	}

	for i, it := range items {
		series := s.Items[i]
		if id := it.Definition().ID; id != series.ID {
			// Positional zipping is kept; a reordered breakdown is reported, not corrected.
			s.log().Warn().
				Str("section", s.ID).
				Int("position", i).
				Str("expected", series.ID).
				Str("got", id).
				Msg("breakdown item identity differs across periods")
		}
		series.Values = append(series.Values, it.Value())
	}
	return nil
}

// checkAligned verifies every item series holds one value per folded period
func (s *Section) checkAligned() error {
	n := s.Periods()
	for _, series := range s.Items {
		if len(series.Values) != n {
			return fmt.Errorf("%w: section %q item %q has %d values for %d periods",
				ErrInconsistentBreakdown, s.ID, series.ID, len(series.Values), n)
		}
	}
	return nil
}

func (s *Section) log() *zerolog.Logger {
	if s.logger == nil {
		l := zerolog.Nop()
		s.logger = &l
	}
	return s.logger
}

func newSeries(d Definition) *Series {
	return &Series{
		ID:          d.ID,
		Description: d.Description,
		Metadata:    d,
		Rank:        d.Rank,
	}
}
